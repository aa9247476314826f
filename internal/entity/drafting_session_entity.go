package entity

import (
	"time"

	"idea-contract-be/pkg/workflow"
)

// DraftingSession is an in-flight drafting conversation keyed by an opaque id.
type DraftingSession struct {
	Id        string          `json:"id"`
	State     *workflow.State `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
