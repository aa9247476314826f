package contract

import (
	"context"

	"idea-contract-be/internal/entity"
)

// SessionRepository stores in-flight drafting sessions. Get returns nil, nil
// when the session does not exist or has expired.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.DraftingSession) error
	Get(ctx context.Context, id string) (*entity.DraftingSession, error)
	Delete(ctx context.Context, id string) error
}
