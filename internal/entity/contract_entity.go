package entity

import (
	"time"

	"idea-contract-be/pkg/workflow"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusInProgress  ContractStatus = "in_progress"
	ContractStatusSubmitted   ContractStatus = "submitted"
	ContractStatusUnderReview ContractStatus = "under_review"
	ContractStatusApproved    ContractStatus = "approved"
	ContractStatusRejected    ContractStatus = "rejected"
	ContractStatusImplemented ContractStatus = "implemented"
	ContractStatusCompleted   ContractStatus = "completed"
)

// ValidContractStatuses are the statuses a reviewer may set.
var ValidContractStatuses = []ContractStatus{
	ContractStatusSubmitted,
	ContractStatusUnderReview,
	ContractStatusApproved,
	ContractStatusRejected,
	ContractStatusImplemented,
	ContractStatusCompleted,
	ContractStatusInProgress,
}

func (s ContractStatus) Valid() bool {
	for _, v := range ValidContractStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Contract is a drafted or submitted contract in the catalog.
type Contract struct {
	Id                  uuid.UUID
	SessionId           string
	Title               string
	OriginalIdea        string
	RephrasedIdea       string
	DocumentType        string
	Department          string
	SubmittedBy         string
	Status              ContractStatus
	Sections            []workflow.Section
	Drafts              map[string]string
	ConversationHistory []workflow.ConversationEntry
	ImprovedDocument    string

	EvaluationScore  *int
	ReviewerFeedback string

	AiScore        *int
	AiFeedback     string
	AiStrengths    []string
	AiImprovements []string
	AiRiskLevel    string
	AiScoredAt     *time.Time

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ApplyReview copies an AI review onto the contract.
func (c *Contract) ApplyReview(r *workflow.Review, at time.Time) {
	score := r.Score
	c.AiScore = &score
	c.AiFeedback = r.Feedback
	c.AiStrengths = r.Strengths
	c.AiImprovements = r.Improvements
	c.AiRiskLevel = string(r.RiskLevel)
	c.AiScoredAt = &at
}
