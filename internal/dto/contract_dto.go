package dto

import (
	"time"

	"idea-contract-be/internal/entity"
	"idea-contract-be/pkg/workflow"
)

type ContractMetadata struct {
	Department  string `json:"department"`
	SubmittedBy string `json:"submitted_by"`
}

type CreateContractRequest struct {
	Title     string             `json:"title" validate:"required,max=255"`
	Idea      string             `json:"idea"`
	Drafts    map[string]string  `json:"drafts"`
	AllDrafts map[string]string  `json:"all_drafts"`
	Sections  []workflow.Section `json:"sections"`
	Metadata  ContractMetadata   `json:"metadata"`
}

// DraftsOrAll prefers drafts and falls back to all_drafts.
func (r *CreateContractRequest) DraftsOrAll() map[string]string {
	if len(r.Drafts) > 0 {
		return r.Drafts
	}
	return r.AllDrafts
}

type CreateContractResponse struct {
	SessionId string `json:"session_id"`
}

type UpdateContractStatusRequest struct {
	SessionId        string `json:"session_id" validate:"required"`
	Status           string `json:"status" validate:"required,oneof=submitted under_review approved rejected implemented completed in_progress"`
	EvaluationScore  *int   `json:"evaluation_score" validate:"omitempty,min=0,max=100"`
	ReviewerFeedback string `json:"reviewer_feedback"`
}

type ContractResponse struct {
	SessionId        string             `json:"session_id"`
	Title            string             `json:"title"`
	OriginalIdea     string             `json:"original_idea"`
	RephrasedIdea    string             `json:"rephrased_idea"`
	DocumentType     string             `json:"document_type,omitempty"`
	Department       string             `json:"department"`
	SubmittedBy      string             `json:"submitted_by,omitempty"`
	Status           string             `json:"status"`
	Sections         []workflow.Section `json:"sections,omitempty"`
	Drafts           map[string]string  `json:"drafts"`
	TotalQuestions   int                `json:"total_questions_asked"`
	ImprovedDocument string             `json:"improved_document,omitempty"`
	EvaluationScore  *int               `json:"evaluation_score,omitempty"`
	ReviewerFeedback string             `json:"reviewer_feedback,omitempty"`
	AiScore          *int               `json:"ai_score,omitempty"`
	AiFeedback       string             `json:"ai_feedback,omitempty"`
	AiStrengths      []string           `json:"ai_strengths,omitempty"`
	AiImprovements   []string           `json:"ai_improvements,omitempty"`
	AiRiskLevel      string             `json:"ai_risk_level,omitempty"`
	AiScoredAt       *time.Time         `json:"ai_scored_at,omitempty"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        *time.Time         `json:"updated_at,omitempty"`
}

func NewContractResponse(c *entity.Contract) *ContractResponse {
	return &ContractResponse{
		SessionId:        c.SessionId,
		Title:            c.Title,
		OriginalIdea:     c.OriginalIdea,
		RephrasedIdea:    c.RephrasedIdea,
		DocumentType:     c.DocumentType,
		Department:       c.Department,
		SubmittedBy:      c.SubmittedBy,
		Status:           string(c.Status),
		Sections:         c.Sections,
		Drafts:           c.Drafts,
		TotalQuestions:   len(c.ConversationHistory),
		ImprovedDocument: c.ImprovedDocument,
		EvaluationScore:  c.EvaluationScore,
		ReviewerFeedback: c.ReviewerFeedback,
		AiScore:          c.AiScore,
		AiFeedback:       c.AiFeedback,
		AiStrengths:      c.AiStrengths,
		AiImprovements:   c.AiImprovements,
		AiRiskLevel:      c.AiRiskLevel,
		AiScoredAt:       c.AiScoredAt,
		CompletedAt:      c.CompletedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

type ScoreContractsResponse struct {
	Total   int `json:"total"`
	Scored  int `json:"scored"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type CategorizedContract struct {
	SessionId         string   `json:"session_id"`
	Title             string   `json:"title"`
	SecondaryCategory string   `json:"secondary_category"`
	Reasoning         string   `json:"reasoning"`
	ConfidenceScore   int      `json:"confidence_score"`
	KeyThemes         []string `json:"key_themes"`
}

type CategorizeContractsResponse struct {
	Total      int                               `json:"total"`
	Categories map[string][]*CategorizedContract `json:"categories"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
