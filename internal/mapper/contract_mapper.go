package mapper

import (
	"time"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/model"

	"gorm.io/datatypes"
)

type ContractMapper struct{}

func NewContractMapper() *ContractMapper {
	return &ContractMapper{}
}

func (m *ContractMapper) ToEntity(c *model.Contract) *entity.Contract {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Contract{
		Id:                  c.Id,
		SessionId:           c.SessionId,
		Title:               c.Title,
		OriginalIdea:        c.OriginalIdea,
		RephrasedIdea:       c.RephrasedIdea,
		DocumentType:        c.DocumentType,
		Department:          c.Department,
		SubmittedBy:         c.SubmittedBy,
		Status:              entity.ContractStatus(c.Status),
		Sections:            c.Sections,
		Drafts:              c.Drafts.Data(),
		ConversationHistory: c.ConversationHistory,
		ImprovedDocument:    c.ImprovedDocument,
		EvaluationScore:     c.EvaluationScore,
		ReviewerFeedback:    c.ReviewerFeedback,
		AiScore:             c.AiScore,
		AiFeedback:          c.AiFeedback,
		AiStrengths:         c.AiStrengths,
		AiImprovements:      c.AiImprovements,
		AiRiskLevel:         c.AiRiskLevel,
		AiScoredAt:          c.AiScoredAt,
		CompletedAt:         c.CompletedAt,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ContractMapper) ToModel(c *entity.Contract) *model.Contract {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Contract{
		Id:                  c.Id,
		SessionId:           c.SessionId,
		Title:               c.Title,
		OriginalIdea:        c.OriginalIdea,
		RephrasedIdea:       c.RephrasedIdea,
		DocumentType:        c.DocumentType,
		Department:          c.Department,
		SubmittedBy:         c.SubmittedBy,
		Status:              string(c.Status),
		Sections:            c.Sections,
		Drafts:              datatypes.NewJSONType(c.Drafts),
		ConversationHistory: c.ConversationHistory,
		ImprovedDocument:    c.ImprovedDocument,
		EvaluationScore:     c.EvaluationScore,
		ReviewerFeedback:    c.ReviewerFeedback,
		AiScore:             c.AiScore,
		AiFeedback:          c.AiFeedback,
		AiStrengths:         c.AiStrengths,
		AiImprovements:      c.AiImprovements,
		AiRiskLevel:         c.AiRiskLevel,
		AiScoredAt:          c.AiScoredAt,
		CompletedAt:         c.CompletedAt,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ContractMapper) ToEntities(models []*model.Contract) []*entity.Contract {
	entities := make([]*entity.Contract, len(models))
	for i, c := range models {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
