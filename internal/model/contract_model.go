package model

import (
	"time"

	"idea-contract-be/pkg/workflow"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Contract struct {
	Id                  uuid.UUID                                       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId           string                                          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Title               string                                          `gorm:"type:varchar(255)"`
	OriginalIdea        string                                          `gorm:"type:text"`
	RephrasedIdea       string                                          `gorm:"type:text"`
	DocumentType        string                                          `gorm:"type:varchar(64)"`
	Department          string                                          `gorm:"type:varchar(64)"`
	SubmittedBy         string                                          `gorm:"type:varchar(128)"`
	Status              string                                          `gorm:"type:varchar(32);not null;index"`
	Sections            datatypes.JSONSlice[workflow.Section]           `gorm:"type:jsonb"`
	Drafts              datatypes.JSONType[map[string]string]           `gorm:"type:jsonb"`
	ConversationHistory datatypes.JSONSlice[workflow.ConversationEntry] `gorm:"type:jsonb"`
	ImprovedDocument    string                                          `gorm:"type:text"`
	EvaluationScore     *int
	ReviewerFeedback    string                      `gorm:"type:text"`
	AiScore             *int                        `gorm:"index"`
	AiFeedback          string                      `gorm:"type:text"`
	AiStrengths         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	AiImprovements      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	AiRiskLevel         string                      `gorm:"type:varchar(16)"`
	AiScoredAt          *time.Time
	CompletedAt         *time.Time
	CreatedAt           time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (Contract) TableName() string {
	return "contracts"
}
