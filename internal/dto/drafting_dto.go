package dto

import (
	"idea-contract-be/pkg/workflow"
)

// IdeaStructuring is the user-reviewed structure sent back after get_structure_review.
type IdeaStructuring struct {
	Idea        string             `json:"idea"`
	Title       string             `json:"title"`
	AllSections []workflow.Section `json:"all_sections"`
}

type ChatRequest struct {
	SessionId       string           `json:"session_id"`
	Query           string           `json:"query"`
	IsInterrupt     bool             `json:"is_interrupt"`
	IdeaStructuring *IdeaStructuring `json:"idea_structuring,omitempty"`
}

// ChatResponse is the single SSE frame emitted per chat request.
type ChatResponse struct {
	SessionId   string             `json:"session_id"`
	Type        string             `json:"type"`
	Action      string             `json:"action"`
	Section     string             `json:"section,omitempty"`
	Subsection  string             `json:"subsection,omitempty"`
	Question    string             `json:"question,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Draft       string             `json:"draft,omitempty"`
	Idea        string             `json:"idea,omitempty"`
	Title       string             `json:"title,omitempty"`
	AllSections []workflow.Section `json:"all_sections,omitempty"`
	FinalState  *workflow.State    `json:"final_state,omitempty"`
}

func NewChatResponse(sessionID string, evt *workflow.Event) *ChatResponse {
	return &ChatResponse{
		SessionId:   sessionID,
		Type:        string(evt.Type),
		Action:      string(evt.Action),
		Section:     evt.Section,
		Subsection:  evt.Subsection,
		Question:    evt.Question,
		Reason:      evt.Reason,
		Draft:       evt.Draft,
		Idea:        evt.Idea,
		Title:       evt.Title,
		AllSections: evt.Sections,
		FinalState:  evt.FinalState,
	}
}

// PublishScoreContractMessage is queued on the scoring topic after a direct contract save.
type PublishScoreContractMessage struct {
	SessionId string `json:"session_id"`
}
