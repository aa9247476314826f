package workflow

import "errors"

type EventType string

const (
	EventInterrupt EventType = "interrupt"
	EventEnd       EventType = "end"
	EventError     EventType = "error"
)

type Action string

const (
	ActionStructureReview Action = "get_structure_review"
	ActionQuestion        Action = "get_question_response"
	ActionSectionReview   Action = "get_reviewed_section_draft"
	ActionGenerate        Action = "generate_document"
	ActionError           Action = "error"
)

const (
	NoDraftContent  = "No draft content available"
	NoDraftYet      = "No draft generated yet."
	NoHistoryYet    = "No conversation history yet."
	NoExistingDraft = "No existing draft"
)

// Event is what a Run call yields: a suspension payload or the terminal result.
type Event struct {
	Type   EventType `json:"type"`
	Action Action    `json:"action"`

	Idea     string    `json:"idea,omitempty"`
	Title    string    `json:"title,omitempty"`
	Sections []Section `json:"all_sections,omitempty"`

	Section    string `json:"section,omitempty"`
	Subsection string `json:"subsection,omitempty"`
	Question   string `json:"question,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Draft      string `json:"draft,omitempty"`

	FinalState *State `json:"final_state,omitempty"`
}

// StructureReview is the caller's accepted or edited structure.
type StructureReview struct {
	Idea     string
	Title    string
	Sections []Section
}

// Resume carries the value a suspended session asked for. Text is the answer
// or the reviewed section draft; Structure answers a structure review.
type Resume struct {
	Text      string
	Structure *StructureReview
}

var (
	ErrResumeRequired   = errors.New("session is waiting for input")
	ErrUnexpectedResume = errors.New("session is not waiting for input")
	ErrInvalidResume    = errors.New("resume value does not match the pending suspension")
	ErrStepLimit        = errors.New("workflow step limit exceeded")
	ErrSessionFinished  = errors.New("session already finished")
)

// ErrorEvent converts a failure into the terminal error event shown to callers.
func ErrorEvent(err error) *Event {
	return &Event{
		Type:     EventError,
		Action:   ActionError,
		Question: "An error occurred: " + err.Error(),
	}
}
