package workflow

import "context"

type StructuredIdea struct {
	Idea  string `json:"rephrased_idea"`
	Title string `json:"title"`
}

// IdeaStructurer rephrases a free-text idea and proposes a title.
type IdeaStructurer interface {
	Structure(ctx context.Context, idea string) (*StructuredIdea, error)
}

type CategorizeRequest struct {
	Title         string
	Idea          string
	RephrasedIdea string
	Department    string
}

type Categorization struct {
	DocumentType        string
	FormattingGuidance  string
	RecommendedSections []string
}

// Categorizer classifies an idea into a document type and recommends section headings.
type Categorizer interface {
	Categorize(ctx context.Context, req CategorizeRequest) (*Categorization, error)
}

type QuestionContext struct {
	Section      Section
	Idea         string
	CurrentDraft string
	History      []ConversationEntry
}

// Questioner proposes the next clarifying question for a section.
// A nil question with a nil error means the section needs no further input.
type Questioner interface {
	GenerateQuestion(ctx context.Context, qc QuestionContext) (*Question, error)
}

type DraftContext struct {
	Section            Section
	CurrentDraft       string
	Subsection         Subsection
	Question           string
	Answer             string
	DocumentType       string
	FormattingGuidance string
}

// QAPair renders the question and answer the way draft prompts expect them.
func (dc DraftContext) QAPair() string {
	return "Q: " + dc.Question + "\nA: " + dc.Answer
}

// Drafter folds one answered question into the running section draft.
type Drafter interface {
	GenerateDraft(ctx context.Context, dc DraftContext) (*SectionDraft, error)
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type ReviewRequest struct {
	Title         string
	OriginalIdea  string
	RephrasedIdea string
	Drafts        map[string]string
	SectionOrder  []string
	DocumentType  string
	Department    string
}

type Review struct {
	Score        int       `json:"score"`
	Feedback     string    `json:"feedback"`
	Strengths    []string  `json:"strengths"`
	Improvements []string  `json:"improvements"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

// FallbackReview is used whenever no real evaluation could be obtained.
func FallbackReview() *Review {
	return &Review{
		Score:        50,
		Feedback:     "Unable to generate AI legal evaluation at this time. Please review the contract manually.",
		Strengths:    []string{"Contract submitted successfully"},
		Improvements: []string{"AI legal evaluation service temporarily unavailable"},
		RiskLevel:    RiskMedium,
	}
}

// Reviewer scores an assembled document.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (*Review, error)
}

type RevisionRequest struct {
	Document string
	Review   Review
}

// Reviser rewrites a full document using reviewer feedback.
type Reviser interface {
	Revise(ctx context.Context, req RevisionRequest) (string, error)
}
