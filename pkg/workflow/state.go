package workflow

import "strings"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// Node is the position of a session inside the drafting state machine.
type Node string

const (
	NodeStructureIdea      Node = "structure_idea"
	NodeReviewStructure    Node = "review_structure"
	NodeInitializeState    Node = "initialize_state"
	NodeSelectSection      Node = "select_section"
	NodeGenerateQuestion   Node = "generate_question"
	NodeCollectAnswer      Node = "collect_answer"
	NodeReviewSectionDraft Node = "review_section_draft"
	NodeFinalAssembly      Node = "final_assembly"
	NodeTerminal           Node = "terminal"
)

// Awaiting tells which input a suspended session needs before it can continue.
type Awaiting string

const (
	AwaitingNone            Awaiting = ""
	AwaitingStructureReview Awaiting = "structure_review"
	AwaitingAnswer          Awaiting = "question_answer"
	AwaitingSectionReview   Awaiting = "section_review"
)

type Subsection struct {
	Heading    string `json:"heading" yaml:"heading"`
	Definition string `json:"definition" yaml:"definition"`
}

type Section struct {
	Heading     string       `json:"heading" yaml:"heading"`
	Purpose     string       `json:"purpose" yaml:"purpose"`
	Subsections []Subsection `json:"subsections" yaml:"subsections"`
}

type ConversationEntry struct {
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

type SectionDraft struct {
	Section string `json:"section"`
	Draft   string `json:"draft"`
}

type Question struct {
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
	Question   string `json:"question"`
	Reason     string `json:"reason"`
}

// State is the whole progress record of one drafting session.
// CurrentSection is empty once every section is complete.
type State struct {
	OriginalIdea       string    `json:"original_idea"`
	Idea               string    `json:"idea"`
	Title              string    `json:"title"`
	DocumentType       string    `json:"document_type"`
	FormattingGuidance string    `json:"formatting_guidance"`
	Sections           []Section `json:"sections"`

	CurrentSection      string              `json:"current_section,omitempty"`
	CurrentSubsections  []Subsection        `json:"current_subsections"`
	CurrentSectionDraft *SectionDraft       `json:"current_section_draft,omitempty"`
	ConversationHistory []ConversationEntry `json:"conversation_history"`
	PendingQuestion     *Question           `json:"pending_question,omitempty"`
	QuestionAttempts    int                 `json:"question_attempts"`

	Progress  map[string]Status `json:"progress"`
	AllDrafts map[string]string `json:"all_drafts"`

	DocumentGenerated    bool     `json:"document_generated"`
	ReviewIterationCount int      `json:"review_iteration_count"`
	ReviewScore          int      `json:"review_score"`
	ReviewFeedback       string   `json:"review_feedback"`
	ReviewStrengths      []string `json:"review_strengths"`
	ReviewImprovements   []string `json:"review_improvements"`
	ReviewRiskLevel      string   `json:"review_risk_level"`
	ImprovedDocument     string   `json:"improved_document,omitempty"`

	Node     Node     `json:"node"`
	Awaiting Awaiting `json:"awaiting,omitempty"`
}

// NewState returns an empty session positioned before idea structuring.
func NewState() *State {
	return &State{
		Progress:  make(map[string]Status),
		AllDrafts: make(map[string]string),
		Node:      NodeStructureIdea,
	}
}

func (s *State) sectionIndex(heading string) int {
	for i, sec := range s.Sections {
		if sec.Heading == heading {
			return i
		}
	}
	return -1
}

// Section looks up a catalog section by heading.
func (s *State) Section(heading string) (Section, bool) {
	if i := s.sectionIndex(heading); i >= 0 {
		return s.Sections[i], true
	}
	return Section{}, false
}

// SectionHistory returns the conversation entries recorded for one section, in order.
func (s *State) SectionHistory(section string) []ConversationEntry {
	var out []ConversationEntry
	for _, e := range s.ConversationHistory {
		if e.Section == section {
			out = append(out, e)
		}
	}
	return out
}

// PriorQuestions returns the questions already asked for a section and subsection pair.
func (s *State) PriorQuestions(section, subsection string) []string {
	var out []string
	for _, e := range s.ConversationHistory {
		if e.Section == section && e.Subsection == subsection {
			out = append(out, e.Question)
		}
	}
	return out
}

// InProgressCount returns how many sections are currently marked in progress.
func (s *State) InProgressCount() int {
	n := 0
	for _, st := range s.Progress {
		if st == StatusInProgress {
			n++
		}
	}
	return n
}

// QuestionsAsked counts answered questions across the session.
func (s *State) QuestionsAsked() int {
	return len(s.ConversationHistory)
}

// Document renders the title and every non-blank section draft in catalog order.
func (s *State) Document() string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(s.Title)
	b.WriteString("\n\n")
	for _, sec := range s.Sections {
		draft := s.AllDrafts[sec.Heading]
		if strings.TrimSpace(draft) == "" {
			continue
		}
		b.WriteString("## ")
		b.WriteString(sec.Heading)
		b.WriteString("\n")
		b.WriteString(draft)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Clone returns a deep copy so stored sessions never alias a running one.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Sections = cloneSections(s.Sections)
	c.CurrentSubsections = append([]Subsection(nil), s.CurrentSubsections...)
	if s.CurrentSectionDraft != nil {
		d := *s.CurrentSectionDraft
		c.CurrentSectionDraft = &d
	}
	c.ConversationHistory = append([]ConversationEntry(nil), s.ConversationHistory...)
	if s.PendingQuestion != nil {
		q := *s.PendingQuestion
		c.PendingQuestion = &q
	}
	c.Progress = make(map[string]Status, len(s.Progress))
	for k, v := range s.Progress {
		c.Progress[k] = v
	}
	c.AllDrafts = make(map[string]string, len(s.AllDrafts))
	for k, v := range s.AllDrafts {
		c.AllDrafts[k] = v
	}
	c.ReviewStrengths = append([]string(nil), s.ReviewStrengths...)
	c.ReviewImprovements = append([]string(nil), s.ReviewImprovements...)
	return &c
}

func cloneSections(in []Section) []Section {
	if in == nil {
		return nil
	}
	out := make([]Section, len(in))
	for i, sec := range in {
		out[i] = Section{
			Heading:     sec.Heading,
			Purpose:     sec.Purpose,
			Subsections: append([]Subsection(nil), sec.Subsections...),
		}
	}
	return out
}
