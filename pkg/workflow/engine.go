package workflow

import (
	"context"
	"fmt"
	"strings"

	"idea-contract-be/internal/pkg/logger"
)

const (
	emptyIdeaPlaceholder = "Please provide a contract idea or description"
	emptyIdeaTitle       = "Contract Document"
)

type Options struct {
	// MaxQuestionAttempts bounds rejected questions per section before the section is force-completed.
	MaxQuestionAttempts int
	PassScore           int
	// MaxReviewIterations is the iteration count at which final assembly stops revising.
	MaxReviewIterations int
	Department          string
	// MaxSteps bounds node executions in a single Run call.
	MaxSteps int
	// Observer, when set, sees the state after every node execution.
	Observer func(node Node, st *State)
}

func DefaultOptions() Options {
	return Options{
		MaxQuestionAttempts: 5,
		PassScore:           80,
		MaxReviewIterations: 2,
		Department:          DefaultDepartment,
		MaxSteps:            200,
	}
}

type Dependencies struct {
	Structurer IdeaStructurer
	Catalog    *CatalogBuilder
	Questioner Questioner
	Drafter    Drafter
	Reviewer   Reviewer
	Reviser    Reviser
}

// Engine advances a drafting session until it suspends for input or finishes.
// Engine holds no session data and is safe for concurrent use across sessions.
type Engine struct {
	deps   Dependencies
	opts   Options
	logger logger.ILogger
}

func NewEngine(deps Dependencies, opts Options, log logger.ILogger) *Engine {
	def := DefaultOptions()
	if opts.MaxQuestionAttempts <= 0 {
		opts.MaxQuestionAttempts = def.MaxQuestionAttempts
	}
	if opts.PassScore <= 0 {
		opts.PassScore = def.PassScore
	}
	if opts.MaxReviewIterations <= 0 {
		opts.MaxReviewIterations = def.MaxReviewIterations
	}
	if opts.Department == "" {
		opts.Department = def.Department
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = def.MaxSteps
	}
	if deps.Catalog == nil {
		deps.Catalog = NewCatalogBuilder(nil, nil, opts.Department, log)
	}
	return &Engine{deps: deps, opts: opts, logger: log}
}

// Start seeds a fresh state with the idea and runs it to the first suspension.
func (e *Engine) Start(ctx context.Context, st *State, idea string) (*Event, error) {
	*st = *NewState()
	st.OriginalIdea = idea
	st.Idea = idea
	return e.Run(ctx, st, nil)
}

// Run resumes st with the pending value (nil when the session is not suspended)
// and executes nodes until the next suspension point or the terminal event.
func (e *Engine) Run(ctx context.Context, st *State, resume *Resume) (*Event, error) {
	if st.Node == NodeTerminal {
		return nil, ErrSessionFinished
	}

	if st.Awaiting != AwaitingNone {
		if resume == nil {
			return nil, ErrResumeRequired
		}
		if err := e.applyResume(ctx, st, resume); err != nil {
			return nil, err
		}
		e.observe(st)
	} else if resume != nil {
		return nil, ErrUnexpectedResume
	}

	for steps := 0; steps < e.opts.MaxSteps; steps++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := e.step(ctx, st)
		if err != nil {
			return nil, err
		}
		e.observe(st)
		if ev != nil {
			return ev, nil
		}
	}
	return nil, ErrStepLimit
}

func (e *Engine) observe(st *State) {
	if e.opts.Observer != nil {
		e.opts.Observer(st.Node, st)
	}
}

func (e *Engine) step(ctx context.Context, st *State) (*Event, error) {
	switch st.Node {
	case NodeStructureIdea:
		e.structureIdea(ctx, st)
		return nil, nil
	case NodeReviewStructure:
		st.Awaiting = AwaitingStructureReview
		return &Event{
			Type:     EventInterrupt,
			Action:   ActionStructureReview,
			Idea:     st.Idea,
			Title:    st.Title,
			Sections: cloneSections(st.Sections),
		}, nil
	case NodeInitializeState:
		e.initializeState(st)
		return nil, nil
	case NodeSelectSection:
		return nil, e.selectSection(st)
	case NodeGenerateQuestion:
		e.generateQuestion(ctx, st)
		return nil, nil
	case NodeCollectAnswer:
		if st.PendingQuestion == nil {
			st.Node = NodeReviewSectionDraft
			return nil, nil
		}
		st.Awaiting = AwaitingAnswer
		q := st.PendingQuestion
		return &Event{
			Type:       EventInterrupt,
			Action:     ActionQuestion,
			Section:    q.Section,
			Subsection: q.Subsection,
			Question:   q.Question,
			Reason:     q.Reason,
			Draft:      currentDraftOr(st, NoDraftContent),
			Idea:       st.Idea,
			Title:      st.Title,
			Sections:   cloneSections(st.Sections),
		}, nil
	case NodeReviewSectionDraft:
		st.Awaiting = AwaitingSectionReview
		return &Event{
			Type:    EventInterrupt,
			Action:  ActionSectionReview,
			Section: st.CurrentSection,
			Draft:   currentDraftOr(st, NoDraftContent),
			Idea:    st.Idea,
			Title:   st.Title,
		}, nil
	case NodeFinalAssembly:
		e.finalAssembly(ctx, st)
		return nil, nil
	case NodeTerminal:
		return &Event{
			Type:       EventEnd,
			Action:     ActionGenerate,
			FinalState: st.Clone(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown workflow node %q", st.Node)
	}
}

func (e *Engine) applyResume(ctx context.Context, st *State, r *Resume) error {
	switch st.Awaiting {
	case AwaitingStructureReview:
		if r.Structure == nil {
			return ErrInvalidResume
		}
		st.Idea = r.Structure.Idea
		st.Title = r.Structure.Title
		st.Sections = e.uniqueSections(r.Structure.Sections)
		st.Awaiting = AwaitingNone
		st.Node = NodeInitializeState
	case AwaitingAnswer:
		if r.Structure != nil {
			return ErrInvalidResume
		}
		st.Awaiting = AwaitingNone
		e.collectAnswer(ctx, st, strings.TrimSpace(r.Text))
	case AwaitingSectionReview:
		if r.Structure != nil {
			return ErrInvalidResume
		}
		st.Awaiting = AwaitingNone
		e.commitSectionDraft(st, r.Text)
	default:
		return fmt.Errorf("unknown suspension %q", st.Awaiting)
	}
	return nil
}

// uniqueSections keeps the first section for each heading. Progress and
// drafts are keyed by heading, so a repeated heading could never complete.
func (e *Engine) uniqueSections(in []Section) []Section {
	out := cloneSections(in)
	if out == nil {
		return nil
	}
	seen := make(map[string]bool, len(out))
	kept := out[:0]
	for _, sec := range out {
		heading := strings.TrimSpace(sec.Heading)
		if heading == "" || seen[heading] {
			e.logger.Warn("Workflow", "Dropping repeated or blank section heading", map[string]interface{}{"heading": sec.Heading})
			continue
		}
		seen[heading] = true
		sec.Heading = heading
		kept = append(kept, sec)
	}
	return kept
}

func (e *Engine) structureIdea(ctx context.Context, st *State) {
	original := st.Idea
	if strings.TrimSpace(original) == "" {
		st.Idea = emptyIdeaPlaceholder
		st.Title = emptyIdeaTitle
	} else if e.deps.Structurer != nil {
		res, err := e.deps.Structurer.Structure(ctx, original)
		switch {
		case err != nil:
			e.logger.Warn("Workflow", "Idea structuring failed, keeping original idea", map[string]interface{}{"error": err.Error()})
			st.Title = ""
		case res == nil:
			st.Title = ""
		default:
			if strings.TrimSpace(res.Idea) != "" {
				st.Idea = res.Idea
			}
			st.Title = res.Title
		}
	}

	cat := e.deps.Catalog.Build(ctx, original, st.Idea, st.Title)
	st.DocumentType = cat.DocumentType
	st.FormattingGuidance = cat.FormattingGuidance
	st.Sections = cat.Sections
	st.Node = NodeReviewStructure

	e.logger.Info("Workflow", "Idea structured", map[string]interface{}{
		"title":         st.Title,
		"document_type": st.DocumentType,
		"sections":      len(st.Sections),
	})
}

func (e *Engine) initializeState(st *State) {
	st.Progress = make(map[string]Status, len(st.Sections))
	st.AllDrafts = make(map[string]string, len(st.Sections))
	for _, sec := range st.Sections {
		st.Progress[sec.Heading] = StatusNotStarted
		st.AllDrafts[sec.Heading] = ""
	}
	st.CurrentSectionDraft = nil
	st.PendingQuestion = nil
	st.QuestionAttempts = 0

	if len(st.Sections) == 0 {
		st.CurrentSection = ""
		st.CurrentSubsections = nil
		st.Node = NodeFinalAssembly
		return
	}
	first := st.Sections[0]
	st.CurrentSection = first.Heading
	st.CurrentSubsections = append([]Subsection(nil), first.Subsections...)
	st.Node = NodeSelectSection
}

func (e *Engine) selectSection(st *State) error {
	if st.CurrentSection == "" {
		st.Node = NodeFinalAssembly
		return nil
	}

	idx := st.sectionIndex(st.CurrentSection)
	if idx < 0 {
		return fmt.Errorf("current section %q is not in the catalog", st.CurrentSection)
	}

	status := st.Progress[st.CurrentSection]
	switch {
	case idx == len(st.Sections)-1 && status == StatusComplete:
		st.CurrentSection = ""
		st.CurrentSubsections = nil
		st.CurrentSectionDraft = nil
		st.PendingQuestion = nil
		st.Node = NodeFinalAssembly
	case status == StatusComplete:
		next := st.Sections[idx+1]
		st.CurrentSection = next.Heading
		st.CurrentSubsections = append([]Subsection(nil), next.Subsections...)
		st.CurrentSectionDraft = nil
		st.PendingQuestion = nil
		st.QuestionAttempts = 0
		st.Progress[next.Heading] = StatusInProgress
		st.Node = NodeGenerateQuestion
	case status == StatusNotStarted || status == "":
		st.Progress[st.CurrentSection] = StatusInProgress
		st.CurrentSectionDraft = nil
		st.PendingQuestion = nil
		st.QuestionAttempts = 0
		st.Node = NodeGenerateQuestion
	default:
		st.Node = NodeGenerateQuestion
	}

	e.logger.Debug("Workflow", "Section selected", map[string]interface{}{
		"section": st.CurrentSection,
		"next":    st.Node,
	})
	return nil
}

func (e *Engine) generateQuestion(ctx context.Context, st *State) {
	if st.QuestionAttempts >= e.opts.MaxQuestionAttempts {
		e.logger.Warn("Workflow", "Question retry budget exhausted, completing section", map[string]interface{}{
			"section":  st.CurrentSection,
			"attempts": st.QuestionAttempts,
		})
		st.PendingQuestion = nil
		st.Node = NodeReviewSectionDraft
		return
	}

	sec, _ := st.Section(st.CurrentSection)
	if e.deps.Questioner == nil {
		st.Node = NodeReviewSectionDraft
		return
	}

	q, err := e.deps.Questioner.GenerateQuestion(ctx, QuestionContext{
		Section:      sec,
		Idea:         st.Idea,
		CurrentDraft: currentDraftOr(st, NoDraftYet),
		History:      st.SectionHistory(st.CurrentSection),
	})
	if err != nil {
		e.logger.Warn("Workflow", "Question generation failed, treating section as complete", map[string]interface{}{
			"section": st.CurrentSection,
			"error":   err.Error(),
		})
		q = nil
	}
	if q == nil {
		st.PendingQuestion = nil
		st.Node = NodeReviewSectionDraft
		return
	}

	if reason, ok := e.rejectQuestion(st, sec, q); !ok {
		st.QuestionAttempts++
		e.logger.Info("Workflow", "Question rejected, regenerating", map[string]interface{}{
			"section":  st.CurrentSection,
			"reason":   reason,
			"question": q.Question,
			"attempts": st.QuestionAttempts,
		})
		return
	}

	st.PendingQuestion = q
	st.Node = NodeCollectAnswer
}

// rejectQuestion returns a reason and false when q must be regenerated.
func (e *Engine) rejectQuestion(st *State, sec Section, q *Question) (string, bool) {
	if q.Section != st.CurrentSection {
		return "section mismatch: " + q.Section, false
	}

	known := false
	for _, sub := range sec.Subsections {
		if sub.Heading == q.Subsection {
			known = true
			break
		}
	}
	if !known {
		return "unknown subsection: " + q.Subsection, false
	}

	if match, dup := FindSimilar(q.Question, st.PriorQuestions(q.Section, q.Subsection), DefaultSimilarityThreshold); dup {
		return "duplicate of: " + match, false
	}
	return "", true
}

func (e *Engine) collectAnswer(ctx context.Context, st *State, answer string) {
	q := st.PendingQuestion
	if q == nil {
		st.Node = NodeReviewSectionDraft
		return
	}

	st.ConversationHistory = append(st.ConversationHistory, ConversationEntry{
		Section:    q.Section,
		Subsection: q.Subsection,
		Question:   q.Question,
		Answer:     answer,
	})

	sec, _ := st.Section(st.CurrentSection)
	sub := Subsection{Heading: q.Subsection}
	for _, s := range sec.Subsections {
		if s.Heading == q.Subsection {
			sub = s
			break
		}
	}

	var draft *SectionDraft
	var err error
	if e.deps.Drafter != nil {
		draft, err = e.deps.Drafter.GenerateDraft(ctx, DraftContext{
			Section:            sec,
			CurrentDraft:       currentDraftOr(st, NoExistingDraft),
			Subsection:         sub,
			Question:           q.Question,
			Answer:             answer,
			DocumentType:       st.DocumentType,
			FormattingGuidance: st.FormattingGuidance,
		})
	} else {
		err = fmt.Errorf("no drafter configured")
	}

	st.PendingQuestion = nil
	st.Node = NodeReviewSectionDraft
	if err != nil || draft == nil {
		e.logger.Warn("Workflow", "Draft generation failed, answer discarded for this attempt", map[string]interface{}{
			"section": st.CurrentSection,
			"error":   fmt.Sprint(err),
		})
		return
	}
	if draft.Section == "" {
		draft.Section = st.CurrentSection
	}
	st.CurrentSectionDraft = draft
}

func (e *Engine) commitSectionDraft(st *State, text string) {
	if st.CurrentSectionDraft == nil {
		st.CurrentSectionDraft = &SectionDraft{Section: st.CurrentSection}
	}
	st.CurrentSectionDraft.Draft = text
	st.Progress[st.CurrentSection] = StatusComplete
	st.AllDrafts[st.CurrentSection] = text
	st.Node = NodeSelectSection

	e.logger.Info("Workflow", "Section completed", map[string]interface{}{"section": st.CurrentSection})
}

func (e *Engine) finalAssembly(ctx context.Context, st *State) {
	document := st.Document()

	review, err := e.review(ctx, st)
	if err != nil {
		e.logger.Warn("Workflow", "Document review failed, completing without revision", map[string]interface{}{"error": err.Error()})
		e.storeReview(st, FallbackReview())
		e.finish(st)
		return
	}
	e.storeReview(st, review)

	if review.Score >= e.opts.PassScore || st.ReviewIterationCount >= e.opts.MaxReviewIterations {
		e.finish(st)
		return
	}

	st.ReviewIterationCount++
	if e.deps.Reviser != nil {
		improved, err := e.deps.Reviser.Revise(ctx, RevisionRequest{Document: document, Review: *review})
		if err != nil {
			e.logger.Warn("Workflow", "Document revision failed", map[string]interface{}{"error": err.Error()})
		} else {
			st.ImprovedDocument = improved
		}
	}
	e.finish(st)
}

func (e *Engine) review(ctx context.Context, st *State) (rev *Review, err error) {
	if e.deps.Reviewer == nil {
		return nil, fmt.Errorf("no reviewer configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reviewer panic: %v", r)
		}
	}()

	drafts := make(map[string]string, len(st.AllDrafts))
	for k, v := range st.AllDrafts {
		drafts[k] = v
	}
	order := make([]string, 0, len(st.Sections))
	for _, sec := range st.Sections {
		order = append(order, sec.Heading)
	}
	rev, err = e.deps.Reviewer.Review(ctx, ReviewRequest{
		Title:         st.Title,
		OriginalIdea:  st.OriginalIdea,
		RephrasedIdea: st.Idea,
		Drafts:        drafts,
		SectionOrder:  order,
		DocumentType:  st.DocumentType,
		Department:    e.opts.Department,
	})
	if err == nil && rev == nil {
		err = fmt.Errorf("reviewer returned no result")
	}
	return rev, err
}

func (e *Engine) storeReview(st *State, r *Review) {
	st.ReviewScore = r.Score
	st.ReviewFeedback = r.Feedback
	st.ReviewStrengths = append([]string(nil), r.Strengths...)
	st.ReviewImprovements = append([]string(nil), r.Improvements...)
	st.ReviewRiskLevel = string(r.RiskLevel)
}

func (e *Engine) finish(st *State) {
	st.DocumentGenerated = true
	st.Node = NodeTerminal
	e.logger.Info("Workflow", "Document generated", map[string]interface{}{
		"title":      st.Title,
		"score":      st.ReviewScore,
		"iterations": st.ReviewIterationCount,
	})
}

func currentDraftOr(st *State, sentinel string) string {
	if st.CurrentSectionDraft == nil || strings.TrimSpace(st.CurrentSectionDraft.Draft) == "" {
		return sentinel
	}
	return st.CurrentSectionDraft.Draft
}
