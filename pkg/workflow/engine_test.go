package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"idea-contract-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type structurerFunc func(ctx context.Context, idea string) (*StructuredIdea, error)

func (f structurerFunc) Structure(ctx context.Context, idea string) (*StructuredIdea, error) {
	return f(ctx, idea)
}

type questionerFunc func(ctx context.Context, qc QuestionContext) (*Question, error)

func (f questionerFunc) GenerateQuestion(ctx context.Context, qc QuestionContext) (*Question, error) {
	return f(ctx, qc)
}

type drafterFunc func(ctx context.Context, dc DraftContext) (*SectionDraft, error)

func (f drafterFunc) GenerateDraft(ctx context.Context, dc DraftContext) (*SectionDraft, error) {
	return f(ctx, dc)
}

type reviewerFunc func(ctx context.Context, req ReviewRequest) (*Review, error)

func (f reviewerFunc) Review(ctx context.Context, req ReviewRequest) (*Review, error) {
	return f(ctx, req)
}

type reviserFunc func(ctx context.Context, req RevisionRequest) (string, error)

func (f reviserFunc) Revise(ctx context.Context, req RevisionRequest) (string, error) {
	return f(ctx, req)
}

// firstSubsectionQuestioner asks one question about the first subsection of every section.
func firstSubsectionQuestioner(calls *int) Questioner {
	return questionerFunc(func(_ context.Context, qc QuestionContext) (*Question, error) {
		*calls++
		if len(qc.History) > 0 || len(qc.Section.Subsections) == 0 {
			return nil, nil
		}
		sub := qc.Section.Subsections[0]
		return &Question{
			Section:    qc.Section.Heading,
			Subsection: sub.Heading,
			Question:   "Please describe " + sub.Heading + " for " + qc.Section.Heading,
			Reason:     "needed",
		}, nil
	})
}

func echoDrafter() Drafter {
	return drafterFunc(func(_ context.Context, dc DraftContext) (*SectionDraft, error) {
		return &SectionDraft{Section: dc.Section.Heading, Draft: dc.Section.Heading + ": " + dc.Answer}, nil
	})
}

func fixedReviewer(score int, calls *[]ReviewRequest) Reviewer {
	return reviewerFunc(func(_ context.Context, req ReviewRequest) (*Review, error) {
		*calls = append(*calls, req)
		return &Review{Score: score, Feedback: "ok", Strengths: []string{"clear"}, Improvements: []string{"more detail"}, RiskLevel: RiskLow}, nil
	})
}

func failingCategorizer() Categorizer {
	return &stubCategorizer{err: errors.New("categorization unavailable")}
}

func newTestEngine(deps Dependencies, opts Options) *Engine {
	log := logger.NewNopLogger()
	if deps.Catalog == nil {
		deps.Catalog = NewCatalogBuilder(failingCategorizer(), nil, "", log)
	}
	return NewEngine(deps, opts, log)
}

func acceptStructure(ev *Event) *Resume {
	return &Resume{Structure: &StructureReview{Idea: ev.Idea, Title: ev.Title, Sections: ev.Sections}}
}

func TestEngine_LeaseScenario(t *testing.T) {
	ctx := context.Background()
	questions := 0
	var reviews []ReviewRequest

	e := newTestEngine(Dependencies{
		Structurer: structurerFunc(func(_ context.Context, idea string) (*StructuredIdea, error) {
			return &StructuredIdea{Idea: "Lease of office space", Title: "Office Space Lease Agreement"}, nil
		}),
		Questioner: firstSubsectionQuestioner(&questions),
		Drafter:    echoDrafter(),
		Reviewer:   fixedReviewer(90, &reviews),
	}, DefaultOptions())

	st := NewState()
	ev, err := e.Start(ctx, st, "lease agreement for office space")
	require.NoError(t, err)
	require.Equal(t, ActionStructureReview, ev.Action)
	assert.Equal(t, DefaultDocumentType, st.DocumentType)
	require.Len(t, ev.Sections, 3)
	assert.Equal(t, "Office Space Lease Agreement", ev.Title)

	ev, err = e.Run(ctx, st, acceptStructure(ev))
	require.NoError(t, err)

	answers := []string{"2 years", "$5000/month", "30 days notice"}
	for i, answer := range answers {
		require.Equal(t, ActionQuestion, ev.Action, "section %d", i)
		assert.Equal(t, st.Sections[i].Heading, ev.Section)

		ev, err = e.Run(ctx, st, &Resume{Text: "  " + answer + " "})
		require.NoError(t, err)
		require.Equal(t, ActionSectionReview, ev.Action)
		assert.Equal(t, st.Sections[i].Heading+": "+answer, ev.Draft)

		ev, err = e.Run(ctx, st, &Resume{Text: ev.Draft})
		require.NoError(t, err)
	}

	require.Equal(t, EventEnd, ev.Type)
	require.Equal(t, ActionGenerate, ev.Action)
	require.NotNil(t, ev.FinalState)

	assert.Len(t, st.AllDrafts, 3)
	for i, sec := range st.Sections {
		assert.Equal(t, sec.Heading+": "+answers[i], st.AllDrafts[sec.Heading])
		assert.Equal(t, StatusComplete, st.Progress[sec.Heading])
	}
	assert.Empty(t, st.CurrentSection)
	assert.True(t, st.DocumentGenerated)
	assert.Len(t, st.ConversationHistory, 3)
	assert.Equal(t, "2 years", st.ConversationHistory[0].Answer)

	require.Len(t, reviews, 1)
	assert.Equal(t, st.AllDrafts, reviews[0].Drafts)
	assert.Equal(t, "lease agreement for office space", reviews[0].OriginalIdea)
	assert.Equal(t, DefaultDocumentType, reviews[0].DocumentType)
	assert.Equal(t, "Legal", reviews[0].Department)
	assert.Equal(t, 90, st.ReviewScore)
	assert.Equal(t, 0, st.ReviewIterationCount)

	_, err = e.Run(ctx, st, nil)
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestEngine_ProgressInvariants(t *testing.T) {
	ctx := context.Background()
	questions := 0
	var reviews []ReviewRequest

	order := map[Status]int{StatusNotStarted: 0, StatusInProgress: 1, StatusComplete: 2}
	last := map[string]Status{}
	var violations []string

	opts := DefaultOptions()
	opts.Observer = func(node Node, st *State) {
		if n := st.InProgressCount(); n > 1 {
			violations = append(violations, fmt.Sprintf("%d sections in progress at %s", n, node))
		}
		for heading, status := range st.Progress {
			prev, seen := last[heading]
			if seen && order[status] < order[prev] {
				violations = append(violations, fmt.Sprintf("%s went %s -> %s", heading, prev, status))
			}
			if seen && order[status]-order[prev] > 1 {
				violations = append(violations, fmt.Sprintf("%s skipped %s -> %s", heading, prev, status))
			}
			last[heading] = status
		}
		// sections before the current one are complete, after it not started
		if idx := st.sectionIndex(st.CurrentSection); idx >= 0 && len(st.Progress) > 0 {
			for i, sec := range st.Sections {
				s := st.Progress[sec.Heading]
				if i < idx && s != StatusComplete {
					violations = append(violations, fmt.Sprintf("%s before current is %s", sec.Heading, s))
				}
				if i > idx && s != StatusNotStarted {
					violations = append(violations, fmt.Sprintf("%s after current is %s", sec.Heading, s))
				}
			}
		}
	}

	e := newTestEngine(Dependencies{
		Questioner: firstSubsectionQuestioner(&questions),
		Drafter:    echoDrafter(),
		Reviewer:   fixedReviewer(95, &reviews),
	}, opts)

	st := NewState()
	ev, err := e.Start(ctx, st, "consulting services")
	require.NoError(t, err)
	ev, err = e.Run(ctx, st, acceptStructure(ev))
	require.NoError(t, err)

	for ev.Type != EventEnd {
		switch ev.Action {
		case ActionQuestion:
			ev, err = e.Run(ctx, st, &Resume{Text: "answer"})
		case ActionSectionReview:
			ev, err = e.Run(ctx, st, &Resume{Text: ev.Draft})
		default:
			t.Fatalf("unexpected action %s", ev.Action)
		}
		require.NoError(t, err)
	}

	assert.Empty(t, violations)
}

func TestEngine_TerminalReachability(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d sections", n), func(t *testing.T) {
			ctx := context.Background()
			questions := 0
			var reviews []ReviewRequest
			completions := 0

			opts := DefaultOptions()
			opts.Observer = func(node Node, st *State) {
				if node == NodeSelectSection && st.Awaiting == AwaitingNone && st.CurrentSectionDraft != nil &&
					st.Progress[st.CurrentSection] == StatusComplete {
					completions++
				}
			}

			e := newTestEngine(Dependencies{
				Questioner: firstSubsectionQuestioner(&questions),
				Drafter:    echoDrafter(),
				Reviewer:   fixedReviewer(40, &reviews),
				Reviser: reviserFunc(func(_ context.Context, req RevisionRequest) (string, error) {
					return req.Document + "\n(revised)", nil
				}),
			}, opts)

			sections := make([]Section, n)
			for i := range sections {
				sections[i] = Section{
					Heading:     fmt.Sprintf("Section %d", i+1),
					Purpose:     "purpose",
					Subsections: []Subsection{{Heading: "Details", Definition: "details"}},
				}
			}

			st := NewState()
			ev, err := e.Start(ctx, st, "an idea")
			require.NoError(t, err)
			ev, err = e.Run(ctx, st, &Resume{Structure: &StructureReview{Idea: ev.Idea, Title: "T", Sections: sections}})
			require.NoError(t, err)

			for ev.Type != EventEnd {
				if ev.Action == ActionQuestion {
					ev, err = e.Run(ctx, st, &Resume{Text: "x"})
				} else {
					ev, err = e.Run(ctx, st, &Resume{Text: ev.Draft})
				}
				require.NoError(t, err)
			}

			assert.Equal(t, n, completions)
			assert.Empty(t, st.CurrentSection)
			assert.True(t, st.DocumentGenerated)
			assert.LessOrEqual(t, len(reviews), 3)
			assert.Equal(t, 1, st.ReviewIterationCount)
			assert.Contains(t, st.ImprovedDocument, "(revised)")
		})
	}
}

func TestEngine_StructureReviewReentry(t *testing.T) {
	ctx := context.Background()
	questions := 0
	var snapshot *State

	opts := DefaultOptions()
	opts.Observer = func(node Node, st *State) {
		if node == NodeInitializeState && snapshot == nil {
			snapshot = st.Clone()
		}
	}

	e := newTestEngine(Dependencies{Questioner: firstSubsectionQuestioner(&questions), Drafter: echoDrafter()}, opts)

	st := NewState()
	ev, err := e.Start(ctx, st, "software licence")
	require.NoError(t, err)
	before := st.Clone()

	_, err = e.Run(ctx, st, acceptStructure(ev))
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	before.Node = NodeInitializeState
	before.Awaiting = AwaitingNone
	assert.Equal(t, before, snapshot)
}

func TestEngine_DraftCommitUsesEditedText(t *testing.T) {
	ctx := context.Background()
	questions := 0
	e := newTestEngine(Dependencies{Questioner: firstSubsectionQuestioner(&questions), Drafter: echoDrafter()}, DefaultOptions())

	st := NewState()
	ev, err := e.Start(ctx, st, "nda")
	require.NoError(t, err)
	ev, err = e.Run(ctx, st, acceptStructure(ev))
	require.NoError(t, err)
	ev, err = e.Run(ctx, st, &Resume{Text: "two parties"})
	require.NoError(t, err)
	require.Equal(t, ActionSectionReview, ev.Action)

	section := ev.Section
	ev, err = e.Run(ctx, st, &Resume{Text: "Edited by reviewer"})
	require.NoError(t, err)

	assert.Equal(t, "Edited by reviewer", st.AllDrafts[section])
	assert.Equal(t, StatusComplete, st.Progress[section])
	assert.Equal(t, ActionQuestion, ev.Action)
	assert.Equal(t, st.Sections[1].Heading, ev.Section)
	assert.Equal(t, StatusInProgress, st.Progress[st.Sections[1].Heading])
}

func TestEngine_RetryBudgetForcesSectionReview(t *testing.T) {
	ctx := context.Background()
	calls := 0
	e := newTestEngine(Dependencies{
		Questioner: questionerFunc(func(_ context.Context, qc QuestionContext) (*Question, error) {
			calls++
			return &Question{Section: "Somewhere else", Subsection: "Details", Question: "?"}, nil
		}),
		Drafter: echoDrafter(),
	}, DefaultOptions())

	st := NewState()
	ev, err := e.Start(ctx, st, "idea")
	require.NoError(t, err)
	ev, err = e.Run(ctx, st, acceptStructure(ev))
	require.NoError(t, err)

	assert.Equal(t, ActionSectionReview, ev.Action)
	assert.Equal(t, NoDraftContent, ev.Draft)
	assert.Equal(t, 5, calls)
	assert.Equal(t, 5, st.QuestionAttempts)

	// the budget is per section
	ev, err = e.Run(ctx, st, &Resume{Text: ""})
	require.NoError(t, err)
	assert.Equal(t, ActionSectionReview, ev.Action)
	assert.Equal(t, 10, calls)
}

func seededState(history []ConversationEntry) *State {
	sections := []Section{{
		Heading: "Payment",
		Purpose: "Money",
		Subsections: []Subsection{
			{Heading: "Rent", Definition: "How much rent?"},
			{Heading: "Deposit", Definition: "How much deposit?"},
		},
	}}
	st := NewState()
	st.Sections = sections
	st.CurrentSection = "Payment"
	st.CurrentSubsections = sections[0].Subsections
	st.Progress = map[string]Status{"Payment": StatusInProgress}
	st.AllDrafts = map[string]string{"Payment": ""}
	st.ConversationHistory = history
	st.Node = NodeGenerateQuestion
	return st
}

func TestEngine_QuestionValidation(t *testing.T) {
	history := []ConversationEntry{{Section: "Payment", Subsection: "Rent", Question: "What is the monthly rent?", Answer: "$100"}}

	tests := []struct {
		name    string
		first   Question
		retries int
	}{
		{"duplicate question is regenerated", Question{Section: "Payment", Subsection: "Rent", Question: "What is the monthly rent"}, 1},
		{"unknown subsection is regenerated", Question{Section: "Payment", Subsection: "Tax", Question: "Who pays tax?"}, 1},
		{"wrong section is regenerated", Question{Section: "Parties", Subsection: "Rent", Question: "Who signs?"}, 1},
		{"valid question is accepted", Question{Section: "Payment", Subsection: "Deposit", Question: "How large is the deposit?"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			good := Question{Section: "Payment", Subsection: "Deposit", Question: "When is the deposit returned?"}
			e := newTestEngine(Dependencies{
				Questioner: questionerFunc(func(_ context.Context, qc QuestionContext) (*Question, error) {
					calls++
					assert.Len(t, qc.History, 1)
					assert.Equal(t, NoDraftYet, qc.CurrentDraft)
					if calls == 1 {
						q := tt.first
						return &q, nil
					}
					return &good, nil
				}),
			}, DefaultOptions())

			st := seededState(append([]ConversationEntry(nil), history...))
			ev, err := e.Run(context.Background(), st, nil)
			require.NoError(t, err)

			require.Equal(t, ActionQuestion, ev.Action)
			assert.Equal(t, tt.retries+1, calls)
			assert.Equal(t, tt.retries, st.QuestionAttempts)
			if tt.retries == 0 {
				assert.Equal(t, tt.first.Question, ev.Question)
			} else {
				assert.Equal(t, good.Question, ev.Question)
			}
			assert.Equal(t, AwaitingAnswer, st.Awaiting)
		})
	}
}

func TestEngine_FailSoftCollaborators(t *testing.T) {
	ctx := context.Background()

	t.Run("structuring failure keeps idea verbatim", func(t *testing.T) {
		e := newTestEngine(Dependencies{
			Structurer: structurerFunc(func(context.Context, string) (*StructuredIdea, error) {
				return nil, errors.New("llm down")
			}),
		}, DefaultOptions())

		st := NewState()
		ev, err := e.Start(ctx, st, "raw idea text")
		require.NoError(t, err)
		assert.Equal(t, "raw idea text", ev.Idea)
		assert.Equal(t, "", ev.Title)
		assert.Len(t, ev.Sections, 3)
	})

	t.Run("empty idea uses defaults without structuring", func(t *testing.T) {
		called := false
		e := newTestEngine(Dependencies{
			Structurer: structurerFunc(func(context.Context, string) (*StructuredIdea, error) {
				called = true
				return nil, nil
			}),
		}, DefaultOptions())

		st := NewState()
		ev, err := e.Start(ctx, st, "  ")
		require.NoError(t, err)
		assert.False(t, called)
		assert.Equal(t, "Contract Document", ev.Title)
		assert.Equal(t, DefaultDocumentType, st.DocumentType)
	})

	t.Run("question failure completes section", func(t *testing.T) {
		e := newTestEngine(Dependencies{
			Questioner: questionerFunc(func(context.Context, QuestionContext) (*Question, error) {
				return nil, errors.New("malformed")
			}),
		}, DefaultOptions())

		st := NewState()
		ev, err := e.Start(ctx, st, "idea")
		require.NoError(t, err)
		ev, err = e.Run(ctx, st, acceptStructure(ev))
		require.NoError(t, err)
		assert.Equal(t, ActionSectionReview, ev.Action)
		assert.Equal(t, 0, st.QuestionAttempts)
	})

	t.Run("draft failure keeps answer in history and clears question", func(t *testing.T) {
		questions := 0
		e := newTestEngine(Dependencies{
			Questioner: firstSubsectionQuestioner(&questions),
			Drafter: drafterFunc(func(context.Context, DraftContext) (*SectionDraft, error) {
				return nil, errors.New("timeout")
			}),
		}, DefaultOptions())

		st := NewState()
		ev, err := e.Start(ctx, st, "idea")
		require.NoError(t, err)
		ev, err = e.Run(ctx, st, acceptStructure(ev))
		require.NoError(t, err)
		ev, err = e.Run(ctx, st, &Resume{Text: "answer"})
		require.NoError(t, err)

		assert.Equal(t, ActionSectionReview, ev.Action)
		assert.Equal(t, NoDraftContent, ev.Draft)
		assert.Nil(t, st.PendingQuestion)
		assert.Len(t, st.ConversationHistory, 1)
	})

	t.Run("review failure falls back and completes", func(t *testing.T) {
		revised := false
		e := newTestEngine(Dependencies{
			Reviewer: reviewerFunc(func(context.Context, ReviewRequest) (*Review, error) {
				return nil, errors.New("scoring down")
			}),
			Reviser: reviserFunc(func(context.Context, RevisionRequest) (string, error) {
				revised = true
				return "", nil
			}),
		}, DefaultOptions())

		st := NewState()
		ev, err := e.Start(ctx, st, "idea")
		require.NoError(t, err)
		_, err = e.Run(ctx, st, &Resume{Structure: &StructureReview{Idea: "idea", Title: "T"}})
		require.NoError(t, err)

		assert.True(t, st.DocumentGenerated)
		assert.Equal(t, 50, st.ReviewScore)
		assert.Equal(t, "Medium", st.ReviewRiskLevel)
		assert.False(t, revised)
		_ = ev
	})

	t.Run("revision failure still completes", func(t *testing.T) {
		var reviews []ReviewRequest
		e := newTestEngine(Dependencies{
			Reviewer: fixedReviewer(10, &reviews),
			Reviser: reviserFunc(func(context.Context, RevisionRequest) (string, error) {
				return "", errors.New("revision down")
			}),
		}, DefaultOptions())

		st := NewState()
		_, err := e.Start(ctx, st, "idea")
		require.NoError(t, err)
		ev, err := e.Run(ctx, st, &Resume{Structure: &StructureReview{Idea: "idea", Title: "T"}})
		require.NoError(t, err)

		assert.Equal(t, EventEnd, ev.Type)
		assert.True(t, st.DocumentGenerated)
		assert.Equal(t, 1, st.ReviewIterationCount)
		assert.Empty(t, st.ImprovedDocument)
	})
}

func TestEngine_PassingScoreSkipsRevision(t *testing.T) {
	var reviews []ReviewRequest
	revised := false
	e := newTestEngine(Dependencies{
		Reviewer: fixedReviewer(80, &reviews),
		Reviser: reviserFunc(func(context.Context, RevisionRequest) (string, error) {
			revised = true
			return "", nil
		}),
	}, DefaultOptions())

	st := NewState()
	_, err := e.Start(context.Background(), st, "idea")
	require.NoError(t, err)
	ev, err := e.Run(context.Background(), st, &Resume{Structure: &StructureReview{Idea: "idea", Title: "T"}})
	require.NoError(t, err)

	assert.Equal(t, ActionGenerate, ev.Action)
	assert.False(t, revised)
	assert.Equal(t, 0, st.ReviewIterationCount)
	assert.Equal(t, []string{"clear"}, st.ReviewStrengths)
}

func TestEngine_ReviewIterationCap(t *testing.T) {
	var reviews []ReviewRequest
	revised := false
	e := newTestEngine(Dependencies{
		Reviewer: fixedReviewer(10, &reviews),
		Reviser: reviserFunc(func(context.Context, RevisionRequest) (string, error) {
			revised = true
			return "", nil
		}),
	}, DefaultOptions())

	st := NewState()
	st.Title = "T"
	st.Node = NodeFinalAssembly
	st.ReviewIterationCount = 2

	ev, err := e.Run(context.Background(), st, nil)
	require.NoError(t, err)
	assert.Equal(t, EventEnd, ev.Type)
	assert.False(t, revised)
	assert.Equal(t, 2, st.ReviewIterationCount)
}

func TestEngine_ResumeErrors(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(Dependencies{}, DefaultOptions())

	_, err := e.Run(ctx, NewState(), &Resume{Text: "unsolicited"})
	assert.ErrorIs(t, err, ErrUnexpectedResume)

	st := NewState()
	_, err = e.Start(ctx, st, "idea")
	require.NoError(t, err)

	_, err = e.Run(ctx, st, nil)
	assert.ErrorIs(t, err, ErrResumeRequired)

	_, err = e.Run(ctx, st, &Resume{Text: "not a structure"})
	assert.ErrorIs(t, err, ErrInvalidResume)
	assert.Equal(t, AwaitingStructureReview, st.Awaiting)
}

func TestEngine_StepLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSteps = 3
	opts.MaxQuestionAttempts = 1000
	e := newTestEngine(Dependencies{
		Questioner: questionerFunc(func(context.Context, QuestionContext) (*Question, error) {
			return &Question{Section: "nope"}, nil
		}),
	}, opts)

	st := seededState(nil)
	_, err := e.Run(context.Background(), st, nil)
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(Dependencies{}, DefaultOptions())
	_, err := e.Start(ctx, NewState(), "idea")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestState_Document(t *testing.T) {
	st := NewState()
	st.Title = "Lease"
	st.Sections = []Section{{Heading: "A"}, {Heading: "B"}, {Heading: "C"}}
	st.AllDrafts = map[string]string{"A": "alpha", "B": "  ", "C": "gamma"}

	assert.Equal(t, "# Lease\n\n## A\nalpha\n\n## C\ngamma\n\n", st.Document())
}

func TestEngine_InterruptPayloadsCarryContext(t *testing.T) {
	ctx := context.Background()
	questions := 0
	var reviews []ReviewRequest

	e := newTestEngine(Dependencies{
		Structurer: structurerFunc(func(_ context.Context, idea string) (*StructuredIdea, error) {
			return &StructuredIdea{Idea: "Lease of office space", Title: "Office Lease"}, nil
		}),
		Questioner: firstSubsectionQuestioner(&questions),
		Drafter:    echoDrafter(),
		Reviewer:   fixedReviewer(90, &reviews),
	}, DefaultOptions())

	st := NewState()
	ev, err := e.Start(ctx, st, "lease")
	require.NoError(t, err)
	ev, err = e.Run(ctx, st, acceptStructure(ev))
	require.NoError(t, err)

	require.Equal(t, ActionQuestion, ev.Action)
	assert.Equal(t, "Lease of office space", ev.Idea)
	assert.Equal(t, "Office Lease", ev.Title)
	assert.Equal(t, NoDraftContent, ev.Draft)
	assert.Equal(t, st.Sections, ev.Sections)

	ev.Sections[0].Heading = "mutated by caller"
	assert.NotEqual(t, "mutated by caller", st.Sections[0].Heading)

	ev, err = e.Run(ctx, st, &Resume{Text: "2 years"})
	require.NoError(t, err)
	require.Equal(t, ActionSectionReview, ev.Action)
	assert.Equal(t, "Lease of office space", ev.Idea)
	assert.Equal(t, "Office Lease", ev.Title)
}

func TestEngine_RepeatedHeadingsCollapsed(t *testing.T) {
	ctx := context.Background()
	questions := 0
	var reviews []ReviewRequest

	e := newTestEngine(Dependencies{
		Questioner: firstSubsectionQuestioner(&questions),
		Drafter:    echoDrafter(),
		Reviewer:   fixedReviewer(90, &reviews),
	}, DefaultOptions())

	sub := []Subsection{{Heading: "Details", Definition: "details"}}
	edited := []Section{
		{Heading: "A", Purpose: "first", Subsections: sub},
		{Heading: "B", Purpose: "second", Subsections: sub},
		{Heading: " A ", Purpose: "duplicate", Subsections: sub},
		{Heading: "  ", Purpose: "blank", Subsections: sub},
	}

	st := NewState()
	ev, err := e.Start(ctx, st, "an idea")
	require.NoError(t, err)
	ev, err = e.Run(ctx, st, &Resume{Structure: &StructureReview{Idea: "idea", Title: "T", Sections: edited}})
	require.NoError(t, err)

	require.Len(t, st.Sections, 2)
	assert.Equal(t, "first", st.Sections[0].Purpose)
	assert.Equal(t, "B", st.Sections[1].Heading)

	steps := 0
	for ev.Type != EventEnd {
		require.Less(t, steps, 10, "session did not terminate")
		steps++
		if ev.Action == ActionQuestion {
			ev, err = e.Run(ctx, st, &Resume{Text: "x"})
		} else {
			ev, err = e.Run(ctx, st, &Resume{Text: ev.Draft})
		}
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]Status{"A": StatusComplete, "B": StatusComplete}, st.Progress)
	assert.True(t, st.DocumentGenerated)
}
