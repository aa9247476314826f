package drafting

import (
	"context"
	"fmt"
	"strings"

	"idea-contract-be/pkg/ai/prompt"
	"idea-contract-be/pkg/llm"
	"idea-contract-be/pkg/workflow"
)

// Assistant backs idea structuring, question generation, section drafting and
// document revision with a single LLM provider.
type Assistant struct {
	provider llm.LLMProvider
}

var (
	_ workflow.IdeaStructurer = (*Assistant)(nil)
	_ workflow.Questioner     = (*Assistant)(nil)
	_ workflow.Drafter        = (*Assistant)(nil)
	_ workflow.Reviser        = (*Assistant)(nil)
)

func NewAssistant(provider llm.LLMProvider) *Assistant {
	return &Assistant{provider: provider}
}

func (a *Assistant) ask(ctx context.Context, system, user string, opts ...llm.Option) (string, error) {
	return a.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, opts...)
}

type structuringResponse struct {
	RephrasedIdea string `json:"rephrased_idea"`
	Title         string `json:"title_1"`
}

func (a *Assistant) Structure(ctx context.Context, idea string) (*workflow.StructuredIdea, error) {
	raw, err := a.ask(ctx, prompt.StructuringSystem, prompt.IdeaStructuring(idea), llm.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("structure idea: %w", err)
	}

	var res structuringResponse
	if err := llm.ParseJSON(raw, &res); err != nil {
		return nil, err
	}
	return &workflow.StructuredIdea{
		Idea:  strings.TrimSpace(res.RephrasedIdea),
		Title: strings.TrimSpace(res.Title),
	}, nil
}

type questionResponse struct {
	Question *workflow.Question `json:"question"`
}

func (a *Assistant) GenerateQuestion(ctx context.Context, qc workflow.QuestionContext) (*workflow.Question, error) {
	raw, err := a.ask(ctx, prompt.QuestionSystem, prompt.Question(qc), llm.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	var res questionResponse
	if err := llm.ParseJSON(raw, &res); err != nil {
		return nil, err
	}
	if res.Question == nil || strings.TrimSpace(res.Question.Question) == "" {
		return nil, nil
	}
	res.Question.Section = strings.TrimSpace(res.Question.Section)
	res.Question.Subsection = strings.TrimSpace(res.Question.Subsection)
	return res.Question, nil
}

func (a *Assistant) GenerateDraft(ctx context.Context, dc workflow.DraftContext) (*workflow.SectionDraft, error) {
	raw, err := a.ask(ctx, prompt.DraftSystem, prompt.Draft(dc), llm.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	var res workflow.SectionDraft
	if err := llm.ParseJSON(raw, &res); err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Draft) == "" {
		return nil, &llm.MalformedResponseError{Raw: raw, Err: fmt.Errorf("empty draft")}
	}
	if res.Section == "" {
		res.Section = dc.Section.Heading
	}
	return &res, nil
}

func (a *Assistant) Revise(ctx context.Context, req workflow.RevisionRequest) (string, error) {
	raw, err := a.ask(ctx, prompt.ReviserSystem, prompt.Revision(req), llm.WithMaxTokens(4000))
	if err != nil {
		return "", fmt.Errorf("revise document: %w", err)
	}
	improved := strings.TrimSpace(raw)
	if improved == "" {
		return "", &llm.MalformedResponseError{Raw: raw, Err: fmt.Errorf("empty revision")}
	}
	return improved, nil
}
