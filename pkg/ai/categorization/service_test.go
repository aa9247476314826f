package categorization

import (
	"context"
	"errors"
	"testing"

	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/pkg/llm"
	"idea-contract-be/pkg/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedProvider struct {
	reply string
	err   error
}

func (p *cannedProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return p.reply, p.err
}

func (p *cannedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, nil, opts...)
}

const sample = `{"primary_category": "Real_Estate_Contracts", "secondary_category": "Commercial_Contracts",
"reasoning": "lease", "confidence_score": 90, "key_themes": ["rent"],
"recommended_sections": ["Parties", "Premises", "Rent"], "legal_formatting_guidelines": "Numbered clauses",}`

func TestService_Categorize(t *testing.T) {
	s := NewService(&cannedProvider{reply: sample}, "", logger.NewNopLogger())

	c, err := s.Categorize(context.Background(), workflow.CategorizeRequest{Title: "Lease", Idea: "office lease"})
	require.NoError(t, err)
	assert.Equal(t, "Real_Estate_Contracts", c.DocumentType)
	assert.Equal(t, "Numbered clauses", c.FormattingGuidance)
	assert.Equal(t, []string{"Parties", "Premises", "Rent"}, c.RecommendedSections)
}

func TestService_CategorizeErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.LLMProvider
	}{
		{"no provider", nil},
		{"provider error", &cannedProvider{err: errors.New("timeout")}},
		{"malformed", &cannedProvider{reply: "lease stuff"}},
		{"missing category", &cannedProvider{reply: `{"primary_category": " "}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.provider, "", logger.NewNopLogger())
			_, err := s.Categorize(context.Background(), workflow.CategorizeRequest{Title: "x"})
			assert.Error(t, err)

			assert.Equal(t, Fallback(), s.CategorizeOrFallback(context.Background(), "x", "", "content"))
		})
	}
}

func TestCategorizeOrFallback_Success(t *testing.T) {
	s := NewService(&cannedProvider{reply: sample}, "", logger.NewNopLogger())
	res := s.CategorizeOrFallback(context.Background(), "Lease", "Legal", "content")
	assert.Equal(t, 90, res.ConfidenceScore)
	assert.Equal(t, []string{"rent"}, res.KeyThemes)
}
