package categorization

import (
	"context"
	"fmt"
	"strings"

	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/pkg/ai/prompt"
	"idea-contract-be/pkg/llm"
	"idea-contract-be/pkg/workflow"
)

// Result is the full categorization of a contract.
type Result struct {
	PrimaryCategory           string   `json:"primary_category"`
	SecondaryCategory         string   `json:"secondary_category"`
	Reasoning                 string   `json:"reasoning"`
	ConfidenceScore           int      `json:"confidence_score"`
	KeyThemes                 []string `json:"key_themes"`
	RecommendedSections       []string `json:"recommended_sections"`
	LegalFormattingGuidelines string   `json:"legal_formatting_guidelines"`
}

// Fallback is the categorization used when the analyst is unavailable.
func Fallback() *Result {
	return &Result{
		PrimaryCategory:           "Commercial_Contracts",
		SecondaryCategory:         "Service_Agreements",
		Reasoning:                 "Default categorization applied - AI categorization unavailable",
		ConfidenceScore:           50,
		KeyThemes:                 []string{"General legal agreement"},
		RecommendedSections:       []string{"Parties and Recitals", "Definitions", "Services and Deliverables", "Payment Terms", "Term and Termination"},
		LegalFormattingGuidelines: workflow.DefaultFormattingGuidance,
	}
}

type Service struct {
	provider llm.LLMProvider
	model    string
	logger   logger.ILogger
}

var _ workflow.Categorizer = (*Service)(nil)

func NewService(provider llm.LLMProvider, model string, log logger.ILogger) *Service {
	return &Service{provider: provider, model: model, logger: log}
}

// Analyze categorizes the given contract content.
func (s *Service) Analyze(ctx context.Context, title, department, content string) (*Result, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("categorization provider not configured")
	}
	if department == "" {
		department = workflow.DefaultDepartment
	}

	opts := []llm.Option{llm.WithJSONMode(), llm.WithTemperature(0.3)}
	if s.model != "" {
		opts = append(opts, llm.WithModel(s.model))
	}
	raw, err := s.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: prompt.AnalystSystem},
		{Role: "user", Content: prompt.Categorization(title, department, content)},
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("categorize contract: %w", err)
	}

	var res Result
	if err := llm.ParseJSON(raw, &res); err != nil {
		return nil, err
	}
	res.PrimaryCategory = strings.TrimSpace(res.PrimaryCategory)
	if res.PrimaryCategory == "" {
		return nil, &llm.MalformedResponseError{Raw: raw, Err: fmt.Errorf("missing primary category")}
	}
	return &res, nil
}

// Categorize implements workflow.Categorizer for the drafting engine.
func (s *Service) Categorize(ctx context.Context, req workflow.CategorizeRequest) (*workflow.Categorization, error) {
	content := prompt.DocumentContent(req.Idea, req.RephrasedIdea, nil, nil)
	res, err := s.Analyze(ctx, req.Title, req.Department, content)
	if err != nil {
		return nil, err
	}
	return &workflow.Categorization{
		DocumentType:        res.PrimaryCategory,
		FormattingGuidance:  res.LegalFormattingGuidelines,
		RecommendedSections: res.RecommendedSections,
	}, nil
}

// CategorizeOrFallback never fails. Errors are logged and the default categorization is returned.
func (s *Service) CategorizeOrFallback(ctx context.Context, title, department, content string) *Result {
	res, err := s.Analyze(ctx, title, department, content)
	if err != nil {
		s.logger.Warn("CategorizationService", "Categorization failed, using default", map[string]interface{}{
			"title": title,
			"error": err.Error(),
		})
		return Fallback()
	}
	return res
}
