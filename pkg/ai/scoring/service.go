package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/pkg/ai/prompt"
	"idea-contract-be/pkg/llm"
	"idea-contract-be/pkg/workflow"
)

// Service evaluates assembled contracts. It never returns an error: any
// provider or parse failure yields the fallback review.
type Service struct {
	provider llm.LLMProvider
	model    string
	logger   logger.ILogger
}

var _ workflow.Reviewer = (*Service)(nil)

// NewService accepts a nil provider, in which case every call returns the fallback review.
func NewService(provider llm.LLMProvider, model string, log logger.ILogger) *Service {
	return &Service{provider: provider, model: model, logger: log}
}

// score accepts integers, fractions and numeric strings, rounded to the nearest integer.
type score int

func (sc *score) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(unquoted), "%"))
	}
	f, err := json.Number(text).Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("score %s is not a number", string(data))
	}
	*sc = score(math.Round(f))
	return nil
}

type scoreResponse struct {
	Score        score    `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	RiskLevel    string   `json:"risk_level"`
}

func (s *Service) Review(ctx context.Context, req workflow.ReviewRequest) (*workflow.Review, error) {
	if s.provider == nil {
		s.logger.Warn("ScoringService", "No scoring provider configured, using fallback score", nil)
		return workflow.FallbackReview(), nil
	}

	title := req.Title
	if title == "" {
		title = "Untitled Contract"
	}
	department := req.Department
	if department == "" {
		department = workflow.DefaultDepartment
	}
	content := prompt.DocumentContent(req.OriginalIdea, req.RephrasedIdea, req.Drafts, req.SectionOrder)

	opts := []llm.Option{llm.WithJSONMode(), llm.WithTemperature(0.3)}
	if s.model != "" {
		opts = append(opts, llm.WithModel(s.model))
	}

	raw, err := s.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: prompt.ReviewerSystem},
		{Role: "user", Content: prompt.Scoring(title, department, content)},
	}, opts...)
	if err != nil {
		s.logger.Error("ScoringService", "Scoring request failed", map[string]interface{}{"error": err.Error(), "title": title})
		return workflow.FallbackReview(), nil
	}

	var res scoreResponse
	if err := llm.ParseJSON(raw, &res); err != nil {
		s.logger.Error("ScoringService", "Scoring response malformed", map[string]interface{}{"error": err.Error(), "title": title})
		return workflow.FallbackReview(), nil
	}

	review := &workflow.Review{
		Score:        clamp(int(res.Score), 0, 100),
		Feedback:     strings.TrimSpace(res.Feedback),
		Strengths:    res.Strengths,
		Improvements: res.Improvements,
		RiskLevel:    NormalizeRisk(res.RiskLevel),
	}
	s.logger.Info("ScoringService", "Contract scored", map[string]interface{}{
		"title": title,
		"score": review.Score,
		"risk":  review.RiskLevel,
	})
	return review, nil
}

// NormalizeRisk maps free-form risk labels onto Low, Medium or High.
func NormalizeRisk(level string) workflow.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "low":
		return workflow.RiskLow
	case "high":
		return workflow.RiskHigh
	default:
		return workflow.RiskMedium
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
