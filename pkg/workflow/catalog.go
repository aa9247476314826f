package workflow

import (
	"context"
	"fmt"
	"os"
	"strings"

	"idea-contract-be/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDocumentType       = "Commercial_Contracts"
	DefaultFormattingGuidance = "Use standard legal contract format with formal language and defined terms."
	DefaultDepartment         = "Legal"
)

var defaultSections = []Section{
	{
		Heading: "Contract Overview",
		Purpose: "Define the basic structure and purpose of the contract",
		Subsections: []Subsection{
			{Heading: "Contract Type", Definition: "What type of contract is being created (lease, service, employment, etc.)?"},
			{Heading: "Parties Involved", Definition: "Who are the contracting parties?"},
			{Heading: "Contract Purpose", Definition: "What is the main objective of this contract?"},
			{Heading: "Duration", Definition: "What is the term or duration of the contract?"},
		},
	},
	{
		Heading: "Terms and Conditions",
		Purpose: "Define the specific terms, obligations, and conditions",
		Subsections: []Subsection{
			{Heading: "Key Obligations", Definition: "What are the main responsibilities of each party?"},
			{Heading: "Payment Terms", Definition: "What are the payment arrangements and schedules?"},
			{Heading: "Termination Clauses", Definition: "Under what conditions can the contract be terminated?"},
			{Heading: "Dispute Resolution", Definition: "How will disputes be resolved?"},
		},
	},
	{
		Heading: "Legal Compliance",
		Purpose: "Ensure legal requirements and compliance",
		Subsections: []Subsection{
			{Heading: "Governing Law", Definition: "Which jurisdiction's laws govern this contract?"},
			{Heading: "Regulatory Requirements", Definition: "What specific regulations must be complied with?"},
			{Heading: "Liability and Indemnification", Definition: "What are the liability limitations and indemnification terms?"},
		},
	},
}

// DefaultSections returns a fresh copy of the built-in three section catalog.
func DefaultSections() []Section {
	return cloneSections(defaultSections)
}

type Catalog struct {
	DocumentType       string
	FormattingGuidance string
	Sections           []Section
}

type catalogFile struct {
	Sections []Section `yaml:"sections"`
}

// LoadCatalogFile reads a YAML section catalog that replaces the built-in defaults.
func LoadCatalogFile(path string) ([]Section, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if err := validateSections(f.Sections); err != nil {
		return nil, err
	}
	return f.Sections, nil
}

func validateSections(sections []Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("catalog has no sections")
	}
	seen := make(map[string]bool, len(sections))
	for i, sec := range sections {
		h := strings.TrimSpace(sec.Heading)
		if h == "" {
			return fmt.Errorf("section %d has an empty heading", i)
		}
		if seen[h] {
			return fmt.Errorf("duplicate section heading %q", h)
		}
		seen[h] = true
		if len(sec.Subsections) == 0 {
			return fmt.Errorf("section %q has no subsections", h)
		}
	}
	return nil
}

// CatalogBuilder derives the section catalog for an idea. Build never fails.
type CatalogBuilder struct {
	categorizer Categorizer
	defaults    []Section
	department  string
	logger      logger.ILogger
}

// NewCatalogBuilder uses defaults when non-empty, otherwise the built-in catalog.
// A nil categorizer always yields the default catalog.
func NewCatalogBuilder(categorizer Categorizer, defaults []Section, department string, log logger.ILogger) *CatalogBuilder {
	if len(defaults) == 0 {
		defaults = defaultSections
	}
	if department == "" {
		department = DefaultDepartment
	}
	return &CatalogBuilder{
		categorizer: categorizer,
		defaults:    cloneSections(defaults),
		department:  department,
		logger:      log,
	}
}

func (b *CatalogBuilder) fallback() Catalog {
	return Catalog{
		DocumentType:       DefaultDocumentType,
		FormattingGuidance: DefaultFormattingGuidance,
		Sections:           cloneSections(b.defaults),
	}
}

func (b *CatalogBuilder) Build(ctx context.Context, idea, rephrased, title string) Catalog {
	if strings.TrimSpace(idea) == "" || b.categorizer == nil {
		return b.fallback()
	}

	cat, err := b.categorize(ctx, CategorizeRequest{
		Title:         title,
		Idea:          idea,
		RephrasedIdea: rephrased,
		Department:    b.department,
	})
	if err != nil || cat == nil {
		b.logger.Warn("CatalogBuilder", "Categorization failed, using default catalog", map[string]interface{}{
			"error": fmt.Sprint(err),
		})
		return b.fallback()
	}

	out := Catalog{
		DocumentType:       cat.DocumentType,
		FormattingGuidance: cat.FormattingGuidance,
	}
	if out.DocumentType == "" {
		out.DocumentType = DefaultDocumentType
	}
	if out.FormattingGuidance == "" {
		out.FormattingGuidance = DefaultFormattingGuidance
	}

	seen := make(map[string]bool)
	for _, name := range cat.RecommendedSections {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out.Sections = append(out.Sections, Section{
			Heading: name,
			Purpose: fmt.Sprintf("Standard %s section for %s", name, out.DocumentType),
			Subsections: []Subsection{
				{Heading: "Details", Definition: fmt.Sprintf("Provide specific details for %s", name)},
			},
		})
	}
	if len(out.Sections) == 0 {
		out.Sections = cloneSections(b.defaults)
	}

	b.logger.Info("CatalogBuilder", "Catalog built from categorization", map[string]interface{}{
		"document_type": out.DocumentType,
		"sections":      len(out.Sections),
	})
	return out
}

// categorize shields Build from a panicking collaborator.
func (b *CatalogBuilder) categorize(ctx context.Context, req CategorizeRequest) (cat *Categorization, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("categorizer panic: %v", r)
		}
	}()
	return b.categorizer.Categorize(ctx, req)
}
