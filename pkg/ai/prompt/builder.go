package prompt

import (
	"fmt"
	"sort"
	"strings"

	"idea-contract-be/pkg/workflow"
)

// Categories lists the document types the categorizer may assign.
var Categories = []struct {
	Name        string
	Description string
}{
	{"Commercial_Contracts", "Sales agreements, purchase orders, distribution agreements, vendor contracts"},
	{"Employment_Contracts", "Employment agreements, contractor agreements, non-disclosure agreements, non-compete agreements"},
	{"Real_Estate_Contracts", "Lease agreements, property purchase agreements, rental contracts, land use agreements"},
	{"Service_Agreements", "Service contracts, consulting agreements, maintenance contracts, SLA agreements"},
	{"Partnership_Contracts", "Joint venture agreements, partnership agreements, collaboration agreements"},
	{"Intellectual_Property", "Licensing agreements, IP transfer agreements, trademark agreements, patent licenses"},
	{"Compliance_Regulatory", "Regulatory compliance agreements, government contracts, compliance documentation"},
	{"Financial_Contracts", "Loan agreements, financing contracts, investment agreements, payment terms"},
}

const (
	StructuringSystem = "You are an expert assistant that helps users clarify their contract ideas and generate specific, descriptive titles."
	QuestionSystem    = "You are a focused question generator for Contract Documents. Analyze the section and generate ONE concise, specific question about the most important missing information."
	DraftSystem       = "You are a Draft Generator Agent updating a Contract Document. Focus on legal clarity, business terms, and compliance requirements."
	ReviewerSystem    = "You are an expert legal reviewer specializing in contract analysis and risk assessment."
	AnalystSystem     = "You are an expert legal analyst specializing in contract review and categorization."
	ReviserSystem     = "You are a senior contract attorney who revises draft agreements into polished, complete documents."
)

func IdeaStructuring(idea string) string {
	var b strings.Builder
	b.WriteString("Please perform the following:\n")
	b.WriteString("1. Rephrase the idea below to make it clearer, more concise, and professional, while preserving the specific legal/business context.\n")
	b.WriteString("2. Generate one specific, descriptive title that directly reflects the core concept (max 8 words). ")
	b.WriteString("Avoid generic phrases like \"Generic Contract\" or \"Legal Document\".\n\n")
	b.WriteString("<idea>\n")
	b.WriteString(idea)
	b.WriteString("\n</idea>\n\n")
	b.WriteString("Example: the idea \"inventory optimization system\" should produce a title like \"Inventory Optimization Service Agreement\".\n\n")
	b.WriteString("Respond ONLY in the following JSON format:\n")
	b.WriteString(`{"rephrased_idea": "...", "title_1": "..."}`)
	return b.String()
}

// FormatHistory renders section Q&A pairs, or a placeholder when there are none.
func FormatHistory(history []workflow.ConversationEntry) string {
	if len(history) == 0 {
		return workflow.NoHistoryYet
	}
	lines := make([]string, 0, len(history))
	for _, e := range history {
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer))
	}
	return strings.Join(lines, "\n")
}

func formatSubsections(subs []workflow.Subsection) string {
	var b strings.Builder
	for _, s := range subs {
		fmt.Fprintf(&b, "- %s: %s\n", s.Heading, s.Definition)
	}
	return b.String()
}

func Question(qc workflow.QuestionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Section**: %s\n", qc.Section.Heading)
	fmt.Fprintf(&b, "**Purpose**: %s\n", qc.Section.Purpose)
	b.WriteString("**Subsections**:\n")
	b.WriteString(formatSubsections(qc.Section.Subsections))
	fmt.Fprintf(&b, "\n**User's Idea**: %s\n", qc.Idea)
	fmt.Fprintf(&b, "**Current Draft**: %s\n", qc.CurrentDraft)
	b.WriteString("**Previous Q&A pertaining to the current section**:\n")
	b.WriteString(FormatHistory(qc.History))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Identify the SINGLE most important piece of missing information needed to advance this section\n")
	b.WriteString("2. Generate ONE concise, focused question (max 2-3 sentences) that is easy to answer\n")
	b.WriteString("3. The subsection must be one of the subsections listed above, and the section must be exactly the section name\n")
	b.WriteString("4. Return null if the draft is already complete and comprehensive\n\n")
	b.WriteString("Return EXACTLY this JSON format if you are generating a question:\n")
	b.WriteString(`{"question": {"section": "<section_name>", "subsection": "<subsection missing information>", "question": "<question>", "reason": "<why this is needed now>"}}`)
	b.WriteString("\nIf the section is complete return:\n")
	b.WriteString(`{"question": null}`)
	return b.String()
}

func Draft(dc workflow.DraftContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are updating the draft for the %q section of a Contract Document.\n", dc.Section.Heading)
	fmt.Fprintf(&b, "The section's purpose is: %s.\n", dc.Section.Purpose)
	fmt.Fprintf(&b, "The current draft is: %s.\n", dc.CurrentDraft)
	fmt.Fprintf(&b, "The following question-answer pair pertains to the subsection: %s (definition: %s):\n\n", dc.Subsection.Heading, dc.Subsection.Definition)
	fmt.Fprintf(&b, "Question-Answer Pair: %s\n\n", dc.QAPair())
	b.WriteString("**Contract Type Context:**\n")
	fmt.Fprintf(&b, "- Contract Type: %s\n", dc.DocumentType)
	fmt.Fprintf(&b, "- Formatting Guidelines: %s\n\n", dc.FormattingGuidance)
	b.WriteString("Instructions:\n")
	b.WriteString("1. Update the current draft by incorporating the provided answer into the relevant subsection.\n")
	b.WriteString("2. Use formal legal language appropriate for the specified contract type and follow the formatting guidelines.\n")
	b.WriteString("3. Use defined terms in quotes on first use and keep them consistent.\n")
	b.WriteString("4. If the subsection is not yet present in the draft, add a new paragraph for it.\n")
	b.WriteString("5. Return the updated draft in the following JSON format:\n")
	b.WriteString(`{"section": "<section_name>", "draft": "<updated_draft_text>"}`)
	return b.String()
}

// DocumentContent renders the material a reviewer or categorizer reads.
// Blank drafts and the no-content placeholder are skipped.
func DocumentContent(originalIdea, rephrased string, drafts map[string]string, order []string) string {
	var parts []string
	if originalIdea != "" {
		parts = append(parts, "Original Contract Idea: "+originalIdea)
	}

	keys := order
	if len(keys) == 0 {
		for k := range drafts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	var sections []string
	for _, k := range keys {
		d := drafts[k]
		if strings.TrimSpace(d) == "" || d == workflow.NoDraftContent {
			continue
		}
		sections = append(sections, fmt.Sprintf("\n## %s\n%s", k, d))
	}
	if len(sections) > 0 {
		parts = append(parts, "Contract Document Sections:")
		parts = append(parts, sections...)
	}

	if rephrased != "" {
		parts = append(parts, "Rephrased Contract: "+rephrased)
	}
	if len(parts) == 0 {
		return "No detailed contract content available."
	}
	return strings.Join(parts, "\n")
}

func Scoring(title, department, content string) string {
	var b strings.Builder
	b.WriteString("Evaluate the legal contract below and provide a comprehensive score with constructive legal feedback.\n\n")
	b.WriteString("**Contract Details:**\n")
	fmt.Fprintf(&b, "- Title: %s\n- Department: %s\n- Contract Content: %s\n\n", title, department, content)
	b.WriteString("**Legal Evaluation Criteria:**\n")
	b.WriteString("1. Legal Completeness (0-25 points): Are all essential legal clauses present and properly defined?\n")
	b.WriteString("2. Risk Management (0-25 points): How well does the contract identify and mitigate legal risks?\n")
	b.WriteString("3. Clarity & Precision (0-25 points): Is the language clear, unambiguous, and legally sound?\n")
	b.WriteString("4. Business Alignment (0-25 points): Does the contract reflect the business arrangement and protect interests?\n\n")
	b.WriteString("Provide an overall score from 0-100, AT LEAST ONE PARAGRAPH of feedback, 2-3 strengths, 2-3 improvements and a risk level (Low, Medium, High).\n\n")
	b.WriteString("Respond ONLY in JSON:\n")
	b.WriteString(`{"score": 85, "feedback": "...", "strengths": ["..."], "improvements": ["..."], "risk_level": "Medium"}`)
	return b.String()
}

func Categorization(title, department, content string) string {
	var b strings.Builder
	b.WriteString("Categorize the legal contract below based on its content, legal themes, and business context.\n\n")
	b.WriteString("**Contract Details:**\n")
	fmt.Fprintf(&b, "- Title: %s\n- Department: %s\n- Contract Content: %s\n\n", title, department, content)
	b.WriteString("**Available Contract Categories:**\n")
	for i, c := range Categories {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Name, c.Description)
	}
	b.WriteString("\nAssign a primary and a secondary category, explain your reasoning, give a confidence score (0-100), ")
	b.WriteString("identify 3-5 key legal themes, recommend 5-8 essential contract sections for this contract type, ")
	b.WriteString("and provide formatting guidelines (standard clauses, required disclosures, signature blocks).\n\n")
	b.WriteString("Respond ONLY in JSON:\n")
	b.WriteString(`{"primary_category": "...", "secondary_category": "...", "reasoning": "...", "confidence_score": 85, "key_themes": ["..."], "recommended_sections": ["..."], "legal_formatting_guidelines": "..."}`)
	return b.String()
}

func Revision(req workflow.RevisionRequest) string {
	var b strings.Builder
	b.WriteString("Improve the contract below using the review results. Keep every section heading, ")
	b.WriteString("strengthen weak clauses, and address each improvement area. Return only the full revised document in Markdown.\n\n")
	fmt.Fprintf(&b, "Review score: %d/100\n", req.Review.Score)
	fmt.Fprintf(&b, "Feedback: %s\n", req.Review.Feedback)
	if len(req.Review.Strengths) > 0 {
		fmt.Fprintf(&b, "Strengths to keep: %s\n", strings.Join(req.Review.Strengths, "; "))
	}
	if len(req.Review.Improvements) > 0 {
		fmt.Fprintf(&b, "Improvements required: %s\n", strings.Join(req.Review.Improvements, "; "))
	}
	b.WriteString("\n<document>\n")
	b.WriteString(req.Document)
	b.WriteString("\n</document>")
	return b.String()
}
