package prompt

import (
	"strings"

	"askalma-be/internal/constant"
	"askalma-be/internal/entity"

	"askalma-be/pkg/llm"
)

const passageSeparator = "\n\n---\n\n"

// Builder assembles the generation prompt from the question, retrieved
// passages, conversation history and the student profile. Output is
// deterministic for identical inputs.
type Builder struct {
	question        string
	passages        []*entity.Passage
	history         []llm.Message
	profile         *entity.UserProfile
	maxContextChars int
}

func NewBuilder(question string, passages []*entity.Passage, history []llm.Message, profile *entity.UserProfile, maxContextChars int) *Builder {
	return &Builder{
		question:        question,
		passages:        passages,
		history:         history,
		profile:         profile,
		maxContextChars: maxContextChars,
	}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeSystemInstruction(&prompt)
	b.writeProfileSummary(&prompt)
	b.writeHistory(&prompt)
	b.writeContext(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *Builder) writeSystemInstruction(prompt *strings.Builder) {
	prompt.WriteString("You are AskAlma, an expert academic advisor for students at Columbia College, Columbia Engineering, and Barnard College.\n\n")
	prompt.WriteString("<task>\n")
	prompt.WriteString("Answer the student's question about courses, professors, requirements, and academic planning.\n")
	prompt.WriteString("Base your answers on the CONTEXT section below. If the context does not cover the question, say so honestly instead of inventing course codes or requirements.\n")
	prompt.WriteString("When comparing two professors or programs, treat both sides evenly and note when evidence is missing for one of them.\n")
	prompt.WriteString("Only reference the chat history when the current question clearly follows up on it.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *Builder) writeProfileSummary(prompt *strings.Builder) {
	summary := FormatProfileSummary(b.profile)
	if summary == "" {
		return
	}
	prompt.WriteString("<student_profile>\n")
	prompt.WriteString(summary)
	prompt.WriteString("\n</student_profile>\n\n")
}

func (b *Builder) writeHistory(prompt *strings.Builder) {
	if len(b.history) == 0 {
		return
	}
	prompt.WriteString("<chat_history>\n")
	for _, msg := range b.history {
		prompt.WriteString(strings.ToUpper(msg.Role))
		prompt.WriteString(": ")
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</chat_history>\n\n")
}

// writeContext joins passages under the character budget. Passages arrive
// sorted by similarity descending; when the budget runs out, whole passages
// are dropped from the tail, never cut mid-passage.
func (b *Builder) writeContext(prompt *strings.Builder) {
	contextText := b.buildContextBlock()
	if contextText == "" {
		return
	}
	prompt.WriteString("<context>\n")
	prompt.WriteString(contextText)
	prompt.WriteString("\n</context>\n\n")
}

func (b *Builder) buildContextBlock() string {
	var block strings.Builder
	total := 0
	for i, p := range b.passages {
		addition := len(p.Content)
		if i > 0 {
			addition += len(passageSeparator)
		}
		if total+addition > b.maxContextChars {
			break
		}
		if i > 0 {
			block.WriteString(passageSeparator)
		}
		block.WriteString(p.Content)
		total += addition
	}
	return block.String()
}

func (b *Builder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("<student_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</student_question>\n\n")
	prompt.WriteString("Now provide your complete answer based on the context:")
}

// FormatProfileSummary renders profile fields as directives for the prompt.
// Returns "" when there is nothing worth writing.
func FormatProfileSummary(profile *entity.UserProfile) string {
	if profile == nil {
		return ""
	}

	var lines []string
	schoolLabel := ""
	if profile.School != "" {
		schoolLabel = constant.SchoolLabels[profile.School]
		if schoolLabel == "" {
			schoolLabel = profile.School
		}
		lines = append(lines, "- School: "+schoolLabel)
	}
	if profile.AcademicYear != "" {
		lines = append(lines, "- Academic year: "+profile.AcademicYear)
	}
	if profile.Major != "" {
		lines = append(lines, "- Major: "+profile.Major)
	}
	if len(profile.Minors) > 0 {
		lines = append(lines, "- Minors: "+strings.Join(profile.Minors, ", "))
	}
	if len(profile.ClassesTaken) > 0 {
		lines = append(lines, "- Classes already completed: "+strings.Join(profile.ClassesTaken, ", "))
	}

	if len(lines) == 0 {
		return ""
	}

	if schoolLabel != "" {
		lines = append(lines, "- Prioritize information from "+schoolLabel+" sources when relevant.")
	}
	lines = append(lines, "- Do not recommend courses that are already completed.")
	return strings.Join(lines, "\n")
}
