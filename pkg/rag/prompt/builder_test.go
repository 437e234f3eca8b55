package prompt

import (
	"strings"
	"testing"

	"askalma-be/internal/entity"

	"askalma-be/pkg/llm"
)

func testPassages(contents ...string) []*entity.Passage {
	passages := make([]*entity.Passage, 0, len(contents))
	for i, content := range contents {
		passages = append(passages, &entity.Passage{
			Id:         string(rune('a' + i)),
			Content:    content,
			Source:     "culpa_reviews.json",
			Similarity: 1.0 - float64(i)*0.1,
		})
	}
	return passages
}

func TestBuildContainsAllSections(t *testing.T) {
	builder := NewBuilder(
		"What are the core requirements?",
		testPassages("The Core Curriculum includes Literature Humanities."),
		[]llm.Message{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello, how can I help?"},
		},
		&entity.UserProfile{School: "columbia_college", Major: "Computer Science"},
		8000,
	)

	prompt := builder.Build()

	for _, section := range []string{
		"<student_profile>", "<chat_history>", "<context>", "<student_question>",
	} {
		if !strings.Contains(prompt, section) {
			t.Errorf("prompt missing %s section", section)
		}
	}
	if !strings.Contains(prompt, "USER: Hi") {
		t.Error("history not rendered with upper-cased role")
	}
	if !strings.Contains(prompt, "What are the core requirements?") {
		t.Error("question not rendered")
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	prompt := NewBuilder("Any question", nil, nil, nil, 8000).Build()

	for _, section := range []string{"<student_profile>", "<chat_history>", "<context>"} {
		if strings.Contains(prompt, section) {
			t.Errorf("prompt should omit %s when input is empty", section)
		}
	}
	if !strings.Contains(prompt, "<student_question>") {
		t.Error("question section must always be present")
	}
}

func TestBuildContextBudgetDropsWholePassages(t *testing.T) {
	long := strings.Repeat("x", 60)
	passages := testPassages(long, long, long)

	// Budget fits the first passage plus separator+second, not the third.
	budget := 60 + len(passageSeparator) + 60
	builder := NewBuilder("q", passages, nil, nil, budget)

	block := builder.buildContextBlock()
	if len(block) > budget {
		t.Fatalf("context block length %d exceeds budget %d", len(block), budget)
	}
	if got := strings.Count(block, passageSeparator); got != 1 {
		t.Errorf("expected 2 passages joined by 1 separator, got %d separators", got)
	}
}

func TestBuildContextBudgetNeverTruncatesMidPassage(t *testing.T) {
	passages := testPassages(strings.Repeat("a", 50), strings.Repeat("b", 50))

	// Second passage does not fit: it must be dropped entirely.
	builder := NewBuilder("q", passages, nil, nil, 70)
	block := builder.buildContextBlock()

	if block != strings.Repeat("a", 50) {
		t.Errorf("expected only the first passage, got %q", block)
	}
}

func TestBuildDeterministic(t *testing.T) {
	passages := testPassages("First passage.", "Second passage.")
	history := []llm.Message{{Role: "user", Content: "Earlier question"}}
	profile := &entity.UserProfile{School: "barnard", AcademicYear: "sophomore"}

	first := NewBuilder("q", passages, history, profile, 8000).Build()
	second := NewBuilder("q", passages, history, profile, 8000).Build()

	if first != second {
		t.Error("identical inputs must produce byte-identical prompts")
	}
}

func TestFormatProfileSummary(t *testing.T) {
	tests := []struct {
		name    string
		profile *entity.UserProfile
		want    []string
		notWant []string
	}{
		{
			name:    "nil profile",
			profile: nil,
		},
		{
			name:    "empty profile",
			profile: &entity.UserProfile{UserId: "u1"},
		},
		{
			name: "full profile",
			profile: &entity.UserProfile{
				School:       "columbia_engineering",
				AcademicYear: "junior",
				Major:        "Computer Science",
				Minors:       []string{"Math"},
				ClassesTaken: []string{"COMS W3134", "COMS W3157"},
			},
			want: []string{
				"Columbia Engineering",
				"junior",
				"Computer Science",
				"Math",
				"COMS W3134, COMS W3157",
				"Prioritize information from Columbia Engineering sources",
				"Do not recommend courses that are already completed.",
			},
		},
		{
			name:    "unknown school keeps raw value",
			profile: &entity.UserProfile{School: "general_studies"},
			want:    []string{"general_studies"},
			notWant: []string{"Columbia"},
		},
		{
			name:    "no school skips priority directive",
			profile: &entity.UserProfile{Major: "History"},
			want:    []string{"History"},
			notWant: []string{"Prioritize information"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := FormatProfileSummary(tt.profile)
			if len(tt.want) == 0 && len(tt.notWant) == 0 {
				if summary != "" {
					t.Errorf("expected empty summary, got %q", summary)
				}
				return
			}
			for _, want := range tt.want {
				if !strings.Contains(summary, want) {
					t.Errorf("summary missing %q:\n%s", want, summary)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(summary, notWant) {
					t.Errorf("summary should not contain %q:\n%s", notWant, summary)
				}
			}
		})
	}
}
