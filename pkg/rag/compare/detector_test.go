package compare

import (
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		question    string
		wantMatch   bool
		wantEntity1 string
		wantEntity2 string
	}{
		{
			name:        "compare and",
			question:    "Compare Professor Smith and Professor Jones",
			wantMatch:   true,
			wantEntity1: "smith",
			wantEntity2: "jones",
		},
		{
			name:        "vs shorthand",
			question:    "Cannon vs Blaer for data structures?",
			wantMatch:   true,
			wantEntity1: "cannon",
			wantEntity2: "blaer",
		},
		{
			name:        "versus",
			question:    "Jae Lee versus Paul Blaer",
			wantMatch:   true,
			wantEntity1: "jae lee",
			wantEntity2: "paul blaer",
		},
		{
			name:        "how does compare to",
			question:    "How does Smith compare to Jones?",
			wantMatch:   true,
			wantEntity1: "smith",
			wantEntity2: "jones",
		},
		{
			name:        "which is better",
			question:    "Which is better: Dr. Smith or Dr. Jones?",
			wantMatch:   true,
			wantEntity1: "smith",
			wantEntity2: "jones",
		},
		{
			name:        "hyphenated name",
			question:    "Compare Sala-i-Martin and Gulati",
			wantMatch:   true,
			wantEntity1: "sala-i-martin",
			wantEntity2: "gulati",
		},
		{
			name:      "plain question",
			question:  "What is COMS W3134 about?",
			wantMatch: false,
		},
		{
			name:      "compare without second entity",
			question:  "Can you compare them?",
			wantMatch: false,
		},
		{
			name:      "same entity twice",
			question:  "Smith vs Smith",
			wantMatch: false,
		},
		{
			name:      "empty string",
			question:  "",
			wantMatch: false,
		},
	}

	detector := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := detector.Detect(tt.question)
			if ok != tt.wantMatch {
				t.Fatalf("Detect(%q) match = %v, want %v", tt.question, ok, tt.wantMatch)
			}
			if !tt.wantMatch {
				return
			}
			if target.Entity1 != tt.wantEntity1 {
				t.Errorf("Entity1 = %q, want %q", target.Entity1, tt.wantEntity1)
			}
			if target.Entity2 != tt.wantEntity2 {
				t.Errorf("Entity2 = %q, want %q", target.Entity2, tt.wantEntity2)
			}
		})
	}
}
