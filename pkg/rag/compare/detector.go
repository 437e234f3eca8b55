package compare

import (
	"regexp"
	"strings"
)

// Target holds the two entity names extracted from a comparison question,
// lower-cased and stripped of title tokens.
type Target struct {
	Entity1 string
	Entity2 string
}

// name matches one to three alphabetic tokens, hyphens allowed, so names
// like "Sala-i-Martin" or "John Smith" survive. Known limitation: longer
// multi-word names get clipped to their first three tokens.
const name = `([A-Za-z][A-Za-z-]*\.?(?:\s+[A-Za-z][A-Za-z-]*\.?){0,2})`

type rule struct {
	tag string
	re  *regexp.Regexp
}

// Detector recognizes head-to-head comparison questions. Rules are applied
// in order and the first match wins, so more specific phrasings come first.
type Detector struct {
	rules []rule
}

func NewDetector() *Detector {
	return &Detector{
		rules: []rule{
			{"versus", regexp.MustCompile(`(?i)` + name + `\s+(?:vs\.?|versus)\s+` + name)},
			{"how-compare", regexp.MustCompile(`(?i)how\s+does\s+` + name + `\s+compare\s+(?:to|with)\s+` + name)},
			{"which-better", regexp.MustCompile(`(?i)which\s+is\s+better[:,]?\s+` + name + `\s+or\s+` + name)},
			{"compare-and", regexp.MustCompile(`(?i)compare\s+(?:between\s+)?` + name + `\s+(?:and|with|to)\s+` + name)},
		},
	}
}

var titleTokens = map[string]bool{
	"professor":  true,
	"prof":       true,
	"dr":         true,
	"instructor": true,
}

// stopTokens end a name span; the greedy match otherwise swallows trailing
// words like "for" in "Cannon vs Blaer for data structures".
var stopTokens = map[string]bool{
	"for": true, "or": true, "and": true, "to": true, "with": true,
	"in": true, "of": true, "on": true, "at": true, "the": true,
	"a": true, "an": true, "is": true, "as": true,
}

// Detect returns the two compared entities, or false when the question is
// not a comparison. It never errors; anything ambiguous falls through to
// the regular retrieval path.
func (d *Detector) Detect(question string) (*Target, bool) {
	for _, r := range d.rules {
		match := r.re.FindStringSubmatch(question)
		if match == nil {
			continue
		}

		entity1 := normalizeName(match[1])
		entity2 := normalizeName(match[2])
		if entity1 == "" || entity2 == "" || entity1 == entity2 {
			continue
		}

		return &Target{Entity1: entity1, Entity2: entity2}, true
	}
	return nil, false
}

func normalizeName(raw string) string {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSuffix(tok, ".")
		if tok == "" || titleTokens[tok] {
			continue
		}
		if stopTokens[tok] {
			break
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
