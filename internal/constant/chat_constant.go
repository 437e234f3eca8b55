package constant

// Message roles as stored in the messages table.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// ConversationTitleMaxChars bounds the title derived from the first question.
const ConversationTitleMaxChars = 100

// FallbackAnswer is returned to the user when generation or persistence
// fails. The real error is logged, never surfaced.
const FallbackAnswer = "I encountered an error while answering your question. Please try again."

// ComparisonQuerySuffix is appended to each entity name when building the
// per-entity retrieval query in comparison mode.
const ComparisonQuerySuffix = "teaching style reviews rating"

// SchoolLabels maps profile school keys to display names used in prompts.
var SchoolLabels = map[string]string{
	"columbia_college":     "Columbia College",
	"columbia_engineering": "Columbia Engineering",
	"barnard":              "Barnard College",
}

// PrioritySourcePatterns are the current-year bulletins, preferred over
// older ones when filling retrieval slots.
var PrioritySourcePatterns = []string{
	"%seas_2026.json%",
	"%barnard_2026.json%",
	"%columbia_college_2026.json%",
}

// SchoolSourcePatterns maps profile school keys to ILIKE patterns applied to
// the document source column when biasing retrieval toward the user's school.
var SchoolSourcePatterns = map[string]string{
	"columbia_college":     "%columbia_college%",
	"columbia_engineering": "%columbia_engineering%",
	"barnard":              "%barnard%",
}
