package entity

// UserProfile is the academic profile consumed to bias retrieval and
// personalize prompts. Owned and written by the profile API, read-only here.
type UserProfile struct {
	UserId       string
	School       string
	AcademicYear string
	Major        string
	Minors       []string
	ClassesTaken []string
}
