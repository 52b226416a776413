package quiz

// Page is one page of extracted document text, in source order.
type Page struct {
	Number int    // 1-based page number
	Text   string // Plain text content (may be empty for image-only pages)
}

// Section is a contiguous, titled span of cleaned document text.
type Section struct {
	Title     string // Detected heading, or "Full Document"
	Level     int    // Heading nesting level, 1-based
	Content   string // Body text between this heading and the next
	StartPage int
	EndPage   int
}

// Question is a single multiple-choice question. Options always holds
// exactly four distinct entries and Answer indexes into it (0-based).
type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Hint        string   `json:"hint,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Result is what a generation run returns to the caller. Questions may be
// empty only when the source text was below the minimum-content threshold.
type Result struct {
	Questions []Question `json:"questions"`
	Reason    string     `json:"reason"`
}

// Provenance values used in Result.Reason.
const (
	ReasonAI         = "AI generated"
	ReasonAIRetry    = "AI generated (retry)"
	ReasonFallback   = "local fallback"
	ReasonInvalidAI  = "invalid AI JSON, local fallback"
	ReasonOracleDown = "AI unavailable, local fallback"
	ReasonMixed      = "AI generated with local fallback"
)
