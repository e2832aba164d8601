package proof

// Field identifies one of the five proof-of-completion fields, using the
// same names the HTTP API uses.
type Field string

const (
	FieldWhatChanged Field = "proof_what_changed"
	FieldWhatItDoes  Field = "proof_what_it_does"
	FieldHowToUse    Field = "proof_how_to_use"
	FieldTests       Field = "proof_tests"
	FieldScreenshot  Field = "proof_screenshot"
)

// Rule is the quality bar for a single proof field. Keyword matching is
// case-insensitive substring matching.
type Rule struct {
	Field          Field
	Label          string
	MinLength      int
	MustContainAny []string
	MustContainAll []string
	Hint           string
}

// Policy is the full ordered rule set. It is injected rather than
// hard-coded so thresholds and keyword lists are replaceable in tests
// and config.
type Policy struct {
	Rules []Rule
}

// DefaultPolicy returns the shipping rule set. productionDomain is the
// host that must appear verbatim in the tests evidence; it varies per
// deployment and comes from config.
func DefaultPolicy(productionDomain string) Policy {
	return Policy{Rules: []Rule{
		{
			Field:     FieldWhatChanged,
			Label:     "What changed",
			MinLength: 50,
			Hint:      "Describe the concrete change, e.g. \"Added the weekly report export button and wired it to the /api/report endpoint\"",
		},
		{
			Field:     FieldWhatItDoes,
			Label:     "What it does",
			MinLength: 100,
			Hint:      "Explain the behavior from the user's point of view, in enough detail that someone unfamiliar could describe it back",
		},
		{
			Field:          FieldHowToUse,
			Label:          "How to use",
			MinLength:      100,
			MustContainAny: []string{"http", "step", "click", "navigate", "1.", "1)"},
			Hint:           "Give step-by-step instructions, e.g. \"1. Navigate to https://... 2. Click Export 3. ...\"",
		},
		{
			Field:          FieldTests,
			Label:          "Tests",
			MinLength:      200,
			MustContainAll: []string{productionDomain, "PASS"},
			MustContainAny: []string{"curl", "http", "200", "actual", "expected"},
			Hint:           "Paste real test evidence against " + productionDomain + ", e.g. \"curl https://" + productionDomain + "/api/tasks -> HTTP 200, expected 3 tasks, actual 3 tasks, PASS\"",
		},
		{
			Field:          FieldScreenshot,
			Label:          "Screenshot",
			MinLength:      10,
			MustContainAny: []string{"http", "/", "screenshot", ".png", ".jpg", ".jpeg", ".gif"},
			Hint:           "Link or path to visual evidence, e.g. https://imgur.com/abc123 or /screenshots/done.png",
		},
	}}
}
