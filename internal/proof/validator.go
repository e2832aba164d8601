// Package proof decides whether a task's completion evidence is
// publishable quality. Validation is pure: rules in, failures out.
package proof

import (
	"fmt"
	"strings"
)

// Values holds the effective proof field contents under evaluation.
type Values struct {
	WhatChanged string
	WhatItDoes  string
	HowToUse    string
	Tests       string
	Screenshot  string
}

func (v Values) get(f Field) string {
	switch f {
	case FieldWhatChanged:
		return v.WhatChanged
	case FieldWhatItDoes:
		return v.WhatItDoes
	case FieldHowToUse:
		return v.HowToUse
	case FieldTests:
		return v.Tests
	case FieldScreenshot:
		return v.Screenshot
	}
	return ""
}

// Failure describes one rejected proof field with enough detail for the
// user to fix the input without guessing.
type Failure struct {
	Field  Field  `json:"field"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
	Hint   string `json:"hint"`
}

// Validate evaluates every policy rule against the given values and
// returns all failures; an empty slice means pass. At most one failure
// is reported per field: missing and length checks short-circuit the
// keyword checks for that field.
func Validate(v Values, p Policy) []Failure {
	var failures []Failure

	for _, rule := range p.Rules {
		value := v.get(rule.Field)

		if value == "" {
			failures = append(failures, Failure{
				Field:  rule.Field,
				Label:  rule.Label,
				Reason: "missing: field is empty",
				Hint:   rule.Hint,
			})
			continue
		}

		if len(value) < rule.MinLength {
			failures = append(failures, Failure{
				Field:  rule.Field,
				Label:  rule.Label,
				Reason: fmt.Sprintf("too short: %d chars, need at least %d", len(value), rule.MinLength),
				Hint:   rule.Hint,
			})
			continue
		}

		lower := strings.ToLower(value)

		if len(rule.MustContainAny) > 0 && !containsAny(lower, rule.MustContainAny) {
			failures = append(failures, Failure{
				Field:  rule.Field,
				Label:  rule.Label,
				Reason: fmt.Sprintf("content mismatch: expected at least one of [%s]", strings.Join(sample(rule.MustContainAny, 4), ", ")),
				Hint:   rule.Hint,
			})
			continue
		}

		if len(rule.MustContainAll) > 0 {
			if missing := missingTokens(lower, rule.MustContainAll); len(missing) > 0 {
				failures = append(failures, Failure{
					Field:  rule.Field,
					Label:  rule.Label,
					Reason: fmt.Sprintf("missing required evidence: [%s]", strings.Join(missing, ", ")),
					Hint:   rule.Hint,
				})
				continue
			}
		}
	}

	return failures
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func missingTokens(lower string, tokens []string) []string {
	var missing []string
	for _, tok := range tokens {
		if !strings.Contains(lower, strings.ToLower(tok)) {
			missing = append(missing, tok)
		}
	}
	return missing
}

func sample(keywords []string, n int) []string {
	if len(keywords) <= n {
		return keywords
	}
	return keywords[:n]
}
