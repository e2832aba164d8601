package proof

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "myapp.example.com"

func passingValues() Values {
	return Values{
		WhatChanged: "Added the weekly report export button and wired it up to the backend endpoint.",
		WhatItDoes:  "Lets the user export the weekly report as CSV from the dashboard. Clicking the button fetches the current week's data and downloads it as a file.",
		HowToUse:    "1. Navigate to https://" + testDomain + "/reports 2. Click the Export button in the top right corner 3. The CSV downloads automatically.",
		Tests: "curl https://" + testDomain + "/api/reports/export -> HTTP 200, expected a CSV with 7 rows, actual CSV had 7 rows, PASS. " +
			"Also checked the empty-week case: curl https://" + testDomain + "/api/reports/export?week=0 -> HTTP 200, expected header-only CSV, actual header-only CSV, PASS.",
		Screenshot: "https://imgur.com/a/report-export.png",
	}
}

func TestValidate_AllFieldsPass(t *testing.T) {
	failures := Validate(passingValues(), DefaultPolicy(testDomain))
	assert.Empty(t, failures)
}

func TestValidate_AllFieldsEmpty(t *testing.T) {
	failures := Validate(Values{}, DefaultPolicy(testDomain))
	require.Len(t, failures, 5)
	for _, f := range failures {
		assert.Equal(t, "missing: field is empty", f.Reason)
		assert.NotEmpty(t, f.Hint)
	}
}

func TestValidate_TooShort(t *testing.T) {
	v := passingValues()
	v.WhatChanged = "fixed it"

	failures := Validate(v, DefaultPolicy(testDomain))
	require.Len(t, failures, 1)
	assert.Equal(t, FieldWhatChanged, failures[0].Field)
	assert.Contains(t, failures[0].Reason, "too short: 8 chars, need at least 50")
}

func TestValidate_OneFailurePerField(t *testing.T) {
	// short AND missing every keyword, but only the length failure reports
	v := passingValues()
	v.Tests = "ok"

	failures := Validate(v, DefaultPolicy(testDomain))
	require.Len(t, failures, 1)
	assert.Equal(t, FieldTests, failures[0].Field)
	assert.Contains(t, failures[0].Reason, "too short")
}

func TestValidate_MustContainAny(t *testing.T) {
	v := passingValues()
	v.HowToUse = strings.Repeat("open the app and look around the dashboard area ", 3)

	failures := Validate(v, DefaultPolicy(testDomain))
	require.Len(t, failures, 1)
	assert.Equal(t, FieldHowToUse, failures[0].Field)
	assert.Contains(t, failures[0].Reason, "content mismatch")
}

func TestValidate_MustContainAllReportsMissingTokens(t *testing.T) {
	// long enough, has "curl", but no domain and no PASS
	v := passingValues()
	v.Tests = strings.Repeat("ran curl against the staging box and eyeballed the output which looked fine to me ", 3)

	failures := Validate(v, DefaultPolicy(testDomain))
	require.Len(t, failures, 1)
	assert.Equal(t, FieldTests, failures[0].Field)
	assert.Contains(t, failures[0].Reason, "missing required evidence")
	assert.Contains(t, failures[0].Reason, testDomain)
	assert.Contains(t, failures[0].Reason, "PASS")
}

func TestValidate_KeywordMatchingIsCaseInsensitive(t *testing.T) {
	v := passingValues()
	v.Tests = strings.ToUpper(v.Tests)

	failures := Validate(v, DefaultPolicy(testDomain))
	assert.Empty(t, failures)

	v.Tests = strings.ToLower(v.Tests)
	failures = Validate(v, DefaultPolicy(testDomain))
	assert.Empty(t, failures)
}

func TestValidate_ScreenshotAcceptsPathOrURL(t *testing.T) {
	v := passingValues()

	v.Screenshot = "/screenshots/export-done.png"
	assert.Empty(t, Validate(v, DefaultPolicy(testDomain)))

	v.Screenshot = "see screenshot in the shared folder"
	assert.Empty(t, Validate(v, DefaultPolicy(testDomain)))

	v.Screenshot = "trust me"
	failures := Validate(v, DefaultPolicy(testDomain))
	require.Len(t, failures, 1)
	assert.Equal(t, FieldScreenshot, failures[0].Field)
}

func TestValidate_FailuresKeepRuleOrder(t *testing.T) {
	v := passingValues()
	v.WhatChanged = ""
	v.Screenshot = ""

	failures := Validate(v, DefaultPolicy(testDomain))
	require.Len(t, failures, 2)
	assert.Equal(t, FieldWhatChanged, failures[0].Field)
	assert.Equal(t, FieldScreenshot, failures[1].Field)
}

func TestValidate_CustomPolicy(t *testing.T) {
	policy := Policy{Rules: []Rule{
		{Field: FieldWhatChanged, Label: "What changed", MinLength: 5},
	}}

	failures := Validate(Values{WhatChanged: "short enough"}, policy)
	assert.Empty(t, failures)

	failures = Validate(Values{WhatChanged: "no"}, policy)
	require.Len(t, failures, 1)
}
