package engine

import "regexp"

// Pre-compiled regexes for classifying engine stderr into actionable
// categories. Checked in order by [Diagnose]; the first match wins.
var (
	reMissingCredentials = regexp.MustCompile(
		`(?i)(OPENAI|ANTHROPIC|GOOGLE|DEEPSEEK)_API_KEY|` +
			`api key (not set|not found|missing|required)|` +
			`authentication[ _]error|invalid[ _]api[ _]key|` +
			`401 unauthorized|permission[ _]denied`)

	reRateLimited = regexp.MustCompile(
		`(?i)rate[ _-]?limit|too many requests|status code 429|quota exceeded|` +
			`overloaded[ _]error`)

	reInputTooLarge = regexp.MustCompile(
		`(?i)context[ _-]?(length|window)|maximum.*tokens|token limit|` +
			`input (too large|too long)|request (entity )?too large|413`)

	reUsageError = regexp.MustCompile(
		`(?i)usage: txt2stix|unrecognized arguments|invalid choice|` +
			`the following arguments are required|no such option`)
)

// Diagnosis is a coarse classification of an engine failure, used in the
// batch report and the run summary.
type Diagnosis string

const (
	DiagMissingCredentials Diagnosis = "missing_credentials"
	DiagRateLimited        Diagnosis = "rate_limited"
	DiagInputTooLarge      Diagnosis = "input_too_large"
	DiagUsageError         Diagnosis = "usage_error"
	DiagUnknown            Diagnosis = "unknown"
)

// Diagnose classifies engine stderr output.
func Diagnose(stderr string) Diagnosis {
	switch {
	case reMissingCredentials.MatchString(stderr):
		return DiagMissingCredentials
	case reRateLimited.MatchString(stderr):
		return DiagRateLimited
	case reInputTooLarge.MatchString(stderr):
		return DiagInputTooLarge
	case reUsageError.MatchString(stderr):
		return DiagUsageError
	default:
		return DiagUnknown
	}
}
