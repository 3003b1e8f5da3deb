package types

import "fmt"

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one structural conformance finding against a profile.
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Location string   `json:"location"`
	Message  string   `json:"message"`
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Location, i.Message)
}

// ValidationOutcome is the result of validating one or more records against
// a single profile.
type ValidationOutcome struct {
	ProfileID string            `json:"profile_id"`
	Issues    []ValidationIssue `json:"issues,omitempty"`
}

// HasErrors reports whether any issue is error severity. Warnings alone do
// not fail profile conformance.
func (o ValidationOutcome) HasErrors() bool {
	for _, issue := range o.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorMessages returns the formatted text of all error-severity issues.
func (o ValidationOutcome) ErrorMessages() []string {
	var msgs []string
	for _, issue := range o.Issues {
		if issue.Severity == SeverityError {
			msgs = append(msgs, issue.String())
		}
	}
	return msgs
}

// RecordValidator validates fetched records against named profiles. The
// concrete implementation lives in the profile package; test bodies consume
// it through this interface.
type RecordValidator interface {
	// Validate checks a record for structural conformance to the profile,
	// including the separately-retrievable identity check.
	Validate(record map[string]any, profileID string) (ValidationOutcome, error)
	// ValidateEmbedded checks a record inlined within its parent. Such a
	// record has no independent identity and is exempt from the
	// retrievability check but still subject to structural validation.
	ValidateEmbedded(record map[string]any, profileID string) (ValidationOutcome, error)
	// ValidateAll validates each record in turn. An empty record set is a
	// no-op that touches neither encountered nor failure state.
	ValidateAll(records []map[string]any, profileID string) (ValidationOutcome, error)
}

// ProfileLedger is the read side of the run-scoped accumulator of profiles
// exercised and validation failures observed. Test bodies use it to assert
// "no profile failures accumulated so far"; writes happen only inside the
// validator.
type ProfileLedger interface {
	Profiles() []string
	Encountered(profileID string) int
	Failures(profileID string) []string
	Failed(profileID string) bool
}
