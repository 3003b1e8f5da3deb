package profile

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/interoplab/conformd/types"
)

// Validator checks structural conformance of records against profile
// definitions and records every validation into the run's ledger. The
// ledger is injected at construction rather than accessed as ambient state
// so independent runs can validate in parallel.
type Validator struct {
	source Source
	ledger *Ledger
	log    log.Logger
}

// NewValidator creates a validator bound to one run's ledger.
func NewValidator(source Source, ledger *Ledger, logger log.Logger) *Validator {
	if logger == nil {
		logger = log.New()
	}
	return &Validator{source: source, ledger: ledger, log: logger}
}

var _ types.RecordValidator = (*Validator)(nil)

// Validate checks a record against the profile, including the
// separately-retrievable identity check (a top-level non-empty id).
func (v *Validator) Validate(record map[string]any, profileID string) (types.ValidationOutcome, error) {
	return v.validate(record, profileID, false)
}

// ValidateEmbedded checks a record inlined within its parent. No
// independent identity is required, structural constraints still apply.
func (v *Validator) ValidateEmbedded(record map[string]any, profileID string) (types.ValidationOutcome, error) {
	return v.validate(record, profileID, true)
}

// ValidateAll validates each record in turn and merges the issues into one
// outcome. An empty record set is a no-op: it neither populates encountered
// nor failure state.
func (v *Validator) ValidateAll(records []map[string]any, profileID string) (types.ValidationOutcome, error) {
	outcome := types.ValidationOutcome{ProfileID: profileID}
	for _, record := range records {
		res, err := v.validate(record, profileID, false)
		if err != nil {
			return outcome, err
		}
		outcome.Issues = append(outcome.Issues, res.Issues...)
	}
	return outcome, nil
}

func (v *Validator) validate(record map[string]any, profileID string, embedded bool) (types.ValidationOutcome, error) {
	outcome := types.ValidationOutcome{ProfileID: profileID}

	def, err := v.source.Load(profileID)
	if err != nil {
		// A malformed or missing schema is the caller's error result, never
		// silently swallowed and never a ledger entry.
		return outcome, err
	}

	if !embedded {
		if id, _ := record["id"].(string); id == "" {
			outcome.Issues = append(outcome.Issues, types.ValidationIssue{
				Severity: types.SeverityError,
				Location: "id",
				Message:  "record has no id and is not separately retrievable",
			})
		}
	}

	if def.RecordType != "" {
		if rt, _ := record["record_type"].(string); rt != "" && rt != def.RecordType {
			outcome.Issues = append(outcome.Issues, types.ValidationIssue{
				Severity: types.SeverityError,
				Location: "record_type",
				Message:  fmt.Sprintf("expected record type %q, found %q", def.RecordType, rt),
			})
		}
	}

	for _, el := range def.Elements {
		outcome.Issues = append(outcome.Issues, checkElement(record, el)...)
	}

	v.ledger.recordEncounter(profileID)
	if outcome.HasErrors() {
		msgs := make([]string, 0)
		for _, m := range outcome.ErrorMessages() {
			msgs = append(msgs, fmt.Sprintf("profile %s: %s", profileID, m))
		}
		v.ledger.addFailures(profileID, msgs)
	}

	v.log.Debug("validated record",
		"profile", profileID,
		"issues", len(outcome.Issues),
		"conformant", !outcome.HasErrors())

	return outcome, nil
}

// checkElement applies one element constraint to the record.
func checkElement(record map[string]any, el Element) []types.ValidationIssue {
	values := resolvePath(record, el.Path)

	var issues []types.ValidationIssue
	if len(values) < el.Min {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityError,
			Location: el.Path,
			Message:  fmt.Sprintf("required element missing: found %d, need at least %d", len(values), el.Min),
		})
	}
	if !el.maxAllows(len(values)) {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityError,
			Location: el.Path,
			Message:  fmt.Sprintf("cardinality exceeded: found %d, at most %s allowed", len(values), el.Max),
		})
	}

	if len(el.Binding) > 0 {
		for _, val := range values {
			s, ok := val.(string)
			if !ok {
				issues = append(issues, types.ValidationIssue{
					Severity: types.SeverityWarning,
					Location: el.Path,
					Message:  fmt.Sprintf("bound element is not a coded string (%T)", val),
				})
				continue
			}
			if !contains(el.Binding, s) {
				issues = append(issues, types.ValidationIssue{
					Severity: types.SeverityError,
					Location: el.Path,
					Message:  fmt.Sprintf("value %q not in bound value set", s),
				})
			}
		}
	}
	return issues
}

// resolvePath walks a dotted path through nested maps, fanning out over
// arrays, and returns every value found at the leaf.
func resolvePath(record map[string]any, path string) []any {
	current := []any{any(record)}
	for _, segment := range strings.Split(path, ".") {
		var next []any
		for _, node := range current {
			switch n := node.(type) {
			case map[string]any:
				if v, ok := n[segment]; ok && v != nil {
					next = append(next, flatten(v)...)
				}
			case []any:
				for _, item := range n {
					if m, ok := item.(map[string]any); ok {
						if v, ok := m[segment]; ok && v != nil {
							next = append(next, flatten(v)...)
						}
					}
				}
			}
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return current
}

// flatten expands a slice value into its items so cardinality counts
// repetitions, not containers.
func flatten(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	return []any{v}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
