package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interoplab/conformd/types"
)

func observationSource() StaticSource {
	return StaticSource{
		"core-observation": &Definition{
			ID:         "core-observation",
			RecordType: "observation",
			Elements: []Element{
				{Path: "code", Min: 1, Max: "1"},
				{Path: "status", Min: 1, Max: "1", Binding: []string{"final", "preliminary", "amended"}},
				{Path: "component.value", Min: 0},
			},
		},
	}
}

func conformantObservation() map[string]any {
	return map[string]any{
		"id":          "obs-1",
		"record_type": "observation",
		"code":        "8480-6",
		"status":      "final",
	}
}

func TestValidateConformantRecord(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	outcome, err := v.Validate(conformantObservation(), "core-observation")
	require.NoError(t, err)
	assert.False(t, outcome.HasErrors())
	assert.Equal(t, "core-observation", outcome.ProfileID)

	assert.Equal(t, 1, ledger.Encountered("core-observation"))
	assert.False(t, ledger.Failed("core-observation"))
}

func TestValidateRequiredElementMissing(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	record := conformantObservation()
	delete(record, "code")

	outcome, err := v.Validate(record, "core-observation")
	require.NoError(t, err)
	require.True(t, outcome.HasErrors())
	assert.Contains(t, outcome.Issues[0].Message, "required element missing")
	assert.Equal(t, "code", outcome.Issues[0].Location)

	assert.True(t, ledger.Failed("core-observation"))
	require.Len(t, ledger.Failures("core-observation"), 1)
	assert.Contains(t, ledger.Failures("core-observation")[0], "profile core-observation")
}

func TestValidateCardinalityCeiling(t *testing.T) {
	v := NewValidator(observationSource(), NewLedger(), nil)

	record := conformantObservation()
	record["code"] = []any{"8480-6", "8462-4"}

	outcome, err := v.Validate(record, "core-observation")
	require.NoError(t, err)
	require.True(t, outcome.HasErrors())
	assert.Contains(t, outcome.Issues[0].Message, "cardinality exceeded")
}

func TestValidateBinding(t *testing.T) {
	v := NewValidator(observationSource(), NewLedger(), nil)

	record := conformantObservation()
	record["status"] = "bogus"

	outcome, err := v.Validate(record, "core-observation")
	require.NoError(t, err)
	require.True(t, outcome.HasErrors())
	assert.Contains(t, outcome.Issues[0].Message, `value "bogus" not in bound value set`)

	// A non-string value at a bound path warns rather than fails.
	record["status"] = 42.0
	outcome, err = v.Validate(record, "core-observation")
	require.NoError(t, err)
	assert.False(t, outcome.HasErrors())
	require.NotEmpty(t, outcome.Issues)
	assert.Equal(t, types.SeverityWarning, outcome.Issues[0].Severity)
}

func TestValidateRetrievabilityCheck(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	record := conformantObservation()
	delete(record, "id")

	outcome, err := v.Validate(record, "core-observation")
	require.NoError(t, err)
	require.True(t, outcome.HasErrors())
	assert.Contains(t, outcome.Issues[0].Message, "not separately retrievable")

	// The same record inlined in a parent has no identity requirement.
	outcome, err = v.ValidateEmbedded(record, "core-observation")
	require.NoError(t, err)
	assert.False(t, outcome.HasErrors())

	// Both validations still count as encounters.
	assert.Equal(t, 2, ledger.Encountered("core-observation"))
}

func TestValidateRecordTypeMismatch(t *testing.T) {
	v := NewValidator(observationSource(), NewLedger(), nil)

	record := conformantObservation()
	record["record_type"] = "condition"

	outcome, err := v.Validate(record, "core-observation")
	require.NoError(t, err)
	require.True(t, outcome.HasErrors())
	assert.Contains(t, outcome.Issues[0].Message, `expected record type "observation"`)
}

func TestValidateUnknownProfileIsError(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	_, err := v.Validate(conformantObservation(), "core-medication")
	require.Error(t, err)

	// A missing schema never shows up as ledger evidence.
	assert.Empty(t, ledger.Profiles())
	assert.Equal(t, 0, ledger.Encountered("core-medication"))
}

func TestValidateAllEmptySetIsNoOp(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	outcome, err := v.ValidateAll(nil, "core-observation")
	require.NoError(t, err)
	assert.False(t, outcome.HasErrors())

	assert.Empty(t, ledger.Profiles())
	assert.Equal(t, 0, ledger.Encountered("core-observation"))
}

func TestValidateAllMergesIssues(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	bad := conformantObservation()
	delete(bad, "code")

	outcome, err := v.ValidateAll([]map[string]any{conformantObservation(), bad}, "core-observation")
	require.NoError(t, err)
	assert.True(t, outcome.HasErrors())
	assert.Equal(t, 2, ledger.Encountered("core-observation"))
	assert.Len(t, ledger.Failures("core-observation"), 1)
}

// Validating the same profile in two different sequences accumulates a
// single ledger entry with both encounters.
func TestLedgerAccumulatesAcrossValidations(t *testing.T) {
	ledger := NewLedger()
	v := NewValidator(observationSource(), ledger, nil)

	_, err := v.Validate(conformantObservation(), "core-observation")
	require.NoError(t, err)

	bad := conformantObservation()
	delete(bad, "code")
	_, err = v.Validate(bad, "core-observation")
	require.NoError(t, err)

	summary := ledger.Summarize()
	require.Contains(t, summary, "core-observation")
	assert.Equal(t, 2, summary["core-observation"].Encountered)
	assert.True(t, summary["core-observation"].Failed)
	assert.Len(t, summary["core-observation"].Messages, 1)
}

func TestResolvePath(t *testing.T) {
	record := map[string]any{
		"code": "8480-6",
		"component": []any{
			map[string]any{"value": "120"},
			map[string]any{"value": "80"},
			map[string]any{"unit": "mmHg"},
		},
		"subject": map[string]any{"reference": "patient/p-1"},
	}

	tests := []struct {
		name string
		path string
		want []any
	}{
		{"top level scalar", "code", []any{"8480-6"}},
		{"nested map", "subject.reference", []any{"patient/p-1"}},
		{"array fan-out", "component.value", []any{"120", "80"}},
		{"absent leaf", "component.code", nil},
		{"absent root", "category", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolvePath(record, tt.path))
		})
	}
}
