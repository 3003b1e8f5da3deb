// Package sequences contains the built-in conformance sequences the engine
// ships with: an authorization probe, record retrieval with profile
// validation, and the closing assertion over accumulated profile evidence.
// The run plan selects which of these run, in which order, and with which
// metadata.
package sequences

import "github.com/interoplab/conformd/types"

// Run-context keys exchanged between the built-in sequences. The seed keys
// are populated by the operator before the run starts.
const (
	KeyBaseURL      = "base-url"           // seed
	KeyBearer       = "bearer-credential"  // seed
	KeySubject      = "subject-identifier" // seed
	KeyCapabilities = "capabilities"
	KeyRecordIDs    = "record-ids"
)

// All returns the built-in sequence catalog for registration.
func All() []types.Sequence {
	return []types.Sequence{
		Authorization(),
		RecordRetrieval(),
		ProfileConformance(),
	}
}
