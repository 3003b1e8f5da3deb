package profile

import (
	"sort"
	"sync"
)

// Ledger is the run-scoped accumulator of validation evidence: which
// profiles were exercised and which accumulated failures. One ledger per
// run, exclusively owned, never shared across concurrent runs.
//
// Units execute sequentially within a run, but the ledger is the one piece
// of state every sequence can write, so appends take a mutex in case
// independent sequences are ever parallelized.
type Ledger struct {
	mu          sync.Mutex
	encountered map[string]int
	failures    map[string][]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		encountered: make(map[string]int),
		failures:    make(map[string][]string),
	}
}

// recordEncounter notes that a record was validated against the profile.
func (l *Ledger) recordEncounter(profileID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.encountered[profileID]++
}

// addFailures appends formatted issue text to the profile's failure list.
func (l *Ledger) addFailures(profileID string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[profileID] = append(l.failures[profileID], msgs...)
}

// Profiles returns every profile exercised so far, sorted.
func (l *Ledger) Profiles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.encountered))
	for id := range l.encountered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Encountered returns how many records were validated against the profile.
func (l *Ledger) Encountered(profileID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.encountered[profileID]
}

// Failures returns the accumulated failure messages for the profile.
func (l *Ledger) Failures(profileID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.failures[profileID]...)
}

// Failed reports whether the profile accumulated any failure.
func (l *Ledger) Failed(profileID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures[profileID]) > 0
}

// Summary is the per-profile conformance rollup exposed in the run report.
type Summary struct {
	Encountered int      `json:"encountered"`
	Failed      bool     `json:"failed"`
	Messages    []string `json:"messages,omitempty"`
}

// Summarize returns the conformance summary for every exercised profile.
func (l *Ledger) Summarize() map[string]Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]Summary, len(l.encountered))
	for id, count := range l.encountered {
		msgs := append([]string(nil), l.failures[id]...)
		out[id] = Summary{
			Encountered: count,
			Failed:      len(msgs) > 0,
			Messages:    msgs,
		}
	}
	return out
}
