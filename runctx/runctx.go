// Package runctx holds the per-run mutable session state shared across
// sequences: named values produced and consumed by test bodies, the ids of
// records seen so far keyed by record type, and the sequence-scoped no-data
// short-circuit flag.
//
// A Context is exclusively owned by one run and written by one goroutine at
// a time (units execute strictly sequentially), so it carries no locking.
package runctx

import "sort"

// Context is the run's key/value session store. One instance per run,
// created at run start. Once a key is set it stays visible to every
// subsequently executed unit for the remainder of the run.
type Context struct {
	values       map[string]any
	seenIDs      map[string][]string
	noData       bool
	noDataReason string
}

// New creates an empty run context.
func New() *Context {
	return &Context{
		values:  make(map[string]any),
		seenIDs: make(map[string][]string),
	}
}

// NewSeeded creates a run context pre-populated with operator-supplied
// values such as the bearer credential and subject identifier.
func NewSeeded(seed map[string]any) *Context {
	c := New()
	for k, v := range seed {
		c.values[k] = v
	}
	return c
}

// Put stores a named value. Later units in the same or a dependent sequence
// read it back; sequences declare these writes as their "defines" keys.
func (c *Context) Put(key string, value any) {
	c.values[key] = value
}

// Get returns a stored value and whether it was present.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns a stored string value, or "" when absent or not a string.
func (c *Context) String(key string) string {
	if v, ok := c.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Has reports whether key is present with a non-empty value. The sequence
// precondition gate uses this to decide whether required inputs exist.
func (c *Context) Has(key string) bool {
	v, ok := c.values[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

// Keys returns all stored keys in sorted order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddSeenID records that a record of the given type was observed. Duplicate
// ids are collapsed; insertion order is preserved.
func (c *Context) AddSeenID(recordType, id string) {
	for _, existing := range c.seenIDs[recordType] {
		if existing == id {
			return
		}
	}
	c.seenIDs[recordType] = append(c.seenIDs[recordType], id)
}

// SeenIDs returns the ids observed for a record type, in insertion order.
func (c *Context) SeenIDs(recordType string) []string {
	return c.seenIDs[recordType]
}

// SetNoData raises the short-circuit flag: every subsequent unit in the
// same sequence skips without invoking its body. The flag is re-evaluated
// per sequence; data already written through Put is unaffected.
func (c *Context) SetNoData(reason string) {
	c.noData = true
	c.noDataReason = reason
}

// NoData reports whether the short-circuit flag is raised.
func (c *Context) NoData() bool {
	return c.noData
}

// NoDataReason returns the reason given when the flag was raised.
func (c *Context) NoDataReason() string {
	return c.noDataReason
}

// ResetNoData lowers the short-circuit flag. The runner calls this at every
// sequence boundary; the flag never propagates across sequences.
func (c *Context) ResetNoData() {
	c.noData = false
	c.noDataReason = ""
}
