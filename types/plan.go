package types

import "time"

// SequencePlan is the per-sequence metadata consumed from configuration.
// The engine treats it as static input, validated at load time by the
// registry: duplicate ids or a required key nothing earlier defines is a
// configuration error reported before any run starts.
type SequencePlan struct {
	ID           string   `yaml:"id"`
	TestIDPrefix string   `yaml:"test_id_prefix,omitempty"`
	Requires     []string `yaml:"requires,omitempty"`
	Defines      []string `yaml:"defines,omitempty"`
	Supports     []string `yaml:"supports,omitempty"`
}

// PlanConfig is the complete run plan: which registered sequences to run,
// in which order, and the context keys they exchange.
type PlanConfig struct {
	Sequences []SequencePlan `yaml:"sequences"`
	Metadata  struct {
		DefaultTimeout time.Duration `yaml:"default_timeout,omitempty"`
	} `yaml:"metadata,omitempty"`
}
