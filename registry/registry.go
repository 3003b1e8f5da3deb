// Package registry binds the run plan to statically registered sequences
// and performs all load-time validation. Configuration errors are fatal
// here, before any run starts, and name the offending sequence or test.
package registry

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/interoplab/conformd/types"
)

// Registry holds the validated, ordered set of runnable sequences.
type Registry struct {
	config Config
	specs  []types.SequenceSpec
}

// Config contains registry configuration.
type Config struct {
	Log      log.Logger
	PlanFile string

	// Sequences is the statically registered sequence catalog the plan
	// selects from. Declared at process start, immutable afterwards.
	Sequences []types.Sequence

	// SeedKeys are context keys populated by the operator before the run
	// (credentials, subject identifier). A plan may require them without
	// any sequence defining them.
	SeedKeys []string
}

// NewRegistry loads the plan, binds it to the registered sequences, and
// validates it.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.PlanFile == "" {
		return nil, fmt.Errorf("plan file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	plan, err := loadPlan(cfg.PlanFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	specs, err := bind(plan, cfg.Sequences, cfg.SeedKeys)
	if err != nil {
		return nil, err
	}

	cfg.Log.Debug("Registry loaded", "len(sequences)", len(specs))

	return &Registry{config: cfg, specs: specs}, nil
}

// GetSequences returns the runnable sequences in plan order.
func (r *Registry) GetSequences() []types.SequenceSpec {
	return r.specs
}

// GetSequencesSupporting returns the sequences declaring support for a
// record type.
func (r *Registry) GetSequencesSupporting(recordType string) []types.SequenceSpec {
	var out []types.SequenceSpec
	for _, spec := range r.specs {
		for _, rt := range spec.Supports {
			if rt == recordType {
				out = append(out, spec)
				break
			}
		}
	}
	return out
}

// GetConfig returns the registry configuration.
func (r *Registry) GetConfig() Config {
	return r.config
}

// loadPlan reads and parses the plan config file.
func loadPlan(path string) (*types.PlanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var plan types.PlanConfig
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	if len(plan.Sequences) == 0 {
		return nil, fmt.Errorf("plan declares no sequences")
	}
	return &plan, nil
}

// bind resolves each plan entry to its registered sequence, applies test id
// prefixes, and enforces the static invariants: unique sequence ids, unique
// test ids, and every required key defined by the seed or by some earlier
// sequence.
func bind(plan *types.PlanConfig, catalog []types.Sequence, seedKeys []string) ([]types.SequenceSpec, error) {
	byID := make(map[string]types.Sequence, len(catalog))
	for _, seq := range catalog {
		if _, dup := byID[seq.ID]; dup {
			return nil, fmt.Errorf("sequence %q registered twice", seq.ID)
		}
		byID[seq.ID] = seq
	}

	defined := make(map[string]bool, len(seedKeys))
	for _, k := range seedKeys {
		defined[k] = true
	}

	seenSequence := make(map[string]bool)
	seenTest := make(map[string]string) // test id -> sequence id
	specs := make([]types.SequenceSpec, 0, len(plan.Sequences))

	for _, entry := range plan.Sequences {
		if seenSequence[entry.ID] {
			return nil, fmt.Errorf("duplicate sequence %q in plan", entry.ID)
		}
		seenSequence[entry.ID] = true

		seq, ok := byID[entry.ID]
		if !ok {
			return nil, fmt.Errorf("plan references unknown sequence %q", entry.ID)
		}

		// Required inputs must come from the seed or an earlier sequence's
		// defines. Catching this here turns an ordering bug into a load
		// error instead of a run full of skips.
		for _, key := range entry.Requires {
			if !defined[key] {
				return nil, fmt.Errorf("sequence %q requires key %q which nothing earlier defines", entry.ID, key)
			}
		}
		for _, key := range entry.Defines {
			defined[key] = true
		}

		spec := types.SequenceSpec{
			Sequence:     seq,
			TestIDPrefix: entry.TestIDPrefix,
			Requires:     append([]string(nil), entry.Requires...),
			Defines:      append([]string(nil), entry.Defines...),
			Supports:     append([]string(nil), entry.Supports...),
		}

		// Apply the prefix and check test id uniqueness across the plan.
		spec.Tests = make([]types.Test, len(seq.Tests))
		copy(spec.Tests, seq.Tests)
		for i := range spec.Tests {
			id := entry.TestIDPrefix + spec.Tests[i].ID
			if id == "" {
				return nil, fmt.Errorf("sequence %q declares a test with an empty id", entry.ID)
			}
			if owner, dup := seenTest[id]; dup {
				return nil, fmt.Errorf("duplicate test id %q in sequences %q and %q", id, owner, entry.ID)
			}
			seenTest[id] = entry.ID
			spec.Tests[i].ID = id
		}

		specs = append(specs, spec)
	}

	return specs, nil
}
