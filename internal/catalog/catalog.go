// Package catalog holds the static per-scenario table of visualization
// variants: their structural prerequisites, ideal data-shape ranges, shape
// preferences and canonical descriptions. The built-in table can be overridden
// from a YAML file and hot-reloaded.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"vizsel/internal/logging"
)

// Range is an inclusive ideal count range. Max == 0 means unbounded.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Declared reports whether the range carries any constraint.
func (r Range) Declared() bool { return r.Min > 0 || r.Max > 0 }

// VariantProfile describes one concrete rendering choice within a scenario.
type VariantProfile struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	// Structural prerequisites enforced by the hard filter.
	NeedsTimeseries       bool `yaml:"needs_timeseries" json:"needs_timeseries"`
	NeedsMultipleEntities bool `yaml:"needs_multiple_entities" json:"needs_multiple_entities"`

	IdealEntityCount   Range `yaml:"ideal_entity_count" json:"ideal_entity_count"`
	IdealMetricCount   Range `yaml:"ideal_metric_count" json:"ideal_metric_count"`
	IdealInstanceCount Range `yaml:"ideal_instance_count" json:"ideal_instance_count"`

	// Default marks the scenario's fallback variant.
	Default bool `yaml:"default" json:"default"`

	// Intrinsic data-shape preferences, matched against the profile by the
	// shape-fitness scorer.
	PrefersHighVariance bool `yaml:"prefers_high_variance" json:"prefers_high_variance"`
	PrefersHierarchy    bool `yaml:"prefers_hierarchy" json:"prefers_hierarchy"`
	PrefersCumulative   bool `yaml:"prefers_cumulative" json:"prefers_cumulative"`
	PrefersPhaseData    bool `yaml:"prefers_phase_data" json:"prefers_phase_data"`
	PrefersBinary       bool `yaml:"prefers_binary" json:"prefers_binary"`
	PrefersPercentage   bool `yaml:"prefers_percentage" json:"prefers_percentage"`
	PrefersAlerts       bool `yaml:"prefers_alerts" json:"prefers_alerts"`
	PrefersFlow         bool `yaml:"prefers_flow" json:"prefers_flow"`
	PrefersRate         bool `yaml:"prefers_rate" json:"prefers_rate"`
	PrefersMultiNumeric bool `yaml:"prefers_multi_numeric" json:"prefers_multi_numeric"`
}

// Catalog maps scenario names to their variant tables.
// Safe for concurrent readers; Replace swaps the whole table atomically.
type Catalog struct {
	mu        sync.RWMutex
	scenarios map[string][]VariantProfile
}

// New creates a catalog from a scenario table.
func New(scenarios map[string][]VariantProfile) *Catalog {
	return &Catalog{scenarios: scenarios}
}

// Variants returns the variant table for a scenario. The returned slice is a
// copy; callers may not mutate catalog state.
func (c *Catalog) Variants(scenario string) []VariantProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src := c.scenarios[scenario]
	out := make([]VariantProfile, len(src))
	copy(out, src)
	return out
}

// Scenarios returns the known scenario names.
func (c *Catalog) Scenarios() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.scenarios))
	for name := range c.scenarios {
		names = append(names, name)
	}
	return names
}

// Lookup finds a variant by name within a scenario. Absence is a
// configuration error: every variant referenced by the pipeline must have a
// catalog entry.
func (c *Catalog) Lookup(scenario, name string) (VariantProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.scenarios[scenario] {
		if v.Name == name {
			return v, nil
		}
	}
	return VariantProfile{}, fmt.Errorf("variant %q not in catalog for scenario %q", name, scenario)
}

// DefaultVariant returns the scenario's marked default, or the first variant
// when none is marked.
func (c *Catalog) DefaultVariant(scenario string) (VariantProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	variants := c.scenarios[scenario]
	for _, v := range variants {
		if v.Default {
			return v, true
		}
	}
	if len(variants) > 0 {
		return variants[0], true
	}
	return VariantProfile{}, false
}

// Replace atomically swaps the scenario table.
func (c *Catalog) Replace(scenarios map[string][]VariantProfile) {
	c.mu.Lock()
	c.scenarios = scenarios
	c.mu.Unlock()
	logging.Catalog("Catalog replaced: %d scenarios", len(scenarios))
}

// catalogFile is the YAML override format.
type catalogFile struct {
	Scenarios map[string][]VariantProfile `yaml:"scenarios"`
}

// LoadFile reads a catalog override from YAML.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(cf.Scenarios) == 0 {
		return nil, fmt.Errorf("catalog %s declares no scenarios", path)
	}
	for scenario, variants := range cf.Scenarios {
		if len(variants) == 0 {
			return nil, fmt.Errorf("catalog %s: scenario %q has no variants", path, scenario)
		}
		for _, v := range variants {
			if v.Name == "" {
				return nil, fmt.Errorf("catalog %s: scenario %q has an unnamed variant", path, scenario)
			}
		}
	}
	logging.Catalog("Loaded catalog override from %s: %d scenarios", path, len(cf.Scenarios))
	return New(cf.Scenarios), nil
}
