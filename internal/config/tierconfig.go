package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// TierConfig holds the per-agent capacities and thresholds driving
// transfer, eviction, and promotion. A resolved TierConfig is immutable
// for the duration of an operation; thread it as a parameter, never
// re-resolve mid-operation.
type TierConfig struct {
	Tier1Capacity       int     `yaml:"tier1_capacity"`
	Tier2Capacity       int     `yaml:"tier2_capacity"`
	MatchThreshold      float64 `yaml:"match_threshold"`
	HeatAlpha           float64 `yaml:"heat_alpha"`
	HeatBeta            float64 `yaml:"heat_beta"`
	HeatGamma           float64 `yaml:"heat_gamma"`
	PromotionThreshold  float64 `yaml:"promotion_threshold"`
	Tier4Capacity       int     `yaml:"tier4_capacity"`
	ImportanceThreshold float64 `yaml:"importance_threshold"`
}

// Retrieval limits and join timeout shared by all agents.
const (
	Tier1RetrieveLimit = 5
	Tier2RetrieveLimit = 10
	Tier3RetrieveLimit = 8
	Tier4RetrieveLimit = 3

	RetrieveTimeout = 30 * time.Second
)

// DefaultTierConfig returns the documented defaults. The heat
// coefficients are the canonical alpha=beta=gamma=1.0 triple.
func DefaultTierConfig() TierConfig {
	return TierConfig{
		Tier1Capacity:       7,
		Tier2Capacity:       200,
		MatchThreshold:      0.6,
		HeatAlpha:           1.0,
		HeatBeta:            1.0,
		HeatGamma:           1.0,
		PromotionThreshold:  5.0,
		Tier4Capacity:       1000,
		ImportanceThreshold: 0.8,
	}
}

// Resolver resolves the TierConfig for an agent: defaults overlaid with
// any per-agent override from the optional YAML file. Safe for
// concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	overrides map[string]TierConfig
}

// tierFile is the on-disk override format: defaults section plus a map
// of per-agent sections.
type tierFile struct {
	Defaults *TierConfig           `yaml:"defaults"`
	Agents   map[string]TierConfig `yaml:"agents"`
}

// NewResolver creates a resolver. path may be empty, in which case every
// agent gets the built-in defaults.
func NewResolver(path string) (*Resolver, error) {
	r := &Resolver{overrides: make(map[string]TierConfig)}
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier config: %w", err)
	}

	var file tierFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tier config: %w", err)
	}

	base := DefaultTierConfig()
	if file.Defaults != nil {
		base = overlay(base, *file.Defaults)
	}
	r.overrides[""] = base

	for agentID, override := range file.Agents {
		r.overrides[agentID] = overlay(base, override)
	}

	return r, nil
}

// Resolve returns the effective TierConfig for an agent.
func (r *Resolver) Resolve(agentID string) TierConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.overrides[agentID]; ok {
		return cfg
	}
	if cfg, ok := r.overrides[""]; ok {
		return cfg
	}
	return DefaultTierConfig()
}

// overlay applies non-zero fields of o on top of base. Zero values in
// the YAML mean "keep the default"; capacities and thresholds of zero
// are never valid settings.
func overlay(base, o TierConfig) TierConfig {
	if o.Tier1Capacity > 0 {
		base.Tier1Capacity = o.Tier1Capacity
	}
	if o.Tier2Capacity > 0 {
		base.Tier2Capacity = o.Tier2Capacity
	}
	if o.MatchThreshold > 0 {
		base.MatchThreshold = o.MatchThreshold
	}
	if o.HeatAlpha > 0 {
		base.HeatAlpha = o.HeatAlpha
	}
	if o.HeatBeta > 0 {
		base.HeatBeta = o.HeatBeta
	}
	if o.HeatGamma > 0 {
		base.HeatGamma = o.HeatGamma
	}
	if o.PromotionThreshold > 0 {
		base.PromotionThreshold = o.PromotionThreshold
	}
	if o.Tier4Capacity > 0 {
		base.Tier4Capacity = o.Tier4Capacity
	}
	if o.ImportanceThreshold > 0 {
		base.ImportanceThreshold = o.ImportanceThreshold
	}
	return base
}
