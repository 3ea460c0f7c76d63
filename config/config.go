// Package config holds the versioned, validated parameter sets the round
// pipeline runs against: emission schedule, role weights, verifier
// selection, and round timing. The Builder-with-presets pattern follows
// the teacher consensus module's config package; the parameter set itself
// is specific to this domain.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmrl789/ippan-core/distribution"
	"github.com/dmrl789/ippan-core/emission"
	"github.com/dmrl789/ippan-core/selector"
)

// NetworkType selects one of the built-in parameter presets.
type NetworkType string

const (
	MainnetNetwork NetworkType = "mainnet"
	TestnetNetwork NetworkType = "testnet"
	LocalNetwork   NetworkType = "local"
)

// Config bundles every parameter set the round executor reads.
type Config struct {
	Version          int                      `yaml:"version"`
	Emission         emission.Params          `yaml:"emission"`
	RoleWeights      distribution.RoleWeights `yaml:"role_weights"`
	Selection        selector.Params          `yaml:"selection"`
	RoundInterval    time.Duration            `yaml:"round_interval"`
	FeeCapMicro      uint64                   `yaml:"fee_cap_micro"`
	MinValidatorBond uint64                   `yaml:"min_validator_bond"`
}

// Builder provides a fluent, fail-fast constructor for Config.
type Builder struct {
	config *Config
	err    error
}

// NewBuilder starts from mainnet-shaped defaults.
func NewBuilder() *Builder {
	clone := MainnetConfig
	return &Builder{config: &clone}
}

// FromPreset replaces the builder's working config with a named preset.
func (b *Builder) FromPreset(preset NetworkType) *Builder {
	if b.err != nil {
		return b
	}
	switch preset {
	case MainnetNetwork:
		clone := MainnetConfig
		b.config = &clone
	case TestnetNetwork:
		clone := TestnetConfig
		b.config = &clone
	case LocalNetwork:
		clone := LocalConfig
		b.config = &clone
	default:
		b.err = fmt.Errorf("config: unknown preset %q", preset)
	}
	return b
}

// WithFeeCap overrides the round fee cap.
func (b *Builder) WithFeeCap(capMicro uint64) *Builder {
	if b.err != nil {
		return b
	}
	b.config.FeeCapMicro = capMicro
	return b
}

// WithVerifierCount overrides the selection verifier count.
func (b *Builder) WithVerifierCount(count int) *Builder {
	if b.err != nil {
		return b
	}
	if count < 1 {
		b.err = fmt.Errorf("config: verifier count must be at least 1, got %d", count)
		return b
	}
	b.config.Selection.VerifierCount = count
	return b
}

// WithRoundInterval overrides the minimum interval between rounds.
func (b *Builder) WithRoundInterval(interval time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if interval <= 0 {
		b.err = fmt.Errorf("config: round interval must be positive, got %s", interval)
		return b
	}
	b.config.RoundInterval = interval
	return b
}

// WithMinValidatorBond overrides the minimum bond required for selection
// eligibility.
func (b *Builder) WithMinValidatorBond(bondMicro uint64) *Builder {
	if b.err != nil {
		return b
	}
	b.config.MinValidatorBond = bondMicro
	return b
}

// Build validates and returns the assembled config.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := Validate(b.config); err != nil {
		return nil, err
	}
	return b.config, nil
}

// Validate checks structural invariants that every config must satisfy
// regardless of how it was constructed.
func Validate(c *Config) error {
	if c.Selection.VerifierCount < 1 {
		return fmt.Errorf("config: selection.verifier_count must be at least 1")
	}
	if c.Emission.HalvingIntervalRounds == 0 {
		return fmt.Errorf("config: emission.halving_interval_rounds must be nonzero")
	}
	if c.RoundInterval <= 0 {
		return fmt.Errorf("config: round_interval must be positive")
	}
	return nil
}

// LoadFile parses a YAML config file and validates it.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Preset configurations, value-typed so FromPreset can clone without
// aliasing the package-level var.
var (
	MainnetConfig = Config{
		Version:          1,
		Emission:         emission.DefaultParams(),
		RoleWeights:      distribution.DefaultRoleWeights(),
		Selection:        selector.Params{MinReputationRaw: 500_000, VerifierCount: 21},
		RoundInterval:    200 * time.Millisecond,
		FeeCapMicro:      10_000 * 100_000_000,
		MinValidatorBond: 1_000 * 100_000_000,
	}

	TestnetConfig = Config{
		Version: 1,
		Emission: emission.Params{
			InitialRewardMicro:    50 * 100_000_000,
			HalvingIntervalRounds: 100_000,
			SupplyCapMicro:        emission.SupplyCapMicro,
		},
		RoleWeights:      distribution.DefaultRoleWeights(),
		Selection:        selector.Params{MinReputationRaw: 300_000, VerifierCount: 11},
		RoundInterval:    100 * time.Millisecond,
		FeeCapMicro:      10_000 * 100_000_000,
		MinValidatorBond: 100 * 100_000_000,
	}

	LocalConfig = Config{
		Version: 1,
		Emission: emission.Params{
			InitialRewardMicro:    50 * 100_000_000,
			HalvingIntervalRounds: 1_000,
			SupplyCapMicro:        emission.SupplyCapMicro,
		},
		RoleWeights:      distribution.DefaultRoleWeights(),
		Selection:        selector.Params{MinReputationRaw: 0, VerifierCount: 3},
		RoundInterval:    10 * time.Millisecond,
		FeeCapMicro:      10_000 * 100_000_000,
		MinValidatorBond: 0,
	}
)
