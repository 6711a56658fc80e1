// Package config loads and validates the coordinator's configuration file,
// covering the [rpc], [api], [aggregation], [pet] and [logging] sections.
// Loading reads one explicitly named file over built-in defaults; there
// is no file discovery and no environment-variable overlay.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors, following the same ordered-check,
// package-level error variable convention this struct's teacher used for
// its own Valid method.
var (
	ErrInvalidMinSum      = errors.New("config: pet.min_sum must be >= 1")
	ErrInvalidMaxSum      = errors.New("config: pet.max_sum must be >= min_sum")
	ErrInvalidMinUpdate   = errors.New("config: pet.min_update must be >= 1")
	ErrInvalidMaxUpdate   = errors.New("config: pet.max_update must be >= min_update")
	ErrInvalidSumRatio    = errors.New("config: pet.sum ratio must be in (0,1)")
	ErrInvalidUpdateRatio = errors.New("config: pet.update ratio must be in (0,1)")
	ErrInvalidPhaseTimes  = errors.New("config: pet phase_times_min must be <= phase_times_max")
	ErrMissingBindAddr    = errors.New("config: bind_address must not be empty")
	ErrMissingCoordAddr   = errors.New("config: rpc.coordinator_address must not be empty")
	ErrUnknownBackend     = errors.New("config: aggregation.backend must not be empty")
)

// RPCConfig is the [rpc] section: where the coordinator listens for the
// aggregator's end_training calls, and where it dials out to reach the
// aggregator's aggregate method.
type RPCConfig struct {
	BindAddress        string `mapstructure:"bind_address"`
	CoordinatorAddress string `mapstructure:"coordinator_address"`
}

// APIConfig is the [api] section: the participant-facing HTTP façade's
// bind address.
type APIConfig struct {
	BindAddress string `mapstructure:"bind_address"`
}

// AggregationConfig is the [aggregation] section. The backend's internals
// are opaque (§1 scope); only the selection string crosses this boundary.
type AggregationConfig struct {
	Backend string `mapstructure:"backend"`
}

// PETConfig is the [pet] section: the round-gating thresholds the phase
// state machine checks on every request and timer tick.
type PETConfig struct {
	MinSum    int     `mapstructure:"min_sum"`
	MaxSum    int     `mapstructure:"max_sum"`
	MinUpdate int     `mapstructure:"min_update"`
	MaxUpdate int     `mapstructure:"max_update"`
	Sum       float64 `mapstructure:"sum"`
	Update    float64 `mapstructure:"update"`

	PhaseTimesMin time.Duration `mapstructure:"phase_times_min"`
	PhaseTimesMax time.Duration `mapstructure:"phase_times_max"`

	MaxAggregators int `mapstructure:"max_aggregators"`

	ErrorRecoveryCooldown time.Duration `mapstructure:"error_recovery_cooldown"`
}

// LoggingConfig is the [logging] section.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the top-level coordinator configuration, mirroring §6's file
// sections one-to-one.
type Config struct {
	RPC         RPCConfig         `mapstructure:"rpc"`
	API         APIConfig         `mapstructure:"api"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	PET         PETConfig         `mapstructure:"pet"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// Default returns a Config with the reference implementation's defaults:
// a single-process deployment, python aggregation backend, and phase
// timings generous enough for interactive local testing.
func Default() Config {
	return Config{
		RPC: RPCConfig{
			BindAddress:        "127.0.0.1:8081",
			CoordinatorAddress: "127.0.0.1:8082",
		},
		API: APIConfig{
			BindAddress: "127.0.0.1:8080",
		},
		Aggregation: AggregationConfig{
			Backend: "python",
		},
		PET: PETConfig{
			MinSum:                1,
			MaxSum:                100,
			MinUpdate:             1,
			MaxUpdate:             1000,
			Sum:                   0.01,
			Update:                0.1,
			PhaseTimesMin:         5 * time.Second,
			PhaseTimesMax:         5 * time.Minute,
			MaxAggregators:        1000,
			ErrorRecoveryCooldown: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML configuration file at path via viper, overlaying it
// onto Default(), and validates the result. An empty path loads defaults
// only. No environment variables are read, here or in pet/logging.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := cfg.Valid(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("rpc.bind_address", cfg.RPC.BindAddress)
	v.SetDefault("rpc.coordinator_address", cfg.RPC.CoordinatorAddress)
	v.SetDefault("api.bind_address", cfg.API.BindAddress)
	v.SetDefault("aggregation.backend", cfg.Aggregation.Backend)
	v.SetDefault("pet.min_sum", cfg.PET.MinSum)
	v.SetDefault("pet.max_sum", cfg.PET.MaxSum)
	v.SetDefault("pet.min_update", cfg.PET.MinUpdate)
	v.SetDefault("pet.max_update", cfg.PET.MaxUpdate)
	v.SetDefault("pet.sum", cfg.PET.Sum)
	v.SetDefault("pet.update", cfg.PET.Update)
	v.SetDefault("pet.phase_times_min", cfg.PET.PhaseTimesMin)
	v.SetDefault("pet.phase_times_max", cfg.PET.PhaseTimesMax)
	v.SetDefault("pet.max_aggregators", cfg.PET.MaxAggregators)
	v.SetDefault("pet.error_recovery_cooldown", cfg.PET.ErrorRecoveryCooldown)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// Valid validates the configuration, checking the [pet] thresholds that
// gate the phase state machine first since those are the values a
// misconfigured deployment is most likely to get wrong.
func (c Config) Valid() error {
	if c.PET.MinSum < 1 {
		return ErrInvalidMinSum
	}
	if c.PET.MaxSum < c.PET.MinSum {
		return ErrInvalidMaxSum
	}
	if c.PET.MinUpdate < 1 {
		return ErrInvalidMinUpdate
	}
	if c.PET.MaxUpdate < c.PET.MinUpdate {
		return ErrInvalidMaxUpdate
	}
	if c.PET.Sum <= 0 || c.PET.Sum >= 1 {
		return ErrInvalidSumRatio
	}
	if c.PET.Update <= 0 || c.PET.Update >= 1 {
		return ErrInvalidUpdateRatio
	}
	if c.PET.PhaseTimesMin > c.PET.PhaseTimesMax {
		return ErrInvalidPhaseTimes
	}
	if c.API.BindAddress == "" || c.RPC.BindAddress == "" {
		return ErrMissingBindAddr
	}
	if c.RPC.CoordinatorAddress == "" {
		return ErrMissingCoordAddr
	}
	if c.Aggregation.Backend == "" {
		return ErrUnknownBackend
	}
	return nil
}
