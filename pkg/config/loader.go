package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SPLAYSEQ"

var (
	ErrInvalidConfig = errors.New("invalid config")
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("seed", DefaultSeed)
	v.SetDefault("operations", DefaultOperations)
	v.SetDefault("initial_size", DefaultInitialSize)
	v.SetDefault("verify", false)
	v.SetDefault("check_every", DefaultCheckEvery)
	v.SetDefault("stats_window_seconds", DefaultStatsWindowSeconds)
	v.SetDefault("report.format", DefaultReportFormat)
	v.SetDefault("report.publish", false)
	v.SetDefault("report.topic", DefaultReportTopic)
	v.SetDefault("report.partitions", DefaultPartitions)
	v.SetDefault("report.replication_factor", DefaultReplicationFactor)
	v.SetDefault("report.retention_ms", DefaultRetentionMs)
	v.SetDefault("report.kafka.seed_brokers", []string{})
	v.SetDefault("report.kafka.client_id", DefaultClientID)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadBenchConfig reads the config file at path, applies SPLAYSEQ_*
// environment overrides, and validates the result. An empty path loads the
// defaults and environment only.
func LoadBenchConfig(path string) (*BenchConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// GetBenchConfigFromBytes parses data in the given format (yaml, json, toml).
func GetBenchConfigFromBytes(data []byte, format string) (*BenchConfig, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse %s config: %w", format, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*BenchConfig, error) {
	var cfg BenchConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the getters cannot turn into something usable.
func (c *BenchConfig) Validate() error {
	if c.Operations < 0 {
		return fmt.Errorf("%w: operations must not be negative, got %d", ErrInvalidConfig, c.Operations)
	}
	if c.InitialSize < 0 {
		return fmt.Errorf("%w: initial_size must not be negative, got %d", ErrInvalidConfig, c.InitialSize)
	}
	total := 0
	for name, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("%w: weight of %q must not be negative", ErrInvalidConfig, name)
		}
		total += w
	}
	if len(c.Weights) > 0 && total == 0 {
		return fmt.Errorf("%w: at least one operation weight must be positive", ErrInvalidConfig)
	}

	report := c.GetReportConfig()
	if !slices.Contains(ReportFormats, report.GetFormat()) {
		return fmt.Errorf("%w: unknown report format %q", ErrInvalidConfig, report.Format)
	}
	if report.Publish && len(report.GetKafkaConfig().SeedBrokers) == 0 {
		return fmt.Errorf("%w: publishing reports needs report.kafka.seed_brokers", ErrInvalidConfig)
	}
	return nil
}
