package config

import (
	"time"
)

const (
	DefaultSeed               = int64(1)
	DefaultOperations         = 10000
	DefaultInitialSize        = 1000
	DefaultCheckEvery         = 100
	DefaultStatsWindowSeconds = 300

	DefaultReportFormat      = "table"
	DefaultReportTopic       = "splayseq-bench-reports"
	DefaultPartitions        = int32(1)
	DefaultReplicationFactor = int16(1)
	DefaultRetentionMs       = int64(7 * 24 * time.Hour / time.Millisecond)

	DefaultClientID = "splayseq"
)

// ReportFormats lists the accepted values of ReportConfig.Format.
var ReportFormats = []string{"table", "json", "yaml"}

// BenchConfig configures a benchmark run. Zero values other than InitialSize
// select the defaults returned by the getters.
type BenchConfig struct {
	Seed               int64          `mapstructure:"seed"`
	Operations         int            `mapstructure:"operations"`
	InitialSize        int            `mapstructure:"initial_size"`
	Weights            map[string]int `mapstructure:"weights"`
	Verify             bool           `mapstructure:"verify"`
	CheckEvery         int            `mapstructure:"check_every"`
	StatsWindowSeconds int            `mapstructure:"stats_window_seconds"`
	Report             *ReportConfig  `mapstructure:"report"`
}

type ReportConfig struct {
	Format            string       `mapstructure:"format"`
	Publish           bool         `mapstructure:"publish"`
	Topic             string       `mapstructure:"topic"`
	Partitions        int32        `mapstructure:"partitions"`
	ReplicationFactor int16        `mapstructure:"replication_factor"`
	RetentionMs       int64        `mapstructure:"retention_ms"`
	KafkaConfig       *KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	SeedBrokers []string `mapstructure:"seed_brokers"`
	ClientID    string   `mapstructure:"client_id"`
}

// DefaultWeights gives every operation a share of a run. Cheap lookups are
// weighted higher than whole-sequence sorts.
func DefaultWeights() map[string]int {
	return map[string]int{
		"append":        10,
		"prepend":       5,
		"insert":        10,
		"remove":        10,
		"move":          8,
		"swap":          5,
		"move_range":    3,
		"remove_range":  1,
		"sort":          1,
		"insert_sorted": 5,
		"sort_changed":  5,
		"search":        8,
		"at":            15,
		"position":      14,
	}
}

func (c *BenchConfig) GetSeed() int64 {
	if c.Seed == 0 {
		return DefaultSeed
	}
	return c.Seed
}

func (c *BenchConfig) GetOperations() int {
	if c.Operations <= 0 {
		return DefaultOperations
	}
	return c.Operations
}

func (c *BenchConfig) GetInitialSize() int {
	if c.InitialSize < 0 {
		return 0
	}
	return c.InitialSize
}

func (c *BenchConfig) GetWeights() map[string]int {
	if len(c.Weights) == 0 {
		return DefaultWeights()
	}
	return c.Weights
}

func (c *BenchConfig) GetCheckEvery() int {
	if c.CheckEvery <= 0 {
		return DefaultCheckEvery
	}
	return c.CheckEvery
}

func (c *BenchConfig) GetStatsWindow() time.Duration {
	if c.StatsWindowSeconds <= 0 {
		return DefaultStatsWindowSeconds * time.Second
	}
	return time.Duration(c.StatsWindowSeconds) * time.Second
}

func (c *BenchConfig) GetReportConfig() *ReportConfig {
	if c.Report == nil {
		return &ReportConfig{}
	}
	return c.Report
}

func (c *ReportConfig) GetFormat() string {
	if c.Format == "" {
		return DefaultReportFormat
	}
	return c.Format
}

func (c *ReportConfig) GetTopic() string {
	if c.Topic == "" {
		return DefaultReportTopic
	}
	return c.Topic
}

func (c *ReportConfig) GetPartitions() int32 {
	if c.Partitions <= 0 {
		return DefaultPartitions
	}
	return c.Partitions
}

func (c *ReportConfig) GetReplicationFactor() int16 {
	if c.ReplicationFactor <= 0 {
		return DefaultReplicationFactor
	}
	return c.ReplicationFactor
}

func (c *ReportConfig) GetRetentionMs() int64 {
	if c.RetentionMs <= 0 {
		return DefaultRetentionMs
	}
	return c.RetentionMs
}

func (c *ReportConfig) GetKafkaConfig() *KafkaConfig {
	if c.KafkaConfig == nil {
		return &KafkaConfig{}
	}
	return c.KafkaConfig
}

func (c *KafkaConfig) GetClientID() string {
	if c.ClientID == "" {
		return DefaultClientID
	}
	return c.ClientID
}
