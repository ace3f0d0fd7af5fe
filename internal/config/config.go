// Package config holds the runtime's tunable parameters, loaded from
// flags or a YAML file depending on the entry point.
package config

import (
	"os"

	"github.com/elektrokombinacija/cobot-guard/internal/body"
	"gopkg.in/yaml.v3"
)

// Config bundles the retention and default-body tunables the
// dispatcher needs. Load replaces every field the file leaves at its
// zero value with the package default from Default().
type Config struct {
	HistoryRetentionMS      uint64           `yaml:"history_retention_ms"`
	HistoryPurgePeriodMS    uint64           `yaml:"history_purge_period_ms"`
	HumanRetentionTimeoutMS uint64           `yaml:"human_retention_timeout_ms"`
	WorkerPoolSize          int              `yaml:"worker_pool_size"`
	DefaultHumanSegments    []body.Segment   `yaml:"default_human_segments"`
	DashboardAddr           string           `yaml:"dashboard_addr"`
}

// Default returns the package's baseline configuration.
func Default() Config {
	return Config{
		HistoryRetentionMS:      60_000,
		HistoryPurgePeriodMS:    10_000,
		HumanRetentionTimeoutMS: 5_000,
		WorkerPoolSize:          4,
		DefaultHumanSegments: []body.Segment{
			{KeypointA: "head", KeypointB: "torso", Thickness: 0.25},
			{KeypointA: "torso", KeypointB: "left_hand", Thickness: 0.1},
			{KeypointA: "torso", KeypointB: "right_hand", Thickness: 0.1},
		},
		DashboardAddr: ":8765",
	}
}

// Load reads a YAML config file, falling back to Default for any
// field left unset (the zero value) in the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	overlay := Config{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, err
	}
	if overlay.HistoryRetentionMS != 0 {
		cfg.HistoryRetentionMS = overlay.HistoryRetentionMS
	}
	if overlay.HistoryPurgePeriodMS != 0 {
		cfg.HistoryPurgePeriodMS = overlay.HistoryPurgePeriodMS
	}
	if overlay.HumanRetentionTimeoutMS != 0 {
		cfg.HumanRetentionTimeoutMS = overlay.HumanRetentionTimeoutMS
	}
	if overlay.WorkerPoolSize != 0 {
		cfg.WorkerPoolSize = overlay.WorkerPoolSize
	}
	if len(overlay.DefaultHumanSegments) > 0 {
		cfg.DefaultHumanSegments = overlay.DefaultHumanSegments
	}
	if overlay.DashboardAddr != "" {
		cfg.DashboardAddr = overlay.DashboardAddr
	}
	return cfg, nil
}
