package core

import (
	"fmt"
	"strings"
)

// Limits carries the engine's numeric ceilings and string caps. Account
// methods take these as arguments so guards always evaluate the currently
// configured values.
type Limits struct {
	MaxNameLen        int `koanf:"max_name_len" mapstructure:"max_name_len"`
	MaxURLLen         int `koanf:"max_url_len" mapstructure:"max_url_len"`
	MaxTagsLen        int `koanf:"max_tags_len" mapstructure:"max_tags_len"`
	MaxLabelLen       int `koanf:"max_label_len" mapstructure:"max_label_len"`
	MaxMetadataURILen int `koanf:"max_metadata_uri_len" mapstructure:"max_metadata_uri_len"`
	MaxDescriptionLen int `koanf:"max_description_len" mapstructure:"max_description_len"`
	MaxIconURILen     int `koanf:"max_icon_uri_len" mapstructure:"max_icon_uri_len"`
	MaxExtraJSONLen   int `koanf:"max_extra_json_len" mapstructure:"max_extra_json_len"`

	// DefaultMaxModulesPerRepo seeds the per-resource ceiling at bootstrap;
	// the live ceiling comes from the deployment config account.
	DefaultMaxModulesPerRepo uint32 `koanf:"default_max_modules_per_repo" mapstructure:"default_max_modules_per_repo"`

	MaxLinesPerObservation uint64 `koanf:"max_lines_per_observation" mapstructure:"max_lines_per_observation"`
	MaxFilesPerObservation uint32 `koanf:"max_files_per_observation" mapstructure:"max_files_per_observation"`
	SoftMaxObservations    uint64 `koanf:"soft_max_observations" mapstructure:"soft_max_observations"`
}

// MaxFeeBps bounds the configurable fee: 10_000 bps is 100%.
const MaxFeeBps uint16 = 10_000

type Config struct {
	ServiceName string `koanf:"service_name" mapstructure:"service_name"`
	Limits      Limits `koanf:"limits" mapstructure:"limits"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "raccoon",
		Limits: Limits{
			MaxNameLen:               64,
			MaxURLLen:                200,
			MaxTagsLen:               128,
			MaxLabelLen:              64,
			MaxMetadataURILen:        200,
			MaxDescriptionLen:        512,
			MaxIconURILen:            200,
			MaxExtraJSONLen:          1024,
			DefaultMaxModulesPerRepo: 256,
			MaxLinesPerObservation:   5_000_000,
			MaxFilesPerObservation:   100_000,
			SoftMaxObservations:      1_000_000,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	return c.Limits.Validate()
}

func (l Limits) Validate() error {
	for _, check := range []struct {
		name  string
		value int
	}{
		{"limits.max_name_len", l.MaxNameLen},
		{"limits.max_url_len", l.MaxURLLen},
		{"limits.max_tags_len", l.MaxTagsLen},
		{"limits.max_label_len", l.MaxLabelLen},
		{"limits.max_metadata_uri_len", l.MaxMetadataURILen},
		{"limits.max_description_len", l.MaxDescriptionLen},
		{"limits.max_icon_uri_len", l.MaxIconURILen},
		{"limits.max_extra_json_len", l.MaxExtraJSONLen},
	} {
		if check.value <= 0 {
			return fmt.Errorf("core: %s must be positive", check.name)
		}
	}
	if l.DefaultMaxModulesPerRepo == 0 {
		return fmt.Errorf("core: limits.default_max_modules_per_repo must be positive")
	}
	if l.MaxLinesPerObservation == 0 {
		return fmt.Errorf("core: limits.max_lines_per_observation must be positive")
	}
	if l.MaxFilesPerObservation == 0 {
		return fmt.Errorf("core: limits.max_files_per_observation must be positive")
	}
	if l.SoftMaxObservations == 0 {
		return fmt.Errorf("core: limits.soft_max_observations must be positive")
	}
	return nil
}
