// Package config loads labeldb settings from an INI (or YAML/TOML/JSON) file
// with defaults and LABELDB_* environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/ironsheep/labeldb/internal/errors"
)

// DefaultPath is where the configuration is looked up when --config is not given.
const DefaultPath = "scripts/config.ini"

// EnvPrefix prefixes environment overrides, e.g. LABELDB_PATHS_DATABASE_PATH.
const EnvPrefix = "LABELDB"

// Settings holds every recognized configuration key.
type Settings struct {
	Paths   PathSettings   `mapstructure:"paths"`
	Output  OutputSettings `mapstructure:"output"`
	Logging LogSettings    `mapstructure:"logging"`
}

// PathSettings is the [Paths] section.
type PathSettings struct {
	DatasetRoot  string `mapstructure:"dataset_root"`
	DatabasePath string `mapstructure:"database_path"`
}

// OutputSettings is the [Output] section.
type OutputSettings struct {
	ChartPath    string `mapstructure:"chart_path"`
	ShowcasePath string `mapstructure:"showcase_path"`
	BoxColor     string `mapstructure:"box_color"`
	BoxWidth     int    `mapstructure:"box_width"`
	BarColor     string `mapstructure:"bar_color"`
}

// LogSettings is the [Logging] section.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.dataset_root", "")
	v.SetDefault("paths.database_path", "")

	v.SetDefault("output.chart_path", "assets/class_distribution.png")
	v.SetDefault("output.showcase_path", "assets/bounding_box_example.png")
	v.SetDefault("output.box_color", "#FF0000")
	v.SetDefault("output.box_width", 3)
	v.SetDefault("output.bar_color", "#1F77B4")

	v.SetDefault("logging.level", "info")
}

// Load reads the configuration file at path from fs.
//
// The dataset root is required for every command; use RequireDatabase for
// commands that also touch the database.
func Load(fs afero.Fs, path string) (*Settings, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(fs, v, path); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.Newf("failed to decode configuration: %w", err).
			Category(errors.CategoryConfiguration).
			Context("path", path).
			Build()
	}

	if err := settings.require("Paths.dataset_root", settings.Paths.DatasetRoot); err != nil {
		return nil, err
	}
	return settings, nil
}

func readFile(fs afero.Fs, v *viper.Viper, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return errors.Newf("configuration file not found: %s", path).
			Category(errors.CategoryConfiguration).
			Context("path", path).
			Build()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml", ".json":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Newf("failed to read configuration: %w", err).
				Category(errors.CategoryConfiguration).
				Context("path", path).
				Build()
		}
		return nil
	default:
		values, err := readINI(fs, path)
		if err != nil {
			return err
		}
		return v.MergeConfigMap(values)
	}
}

// readINI flattens an INI file into section -> key -> value. Viper lowercases
// keys on merge, which makes lookups case-insensitive.
func readINI(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Newf("failed to read configuration: %w", err).
			Category(errors.CategoryConfiguration).
			Context("path", path).
			Build()
	}

	file, err := ini.Load(data)
	if err != nil {
		return nil, errors.Newf("failed to parse INI: %w", err).
			Category(errors.CategoryConfiguration).
			Context("path", path).
			Build()
	}

	values := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		entries := make(map[string]any, len(keys))
		for _, key := range keys {
			entries[strings.ToLower(key.Name())] = key.String()
		}
		if section.Name() == ini.DefaultSection {
			for k, val := range entries {
				values[k] = val
			}
			continue
		}
		values[strings.ToLower(section.Name())] = entries
	}
	return values, nil
}

// RequireDatabase checks that Paths.database_path is set.
func (s *Settings) RequireDatabase() error {
	return s.require("Paths.database_path", s.Paths.DatabasePath)
}

func (s *Settings) require(key, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return errors.New(fmt.Errorf("%w: %s", errors.ErrMissingKey, key)).
		Category(errors.CategoryConfiguration).
		Context("key", key).
		Build()
}
