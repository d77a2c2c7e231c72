package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory and
// in the user config directory.
const FileName = ".crash.yaml"

// FileConfig represents .crash.yaml. Pointer fields distinguish "unset" from
// an explicit zero value.
type FileConfig struct {
	Prefix                 *string      `yaml:"prefix"`
	PrefixSeparator        *string      `yaml:"prefix_separator"`
	Separator              *string      `yaml:"separator"`
	Theme                  string       `yaml:"theme"`
	NoColor                bool         `yaml:"no_color"`
	Debug                  bool         `yaml:"debug"`
	LogFile                string       `yaml:"log_file"`
	LogFormat              string       `yaml:"log_format"`
	FilterUnknown          *bool        `yaml:"filter_unknown"`
	SupportAlternateFormat *bool        `yaml:"support_alternate_format"`
	AlternateCode          string       `yaml:"alternate_code"`
	IgnoreMode             string       `yaml:"ignore_mode"`
	IgnorePaths            []string     `yaml:"ignore_paths"`
	Glyphs                 GlyphConfig  `yaml:"glyphs"`
	MaxCalleeWidth         int          `yaml:"max_callee_width"`
	ReplaceRules           bool         `yaml:"replace_rules"`
	Rules                  []RuleConfig `yaml:"rules"`
}

// GlyphConfig overrides tree glyphs. Empty fields keep the defaults.
type GlyphConfig struct {
	First  string `yaml:"first"`
	Middle string `yaml:"middle"`
	Last   string `yaml:"last"`
}

// RuleConfig declares an extra classifier rule.
type RuleConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Kind    string `yaml:"kind"` // native or located
}

// Load reads the configuration file. An explicit path must exist; otherwise
// the local and XDG locations are searched and a missing file yields an empty
// config. The returned path is empty when no file was read.
func Load(explicit string) (*FileConfig, string, error) {
	path := explicit
	if path == "" {
		path = getConfigPath()
		if path == "" {
			return &FileConfig{}, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && explicit == "" {
			return &FileConfig{}, "", nil
		}
		return nil, "", fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(data, path)
}

// Parse decodes YAML configuration bytes.
func Parse(data []byte) (*FileConfig, error) {
	cfg, _, err := parse(data, "<input>")
	return cfg, err
}

func parse(data []byte, path string) (*FileConfig, string, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, path, nil
}

// getConfigPath tries to find the .crash.yaml configuration file.
// It checks the local directory first, then the user config directory.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	// An unusable config dir is not an error; there is simply no file.
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "crash", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
