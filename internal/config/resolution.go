package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/crash/internal/logging"
	"github.com/dkoosis/crash/pkg/decode"
	"github.com/dkoosis/crash/pkg/frame"
	"github.com/dkoosis/crash/pkg/render"
)

// CliFlags holds the values of command-line flags. The *Set fields record
// whether the user passed the flag explicitly.
type CliFlags struct {
	ConfigPath  string
	Theme       string
	Prefix      string
	NoColor     bool
	KeepUnknown bool
	NoAlternate bool
	IgnoreAny   bool
	Debug       bool

	ThemeSet       bool
	PrefixSet      bool
	NoColorSet     bool
	KeepUnknownSet bool
	NoAlternateSet bool
	IgnoreAnySet   bool
	DebugSet       bool
}

// Resolved holds the final configuration after applying all priority rules.
type Resolved struct {
	ThemeName string
	NoColor   bool
	Debug     bool
	LogFile   string // empty logs to stderr
	LogFormat string // "text" or "json"

	Prefix          string
	PrefixSeparator string
	Separator       string
	Glyphs          render.Glyphs
	MaxCalleeWidth  int

	FilterUnknown          bool
	SupportAlternateFormat bool
	AlternateCode          string
	IgnoreMode             decode.IgnoreMode
	IgnorePaths            []*regexp.Regexp
	Rules                  []frame.Rule

	// Resolution metadata (for debugging)
	ConfigPath    string
	ThemeSource   string // "cli", "env", "file", "default"
	NoColorSource string // "cli", "env", "file", "default"
}

// Resolve loads the configuration file and resolves it against the
// environment and flags.
func Resolve(flags CliFlags) (*Resolved, error) {
	file, path, err := Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	r, err := ResolveFrom(file, flags)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	r.ConfigPath = path
	return r, nil
}

// ResolveFrom resolves an already loaded file config. Priority:
// CLI > environment > file > defaults.
func ResolveFrom(file *FileConfig, flags CliFlags) (*Resolved, error) {
	if file == nil {
		file = &FileConfig{}
	}
	def := render.DefaultOptions()
	r := &Resolved{
		ThemeName:              "default",
		LogFormat:              "text",
		ThemeSource:            "default",
		NoColorSource:          "default",
		Prefix:                 def.Prefix,
		PrefixSeparator:        def.PrefixSeparator,
		Separator:              def.Separator,
		Glyphs:                 def.Glyphs,
		FilterUnknown:          def.Decode.FilterUnknown,
		SupportAlternateFormat: def.Decode.SupportAlternateFormat,
		AlternateCode:          def.Decode.AlternateCode,
		IgnoreMode:             def.Decode.IgnoreMode,
		IgnorePaths:            def.Decode.IgnorePaths,
		Rules:                  def.Decode.Rules,
	}

	if err := r.applyFile(file); err != nil {
		return nil, err
	}

	// Theme: CLI > ENV > file > default
	switch {
	case flags.ThemeSet:
		r.ThemeName, r.ThemeSource = flags.Theme, "cli"
	case os.Getenv("CRASH_THEME") != "":
		r.ThemeName, r.ThemeSource = os.Getenv("CRASH_THEME"), "env"
	}

	// NoColor: CLI > ENV > file > default
	if flags.NoColorSet {
		r.NoColor, r.NoColorSource = flags.NoColor, "cli"
	} else if env := getEnvBool("CRASH_NO_COLOR"); env != nil {
		r.NoColor, r.NoColorSource = *env, "env"
	} else if os.Getenv("NO_COLOR") != "" {
		// no-color.org: any non-empty value disables color
		r.NoColor, r.NoColorSource = true, "env"
	}

	if flags.DebugSet {
		r.Debug = flags.Debug
	} else if os.Getenv("CRASH_DEBUG") != "" {
		r.Debug = true
	}

	if flags.PrefixSet {
		r.Prefix = flags.Prefix
	}
	if flags.KeepUnknownSet {
		r.FilterUnknown = !flags.KeepUnknown
	}
	if flags.NoAlternateSet {
		r.SupportAlternateFormat = !flags.NoAlternate
	}
	if flags.IgnoreAnySet && flags.IgnoreAny {
		r.IgnoreMode = decode.MatchAny
	}

	if err := validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolved) applyFile(file *FileConfig) error {
	if file.Theme != "" {
		r.ThemeName, r.ThemeSource = file.Theme, "file"
	}
	if file.NoColor {
		r.NoColor, r.NoColorSource = true, "file"
	}
	r.Debug = file.Debug
	r.LogFile = file.LogFile
	if file.LogFormat != "" {
		r.LogFormat = file.LogFormat
	}
	if file.Prefix != nil {
		r.Prefix = *file.Prefix
	}
	if file.PrefixSeparator != nil {
		r.PrefixSeparator = *file.PrefixSeparator
	}
	if file.Separator != nil {
		r.Separator = *file.Separator
	}
	if file.Glyphs.First != "" {
		r.Glyphs.First = file.Glyphs.First
	}
	if file.Glyphs.Middle != "" {
		r.Glyphs.Middle = file.Glyphs.Middle
	}
	if file.Glyphs.Last != "" {
		r.Glyphs.Last = file.Glyphs.Last
	}
	if file.MaxCalleeWidth > 0 {
		r.MaxCalleeWidth = file.MaxCalleeWidth
	}
	if file.FilterUnknown != nil {
		r.FilterUnknown = *file.FilterUnknown
	}
	if file.SupportAlternateFormat != nil {
		r.SupportAlternateFormat = *file.SupportAlternateFormat
	}
	if file.AlternateCode != "" {
		r.AlternateCode = file.AlternateCode
	}

	mode, err := decode.ParseIgnoreMode(file.IgnoreMode)
	if err != nil {
		return err
	}
	r.IgnoreMode = mode

	if file.IgnorePaths != nil {
		r.IgnorePaths = make([]*regexp.Regexp, 0, len(file.IgnorePaths))
		for _, p := range file.IgnorePaths {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("ignore_paths: %w", err)
			}
			r.IgnorePaths = append(r.IgnorePaths, re)
		}
	}

	extra := make([]frame.Rule, 0, len(file.Rules))
	for _, rc := range file.Rules {
		rule, err := frame.NewRule(rc.Name, rc.Pattern, frame.Kind(rc.Kind))
		if err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		extra = append(extra, rule)
	}
	if file.ReplaceRules {
		r.Rules = extra
	} else {
		r.Rules = append(r.Rules, extra...)
	}
	return nil
}

// validate rejects configurations that cannot render anything sensible.
func validate(r *Resolved) error {
	validThemes := map[string]bool{"default": true, "orca": true, "mono": true}
	if !validThemes[r.ThemeName] {
		return fmt.Errorf("invalid theme %q (must be: default, orca, mono)", r.ThemeName)
	}
	if r.LogFormat != "text" && r.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q (must be: text, json)", r.LogFormat)
	}
	if r.MaxCalleeWidth < 0 {
		return fmt.Errorf("invalid max_callee_width %d", r.MaxCalleeWidth)
	}
	return nil
}

// Logging returns the debug logger configuration.
func (r *Resolved) Logging() logging.Config {
	return logging.Config{Level: "debug", Format: r.LogFormat, Output: r.LogFile}
}

// Palette returns the palette for the resolved theme, honoring NoColor.
func (r *Resolved) Palette(lr *lipgloss.Renderer) render.Palette {
	if r.NoColor {
		return render.MonoTheme()
	}
	return render.ThemeByName(r.ThemeName, lr)
}

// Options converts the resolved configuration into render options.
func (r *Resolved) Options(lr *lipgloss.Renderer) []render.Option {
	return []render.Option{
		render.WithTheme(r.Palette(lr)),
		render.WithPrefix(r.Prefix),
		render.WithPrefixSeparator(r.PrefixSeparator),
		render.WithSeparator(r.Separator),
		render.WithGlyphs(r.Glyphs),
		render.WithMaxCalleeWidth(r.MaxCalleeWidth),
		render.WithFilterUnknown(r.FilterUnknown),
		render.WithAlternateFormat(r.SupportAlternateFormat),
		render.WithAlternateCode(r.AlternateCode),
		render.WithIgnoreMode(r.IgnoreMode),
		render.WithIgnorePaths(r.IgnorePaths...),
		render.WithRules(r.Rules),
	}
}

// getEnvBool returns the first parseable boolean among keys, or nil.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}
