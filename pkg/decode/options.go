package decode

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dkoosis/crash/pkg/frame"
)

// IgnoreMode selects how IgnorePaths patterns combine.
type IgnoreMode int

const (
	// MatchAll drops a located frame only when every ignore pattern matches
	// its path. With an empty pattern set every located frame is dropped.
	MatchAll IgnoreMode = iota
	// MatchAny drops a located frame when any ignore pattern matches its path.
	MatchAny
)

// String returns the configuration name of the mode.
func (m IgnoreMode) String() string {
	switch m {
	case MatchAny:
		return "any"
	default:
		return "all"
	}
}

// ParseIgnoreMode parses "all" or "any".
func ParseIgnoreMode(s string) (IgnoreMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return MatchAll, nil
	case "any":
		return MatchAny, nil
	default:
		return MatchAll, fmt.Errorf("unknown ignore mode %q (expected all or any)", s)
	}
}

// DefaultAlternateCode is the error code marking a structured parse error.
const DefaultAlternateCode = "BABEL_PARSE_ERROR"

var (
	defaultAlternateRe = regexp.MustCompile(`^(?P<path>.+?): (?P<message>.+?) \((?P<line>[0-9]+):(?P<column>[0-9]+)\)$`)
	defaultIgnoreRe    = regexp.MustCompile(`^(node:)?internal/modules/cjs`)
)

// Options controls decoding.
type Options struct {
	Rules       []frame.Rule
	IgnorePaths []*regexp.Regexp
	IgnoreMode  IgnoreMode

	// FilterUnknown drops lines no rule could classify.
	FilterUnknown bool

	// SupportAlternateFormat enables the structured parse error branch for
	// values whose ErrorCode equals AlternateCode.
	SupportAlternateFormat bool
	AlternateCode          string
	AlternatePattern       *regexp.Regexp

	// Logger receives debug traces of decoding. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the default decoding configuration. Each call
// returns independent slices.
func DefaultOptions() Options {
	return Options{
		Rules:                  frame.DefaultRules(),
		IgnorePaths:            []*regexp.Regexp{defaultIgnoreRe},
		IgnoreMode:             MatchAll,
		FilterUnknown:          true,
		SupportAlternateFormat: true,
		AlternateCode:          DefaultAlternateCode,
		AlternatePattern:       defaultAlternateRe,
	}
}

func (o Options) ignored(path string) bool {
	if o.IgnoreMode == MatchAny {
		for _, re := range o.IgnorePaths {
			if re.MatchString(path) {
				return true
			}
		}
		return false
	}
	for _, re := range o.IgnorePaths {
		if !re.MatchString(path) {
			return false
		}
	}
	return true
}

func (o Options) alternateCode() string {
	if o.AlternateCode == "" {
		return DefaultAlternateCode
	}
	return o.AlternateCode
}

func (o Options) alternatePattern() *regexp.Regexp {
	if o.AlternatePattern == nil {
		return defaultAlternateRe
	}
	return o.AlternatePattern
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
