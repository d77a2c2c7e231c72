// crash renders a runtime error's stack trace as an annotated tree.
//
// Usage:
//
//	node app.js 2>&1 | crash
//	crash --format json < trace.txt
//	echo '{"message":"boom","stack":"Error: boom\n    at f (/x.js:1:2)"}' | crash
//
// Accepts two input formats on stdin:
//   - a JSON error record {"name", "message", "stack", "code"}
//   - raw trace text, whose first line is the error header
//
// Output modes (auto-detected):
//
//	terminal  styled output (default when TTY)
//	text      the same tree without colors (default when piped)
//	json      the decoded report as JSON
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/dkoosis/crash/internal/config"
	"github.com/dkoosis/crash/internal/detect"
	"github.com/dkoosis/crash/internal/logging"
	"github.com/dkoosis/crash/internal/version"
	"github.com/dkoosis/crash/pkg/decode"
	"github.com/dkoosis/crash/pkg/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("crash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatFlag := fs.String("format", "auto", "Output format: auto, terminal, text, json")
	themeFlag := fs.String("theme", "default", "Theme: default, orca, mono")
	prefixFlag := fs.String("prefix", "ERROR", "Header badge; empty to omit")
	noColorFlag := fs.Bool("no-color", false, "Disable colors")
	keepUnknownFlag := fs.Bool("keep-unknown", false, "Show trace lines that match no rule")
	noAlternateFlag := fs.Bool("no-alternate", false, "Disable structured parse error decoding")
	ignoreAnyFlag := fs.Bool("ignore-any", false, "Drop frames matching any ignore pattern instead of all")
	configFlag := fs.String("config", "", "Path to a .crash.yaml file")
	debugFlag := fs.Bool("debug", false, "Log decoding details to stderr")
	exitFlag := fs.Bool("exit", false, "Exit with status 1 after printing the trace")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "crash %s (%s, %s)\n", version.Version, version.CommitHash, version.BuildDate)
		return 0
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	resolved, err := config.Resolve(config.CliFlags{
		ConfigPath:     *configFlag,
		Theme:          *themeFlag,
		ThemeSet:       set["theme"],
		Prefix:         *prefixFlag,
		PrefixSet:      set["prefix"],
		NoColor:        *noColorFlag,
		NoColorSet:     set["no-color"],
		KeepUnknown:    *keepUnknownFlag,
		KeepUnknownSet: set["keep-unknown"],
		NoAlternate:    *noAlternateFlag,
		NoAlternateSet: set["no-alternate"],
		IgnoreAny:      *ignoreAnyFlag,
		IgnoreAnySet:   set["ignore-any"],
		Debug:          *debugFlag,
		DebugSet:       set["debug"],
	})
	if err != nil {
		fmt.Fprintf(stderr, "crash: %v\n", err)
		return 2
	}

	log := logging.Discard()
	if resolved.Debug {
		logCfg := resolved.Logging()
		if logCfg.Output == "" {
			log = logging.NewWithWriter(stderr, logCfg)
		} else {
			fileLog, closer, err := logging.New(logCfg)
			if err != nil {
				fmt.Fprintf(stderr, "crash: %v\n", err)
				return 2
			}
			defer closer.Close()
			log = fileLog
		}
		log.Debug("resolved config", "path", resolved.ConfigPath, "theme", resolved.ThemeName,
			"theme_source", resolved.ThemeSource, "no_color_source", resolved.NoColorSource)
	}

	input, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "crash: reading stdin: %v\n", err)
		return 2
	}
	v, code := parseInput(input, log, stderr)
	if code >= 0 {
		return code
	}

	mode := resolveFormat(*formatFlag, stdout)
	switch mode {
	case "json":
		return runJSON(v, resolved, log, stdout, stderr, *exitFlag)
	case "terminal", "text":
	default:
		fmt.Fprintf(stderr, "crash: unknown format %q (expected auto, terminal, text, json)\n", *formatFlag)
		return 2
	}
	if mode == "text" {
		resolved.NoColor = true
	}

	opts := append(resolved.Options(lipgloss.NewRenderer(stdout)),
		render.WithSink(render.WriterSink(stdout)),
		render.WithErrorWriter(stderr),
		render.WithLogger(log),
	)
	if *exitFlag {
		render.Stop(v, opts...)
		return 1
	}
	if _, err := render.Render(v, opts...); err != nil {
		fmt.Fprintf(stderr, "crash: %v\n", err)
		return 2
	}
	return 0
}

// parseInput turns stdin into the error value handed to the decoder.
// Returns (value, -1) on success; (nil, exitCode) on error.
func parseInput(input []byte, log *slog.Logger, stderr io.Writer) (any, int) {
	format := detect.Sniff(input)
	log.Debug("sniffed input", "format", format.String(), "bytes", len(input))
	switch format {
	case detect.Record:
		var rec decode.Error
		if err := json.Unmarshal(input, &rec); err != nil {
			fmt.Fprintf(stderr, "crash: parsing error record: %v\n", err)
			return nil, 2
		}
		return &rec, -1
	case detect.Text:
		return parseText(string(input)), -1
	default:
		fmt.Fprintf(stderr, "crash: no input on stdin\n")
		return nil, 2
	}
}

// parseText builds an error record from raw trace text. The first non-blank
// line is the header, "Name: message" when it has that shape.
func parseText(text string) *decode.Error {
	text = strings.TrimRight(text, "\r\n")
	rec := &decode.Error{Stack: text}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, msg, ok := strings.Cut(line, ": ")
		if ok && name != "" && !strings.ContainsAny(name, " \t") {
			rec.Name, rec.Message = name, msg
		} else {
			rec.Message = line
		}
		break
	}
	return rec
}

func runJSON(v any, resolved *config.Resolved, log *slog.Logger, stdout, stderr io.Writer, stop bool) int {
	opts := render.NewOptions(append(resolved.Options(nil), render.WithLogger(log))...)
	r, err := decode.Decode(v, opts.Decode)
	if err != nil {
		fmt.Fprintf(stderr, "crash: %v\n", err)
		return 2
	}
	fmt.Fprint(stdout, render.JSON(r))
	if stop {
		return 1
	}
	return 0
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	// Auto-detect: TTY = terminal, piped = text
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "terminal"
	}
	return "text"
}
