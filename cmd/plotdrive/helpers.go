package main

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thatisuday/commando"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/internal/settings"
	"github.com/axidraft/plotdrive/orchestrator"
	"github.com/axidraft/plotdrive/perr"
)

func wrapResource(cause error, format string, args ...interface{}) error {
	return perr.Wrap(perr.Resource, cause, format, args...)
}

func argError(format string, args ...interface{}) error {
	return perr.New(perr.Argument, format, args...)
}

// newOrchestrator builds the per-invocation Orchestrator: one font
// catalog loaded from --fonts-dir (or its XDG default), one config store
// rooted at --config-dir (or the OS default), writing to stdout.
func newOrchestrator(flags map[string]commando.FlagValue) (*orchestrator.Orchestrator, error) {
	fontsDir, _ := flags["fonts-dir"].GetString()
	if fontsDir == "" {
		fontsDir = defaultFontsDir()
	}
	catalog, err := font.LoadCatalog(fontsDir)
	if err != nil {
		return nil, err
	}
	configDir, _ := flags["config-dir"].GetString()
	store, err := settings.Open(configDir)
	if err != nil {
		return nil, err
	}
	return &orchestrator.Orchestrator{Catalog: catalog, Settings: store, Out: os.Stdout}, nil
}

func defaultFontsDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/plotdrive/fonts"
	}
	return "fonts"
}

// readInput implements the `print`/`print-preview` input contract
// (§6.1): --file when given, else standard input when it is not a
// terminal (a pipe or redirect), else an ArgumentError.
func readInput(flags map[string]commando.FlagValue) (string, error) {
	path, _ := flags["file"].GetString()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", wrapResource(err, "reading --file %s", path)
		}
		return string(raw), nil
	}
	if stdinIsPipe() {
		raw, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", wrapResource(err, "reading standard input")
		}
		return string(raw), nil
	}
	return "", argError("print requires --file or piped standard input")
}

func stdinIsPipe() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

func mustFlagFloat(flags map[string]commando.FlagValue, name string) float64 {
	s, err := flags[name].GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fatalf("--%s must be a number, got %q", name, s)
	}
	return f
}

// mustFlagMargin parses a margin flag, returning the unsetMargin sentinel
// when the caller did not supply one (an empty flag value), distinct from
// an explicit "0".
func mustFlagMargin(flags map[string]commando.FlagValue, name string) float64 {
	s, err := flags[name].GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	if s == "" {
		return orchestrator.UnsetMargin
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fatalf("--%s must be a number, got %q", name, s)
	}
	return f
}

func mustFlagBool(flags map[string]commando.FlagValue, name string) bool {
	b, err := flags[name].GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func mustFlagString(flags map[string]commando.FlagValue, name string) string {
	s, err := flags[name].GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

// parseKVPairs splits the `config set` argument's comma-joined k=v pairs
// (§6.1: `config set k=v[,k=v…]`).
func parseKVPairs(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, argError("malformed key=value pair %q", pair)
		}
		out[strings.TrimSpace(parts[0])] = parts[1]
	}
	if len(out) == 0 {
		return nil, argError("config set requires at least one key=value pair")
	}
	return out, nil
}
