/*
Command plotdrive drives an AxiDraw-class EBB pen plotter: it renders
text or Markdown onto a page, plans a timed motion sequence, and submits
it to the controller over a serial link.

License: governed by the 3-Clause BSD license found in the module root.
*/
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"

	"github.com/axidraft/plotdrive/perr"
)

const (
	programName    = "plotdrive"
	programVersion = "v0.1.0"
	programAuthor  = "axidraft"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.cli")
}

func main() {
	initDisplay()

	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.plotdrive.cli": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintln(os.Stderr, "plotdrive: error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().SetTraceLevel(tracing.LevelError)

	commando.
		SetExecutableName(programName).
		SetVersion(programVersion).
		SetDescription("CLI pen-plotter driver: text/Markdown -> canvas layout -> motion plan -> EBB controller.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "trace level [Debug|Info|Error]", commando.String, "Error").
		AddFlag("no-colors", "disable pterm color output", commando.Bool, nil).
		AddFlag("fonts-dir", "font catalog directory (defaults to plotdrive/fonts under the OS user config dir)", commando.String, "").
		AddFlag("config-dir", "config directory (defaults to the OS user config dir)", commando.String, "")

	registerPrintCommands()
	registerDeviceCommands()
	registerConfigCommands()
	registerFontsCommand()
	registerVersionCommand()

	commando.Parse(nil)
}

// We use pterm for moderately fancy output, same prefixes the teacher's
// OpenType CLI configures.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " i  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func applyGlobalFlags(flags map[string]commando.FlagValue) {
	if noColors, err := flags["no-colors"].GetBool(); err == nil && noColors {
		pterm.DisableColor()
	}
	if level, err := flags["verbose"].GetString(); err == nil && level != "" {
		switch level {
		case "Debug":
			tracer().SetTraceLevel(tracing.LevelDebug)
		case "Info":
			tracer().SetTraceLevel(tracing.LevelInfo)
		case "Error":
			tracer().SetTraceLevel(tracing.LevelError)
		default:
			fatalf("invalid --verbose level: %s", level)
		}
	}
}

// fatalf reports a flag-parsing usage error and exits with the usage
// code; *perr.Error values from an action go through exitWith instead.
func fatalf(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
	os.Exit(2)
}

// exitWith maps err through perr.ExitCode (§7) and terminates the
// process, printing nothing on success.
func exitWith(err error) {
	if err == nil {
		return
	}
	pterm.Error.Println(err.Error())
	os.Exit(perr.ExitCode(err))
}
