package main

import (
	"context"
	"os"

	"github.com/thatisuday/commando"

	"github.com/axidraft/plotdrive/canvas"
	"github.com/axidraft/plotdrive/orchestrator"
	"github.com/axidraft/plotdrive/preview"
)

func registerPrintCommands() {
	commando.
		Register("print").
		SetDescription("Render input and submit it to the connected plotter (or report a dry-run plan).").
		AddFlag("file", "input file path (else reads standard input)", commando.String, "").
		AddFlag("markdown,m", "treat input as the Markdown subset instead of plain text", commando.Bool, nil).
		AddFlag("family", "font family hint", commando.String, "").
		AddFlag("point-size", "base point size (falls back to config)", commando.String, "").
		AddFlag("language", "BCP-47 language hint for hyphenation", commando.String, "").
		AddFlag("orientation", "portrait|landscape", commando.String, "").
		AddFlag("paper-w", "paper width in mm (falls back to config)", commando.String, "").
		AddFlag("paper-h", "paper height in mm (falls back to config)", commando.String, "").
		AddFlag("margin-l", "left margin in mm", commando.String, "").
		AddFlag("margin-r", "right margin in mm", commando.String, "").
		AddFlag("margin-t", "top margin in mm", commando.String, "").
		AddFlag("margin-b", "bottom margin in mm", commando.String, "").
		AddFlag("fit-to-frame", "shrink content to fit the printable frame", commando.Bool, nil).
		AddFlag("dry-run", "plan the print without opening a device session", commando.Bool, nil).
		AddFlag("device", "device alias (falls back to config)", commando.String, "").
		SetAction(runPrint)

	commando.
		Register("print-preview").
		SetDescription("Render input to an SVG or PNG preview file instead of the plotter.").
		AddFlag("file", "input file path (else reads standard input)", commando.String, "").
		AddFlag("markdown,m", "treat input as the Markdown subset instead of plain text", commando.Bool, nil).
		AddFlag("family", "font family hint", commando.String, "").
		AddFlag("point-size", "base point size (falls back to config)", commando.String, "").
		AddFlag("language", "BCP-47 language hint for hyphenation", commando.String, "").
		AddFlag("orientation", "portrait|landscape", commando.String, "").
		AddFlag("paper-w", "paper width in mm (falls back to config)", commando.String, "").
		AddFlag("paper-h", "paper height in mm (falls back to config)", commando.String, "").
		AddFlag("margin-l", "left margin in mm", commando.String, "").
		AddFlag("margin-r", "right margin in mm", commando.String, "").
		AddFlag("margin-t", "top margin in mm", commando.String, "").
		AddFlag("margin-b", "bottom margin in mm", commando.String, "").
		AddFlag("fit-to-frame", "shrink content to fit the printable frame", commando.Bool, nil).
		AddFlag("format", "svg|png", commando.String, "svg").
		AddFlag("out", "output file path ('-' writes to standard output)", commando.String, "-").
		AddFlag("stroke-width", "preview stroke width in mm", commando.String, "").
		AddFlag("dpi", "PNG raster resolution", commando.String, "").
		SetAction(runPrintPreview)
}

func printOptionsFromFlags(flags map[string]commando.FlagValue) orchestrator.PrintOptions {
	orientation := canvas.Portrait
	if o := mustFlagString(flags, "orientation"); o == "landscape" {
		orientation = canvas.Landscape
	} else if o != "" && o != "portrait" {
		fatalf("--orientation must be \"portrait\" or \"landscape\", got %q", o)
	}
	return orchestrator.PrintOptions{
		Markdown:    mustFlagBool(flags, "markdown"),
		FamilyHint:  mustFlagString(flags, "family"),
		Language:    mustFlagString(flags, "language"),
		PointSizePt: mustFlagFloat(flags, "point-size"),
		Orientation: orientation,
		PaperWMm:    mustFlagFloat(flags, "paper-w"),
		PaperHMm:    mustFlagFloat(flags, "paper-h"),
		MarginLMm:   mustFlagMargin(flags, "margin-l"),
		MarginRMm:   mustFlagMargin(flags, "margin-r"),
		MarginTMm:   mustFlagMargin(flags, "margin-t"),
		MarginBMm:   mustFlagMargin(flags, "margin-b"),
		FitToFrame:  mustFlagBool(flags, "fit-to-frame"),
	}
}

func runPrint(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	input, err := readInput(flags)
	if err != nil {
		exitWith(err)
		return
	}
	opts := printOptionsFromFlags(flags)
	opts.Input = input
	opts.DryRun = mustFlagBool(flags, "dry-run")
	opts.DeviceAlias = mustFlagString(flags, "device")
	exitWith(o.Print(context.Background(), opts))
}

func runPrintPreview(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	input, err := readInput(flags)
	if err != nil {
		exitWith(err)
		return
	}
	opts := printOptionsFromFlags(flags)
	opts.Input = input

	strokeWidth := mustFlagFloat(flags, "stroke-width")
	switch mustFlagString(flags, "format") {
	case "png":
		opts.Preview = preview.PNG{StrokeWidthMm: strokeWidth, DPI: mustFlagFloat(flags, "dpi")}
	case "svg", "":
		opts.Preview = preview.SVG{StrokeWidthMm: strokeWidth}
	default:
		fatalf("--format must be \"svg\" or \"png\"")
	}

	out := mustFlagString(flags, "out")
	if out == "-" || out == "" {
		exitWith(o.Print(context.Background(), opts))
		return
	}
	f, ferr := os.Create(out)
	if ferr != nil {
		exitWith(wrapResource(ferr, "creating preview output %s", out))
		return
	}
	defer f.Close()
	o.Out = f
	exitWith(o.Print(context.Background(), opts))
}
