package main

import (
	"strings"

	"github.com/thatisuday/commando"
)

func registerConfigCommands() {
	commando.
		Register("config show").
		SetDescription("Print the persisted configuration document as JSON.").
		SetAction(runConfigShow)

	commando.
		Register("config reset").
		SetDescription("Overwrite the persisted configuration with built-in defaults.").
		SetAction(runConfigReset)

	commando.
		Register("config set").
		SetDescription("Apply one or more key=value pairs to the persisted configuration.").
		AddArgument("pairs", "k=v[,k=v...]", "").
		SetAction(runConfigSet)
}

func runConfigShow(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.ShowConfig())
}

func runConfigReset(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.ResetConfig())
}

func runConfigSet(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	raw := strings.TrimSpace(args["pairs"].Value)
	kv, err := parseKVPairs(raw)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.SetConfig(kv))
}
