package main

import (
	"github.com/thatisuday/commando"
)

func registerFontsCommand() {
	commando.
		Register("fonts").
		SetDescription("List font catalog entries.").
		AddFlag("families", "group by family with variant counts", commando.Bool, nil).
		SetAction(runFonts)
}

func runFonts(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.ListFonts(mustFlagBool(flags, "families")))
}
