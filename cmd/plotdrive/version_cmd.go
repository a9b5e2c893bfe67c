package main

import (
	"fmt"

	"github.com/thatisuday/commando"
)

func registerVersionCommand() {
	commando.
		Register("version").
		SetDescription("Print program name, version, and author.").
		SetAction(runVersion)
}

func runVersion(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fmt.Printf("%s %s, %s\n", programName, programVersion, programAuthor)
}
