package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"

	"github.com/axidraft/plotdrive/ebb"
)

// consoleREPL frames raw EBB commands from an operator onto a live
// client, adapted from otcli/main.go's Intp/REPL loop (there it walks an
// OpenType table tree; here every line is just a command to send as-is).
type consoleREPL struct {
	repl   *readline.Instance
	client *ebb.Client
}

func (c *consoleREPL) run() error {
	pterm.Info.Println("Connected. Quit with <ctrl>D")
	for {
		line, err := c.repl.Readline()
		if err != nil { // io.EOF on <ctrl>D
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reply, err := c.client.Raw(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		pterm.Println(reply)
	}
	pterm.Info.Println("Disconnected.")
	return nil
}

func runDeviceConsole(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	repl, err := readline.New("ebb > ")
	if err != nil {
		exitWith(wrapResource(err, "opening console"))
		return
	}
	defer repl.Close()
	exitWith(o.Console(deviceOptsFrom(flags), func(client *ebb.Client) error {
		c := &consoleREPL{repl: repl, client: client}
		return c.run()
	}))
}
