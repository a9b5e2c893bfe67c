package main

import (
	"github.com/thatisuday/commando"

	"github.com/axidraft/plotdrive/orchestrator"
)

func registerDeviceCommands() {
	commando.
		Register("device list").
		SetDescription("List candidate serial ports without opening a session.").
		SetAction(runDeviceList)

	commando.
		Register("device profile").
		SetDescription("Show the configured kinematic model, calibration and default alias.").
		SetAction(runDeviceProfile)

	commando.
		Register("device pen").
		SetDescription("Set the pen servo position.").
		AddArgument("state", "up|down|toggle", "").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDevicePen)

	commando.
		Register("device motors").
		SetDescription("Enable or disable both stepper motors.").
		AddArgument("state", "on|off", "").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceMotors)

	commando.
		Register("device jog").
		SetDescription("Issue a single relative move.").
		AddFlag("dx", "relative move along X in mm", commando.String, "0").
		AddFlag("dy", "relative move along Y in mm", commando.String, "0").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceJog)

	commando.
		Register("device home").
		SetDescription("Drive both axes toward the origin.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceHome)

	commando.
		Register("device status").
		SetDescription("Report motion/pen/servo state.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceStatus)

	commando.
		Register("device position").
		SetDescription("Report absolute step counters.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDevicePosition)

	commando.
		Register("device reset").
		SetDescription("Zero both axes' step counters.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceReset)

	commando.
		Register("device reboot").
		SetDescription("Power-cycle the controller firmware.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceReboot)

	commando.
		Register("device abort").
		SetDescription("Issue an emergency stop.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceAbort)

	commando.
		Register("device version").
		SetDescription("Report the firmware version string.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceVersion)

	commando.
		Register("device console").
		SetDescription("Open an interactive REPL that sends raw EBB commands.").
		AddFlag("alias", "device alias", commando.String, "").
		SetAction(runDeviceConsole)
}

func deviceOptsFrom(flags map[string]commando.FlagValue) orchestrator.DeviceOptions {
	return orchestrator.DeviceOptions{Alias: mustFlagString(flags, "alias")}
}

func runDeviceList(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.ListDevices())
}

func runDeviceProfile(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.ShowProfile())
}

func runDevicePen(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	state := args["state"].Value
	opts := deviceOptsFrom(flags)
	switch state {
	case "up":
		exitWith(o.Pen(opts, true))
	case "down":
		exitWith(o.Pen(opts, false))
	case "toggle":
		exitWith(o.TogglePen(opts))
	default:
		fatalf("pen state must be up, down, or toggle, got %q", state)
	}
}

func runDeviceMotors(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	state := args["state"].Value
	opts := deviceOptsFrom(flags)
	switch state {
	case "on":
		exitWith(o.Motors(opts, true))
	case "off":
		exitWith(o.Motors(opts, false))
	default:
		fatalf("motors state must be on or off, got %q", state)
	}
}

func runDeviceJog(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	dx := mustFlagFloat(flags, "dx")
	dy := mustFlagFloat(flags, "dy")
	exitWith(o.Jog(deviceOptsFrom(flags), dx, dy))
}

func runDeviceHome(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.Home(deviceOptsFrom(flags)))
}

func runDeviceStatus(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.Status(deviceOptsFrom(flags)))
}

func runDevicePosition(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.Position(deviceOptsFrom(flags)))
}

func runDeviceReset(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.Reset(deviceOptsFrom(flags)))
}

func runDeviceReboot(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.Reboot(deviceOptsFrom(flags)))
}

func runDeviceAbort(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.Abort(deviceOptsFrom(flags)))
}

func runDeviceVersion(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	applyGlobalFlags(flags)
	o, err := newOrchestrator(flags)
	if err != nil {
		exitWith(err)
		return
	}
	exitWith(o.DeviceVersion(deviceOptsFrom(flags)))
}
