package orchestrator

import (
	"fmt"
	"math"

	"github.com/axidraft/plotdrive/device"
	"github.com/axidraft/plotdrive/ebb"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/internal/settings"
	"github.com/axidraft/plotdrive/motion"
	"github.com/axidraft/plotdrive/perr"
	"github.com/axidraft/plotdrive/stepper"
)

// defaultHomeRate, defaultMotorMode and defaultMotorOffMode are the values used when the
// `device home`/`device motors on` actions don't take their own rate/mode
// flag (§6.1 lists these as bare subcommands).
const (
	defaultHomeRate     = int32(400)
	defaultMotorMode    = 2
	defaultMotorOffMode = 0
)

// DeviceOptions carries the parameters shared by every `device <op>`
// action: the alias naming which serial port to select (§4.8 step 3).
type DeviceOptions struct {
	Alias string
}

func (o *Orchestrator) openOptions(opts DeviceOptions, doc settings.Document, waitIdle bool) device.Options {
	alias := opts.Alias
	if alias == "" {
		alias = doc.DefaultDeviceAlias
	}
	st := stepperSettings(doc)
	return device.Options{
		Alias:      alias,
		StepsPerMm: st.StepsPerMm,
		Model:      st.Model,
		WaitIdle:   waitIdle,
	}
}

// ListDevices enumerates candidate serial ports without opening a session.
func (o *Orchestrator) ListDevices() error {
	ports, err := device.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, err := fmt.Fprintln(o.Out, "no serial ports found")
		return err
	}
	for _, p := range ports {
		if _, err := fmt.Fprintln(o.Out, p); err != nil {
			return err
		}
	}
	return nil
}

// ShowProfile prints the configured kinematic model, calibration and
// default alias — the `device profile` action.
func (o *Orchestrator) ShowProfile() error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(o.Out, "kinematic model: %s\nsteps per mm: %.3f, %.3f\ndefault alias: %s\n",
		doc.KinematicModel, doc.StepsPerMmX, doc.StepsPerMmY, doc.DefaultDeviceAlias)
	return err
}

// Pen sets the pen servo to the up or down position.
func (o *Orchestrator) Pen(opts DeviceOptions, up bool) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, true), func(s *device.Session) error {
		return s.Client.PenServo(up, nil, nil)
	})
}

// TogglePen flips the pen servo relative to its last queried position.
func (o *Orchestrator) TogglePen(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, true), func(s *device.Session) error {
		up, err := s.Client.QueryPen()
		if err != nil {
			return err
		}
		return s.Client.PenServo(!up, nil, nil)
	})
}

// Motors enables or disables both stepper motors.
func (o *Orchestrator) Motors(opts DeviceOptions, on bool) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	mode := defaultMotorOffMode
	if on {
		mode = defaultMotorMode
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		return s.Client.EnableMotors(mode, mode)
	})
}

// Jog issues a single relative move of (dxMm, dyMm) at the nominal feed,
// the `device jog --dx --dy` action.
func (o *Orchestrator) Jog(opts DeviceOptions, dxMm, dyMm float64) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	if !doc.HasDeviceProfile() {
		return perr.New(perr.Config, "no device profile configured; set stepsPerMmX/stepsPerMmY via `config set`")
	}
	length := math.Hypot(dxMm, dyMm)
	if length == 0 {
		return nil
	}
	feed := doc.NominalFeedMmS
	block := motion.Block{
		Start: geom.Point{}, End: geom.Point{X: dxMm, Y: dyMm},
		Length:      length,
		CruiseSpeed: feed,
		CruiseDist:  length,
		Duration:    length / feed,
	}
	st := stepperSettings(doc)
	return device.Open(o.openOptions(opts, doc, true), func(s *device.Session) error {
		phases, _, err := stepper.Derive(block, st, false)
		if err != nil {
			return err
		}
		for _, phase := range phases {
			if err := s.Client.LowLevelMove(
				phase.RateStart[0], phase.Steps[0], phase.Accel[0],
				phase.RateStart[1], phase.Steps[1], phase.Accel[1],
				ebb.ClearNone,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Home drives both axes toward the origin at the default home rate.
func (o *Orchestrator) Home(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, true), func(s *device.Session) error {
		return s.Client.Home(defaultHomeRate, nil)
	})
}

// Status reports motion/pen/servo state, the `device status` action.
func (o *Orchestrator) Status(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		motionStatus, err := s.Client.QueryMotion()
		if err != nil {
			return err
		}
		penUp, err := s.Client.QueryPen()
		if err != nil {
			return err
		}
		servoOn, err := s.Client.QueryServoPower()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(o.Out, "port: %s\nidle: %v\npen up: %v\nservo powered: %v\n",
			s.Port, motionStatus.Idle(), penUp, servoOn)
		return err
	})
}

// Position reports the device's absolute step counters, the
// `device position` action.
func (o *Orchestrator) Position(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		counters, err := s.Client.QueryStepCounters()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(o.Out, "axis1: %d steps\naxis2: %d steps\n", counters.Steps1, counters.Steps2)
		return err
	})
}

// Reset zeroes both axes' step counters, the `device reset` action.
func (o *Orchestrator) Reset(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		return s.Client.ClearStepPosition()
	})
}

// Reboot power-cycles the controller firmware.
func (o *Orchestrator) Reboot(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		return s.Client.Reboot()
	})
}

// Abort issues an emergency stop, the `device abort` action.
func (o *Orchestrator) Abort(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		return s.Client.EmergencyStop()
	})
}

// Console opens a session and hands the live client to repl, the
// collaborator behind the `device console` interactive REPL. No
// WaitIdle: an operator driving raw commands controls their own pacing.
func (o *Orchestrator) Console(opts DeviceOptions, repl func(*ebb.Client) error) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		return repl(s.Client)
	})
}

// DeviceVersion reports the firmware's version string.
func (o *Orchestrator) DeviceVersion(opts DeviceOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	return device.Open(o.openOptions(opts, doc, false), func(s *device.Session) error {
		v, err := s.Client.Version()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(o.Out, v)
		return err
	})
}
