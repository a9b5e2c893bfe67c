/*
Package device implements the eight-step device session lifecycle of
§4.8: lock acquisition, port enumeration and selection, a version probe,
settings validation, callback execution, an optional idle-wait, and
teardown on every exit path.

License: governed by the 3-Clause BSD license found in the module root.
*/
package device

import (
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/ebb"
	"github.com/axidraft/plotdrive/internal/devicelock"
	"github.com/axidraft/plotdrive/perr"
	"github.com/axidraft/plotdrive/stepper"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.device")
}

const (
	defaultBaudRate    = 9600
	defaultTimeout     = 2 * time.Second
	defaultMinInterval = 5 * time.Millisecond
	probeTimeout       = 500 * time.Millisecond
	idlePollInterval   = 20 * time.Millisecond
	idleMaxAttempts    = 200
)

// Options configures a device session.
type Options struct {
	Alias       string
	BaudRate    int
	Timeout     time.Duration
	MinInterval time.Duration
	StepsPerMm  [2]float64
	Model       stepper.KinematicModel
	WaitIdle    bool
	LockPath    string
}

func (o Options) withDefaults() Options {
	if o.BaudRate <= 0 {
		o.BaudRate = defaultBaudRate
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MinInterval < 0 {
		o.MinInterval = defaultMinInterval
	}
	return o
}

// Session is the live connection handed to a device callback.
type Session struct {
	Client   *ebb.Client
	Settings stepper.Settings
	Port     string
}

// WaitIdle polls QM until the device reports no active command, no
// active motor, and no pending FIFO entry, or gives up after ~4s
// (§4.8 step 7).
func (s *Session) WaitIdle() error {
	for i := 0; i < idleMaxAttempts; i++ {
		status, err := s.Client.QueryMotion()
		if err != nil {
			return err
		}
		if status.Idle() {
			return nil
		}
		time.Sleep(idlePollInterval)
	}
	return perr.New(perr.Timeout, "device did not reach idle within %s", time.Duration(idleMaxAttempts)*idlePollInterval)
}

// serialPort is the subset of go.bug.st/serial.Port that Open needs.
type serialPort interface {
	io.ReadWriteCloser
}

// openSerialPort and listSerialPorts are package vars so tests can
// substitute a fake transport without touching real hardware.
var openSerialPort = func(portName string, baudRate int) (serialPort, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, perr.Wrap(perr.Io, err, "opening serial port %s", portName)
	}
	return port, nil
}

var listSerialPorts = func() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, perr.Wrap(perr.Io, err, "enumerating serial ports")
	}
	return ports, nil
}

// Open runs the full session lifecycle, invoking fn once a probed,
// settings-validated connection is established, then tears everything
// down on every exit path (§4.8, §5).
func Open(opts Options, fn func(*Session) error) (err error) {
	opts = opts.withDefaults()

	lock, err := devicelock.Acquire(opts.LockPath)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()

	ports, err := enumeratePorts()
	if err != nil {
		return err
	}
	portName, err := selectPort(ports, opts)
	if err != nil {
		return err
	}

	raw, err := openSerialPort(portName, opts.BaudRate)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := raw.Close(); closeErr != nil && err == nil {
			err = perr.Wrap(perr.Io, closeErr, "closing serial port %s", portName)
		}
	}()

	client := ebb.NewClient(raw, opts.Timeout, opts.MinInterval)
	version, err := client.Version()
	if err != nil {
		return err
	}
	tracer().Infof("connected to %s: %s", portName, versionSummary(version))

	if opts.StepsPerMm[0] <= 0 || opts.StepsPerMm[1] <= 0 {
		return perr.New(perr.Config, "steps_per_mm must be positive, got %v", opts.StepsPerMm)
	}
	session := &Session{
		Client:   client,
		Settings: stepper.Settings{StepsPerMm: opts.StepsPerMm, Model: opts.Model},
		Port:     portName,
	}

	if err := fn(session); err != nil {
		return err
	}

	if opts.WaitIdle {
		if err := session.WaitIdle(); err != nil {
			return err
		}
	}
	return nil
}

func versionSummary(v string) string {
	if v == "" {
		return "(unknown firmware)"
	}
	return v
}

// ListPorts exposes enumeratePorts for callers that want to list
// candidate ports without opening a session (the `device list` action).
func ListPorts() ([]string, error) {
	return enumeratePorts()
}

// enumeratePorts lists serial ports via the driver and supplements them
// with platform-specific device-file globs, deduplicated by path
// (§4.8 step 2).
func enumeratePorts() ([]string, error) {
	listed, err := listSerialPorts()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(listed))
	out := make([]string, 0, len(listed))
	for _, p := range listed {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, pattern := range platformGlobs() {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func platformGlobs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/dev/cu.usbmodem*", "/dev/tty.usbmodem*"}
	case "linux":
		return []string{"/dev/ttyACM*", "/dev/ttyUSB*"}
	default:
		return nil
	}
}

// selectPort implements §4.8 step 3: an alias must match a port's base
// name or full path case-insensitively; without an alias, the first
// port that responds to a probe wins, falling back to the first
// enumerated port.
func selectPort(ports []string, opts Options) (string, error) {
	if opts.Alias != "" {
		for _, p := range ports {
			if strings.EqualFold(p, opts.Alias) || strings.EqualFold(filepath.Base(p), opts.Alias) {
				return p, nil
			}
		}
		return "", perr.New(perr.DeviceNotFound, "no serial port matches alias %q", opts.Alias)
	}
	if len(ports) == 0 {
		return "", perr.New(perr.DeviceNotFound, "no serial ports found")
	}
	for _, p := range ports {
		if probeResponsive(p, opts.BaudRate) {
			return p, nil
		}
	}
	return ports[0], nil
}

// probeResponsive opens a throwaway connection purely to test whether a
// candidate port answers a version query; failures are swallowed since
// an unresponsive candidate just drops out of the running.
func probeResponsive(portName string, baudRate int) bool {
	raw, err := openSerialPort(portName, baudRate)
	if err != nil {
		return false
	}
	defer raw.Close()
	client := ebb.NewClient(raw, probeTimeout, 0)
	_, err = client.Version()
	return err == nil
}
