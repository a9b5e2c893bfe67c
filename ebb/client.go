/*
Package ebb implements the ASCII wire protocol spoken by an AxiDraw-class
EBB ("EiBotBoard") controller: command framing with CR termination, reply
parsing with CRLF termination, minimum inter-command spacing, and
per-command timeouts (§4.7, §6.2).

License: governed by the 3-Clause BSD license found in the module root.
*/
package ebb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/perr"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.ebb")
}

// Client frames commands over port and parses replies. It is safe for use
// by a single goroutine at a time; the device session layer is the sole
// owner of a Client for the lifetime of a session (§5: commands sent to
// the device are totally ordered per session).
type Client struct {
	port        io.Writer
	timeout     time.Duration
	minInterval time.Duration
	lastSent    time.Time

	lines chan string
	errs  chan error
}

// Wire protocol limits from §6.2.
const (
	minDurationMs = 1
	maxDurationMs = 1<<24 - 1
	minSteps      = -(1<<24 - 1)
	maxSteps      = 1<<24 - 1
	minHomeRate   = 2
	maxHomeRate   = 25000
)

// NewClient wraps port, a full-duplex serial connection, with command
// framing. timeout bounds how long the client waits for a reply line;
// minInterval enforces a minimum gap between successive command writes.
func NewClient(port io.ReadWriter, timeout, minInterval time.Duration) *Client {
	c := &Client{port: port, timeout: timeout, minInterval: minInterval}
	c.lines = make(chan string)
	c.errs = make(chan error, 1)
	go c.readLoop(port)
	return c
}

func (c *Client) readLoop(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			c.errs <- err
			return
		}
		c.lines <- strings.TrimRight(line, "\r\n")
	}
}

// send frames cmd with a CR terminator, enforces minInterval, and waits
// for a single CRLF-terminated reply line, bounded by timeout. A reply
// beginning with "!" is a controller-reported protocol error.
func (c *Client) send(cmd string) (string, error) {
	if gap := c.minInterval - time.Since(c.lastSent); gap > 0 && !c.lastSent.IsZero() {
		time.Sleep(gap)
	}
	if _, err := io.WriteString(c.port, cmd+"\r"); err != nil {
		return "", perr.Wrap(perr.Io, err, "writing command %q", cmd)
	}
	c.lastSent = time.Now()
	tracer().Debugf("-> %s", cmd)

	select {
	case line := <-c.lines:
		tracer().Debugf("<- %s", line)
		if strings.HasPrefix(line, "!") {
			return "", perr.New(perr.Protocol, "device rejected %q: %s", cmd, line)
		}
		return line, nil
	case err := <-c.errs:
		return "", perr.Wrap(perr.Io, err, "reading reply to %q", cmd)
	case <-time.After(c.timeout):
		return "", perr.New(perr.Timeout, "no reply to %q within %s", cmd, c.timeout)
	}
}

// ack sends cmd and requires an "OK"-prefixed reply, the framing used by
// every action command (as opposed to the structured-data replies that
// queries return).
func (c *Client) ack(cmd string) error {
	reply, err := c.send(cmd)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "OK") {
		return perr.New(perr.Protocol, "expected OK reply to %q, got %q", cmd, reply)
	}
	return nil
}

func inRange(v, lo, hi int64) bool { return v >= lo && v <= hi }

// EnableMotors issues EM,<m1>,<m2>, one microstep mode per axis in 0..5
// (0 disables the axis).
func (c *Client) EnableMotors(mode1, mode2 int) error {
	if !inRange(int64(mode1), 0, 5) || !inRange(int64(mode2), 0, 5) {
		return perr.New(perr.Argument, "motor mode out of range [0,5]: %d, %d", mode1, mode2)
	}
	return c.ack(fmt.Sprintf("EM,%d,%d", mode1, mode2))
}

// Move issues SM,<duration_ms>,<steps1>,<steps2>, a Cartesian
// straight-line move taking durationMs milliseconds.
func (c *Client) Move(durationMs int32, steps1, steps2 int32) error {
	if !inRange(int64(durationMs), minDurationMs, maxDurationMs) {
		return perr.New(perr.Argument, "duration %d out of range [%d,%d]", durationMs, minDurationMs, maxDurationMs)
	}
	if !inRange(int64(steps1), minSteps, maxSteps) || !inRange(int64(steps2), minSteps, maxSteps) {
		return perr.New(perr.Argument, "step count out of range [%d,%d]: %d, %d", minSteps, maxSteps, steps1, steps2)
	}
	return c.ack(fmt.Sprintf("SM,%d,%d,%d", durationMs, steps1, steps2))
}

// MoveCoreXY issues XM,<duration_ms>,<stepsA>,<stepsB>, the CoreXY analog
// of Move: the firmware applies the A=X+Y, B=X-Y projection itself.
func (c *Client) MoveCoreXY(durationMs int32, stepsA, stepsB int32) error {
	if !inRange(int64(durationMs), minDurationMs, maxDurationMs) {
		return perr.New(perr.Argument, "duration %d out of range [%d,%d]", durationMs, minDurationMs, maxDurationMs)
	}
	if !inRange(int64(stepsA), minSteps, maxSteps) || !inRange(int64(stepsB), minSteps, maxSteps) {
		return perr.New(perr.Argument, "step count out of range [%d,%d]: %d, %d", minSteps, maxSteps, stepsA, stepsB)
	}
	return c.ack(fmt.Sprintf("XM,%d,%d,%d", durationMs, stepsA, stepsB))
}

// ClearFlag selects whether LowLevelMove/LowLevelMoveTimed clear an
// axis's step accumulator before starting.
type ClearFlag int

const (
	ClearNone  ClearFlag = 0
	ClearAxis1 ClearFlag = 1
	ClearAxis2 ClearFlag = 2
	ClearBoth  ClearFlag = 3
)

// LowLevelMove issues LM,<rate1>,<steps1>,<accel1>,<rate2>,<steps2>,<accel2>[,<clear>],
// a step-limited move driven directly by per-axis rate and acceleration
// (the form the stepper package's Phase values feed).
func (c *Client) LowLevelMove(rate1 int32, steps1 int32, accel1 int32, rate2 int32, steps2 int32, accel2 int32, clear ClearFlag) error {
	if rate1 < 0 || rate2 < 0 {
		return perr.New(perr.Argument, "rate must be non-negative: %d, %d", rate1, rate2)
	}
	if !inRange(int64(steps1), minSteps, maxSteps) || !inRange(int64(steps2), minSteps, maxSteps) {
		return perr.New(perr.Argument, "step count out of range [%d,%d]: %d, %d", minSteps, maxSteps, steps1, steps2)
	}
	return c.ack(fmt.Sprintf("LM,%d,%d,%d,%d,%d,%d,%d", rate1, steps1, accel1, rate2, steps2, accel2, clear))
}

// LowLevelMoveTimed issues LT,<intervals>,<rate1>,<accel1>,<rate2>,<accel2>[,<clear>],
// the time-limited counterpart of LowLevelMove: it runs for exactly
// intervals * 40us regardless of how many steps that produces.
func (c *Client) LowLevelMoveTimed(intervals int32, rate1 int32, accel1 int32, rate2 int32, accel2 int32, clear ClearFlag) error {
	if intervals <= 0 {
		return perr.New(perr.Argument, "intervals must be positive, got %d", intervals)
	}
	if rate1 < 0 || rate2 < 0 {
		return perr.New(perr.Argument, "rate must be non-negative: %d, %d", rate1, rate2)
	}
	return c.ack(fmt.Sprintf("LT,%d,%d,%d,%d,%d,%d", intervals, rate1, accel1, rate2, accel2, clear))
}

// Home issues HM,<rate>[,<pos1>,<pos2>], moving both axes toward (0,0) or
// an explicit target position at the given step rate.
func (c *Client) Home(rate int32, target *[2]int32) error {
	if !inRange(int64(rate), minHomeRate, maxHomeRate) {
		return perr.New(perr.Argument, "home rate %d out of range [%d,%d]", rate, minHomeRate, maxHomeRate)
	}
	cmd := fmt.Sprintf("HM,%d", rate)
	if target != nil {
		cmd += fmt.Sprintf(",%d,%d", target[0], target[1])
	}
	return c.ack(cmd)
}

// PenServo issues SP,<1|0>[,<settle_ms>[,<portb_pin>]]. up selects the
// raised (true) or lowered (false) position.
func (c *Client) PenServo(up bool, settleMs *int32, portBPin *int32) error {
	state := 0
	if up {
		state = 1
	}
	cmd := fmt.Sprintf("SP,%d", state)
	if settleMs != nil {
		cmd += fmt.Sprintf(",%d", *settleMs)
		if portBPin != nil {
			cmd += fmt.Sprintf(",%d", *portBPin)
		}
	}
	return c.ack(cmd)
}

// ServoConfig issues SC,<param>,<value>, setting one of the pen servo's
// configuration parameters (e.g. up/down position, rate).
func (c *Client) ServoConfig(param, value int32) error {
	return c.ack(fmt.Sprintf("SC,%d,%d", param, value))
}

// ServoTimeout issues SR,<timeout>[,<state>], the delay after which the
// servo is powered down once idle.
func (c *Client) ServoTimeout(timeoutMs int32, state *int) error {
	if timeoutMs < 0 {
		return perr.New(perr.Argument, "servo timeout must be non-negative, got %d", timeoutMs)
	}
	cmd := fmt.Sprintf("SR,%d", timeoutMs)
	if state != nil {
		cmd += fmt.Sprintf(",%d", *state)
	}
	return c.ack(cmd)
}

// MotionStatus is the parsed reply to QM.
type MotionStatus struct {
	CommandActive bool
	Motor1Active  bool
	Motor2Active  bool
	FIFOPending   bool
}

// Idle reports whether the device satisfies the idle-wait condition of
// §4.8 step 7.
func (m MotionStatus) Idle() bool {
	return !m.CommandActive && !m.Motor1Active && !m.Motor2Active && !m.FIFOPending
}

// QueryMotion issues QM and parses the motion status snapshot.
func (c *Client) QueryMotion() (MotionStatus, error) {
	reply, err := c.send("QM")
	if err != nil {
		return MotionStatus{}, err
	}
	fields, err := splitReply(reply, "QM", 4)
	if err != nil {
		return MotionStatus{}, err
	}
	flags := make([]bool, 4)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return MotionStatus{}, perr.Wrap(perr.Protocol, err, "parsing QM field %d (%q)", i, f)
		}
		flags[i] = v != 0
	}
	return MotionStatus{CommandActive: flags[0], Motor1Active: flags[1], Motor2Active: flags[2], FIFOPending: flags[3]}, nil
}

// StepCounters is the parsed reply to QS: absolute step position on each
// axis since the last home or reset.
type StepCounters struct {
	Steps1, Steps2 int64
}

// QueryStepCounters issues QS.
func (c *Client) QueryStepCounters() (StepCounters, error) {
	reply, err := c.send("QS")
	if err != nil {
		return StepCounters{}, err
	}
	fields, err := splitReply(reply, "QS", 2)
	if err != nil {
		return StepCounters{}, err
	}
	s1, err1 := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	s2, err2 := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err1 != nil || err2 != nil {
		return StepCounters{}, perr.New(perr.Protocol, "malformed QS reply %q", reply)
	}
	return StepCounters{Steps1: s1, Steps2: s2}, nil
}

// QueryPen issues QP and reports whether the pen is currently raised.
func (c *Client) QueryPen() (bool, error) {
	reply, err := c.send("QP")
	if err != nil {
		return false, err
	}
	fields, err := splitReply(reply, "QP", 1)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(fields[0]) != "0", nil
}

// QueryServoPower issues QR and reports whether the pen servo is
// currently powered.
func (c *Client) QueryServoPower() (bool, error) {
	reply, err := c.send("QR")
	if err != nil {
		return false, err
	}
	fields, err := splitReply(reply, "QR", 1)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(fields[0]) != "0", nil
}

// Version issues V and returns the firmware's raw version string.
func (c *Client) Version() (string, error) {
	return c.send("V")
}

// Raw sends cmd verbatim and returns the single reply line, for an
// interactive console that lets an operator frame arbitrary EBB commands
// not covered by a typed method above.
func (c *Client) Raw(cmd string) (string, error) {
	return c.send(cmd)
}

// EmergencyStop issues ES, halting any in-progress motion immediately.
func (c *Client) EmergencyStop() error {
	_, err := c.send("ES")
	return err
}

// ClearStepPosition issues CS, zeroing both axes' step counters.
func (c *Client) ClearStepPosition() error {
	return c.ack("CS")
}

// Reboot issues RB. The device disconnects as part of rebooting, so the
// caller should not expect a further reply.
func (c *Client) Reboot() error {
	_, err := c.send("RB")
	if err != nil && perr.KindOf(err) != perr.Timeout {
		return err
	}
	return nil
}

// splitReply splits a reply line on commas, requiring the leading field
// to equal prefix and exactly want fields to follow.
func splitReply(reply, prefix string, want int) ([]string, error) {
	parts := strings.Split(reply, ",")
	if len(parts) != want+1 || !strings.EqualFold(parts[0], prefix) {
		return nil, perr.New(perr.Protocol, "malformed %s reply %q", prefix, reply)
	}
	return parts[1:], nil
}
