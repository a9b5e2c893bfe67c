package ebb

import (
	"bufio"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/axidraft/plotdrive/perr"
)

// loopback presents a single io.ReadWriter backed by two pipes: writes
// go out to a fake device, reads come back from it.
type loopback struct {
	out *io.PipeWriter
	in  *io.PipeReader
}

func (l loopback) Write(p []byte) (int, error) { return l.out.Write(p) }
func (l loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }

// newFakeDevice wires a loopback transport to respond, a function from a
// CR-stripped command to the reply line it should send back (without
// terminator); an empty reply simulates device silence.
func newFakeDevice(respond func(cmd string) string) io.ReadWriter {
	cmdR, cmdW := io.Pipe()
	replyR, replyW := io.Pipe()

	scanner := bufio.NewScanner(cmdR)
	scanner.Split(scanCR)
	go func() {
		for scanner.Scan() {
			reply := respond(scanner.Text())
			if reply == "" {
				continue
			}
			io.WriteString(replyW, reply+"\r\n")
		}
	}()
	return loopback{out: cmdW, in: replyR}
}

func scanCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\r'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func TestClientVersionRoundTrip(t *testing.T) {
	port := newFakeDevice(func(cmd string) string {
		if cmd == "V" {
			return "EBBv13_and_above EB Firmware Version 2.7.0"
		}
		return ""
	})
	c := NewClient(port, 200*time.Millisecond, 0)
	v, err := c.Version()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "EBBv13_and_above EB Firmware Version 2.7.0" {
		t.Fatalf("unexpected version reply: %q", v)
	}
}

func TestRawSendsCommandVerbatim(t *testing.T) {
	port := newFakeDevice(func(cmd string) string {
		if cmd == "QG" {
			return "OK"
		}
		return ""
	})
	c := NewClient(port, 200*time.Millisecond, 0)
	reply, err := c.Raw("QG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "OK" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestClientEnableMotorsValidatesRangeBeforeIO(t *testing.T) {
	port := newFakeDevice(func(cmd string) string { return "" })
	c := NewClient(port, 50*time.Millisecond, 0)
	err := c.EnableMotors(6, 0)
	if perr.KindOf(err) != perr.Argument {
		t.Fatalf("expected Argument error kind, got %v", err)
	}
}

func TestClientEnableMotorsSendsAndAcks(t *testing.T) {
	port := newFakeDevice(func(cmd string) string {
		if cmd == "EM,1,2" {
			return "OK"
		}
		return "!unexpected"
	})
	c := NewClient(port, 200*time.Millisecond, 0)
	if err := c.EnableMotors(1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientTimesOutOnSilentDevice(t *testing.T) {
	port := newFakeDevice(func(cmd string) string { return "" })
	c := NewClient(port, 30*time.Millisecond, 0)
	_, err := c.Version()
	if perr.KindOf(err) != perr.Timeout {
		t.Fatalf("expected Timeout error kind, got %v", err)
	}
}

func TestClientBangReplyIsProtocolError(t *testing.T) {
	port := newFakeDevice(func(cmd string) string { return "!Invalid command" })
	c := NewClient(port, 200*time.Millisecond, 0)
	_, err := c.Version()
	if perr.KindOf(err) != perr.Protocol {
		t.Fatalf("expected Protocol error kind, got %v", err)
	}
}

func TestQueryMotionParsesFields(t *testing.T) {
	port := newFakeDevice(func(cmd string) string {
		if cmd == "QM" {
			return "QM,1,0,1,0"
		}
		return ""
	})
	c := NewClient(port, 200*time.Millisecond, 0)
	status, err := c.QueryMotion()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.CommandActive || status.Motor1Active || !status.Motor2Active || status.FIFOPending {
		t.Fatalf("unexpected parsed status: %+v", status)
	}
	if status.Idle() {
		t.Fatalf("expected non-idle status")
	}
}

func TestQueryMotionIdleWhenAllFlagsClear(t *testing.T) {
	port := newFakeDevice(func(cmd string) string {
		if cmd == "QM" {
			return "QM,0,0,0,0"
		}
		return ""
	})
	c := NewClient(port, 200*time.Millisecond, 0)
	status, err := c.QueryMotion()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Idle() {
		t.Fatalf("expected idle status, got %+v", status)
	}
}

func TestMinIntervalEnforcedBetweenCommands(t *testing.T) {
	port := newFakeDevice(func(cmd string) string { return "OK" })
	c := NewClient(port, 200*time.Millisecond, 40*time.Millisecond)
	start := time.Now()
	if err := c.EnableMotors(1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.EnableMotors(1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected at least the minimum interval between commands, took %s", elapsed)
	}
}

func TestHomeValidatesRateRange(t *testing.T) {
	port := newFakeDevice(func(cmd string) string { return "OK" })
	c := NewClient(port, 200*time.Millisecond, 0)
	if err := c.Home(1, nil); perr.KindOf(err) != perr.Argument {
		t.Fatalf("expected Argument error kind for out-of-range rate, got %v", err)
	}
	if err := c.Home(1000, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
