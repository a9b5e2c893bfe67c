package orchestrator

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/axidraft/plotdrive/device"
	"github.com/axidraft/plotdrive/ebb"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/motion"
	"github.com/axidraft/plotdrive/perr"
	"github.com/axidraft/plotdrive/stepper"
)

// loopback pairs an io.Pipe in each direction into a single io.ReadWriter,
// mirroring the fake transport used by ebb and device's own tests.
type loopback struct {
	out *io.PipeWriter
	in  *io.PipeReader
}

func (l loopback) Write(p []byte) (int, error) { return l.out.Write(p) }
func (l loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }

func newFakeDevice(t *testing.T, respond func(cmd string) string) (io.ReadWriter, *[]string) {
	t.Helper()
	cmdR, cmdW := io.Pipe()
	replyR, replyW := io.Pipe()
	var received []string

	scanner := bufio.NewScanner(cmdR)
	scanner.Split(func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if i := bytes.IndexByte(data, '\r'); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	go func() {
		for scanner.Scan() {
			cmd := scanner.Text()
			received = append(received, cmd)
			reply := respond(cmd)
			if reply == "" {
				continue
			}
			io.WriteString(replyW, reply+"\r\n")
		}
	}()
	return loopback{out: cmdW, in: replyR}, &received
}

func ackResponder(cmd string) string {
	if strings.HasPrefix(cmd, "QP") {
		return "QP,0"
	}
	return "OK"
}

func TestSubmitTogglesPenOnStateChange(t *testing.T) {
	transport, received := newFakeDevice(t, ackResponder)
	client := ebb.NewClient(transport, time.Second, 0)
	session := &device.Session{Client: client, Port: "/dev/fake"}

	blocks := []motion.Block{
		{Start: geom.Point{}, End: geom.Point{X: 10}, Length: 10, PenDown: true, CruiseSpeed: 50, CruiseDist: 10, Duration: 0.2},
		{Start: geom.Point{X: 10}, End: geom.Point{X: 20}, Length: 10, PenDown: true, CruiseSpeed: 50, CruiseDist: 10, Duration: 0.2},
		{Start: geom.Point{X: 20}, End: geom.Point{X: 30}, Length: 10, PenDown: false, CruiseSpeed: 50, CruiseDist: 10, Duration: 0.2},
	}
	st := stepper.Settings{StepsPerMm: [2]float64{80, 80}, Model: stepper.Cartesian}

	if err := submit(context.Background(), session, blocks, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	penCmds := 0
	for _, c := range *received {
		if strings.HasPrefix(c, "SP,") {
			penCmds++
		}
	}
	if penCmds != 2 {
		t.Fatalf("expected exactly 2 pen toggles (down then up), got %d among %v", penCmds, *received)
	}
	if !strings.HasPrefix((*received)[0], "SP,0") {
		t.Fatalf("expected the first command to lower the pen, got %q", (*received)[0])
	}
}

func TestSubmitStopsOnCancellation(t *testing.T) {
	transport, received := newFakeDevice(t, ackResponder)
	client := ebb.NewClient(transport, time.Second, 0)
	session := &device.Session{Client: client, Port: "/dev/fake"}

	blocks := []motion.Block{
		{Start: geom.Point{}, End: geom.Point{X: 10}, Length: 10, PenDown: true, CruiseSpeed: 50, CruiseDist: 10, Duration: 0.2},
	}
	st := stepper.Settings{StepsPerMm: [2]float64{80, 80}, Model: stepper.Cartesian}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := submit(ctx, session, blocks, st)
	if perr.KindOf(err) != perr.Internal {
		t.Fatalf("expected Internal error kind wrapping cancellation, got %v", err)
	}
	found := false
	for _, c := range *received {
		if c == "ES" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an emergency stop command, got %v", *received)
	}
}
