package orchestrator

import (
	"context"

	"github.com/axidraft/plotdrive/device"
	"github.com/axidraft/plotdrive/ebb"
	"github.com/axidraft/plotdrive/motion"
	"github.com/axidraft/plotdrive/perr"
	"github.com/axidraft/plotdrive/stepper"
)

// submit feeds blocks to the device in order, toggling the pen servo
// whenever a block's pen state differs from the device's last known
// state. A cancelled ctx triggers an emergency stop before returning,
// per §5's cancellation semantics (scenario S6): partial motion leaves
// the device at an unknown position, so the caller must home before
// trusting the origin again.
func submit(ctx context.Context, session *device.Session, blocks []motion.Block, st stepper.Settings) error {
	client := session.Client
	penUp := true

	for _, block := range blocks {
		select {
		case <-ctx.Done():
			if stopErr := client.EmergencyStop(); stopErr != nil {
				tracer().Warnf("emergency stop after cancellation failed: %v", stopErr)
			}
			return perr.Wrap(perr.Internal, ctx.Err(), "print cancelled")
		default:
		}

		if block.PenDown == penUp {
			if err := client.PenServo(!block.PenDown, nil, nil); err != nil {
				return err
			}
			penUp = !block.PenDown
		}

		phases, _, err := stepper.Derive(block, st, false)
		if err != nil {
			return err
		}
		for _, phase := range phases {
			if err := client.LowLevelMove(
				phase.RateStart[0], phase.Steps[0], phase.Accel[0],
				phase.RateStart[1], phase.Steps[1], phase.Accel[1],
				ebb.ClearNone,
			); err != nil {
				return err
			}
		}
	}
	return nil
}
