package devicelock

import (
	"path/filepath"
	"testing"

	"github.com/axidraft/plotdrive/perr"
)

func TestAcquireThenReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plotdrive.lock")
	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("unexpected error releasing: %v", err)
	}
	lock2, err := Acquire(path)
	if err != nil {
		t.Fatalf("expected reacquire to succeed after release: %v", err)
	}
	lock2.Release()
}

func TestAcquireHeldLockReturnsDeviceBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plotdrive.lock")
	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer lock.Release()

	_, err = Acquire(path)
	if perr.KindOf(err) != perr.DeviceBusy {
		t.Fatalf("expected DeviceBusy error kind, got %v", err)
	}
}

func TestReleaseOnNilLockIsNoop(t *testing.T) {
	var lock *Lock
	if err := lock.Release(); err != nil {
		t.Fatalf("expected no error releasing nil lock, got %v", err)
	}
}
