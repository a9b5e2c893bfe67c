/*
Package devicelock implements the process-external advisory lock that
guards the physical plotter: an exclusively-created lock file whose
contents identify the holding process (§4.8 step 1, §5).

License: governed by the 3-Clause BSD license found in the module root.
*/
package devicelock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/axidraft/plotdrive/perr"
)

// DefaultPath is the lock file used when a caller does not supply one.
var DefaultPath = filepath.Join(os.TempDir(), "plotdrive.device.lock")

// Lock is a held device lock. The zero value is not valid; obtain one
// via Acquire.
type Lock struct {
	path string
}

// Acquire creates path exclusively and writes the current process id as
// its contents. If the file already exists, Acquire reads the existing
// holder and returns a DeviceBusy error describing it.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			holder, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil, perr.New(perr.DeviceBusy, "device lock %s is held (holder unreadable)", path)
			}
			return nil, perr.New(perr.DeviceBusy, "device lock %s is held by pid %s", path, strings.TrimSpace(string(holder)))
		}
		return nil, perr.Wrap(perr.Io, err, "creating device lock %s", path)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%d", os.Getpid()); err != nil {
		os.Remove(path)
		return nil, perr.Wrap(perr.Io, err, "writing device lock %s", path)
	}
	return &Lock{path: path}, nil
}

// Release deletes the lock file, freeing the device for the next caller.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return perr.Wrap(perr.Io, err, "releasing device lock %s", l.path)
	}
	return nil
}
