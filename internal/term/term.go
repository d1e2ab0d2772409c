// Package term switches the controlling terminal into the single-keystroke
// mode tday reads from and back.
package term

import (
	"sync"

	xterm "golang.org/x/term"
)

// Terminal remembers the mode a file descriptor had before EnterRaw.
type Terminal struct {
	fd      int
	raw     bool
	restore func() error

	once sync.Once
	err  error
}

// EnterRaw disables canonical line buffering and echo on fd, asking for reads
// that return as soon as one byte is available. When fd is not a terminal the
// returned Terminal is inert and Restore does nothing.
func EnterRaw(fd int) (*Terminal, error) {
	t := &Terminal{fd: fd, restore: func() error { return nil }}
	if !xterm.IsTerminal(fd) {
		return t, nil
	}
	restore, err := makeRaw(fd)
	if err != nil {
		return nil, err
	}
	t.raw = true
	t.restore = restore
	return t, nil
}

// Raw reports whether EnterRaw changed the terminal mode.
func (t *Terminal) Raw() bool {
	return t != nil && t.raw
}

// Restore puts back the mode saved by EnterRaw. Only the first call has an
// effect; later calls return the first result.
func (t *Terminal) Restore() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		t.err = t.restore()
	})
	return t.err
}
