//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package term

import (
	"errors"
	"runtime"
)

func makeRaw(int) (func() error, error) {
	return nil, errors.New("raw mode is not supported on " + runtime.GOOS)
}
