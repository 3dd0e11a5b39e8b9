//go:build unix

package mgrp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultBind is the platform's BindPolicy.
var DefaultBind = BindGroup

func reuseControl(_, _ string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if opErr != nil {
			return
		}
		// Best effort; not every kernel has it.
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}
