//go:build windows

package mgrp

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// DefaultBind is the platform's BindPolicy. Windows refuses to bind a socket to
// a multicast address.
var DefaultBind = BindWildcard

func reuseControl(_, _ string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}
