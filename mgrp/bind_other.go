//go:build !unix && !windows

package mgrp

import "syscall"

// DefaultBind is the platform's BindPolicy. Without socket options to rely on,
// the wildcard address is the only safe choice.
var DefaultBind = BindWildcard

// No reuse options are available here.
func reuseControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
