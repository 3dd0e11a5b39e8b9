package mgrp

import "net"

// BindPolicy picks the local address a multicast socket binds to.
type BindPolicy interface {
	Addr(group net.IP, port int) *net.UDPAddr
}

type bindFunc func(group net.IP, port int) *net.UDPAddr

func (f bindFunc) Addr(group net.IP, port int) *net.UDPAddr { return f(group, port) }

var (
	// BindGroup binds to the group address itself, so the kernel only
	// delivers traffic sent to that group.
	BindGroup BindPolicy = bindFunc(func(group net.IP, port int) *net.UDPAddr {
		return &net.UDPAddr{IP: group, Port: port}
	})

	// BindWildcard binds to 0.0.0.0. Needed where binding to a multicast
	// address is not allowed.
	BindWildcard BindPolicy = bindFunc(func(_ net.IP, port int) *net.UDPAddr {
		return &net.UDPAddr{IP: net.IPv4zero, Port: port}
	})
)
