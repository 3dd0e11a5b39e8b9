/*
Package mgrp creates the multicast UDP sockets the relay reads from and writes
to.

Every socket joins the group on each relayed interface, has address reuse and
multicast loopback enabled, and is bound according to a BindPolicy. Loopback is
deliberately left on: loop prevention happens in the relay by source address,
not by suppressing local delivery.
*/
package mgrp // import "go.jonnrb.io/mdns_relay/mgrp"

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.jonnrb.io/mdns_relay/ifaddr"
	"go.uber.org/multierr"
	"golang.org/x/net/ipv4"
)

// SetupError is returned when a socket can't be created or configured.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("mgrp: %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

type Config struct {
	Group net.IP
	Port  int

	// Interfaces to join the group on. If empty, the group is joined on the
	// system default interface.
	Interfaces []ifaddr.Entry

	// Defaults to the platform policy.
	Bind BindPolicy
}

// Conn is a multicast-joined IPv4 UDP socket.
type Conn struct {
	*ipv4.PacketConn

	group  net.IP
	joined []*net.Interface
}

// New opens a socket for cfg. The returned Conn has joined the group and is
// ready to read and write.
func New(cfg Config) (*Conn, error) {
	bind := cfg.Bind
	if bind == nil {
		bind = DefaultBind
	}
	laddr := bind.Addr(cfg.Group, cfg.Port)

	lc := net.ListenConfig{Control: reuseControl}
	pc, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort(laddr.IP.String(), strconv.Itoa(laddr.Port)))
	if err != nil {
		return nil, &SetupError{Op: "listen " + laddr.String(), Err: err}
	}

	c := &Conn{
		PacketConn: ipv4.NewPacketConn(pc),
		group:      cfg.Group,
	}

	if err := c.SetMulticastLoopback(true); err != nil {
		c.PacketConn.Close()
		return nil, &SetupError{Op: "enable multicast loopback", Err: err}
	}

	if err := c.join(cfg.Interfaces); err != nil {
		return nil, multierr.Append(err, c.Close())
	}

	// Interface indexes in control messages are informational only, and not
	// available on every platform.
	_ = c.SetControlMessage(ipv4.FlagInterface, true)

	return c, nil
}

func (c *Conn) join(entries []ifaddr.Entry) error {
	grp := &net.UDPAddr{IP: c.group}
	if len(entries) == 0 {
		if err := c.JoinGroup(nil, grp); err != nil {
			return &SetupError{Op: "join " + c.group.String() + " on default interface", Err: err}
		}
		c.joined = append(c.joined, nil)
		return nil
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		// An interface with several addresses only joins once.
		if seen[e.Name] {
			continue
		}
		ifi := e.Interface()
		if err := c.JoinGroup(ifi, grp); err != nil {
			return &SetupError{Op: fmt.Sprintf("join %v on %s", c.group, e.Name), Err: err}
		}
		seen[e.Name] = true
		c.joined = append(c.joined, ifi)
	}
	return nil
}

// Close leaves every joined group and closes the socket.
func (c *Conn) Close() error {
	var err error
	grp := &net.UDPAddr{IP: c.group}
	for _, ifi := range c.joined {
		err = multierr.Append(err, c.PacketConn.LeaveGroup(ifi, grp))
	}
	c.joined = nil
	return multierr.Append(err, c.PacketConn.Close())
}
