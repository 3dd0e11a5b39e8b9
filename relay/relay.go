/*
Package relay repeats mDNS datagrams seen on one interface out through every
other configured interface.

A Receiver reads datagrams off one multicast socket and hands them to an
Announcer, which owns a second socket and fans each datagram out to the group
once per egress interface. Datagrams whose source address belongs to this host
are never repeated; that is what keeps a repeated packet from being received
and repeated again.
*/
package relay // import "go.jonnrb.io/mdns_relay/relay"

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.jonnrb.io/mdns_relay/ifaddr"
	"go.jonnrb.io/mdns_relay/mgrp"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxDatagram bounds how much of each datagram is kept.
	MaxDatagram = 1024

	DefaultMarker      = "blizzard"
	DefaultReadTimeout = 5 * time.Second
	DefaultQueueSize   = 256
)

var ErrNoMarker = errors.New("relay: marker must not be empty")

type Config struct {
	Group net.IP
	Port  int

	// Only datagrams containing Marker are repeated.
	Marker []byte

	// Bounds how long the receiver blocks before rechecking for shutdown.
	ReadTimeout time.Duration

	// Capacity of the hand-off channel.
	QueueSize int
}

func DefaultConfig() Config {
	return Config{
		Group:       net.IPv4(224, 0, 0, 251),
		Port:        5353,
		Marker:      []byte(DefaultMarker),
		ReadTimeout: DefaultReadTimeout,
		QueueSize:   DefaultQueueSize,
	}
}

func (c Config) Validate() error {
	if ip4 := c.Group.To4(); ip4 == nil || !ip4.IsMulticast() {
		return fmt.Errorf("relay: %v is not an IPv4 multicast group", c.Group)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("relay: invalid port %d", c.Port)
	}
	if len(c.Marker) == 0 {
		return ErrNoMarker
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("relay: read timeout must be positive, got %v", c.ReadTimeout)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("relay: negative queue size %d", c.QueueSize)
	}
	return nil
}

func (c Config) groupAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: c.Group, Port: c.Port}
}

// Message is one received datagram on its way from the Receiver to the
// Announcer.
type Message struct {
	Payload []byte
	Source  net.Addr
}

// Conn is the socket surface the workers need. *mgrp.Conn implements it.
type Conn interface {
	SetReadDeadline(t time.Time) error
	ReadFrom(b []byte) (int, *ipv4.ControlMessage, net.Addr, error)
	SetMulticastInterface(ifi *net.Interface) error
	WriteTo(b []byte, cm *ipv4.ControlMessage, dst net.Addr) (int, error)
	Close() error
}

// Relay wires a Receiver and an Announcer together.
type Relay struct {
	Config Config

	// Relayed interfaces. Must not be modified once Run is called.
	Interfaces []ifaddr.Entry

	Logger  *zap.Logger
	Metrics *Metrics

	// Opens each worker's socket. Defaults to mgrp.New.
	Open func(mgrp.Config) (Conn, error)
}

func openMgrp(cfg mgrp.Config) (Conn, error) {
	c, err := mgrp.New(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Run starts both workers and blocks until they have stopped. Cancelling ctx
// asks them to stop; the receiver notices within one read timeout.
//
// If the receiver's socket can't be set up, nothing is started. If the
// announcer's can't, the already running receiver is stopped before Run
// returns the setup error.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.Config.Validate(); err != nil {
		return err
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := r.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	open := r.Open
	if open == nil {
		open = openMgrp
	}

	if len(r.Interfaces) == 0 {
		log.Warn("no relayed interface resolved; joining on the default interface only")
	}

	sockCfg := mgrp.Config{
		Group:      r.Config.Group,
		Port:       r.Config.Port,
		Interfaces: r.Interfaces,
	}

	rconn, err := open(sockCfg)
	if err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	defer rconn.Close()

	sd := NewShutdown()
	handoff := make(chan Message, r.Config.QueueSize)

	var grp errgroup.Group
	recv := &Receiver{
		Conn:        rconn,
		Out:         handoff,
		Shutdown:    sd,
		ReadTimeout: r.Config.ReadTimeout,
		Logger:      log.Named("receiver"),
		Metrics:     metrics,
	}
	grp.Go(recv.Run)

	aconn, err := open(sockCfg)
	if err != nil {
		sd.Set()
		grp.Wait()
		return fmt.Errorf("announcer: %w", err)
	}
	defer aconn.Close()

	ann := &Announcer{
		Conn:       aconn,
		In:         handoff,
		Shutdown:   sd,
		Interfaces: r.Interfaces,
		Group:      r.Config.groupAddr(),
		Marker:     r.Config.Marker,
		Logger:     log.Named("announcer"),
		Metrics:    metrics,
	}
	grp.Go(ann.Run)

	go func() {
		select {
		case <-ctx.Done():
			sd.Set()
		case <-sd.C():
		}
	}()

	return grp.Wait()
}
