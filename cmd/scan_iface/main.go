// scan_iface prints every mDNS datagram seen on one interface, along with
// whether the relay would consider repeating it.
package main

import (
	"fmt"
	"net"
	"os"

	"go.jonnrb.io/mdns_relay/ifaddr"
	"go.jonnrb.io/mdns_relay/mgrp"
	"go.jonnrb.io/mdns_relay/relay"
	"go.uber.org/zap"
)

// packetFields describes one datagram the way the relay would judge it.
func packetFields(pkt []byte, src net.Addr, entries []ifaddr.Entry, marker []byte) []zap.Field {
	own := false
	if u, ok := src.(*net.UDPAddr); ok {
		own = ifaddr.Contains(entries, u.IP)
	}
	return []zap.Field{
		zap.Any("from", src),
		zap.Int("bytes", len(pkt)),
		zap.Stringer("dns", relay.Describe(pkt)),
		zap.Bool("marker", relay.HasMarker(pkt, marker)),
		zap.Bool("own", own),
	}
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Must provide interface as argument")
		os.Exit(1)
	}
	name := os.Args[1]

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	entries, err := ifaddr.Resolve([]string{name}, ifaddr.System())
	if err != nil {
		log.Fatal("Could not resolve interface", zap.Error(err))
	}
	if len(entries) == 0 {
		log.Fatal("No IPv4 address on interface", zap.String("interface", name))
	}

	cfg := relay.DefaultConfig()
	c, err := mgrp.New(mgrp.Config{Group: cfg.Group, Port: cfg.Port, Interfaces: entries})
	if err != nil {
		log.Fatal("Could not open socket", zap.Error(err))
	}
	defer c.Close()

	log.Info("Scanning", zap.String("interface", name))
	var buf [relay.MaxDatagram]byte
	for {
		n, cm, src, err := c.ReadFrom(buf[:])
		if err != nil {
			log.Fatal("Read failed", zap.Error(err))
		}
		if cm != nil && cm.IfIndex != 0 && cm.IfIndex != entries[0].Index {
			continue
		}
		log.Info("Datagram", packetFields(buf[:n], src, entries, cfg.Marker)...)
	}
}
