package main

import (
	"errors"
	"flag"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.jonnrb.io/mdns_relay/ifaddr"
	"go.jonnrb.io/mdns_relay/relay"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
interfaces:
  - eth0
  - eth1
marker: _airplay
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"eth0", "eth1"}, cfg.Interfaces)
	assert.Equal(t, "_airplay", cfg.Marker)
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig([]byte("mappings:\n  - upstream: eth0\n"))
	assert.Error(t, err)
}

func TestInterfaceNamesMergesAndDedupes(t *testing.T) {
	cfg := Config{Interfaces: []string{"eth0", " eth1 ", ""}}
	assert.Equal(t, []string{"eth0", "eth1", "wlan0"}, cfg.InterfaceNames([]string{"eth1", "wlan0", "eth0"}))
	assert.Empty(t, Config{}.InterfaceNames(nil))
}

func TestRelayConfigMarker(t *testing.T) {
	assert.Equal(t, []byte(relay.DefaultMarker), Config{}.RelayConfig("").Marker)
	assert.Equal(t, []byte("file"), Config{Marker: "file"}.RelayConfig("").Marker)
	assert.Equal(t, []byte("flag"), Config{Marker: "file"}.RelayConfig("flag").Marker)
	assert.NoError(t, Config{}.RelayConfig("").Validate())
}

func TestInterfaceListFlag(t *testing.T) {
	var l interfaceList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&l, "i", "")

	require.NoError(t, fs.Parse([]string{"-i", "eth0", "-i", "eth1, eth2", "-i", ""}))
	assert.Equal(t, interfaceList{"eth0", "eth1", "eth2"}, l)
	assert.Equal(t, "eth0,eth1,eth2", l.String())
}

func TestInterfaceForIP(t *testing.T) {
	l := ifaddr.ListerFunc(func() ([]ifaddr.Entry, error) {
		return []ifaddr.Entry{
			{Name: "eth0", IP: net.ParseIP("172.18.0.2")},
			{Name: "eth1", IP: net.ParseIP("172.19.0.2")},
		}, nil
	})

	name, err := interfaceForIP(net.ParseIP("172.19.0.2"), l)
	require.NoError(t, err)
	assert.Equal(t, "eth1", name)

	_, err = interfaceForIP(net.ParseIP("10.9.9.9"), l)
	assert.Error(t, err)

	failing := ifaddr.ListerFunc(func() ([]ifaddr.Entry, error) { return nil, errors.New("netlink down") })
	_, err = interfaceForIP(net.ParseIP("172.19.0.2"), failing)
	assert.Error(t, err)
}
