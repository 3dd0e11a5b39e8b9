package main

import (
	"strings"

	"go.jonnrb.io/mdns_relay/relay"
	"gopkg.in/yaml.v2"
)

// Config is the optional config file:
//
//	interfaces:
//	  - eth0
//	  - eth1
//	marker: blizzard
type Config struct {
	Interfaces []string `yaml:"interfaces"`
	Marker     string   `yaml:"marker"`
}

func ParseConfig(contents []byte) (Config, error) {
	var c Config
	err := yaml.UnmarshalStrict(contents, &c)
	return c, err
}

// InterfaceNames returns the file's interfaces followed by extra, with blanks
// and repeats removed.
func (c Config) InterfaceNames(extra []string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, n := range append(append([]string(nil), c.Interfaces...), extra...) {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// RelayConfig builds the relay settings. A non-empty marker overrides the
// file's.
func (c Config) RelayConfig(marker string) relay.Config {
	rc := relay.DefaultConfig()
	if c.Marker != "" {
		rc.Marker = []byte(c.Marker)
	}
	if marker != "" {
		rc.Marker = []byte(marker)
	}
	return rc
}

// interfaceList is a repeatable flag that also accepts comma separated names.
type interfaceList []string

func (l *interfaceList) String() string {
	return strings.Join(*l, ",")
}

func (l *interfaceList) Set(v string) error {
	for _, n := range strings.Split(v, ",") {
		if n = strings.TrimSpace(n); n != "" {
			*l = append(*l, n)
		}
	}
	return nil
}
