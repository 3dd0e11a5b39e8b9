/*
Package ifaddr resolves the set of local interface addresses that mDNS traffic
is relayed across.

The snapshot is computed once at startup and never mutated afterward, so it may
be shared between goroutines without synchronization.
*/
package ifaddr // import "go.jonnrb.io/mdns_relay/ifaddr"

import (
	"fmt"
	"net"
)

// Entry is one local (interface, IPv4 address) pair.
type Entry struct {
	Name  string
	Index int
	IP    net.IP
}

func (e Entry) String() string {
	return fmt.Sprintf("%q: %v", e.Name, e.IP)
}

// Interface returns the minimal net.Interface needed to address e in socket
// options.
func (e Entry) Interface() *net.Interface {
	return &net.Interface{Index: e.Index, Name: e.Name}
}

// Lister enumerates the host's non-loopback interface addresses. Every address
// of every interface is reported as its own Entry, in OS enumeration order.
type Lister interface {
	List() ([]Entry, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func() ([]Entry, error)

func (f ListerFunc) List() ([]Entry, error) { return f() }

// ConfigError is returned when the interface snapshot can't be built.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ifaddr: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Resolve intersects the addresses reported by l with names. Loopback and
// non-IPv4 addresses are dropped. The result keeps l's order.
//
// An empty result is not an error; the caller decides whether that is usable.
func Resolve(names []string, l Lister) ([]Entry, error) {
	all, err := l.List()
	if err != nil {
		return nil, &ConfigError{Op: "list interfaces", Err: err}
	}

	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	var out []Entry
	for _, e := range all {
		if _, ok := want[e.Name]; !ok {
			continue
		}
		ip4 := e.IP.To4()
		if ip4 == nil || ip4.IsLoopback() {
			continue
		}
		out = append(out, Entry{Name: e.Name, Index: e.Index, IP: ip4})
	}
	return out, nil
}

// Contains reports whether ip is the address of any entry.
func Contains(entries []Entry, ip net.IP) bool {
	for _, e := range entries {
		if e.IP.Equal(ip) {
			return true
		}
	}
	return false
}
