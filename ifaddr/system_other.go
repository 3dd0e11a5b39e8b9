//go:build !linux

package ifaddr

import (
	"fmt"
	"net"
)

// System returns the host interface lister backed by net.Interfaces.
func System() Lister {
	return ListerFunc(listNet)
}

func listNet() ([]Entry, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("error listing addrs on %q: %v", iface.Name, err)
		}
		for _, addr := range addrs {
			var ip net.IP
			switch a := addr.(type) {
			case *net.IPNet:
				ip = a.IP
			case *net.IPAddr:
				ip = a.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			out = append(out, Entry{Name: iface.Name, Index: iface.Index, IP: ip})
		}
	}
	return out, nil
}
