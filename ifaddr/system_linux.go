package ifaddr

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// System returns the host interface lister. On Linux it queries netlink.
func System() Lister {
	return ListerFunc(listNetlink)
}

func listNetlink() ([]Entry, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("error listing network links: %v", err)
	}

	var out []Entry
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err != nil {
			return nil, fmt.Errorf("error listing addrs on %q: %v", attrs.Name, err)
		}
		for _, addr := range addrs {
			if addr.IPNet == nil || addr.IP.IsLoopback() {
				continue
			}
			out = append(out, Entry{Name: attrs.Name, Index: attrs.Index, IP: addr.IP})
		}
	}
	return out, nil
}
