// Package netcheck answers whether any network transport is available.
package netcheck

import "net"

// InterfaceLister returns the host's network interfaces.
type InterfaceLister func() ([]net.Interface, error)

// Checker reports transport availability. It does not probe a remote host.
type Checker struct {
	list  InterfaceLister
	addrs func(net.Interface) ([]net.Addr, error)
}

// New returns a Checker over the host's real interfaces.
func New() *Checker {
	return &Checker{
		list:  net.Interfaces,
		addrs: func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

// Reachable is true when some non-loopback interface is up and has an address.
func (c *Checker) Reachable() bool {
	ifaces, err := c.list()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := c.addrs(iface)
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}

// Static is a fixed answer, used when the check is disabled.
type Static bool

// Reachable returns the fixed value.
func (s Static) Reachable() bool { return bool(s) }
