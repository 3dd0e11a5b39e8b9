package relay

import (
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/net/ipv4"
)

type datagram struct {
	payload []byte
	src     net.Addr
	err     error
}

type sent struct {
	iface   string
	payload []byte
	dst     net.Addr
}

// fakeConn stands in for an ipv4.PacketConn. Reads are fed through reads and
// honor the read deadline; writes are recorded against the egress interface
// selected at the time.
type fakeConn struct {
	reads chan datagram

	mu       sync.Mutex
	deadline time.Time
	egress   *net.Interface
	sends    []sent
	failOn   map[string]error

	// Called after each successful write, outside the lock.
	onWrite func(sent)

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan datagram, 16),
		failOn: make(map[string]error),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func (c *fakeConn) ReadFrom(b []byte) (int, *ipv4.ControlMessage, net.Addr, error) {
	c.mu.Lock()
	d := c.deadline
	c.mu.Unlock()

	var expired <-chan time.Time
	if !d.IsZero() {
		t := time.NewTimer(time.Until(d))
		defer t.Stop()
		expired = t.C
	}

	select {
	case r := <-c.reads:
		if r.err != nil {
			return 0, nil, nil, r.err
		}
		n := copy(b, r.payload)
		return n, &ipv4.ControlMessage{IfIndex: 2}, r.src, nil
	case <-expired:
		return 0, nil, nil, os.ErrDeadlineExceeded
	case <-c.closed:
		return 0, nil, nil, net.ErrClosed
	}
}

func (c *fakeConn) SetMulticastInterface(ifi *net.Interface) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.egress = ifi
	return nil
}

func (c *fakeConn) WriteTo(b []byte, _ *ipv4.ControlMessage, dst net.Addr) (int, error) {
	c.mu.Lock()
	name := ""
	if c.egress != nil {
		name = c.egress.Name
	}
	if err := c.failOn[name]; err != nil {
		c.mu.Unlock()
		return 0, err
	}
	s := sent{iface: name, payload: append([]byte(nil), b...), dst: dst}
	c.sends = append(c.sends, s)
	hook := c.onWrite
	c.mu.Unlock()

	if hook != nil {
		hook(s)
	}
	return len(b), nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Sent() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sent(nil), c.sends...)
}
