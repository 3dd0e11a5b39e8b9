package relay

import (
	"bytes"
	"fmt"
	"net"

	"go.jonnrb.io/mdns_relay/ifaddr"
	"go.uber.org/zap"
)

// SendError is a failure to repeat a datagram out one interface.
type SendError struct {
	Interface string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("relay: send via %s: %v", e.Interface, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Announcer consumes messages from In and repeats them out through every
// entry of Interfaces.
type Announcer struct {
	Conn       Conn
	In         <-chan Message
	Shutdown   *Shutdown
	Interfaces []ifaddr.Entry
	Group      *net.UDPAddr
	Marker     []byte
	Logger     *zap.Logger
	Metrics    *Metrics
}

// Run loops until In is closed or Shutdown is set. Shutdown is set on return.
func (w *Announcer) Run() error {
	defer w.Shutdown.Set()

	for !w.Shutdown.Done() {
		select {
		case msg, ok := <-w.In:
			if !ok {
				w.log().Debug("hand-off channel closed")
				return nil
			}
			w.Relay(msg)
		case <-w.Shutdown.C():
			return nil
		}
	}
	return nil
}

// Relay repeats msg and returns the number of datagrams sent.
//
// msg is dropped if it lacks the marker or if it came from one of our own
// addresses. Otherwise it's sent once per interface, skipping any interface
// whose address is the source. The first send failure abandons the rest of
// the fan-out for msg.
func (w *Announcer) Relay(msg Message) int {
	log := w.log()

	if !HasMarker(msg.Payload, w.Marker) {
		w.Metrics.dropped(dropMarker)
		return 0
	}

	src := sourceIP(msg.Source)
	if src == nil {
		log.Warn("dropping message from non-IPv4 source", zap.Any("from", msg.Source))
		w.Metrics.dropped(dropSource)
		return 0
	}
	if ifaddr.Contains(w.Interfaces, src) {
		w.Metrics.dropped(dropSelf)
		return 0
	}
	log.Debug("relaying",
		zap.Int("bytes", len(msg.Payload)),
		zap.Stringer("from", msg.Source),
		zap.Stringer("dns", Describe(msg.Payload)))

	sent := 0
	for _, e := range w.Interfaces {
		if e.IP.Equal(src) {
			continue
		}
		if err := w.sendVia(e, msg.Payload); err != nil {
			log.Warn("send failed; abandoning fan-out", zap.Error(err))
			w.Metrics.sendFailed(e.Name)
			break
		}
		w.Metrics.sent(e.Name)
		sent++
	}
	return sent
}

func (w *Announcer) log() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

func (w *Announcer) sendVia(e ifaddr.Entry, b []byte) error {
	if err := w.Conn.SetMulticastInterface(e.Interface()); err != nil {
		return &SendError{Interface: e.Name, Err: err}
	}
	if _, err := w.Conn.WriteTo(b, nil, w.Group); err != nil {
		return &SendError{Interface: e.Name, Err: err}
	}
	return nil
}

// HasMarker reports whether marker occurs anywhere in payload. An empty marker
// never matches.
func HasMarker(payload, marker []byte) bool {
	return len(marker) > 0 && bytes.Contains(payload, marker)
}

func sourceIP(a net.Addr) net.IP {
	u, ok := a.(*net.UDPAddr)
	if !ok {
		return nil
	}
	return u.IP.To4()
}
