package relay

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// ReceiveError is a non-timeout failure reading from the receive socket.
type ReceiveError struct {
	Err error
}

func (e *ReceiveError) Error() string {
	return fmt.Sprintf("relay: receive: %v", e.Err)
}

func (e *ReceiveError) Unwrap() error { return e.Err }

// Receiver reads datagrams from Conn and pushes them onto Out. It owns Out and
// closes it on return.
type Receiver struct {
	Conn        Conn
	Out         chan<- Message
	Shutdown    *Shutdown
	ReadTimeout time.Duration
	Logger      *zap.Logger
	Metrics     *Metrics
}

// Run loops until Shutdown is set or the socket fails. Either way, Shutdown is
// set on return.
func (w *Receiver) Run() error {
	defer w.Shutdown.Set()
	defer close(w.Out)

	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := w.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	var buf [MaxDatagram]byte
	for !w.Shutdown.Done() {
		if err := w.Conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			log.Error("could not set read deadline", zap.Error(err))
			return &ReceiveError{Err: err}
		}

		n, cm, src, err := w.Conn.ReadFrom(buf[:])
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if w.Shutdown.Done() && errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Error("recv msg error", zap.Error(err))
			return &ReceiveError{Err: err}
		}

		w.Metrics.received()
		if ce := log.Check(zap.DebugLevel, "received"); ce != nil {
			fields := []zap.Field{zap.Int("bytes", n), zap.Stringer("from", src)}
			if cm != nil {
				fields = append(fields, zap.Int("ifindex", cm.IfIndex))
			}
			ce.Write(fields...)
		}

		msg := Message{
			Payload: append([]byte(nil), buf[:n]...),
			Source:  src,
		}
		select {
		case w.Out <- msg:
		case <-w.Shutdown.C():
			log.Debug("announcer gone; dropping message", zap.Stringer("from", src))
			return nil
		}
	}
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
