package relay

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Describe returns a lazy one-line summary of a datagram for logging. The
// relay never acts on it; payloads are repeated byte for byte.
func Describe(b []byte) fmt.Stringer {
	return summary(b)
}

type summary []byte

func (s summary) String() string {
	var msg dns.Msg
	if err := msg.Unpack(s); err != nil {
		return fmt.Sprintf("non-dns (%d bytes)", len(s))
	}

	kind := "query"
	if msg.Response {
		kind = "response"
	}
	var names []string
	for _, q := range msg.Question {
		names = append(names, q.Name)
	}
	for _, rr := range msg.Answer {
		names = append(names, rr.Header().Name)
	}
	return fmt.Sprintf("%s id=%d q=%d an=%d ns=%d ar=%d [%s]",
		kind, msg.Id, len(msg.Question), len(msg.Answer), len(msg.Ns), len(msg.Extra),
		strings.Join(names, " "))
}
