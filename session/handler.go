package session

import "github.com/PhilippGackstatter/engineio/packet"

// Handler is the capability set an embedder implements to receive session
// events. The engine owns a single Handler exclusively for the poll
// goroutine's lifetime, so implementations never need to guard against
// concurrent invocation of their own methods.
type Handler interface {
	// OnConnect fires exactly once, after a successful handshake and before
	// the poll/ping/write loops begin serving traffic.
	OnConnect()

	// OnMessage fires once per inbound Message packet, in wire order, both
	// within one poll response and across successive ones. The engine
	// suspends polling until OnMessage returns, so a slow handler delays
	// further polling, not message ordering.
	OnMessage(data packet.Data)

	// OnDisconnect fires at most once, when a Close packet arrives or a
	// transport failure ends the poll loop.
	OnDisconnect()
}
