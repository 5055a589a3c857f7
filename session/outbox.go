package session

import "github.com/PhilippGackstatter/engineio/packet"

// outbox is the session's unbounded multi-producer/single-consumer outbound
// queue. A plain buffered channel would impose a fixed capacity and block
// Emit once full, contradicting spec.md §4.4's "unbounded" write channel; a
// plain unbuffered channel would block Emit until the write loop is ready to
// POST. outbox runs a small internal goroutine holding a growing slice
// buffer between an input and an output channel, the standard Go idiom for
// an unbounded channel.
type outbox struct {
	in  chan packet.Packet
	out chan packet.Packet
}

func newOutbox() *outbox {
	o := &outbox{
		in:  make(chan packet.Packet),
		out: make(chan packet.Packet),
	}
	go o.run()
	return o
}

func (o *outbox) run() {
	var queue []packet.Packet
	for {
		if len(queue) == 0 {
			p, ok := <-o.in
			if !ok {
				close(o.out)
				return
			}
			queue = append(queue, p)
			continue
		}

		select {
		case p, ok := <-o.in:
			if !ok {
				for _, q := range queue {
					o.out <- q
				}
				close(o.out)
				return
			}
			queue = append(queue, p)
		case o.out <- queue[0]:
			queue = queue[1:]
		}
	}
}

// send enqueues p. It only blocks on the internal handoff, never on queue
// capacity.
func (o *outbox) send(p packet.Packet) {
	o.in <- p
}

// close signals no more sends will occur; the consumer side drains any
// remaining queued packets before its receive channel closes.
func (o *outbox) close() {
	close(o.in)
}

// receive returns the consumer-side channel; it closes once close has been
// called and every queued packet has been delivered.
func (o *outbox) receive() <-chan packet.Packet {
	return o.out
}
