package session

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/PhilippGackstatter/engineio/eioerr"
	"github.com/PhilippGackstatter/engineio/middleware"
	"github.com/PhilippGackstatter/engineio/packet"
	"github.com/PhilippGackstatter/engineio/payload"
)

// Engine owns the three cooperating loops (poll, ping, write) of one
// connected session: one reader loop, one heartbeat loop, and one writer
// loop sharing the session's Config rather than a pending-request map.
type Engine struct {
	cfg      *Config
	handler  Handler
	outbound *outbox

	roundTrip     middleware.RoundTripFunc
	limiter       *rate.Limiter
	logger        *zap.Logger
	onPollFailure func()

	disconnectOnce sync.Once

	pollErr  chan error
	pingErr  chan error
	writeErr chan error
}

// New builds an Engine around an already-completed handshake. httpClient
// performs the underlying round trips; requestTimeout and logger configure
// the timeout/logging middleware wrapped around every poll/write call.
// Neither loop gets the retry middleware, since retrying would contradict
// their respective error propagation rules. limiter may be nil, in which
// case outbound packets are never throttled.
// onPollFailure, if non-nil, is called exactly once if the poll loop ends
// with a Transport error — e.g. so a caller resolving this session's base
// URL through an endpoint registry can mark that endpoint as temporarily
// unhealthy (see client.RegistryResolver.ReportFailure). It is never called
// for a clean server-initiated Close or a ping timeout, since neither
// indicates the endpoint itself is unreachable.
func New(cfg *Config, handler Handler, httpClient *http.Client, requestTimeout time.Duration, logger *zap.Logger, limiter *rate.Limiter, onPollFailure func()) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	chain := middleware.Chain(
		middleware.LoggingMiddleware(logger),
		middleware.TimeoutMiddleware(requestTimeout),
	)
	rt := chain(func(req *http.Request) (*http.Response, error) {
		return httpClient.Do(req)
	})

	return &Engine{
		cfg:           cfg,
		handler:       handler,
		outbound:      newOutbox(),
		roundTrip:     rt,
		limiter:       limiter,
		logger:        logger,
		onPollFailure: onPollFailure,
		pollErr:       make(chan error, 1),
		pingErr:       make(chan error, 1),
		writeErr:      make(chan error, 1),
	}
}

// SID returns the handshake-assigned session id.
func (e *Engine) SID() string {
	return e.cfg.SID
}

// Start fires OnConnect and spawns the three loops. Must be called exactly
// once per Engine.
func (e *Engine) Start() {
	e.handler.OnConnect()
	go e.pollLoop()
	go e.pingLoop()
	go e.writeLoop()
}

// Emit enqueues a Message packet for the write loop. Never blocks beyond the
// outbox's internal handoff.
func (e *Engine) Emit(data packet.Data) {
	p := packet.Packet{Type: packet.Message, Data: data}
	e.outbound.send(p)
}

// Close stops accepting further sends and lets the write loop drain
// whatever is already queued before it exits.
func (e *Engine) Close() {
	e.outbound.close()
}

// Join waits for all three loops to finish and returns the first error
// among them, with poll taking precedence over write (ping never reports
// an error; a missed pong is a clean shutdown signal per spec.md §7).
func (e *Engine) Join() error {
	pollErr := <-e.pollErr
	writeErr := <-e.writeErr
	<-e.pingErr
	if pollErr != nil {
		return pollErr
	}
	return writeErr
}

func (e *Engine) fireDisconnect() {
	e.disconnectOnce.Do(e.handler.OnDisconnect)
}

// pollLoop is the engine's single reader: it owns the event handler for the
// session's lifetime, and only the poll loop ever invokes it.
func (e *Engine) pollLoop() {
	var result error
	defer func() {
		e.fireDisconnect()
		e.pollErr <- result
	}()

	for e.cfg.IsConnected() {
		body, err := e.get(PollURL(e.cfg))
		if err != nil {
			e.cfg.Disconnect()
			if e.onPollFailure != nil {
				e.onPollFailure()
			}
			result = eioerr.Transportf(err, "poll request failed")
			return
		}

		packets, err := payload.Decode(body)
		if err != nil {
			e.cfg.Disconnect()
			result = err
			return
		}

		for _, p := range packets {
			if !e.dispatch(p) {
				return
			}
		}
	}
}

// dispatch applies the packet handler table from spec.md §4.4. It returns
// false when the poll loop should stop iterating (a Close packet ended the
// session from the server's side).
func (e *Engine) dispatch(p packet.Packet) bool {
	switch p.Type {
	case packet.Pong:
		e.cfg.MarkPingReceived()
	case packet.Close:
		e.cfg.Disconnect()
		return false
	case packet.Message:
		e.handler.OnMessage(p.Data)
	case packet.Noop:
	case packet.Open:
		e.logger.Warn("unexpected Open packet mid-session, ignoring")
	case packet.Ping, packet.Upgrade:
		e.logger.Warn("unexpected packet from server, ignoring", zap.String("type", p.Type.String()))
	}
	return true
}

// pingLoop enforces the heartbeat liveness invariant. It never returns an
// error: a missed pong disconnects the session and exits cleanly, per
// spec.md §7/§9.
func (e *Engine) pingLoop() {
	defer func() { e.pingErr <- nil }()

	for e.cfg.IsConnected() {
		e.outbound.send(packet.New(packet.Ping, "probe"))
		e.cfg.MarkPingSent()

		time.Sleep(e.cfg.PingTimeout)
		if !e.cfg.PingReceived() {
			e.logger.Info("pong not received before timeout, disconnecting",
				zap.Duration("timeout", e.cfg.PingTimeout))
			e.cfg.Disconnect()
			return
		}

		time.Sleep(e.cfg.PingInterval)
	}
}

// writeLoop drains the outbox, optionally throttled by a token-bucket
// limiter, and POSTs each packet as a single-packet binary-framed payload.
// POST failures are logged and swallowed per spec.md §7 — the loop keeps
// running; the next poll iteration will likely observe the broken session.
func (e *Engine) writeLoop() {
	defer func() { e.writeErr <- nil }()

	for p := range e.outbound.receive() {
		if e.limiter != nil {
			if err := e.limiter.Wait(context.Background()); err != nil {
				e.logger.Warn("rate limiter wait failed, dropping packet", zap.Error(err))
				continue
			}
		}

		body := payload.Encode([]packet.Packet{p})
		if err := e.post(PollURL(e.cfg), body); err != nil {
			e.logger.Warn("write loop POST failed, message dropped", zap.Error(err))
			continue
		}
	}
}

func (e *Engine) get(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.roundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := e.roundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
