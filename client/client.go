// Package client implements the Engine.IO v3 long-polling client's public
// façade: Connect, Emit, Join, and Sender.
//
// Call flow:
//
//	Connect(url, handler, opts...)
//	  → Resolver.Resolve(ctx)       → pick a base URL (static, or registry+balancer)
//	  → handshake.Do                 → GET, parse Open packet, build session.Config
//	  → session.New + Start          → spawn poll/ping/write loops
//	  → Client{engine}                → done
package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/PhilippGackstatter/engineio/eioerr"
	"github.com/PhilippGackstatter/engineio/handshake"
	"github.com/PhilippGackstatter/engineio/loadbalance"
	"github.com/PhilippGackstatter/engineio/packet"
	"github.com/PhilippGackstatter/engineio/registry"
	"github.com/PhilippGackstatter/engineio/session"
)

// Resolver turns zero or more known Engine.IO server instances into the one
// base URL a Connect call's handshake should target.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// StaticResolver always resolves to the same fixed URL — the default
// Resolver when no WithResolver option is given.
type StaticResolver struct {
	URL string
}

func (s StaticResolver) Resolve(ctx context.Context) (string, error) {
	return s.URL, nil
}

// stickyBalancer is implemented only by loadbalance.ConsistentHashBalancer.
// RegistryResolver type-asserts for it rather than widening the Balancer
// interface, since PickForKey only makes sense once a key exists.
type stickyBalancer interface {
	PickForKey(key string, instances []registry.EndpointInstance) (*registry.EndpointInstance, error)
}

// RegistryResolver resolves by discovering the current endpoint list for
// GroupName and handing it to Balancer, a discover-then-pick sequence
// performed once before the handshake instead of once per call.
//
// StickyKey, when non-empty, is tried against Balancer via PickForKey
// before falling back to Pick — set it to a sid remembered from a prior
// session against this group (e.g. Client.SID() after a clean Connect) so
// a reconnect lands back on the instance that already knows about it, when
// Balancer is a loadbalance.ConsistentHashBalancer. FailureCooldown
// controls how long ReportFailure keeps a failing instance out of
// rotation; it defaults to loadbalance.DefaultFailureCooldown.
type RegistryResolver struct {
	Registry        registry.Registry
	Balancer        loadbalance.Balancer
	GroupName       string
	StickyKey       string
	FailureCooldown time.Duration
}

func (r RegistryResolver) Resolve(ctx context.Context) (string, error) {
	instances, err := r.Registry.Discover(r.GroupName)
	if err != nil {
		return "", eioerr.Transportf(err, "discovering endpoints for group %q", r.GroupName)
	}

	var instance *registry.EndpointInstance
	if r.StickyKey != "" {
		if sb, ok := r.Balancer.(stickyBalancer); ok {
			instance, err = sb.PickForKey(r.StickyKey, instances)
		} else {
			instance, err = r.Balancer.Pick(instances)
		}
	} else {
		instance, err = r.Balancer.Pick(instances)
	}
	if err != nil {
		return "", eioerr.Transportf(err, "picking an endpoint for group %q", r.GroupName)
	}
	return instance.Addr, nil
}

// ReportFailure tells Balancer to stop offering addr for a while, if it
// implements loadbalance.Penalizer. Connect calls this when a handshake
// against a resolved endpoint fails transport-side, and again if that
// endpoint's session later ends with a poll transport error — so an
// endpoint that is actually failing round trips drops out of rotation
// instead of only ever being removed by the registry's own lease expiry.
func (r RegistryResolver) ReportFailure(addr string) {
	p, ok := r.Balancer.(loadbalance.Penalizer)
	if !ok {
		return
	}
	cooldown := r.FailureCooldown
	if cooldown <= 0 {
		cooldown = loadbalance.DefaultFailureCooldown
	}
	p.Penalize(addr, cooldown)
}

// FeedbackResolver is implemented by Resolvers that can act on a failed
// attempt against the URL they last resolved to. RegistryResolver is the
// only implementation; StaticResolver has nothing to fail over to.
type FeedbackResolver interface {
	Resolver
	ReportFailure(addr string)
}

type options struct {
	httpClient     *http.Client
	logger         *zap.Logger
	requestTimeout time.Duration
	limiter        *rate.Limiter
	resolver       Resolver
	maxRetries     int
	retryBaseDelay time.Duration
}

func defaultOptions() options {
	return options{
		httpClient:     http.DefaultClient,
		logger:         zap.NewNop(),
		requestTimeout: 10 * time.Second,
		maxRetries:     3,
		retryBaseDelay: 200 * time.Millisecond,
	}
}

// Option configures a Connect call, generalized from a fixed positional
// constructor signature to functional options.
type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithEmitRateLimit throttles the write loop's dequeue side to r events per
// second with the given burst, using a token bucket (golang.org/x/time/rate).
func WithEmitRateLimit(r rate.Limit, burst int) Option {
	return func(o *options) { o.limiter = rate.NewLimiter(r, burst) }
}

// WithResolver overrides endpoint selection: Connect calls Resolve once,
// before the handshake, instead of using its url argument directly.
func WithResolver(r Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithHandshakeRetries overrides the handshake's retry count and base
// backoff delay (defaults: up to 3 retries after the first attempt, 200ms
// base).
func WithHandshakeRetries(maxRetries int, baseDelay time.Duration) Option {
	return func(o *options) { o.maxRetries = maxRetries; o.retryBaseDelay = baseDelay }
}

// Client is a connected Engine.IO session handle.
type Client struct {
	engine *session.Engine
}

// Sender is a clone of the outbound-channel producer end, for use by
// independent goroutines that don't otherwise hold the Client.
type Sender struct {
	engine *session.Engine
}

// Emit enqueues a Message packet; never blocks beyond the outbox's internal
// handoff (see session.Engine.Emit).
func (s Sender) Emit(data packet.Data) {
	s.engine.Emit(data)
}

// Connect performs the handshake against url (or, when WithResolver is
// given, against whatever URL the Resolver picks) and spawns the session's
// poll/ping/write loops.
func Connect(url string, handler session.Handler, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	resolver := o.resolver
	if resolver == nil {
		resolver = StaticResolver{URL: url}
	}
	baseURL, err := resolver.Resolve(context.Background())
	if err != nil {
		return nil, err
	}

	fr, hasFeedback := resolver.(FeedbackResolver)

	cfg, err := handshake.Do(baseURL, handshake.Options{
		HTTPClient:     o.httpClient,
		Logger:         o.logger,
		RequestTimeout: o.requestTimeout,
		MaxRetries:     o.maxRetries,
		RetryBaseDelay: o.retryBaseDelay,
	})
	if err != nil {
		if hasFeedback && eioerr.IsTransport(err) {
			fr.ReportFailure(baseURL)
		}
		return nil, err
	}

	var onPollFailure func()
	if hasFeedback {
		onPollFailure = func() { fr.ReportFailure(baseURL) }
	}

	engine := session.New(cfg, handler, o.httpClient, o.requestTimeout, o.logger, o.limiter, onPollFailure)
	engine.Start()

	return &Client{engine: engine}, nil
}

// Emit enqueues a Message packet on the write channel.
func (c *Client) Emit(data packet.Data) {
	c.engine.Emit(data)
}

// SID returns this session's handshake-assigned id, for a caller that
// wants to reconnect with sid affinity via RegistryResolver.StickyKey
// after this Client disconnects.
func (c *Client) SID() string {
	return c.engine.SID()
}

// Sender returns a clone of the outbound-channel producer end.
func (c *Client) Sender() Sender {
	return Sender{engine: c.engine}
}

// Close stops accepting further Emit calls and lets the write loop drain
// whatever is already queued before it exits. Join will then return once
// all three loops have exited.
func (c *Client) Close() {
	c.engine.Close()
}

// Join waits for all three session loops to complete and returns the first
// error reported by any of them (poll takes precedence over write).
func (c *Client) Join() error {
	return c.engine.Join()
}
