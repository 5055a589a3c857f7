// Package registry defines the service discovery interface used to resolve
// a pool of candidate Engine.IO servers before a session's handshake.
//
// Service discovery solves the problem of "how does the client find a
// server instance?" Instead of hardcoding one base URL, server instances
// register themselves in a central registry (etcd), and the client queries
// the registry to get the current instance list before picking one via a
// loadbalance.Balancer.
package registry

import "time"

// EndpointInstance represents one candidate Engine.IO server a session's
// handshake can target. Weight is not a static capacity number handed out
// once at startup: balancers that track poll/handshake health (see
// loadbalance.Penalizer) treat it as the instance's advertised concurrent
// long-polling session capacity; an instance with observed failures is left
// out of selection for a cooldown, without the registry entry itself ever
// being mutated.
type EndpointInstance struct {
	Addr    string // base URL, e.g. "http://10.0.1.4:3000/engine.io/"
	Weight  int    // advertised concurrent long-poll session capacity
	Version string // for canary rollouts of a new server version
}

// Registry is the interface for endpoint registration and discovery.
// Implementations include EtcdRegistry (production) and a test-only mock.
type Registry interface {
	// Register adds an endpoint to the registry under a lease good for
	// leaseTTL. The instance is automatically removed if KeepAlive stops
	// (e.g. the server process crashes). leaseTTL is expressed as a
	// Duration rather than a raw second count so a caller can derive it
	// directly from the same ping interval/timeout the registered server
	// advertises to its own Engine.IO sessions (e.g. a few multiples of
	// pingInterval) instead of picking an arbitrary lease length.
	Register(groupName string, instance EndpointInstance, leaseTTL time.Duration) error

	// Deregister removes an endpoint from the registry. Called during
	// graceful shutdown, before the server stops accepting connections.
	Deregister(groupName string, addr string) error

	// Discover returns all currently registered endpoints for a group.
	// Connect calls this to get the candidate list for load balancing.
	Discover(groupName string) ([]EndpointInstance, error)

	// Watch returns a channel that emits updated endpoint lists whenever
	// the group's membership changes.
	Watch(groupName string) <-chan []EndpointInstance
}
