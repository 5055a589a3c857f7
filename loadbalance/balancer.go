// Package loadbalance provides strategies for picking one Engine.IO server
// instance out of a registry.Discover result, before a session's handshake.
//
// Two strategies are implemented:
//   - RoundRobin:     equal-capacity instances, skipping ones that recently
//     failed a handshake or poll round trip (see Penalizer).
//   - WeightedRandom: heterogeneous instances, weighted by advertised
//     session capacity and discounted the same way.
//
// A third, sid-affinity strategy (ConsistentHashBalancer) picks a stable
// instance for a given key without the health tracking above — see its
// doc comment for why affinity and cooldown tracking don't mix.
package loadbalance

import "github.com/PhilippGackstatter/engineio/registry"

// Balancer is the interface for load balancing strategies. Connect calls
// Pick once per handshake attempt to select a target instance.
type Balancer interface {
	// Pick selects one instance from the available list. Must be
	// goroutine-safe.
	Pick(instances []registry.EndpointInstance) (*registry.EndpointInstance, error)

	// Name returns the strategy name, for logging.
	Name() string
}
