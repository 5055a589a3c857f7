package loadbalance

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/PhilippGackstatter/engineio/registry"
)

// RoundRobinBalancer distributes Connect calls evenly across instances that
// aren't currently under a failure cooldown, using an atomic counter for
// lock-free, goroutine-safe rotation.
//
// Best for: equal-capacity Engine.IO server replicas, where the only signal
// worth acting on is "did the last attempt against this one actually work".
type RoundRobinBalancer struct {
	counter int64
	health  healthTracker
}

func (b *RoundRobinBalancer) Pick(instances []registry.EndpointInstance) (*registry.EndpointInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no endpoints available")
	}
	candidates := b.health.usable(instances)
	index := atomic.AddInt64(&b.counter, 1) % int64(len(candidates))
	return &candidates[index], nil
}

// Penalize keeps addr out of rotation for cooldown, called after a
// handshake or poll-loop transport failure against it (see Penalizer).
func (b *RoundRobinBalancer) Penalize(addr string, cooldown time.Duration) {
	b.health.Penalize(addr, cooldown)
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
