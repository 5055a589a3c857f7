package loadbalance

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/PhilippGackstatter/engineio/registry"
)

// WeightedRandomBalancer selects an instance probabilistically in
// proportion to its advertised long-poll session capacity (registry.
// EndpointInstance.Weight): an instance advertising capacity 10 gets
// roughly 2x the new sessions of one advertising 5, approximating even
// per-session load across unevenly sized replicas rather than an even
// count of Connect calls.
//
// Instances under a failure cooldown (see Penalizer) are excluded from the
// draw entirely, not just down-weighted — a recently-failing instance
// shouldn't receive new sessions at a reduced rate, it shouldn't receive
// them at all until the cooldown lapses.
type WeightedRandomBalancer struct {
	health healthTracker
}

func (b *WeightedRandomBalancer) Pick(instances []registry.EndpointInstance) (*registry.EndpointInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no endpoints available")
	}
	candidates := b.health.usable(instances)

	totalWeight := 0
	for _, v := range candidates {
		if v.Weight > 0 {
			totalWeight += v.Weight
		}
	}
	if totalWeight <= 0 {
		return &candidates[rand.Intn(len(candidates))], nil
	}

	r := rand.Intn(totalWeight)
	for i, v := range candidates {
		if v.Weight <= 0 {
			continue
		}
		r -= v.Weight
		if r < 0 {
			return &candidates[i], nil
		}
	}

	return nil, fmt.Errorf("unexpected error in weighted random selection")
}

// Penalize keeps addr out of the weighted draw for cooldown, called after a
// handshake or poll-loop transport failure against it.
func (b *WeightedRandomBalancer) Penalize(addr string, cooldown time.Duration) {
	b.health.Penalize(addr, cooldown)
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
