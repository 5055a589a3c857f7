package loadbalance

import (
	"fmt"
	"hash/crc32"

	"github.com/PhilippGackstatter/engineio/registry"
)

// ConsistentHashBalancer maps a key to an instance by hashing the key
// straight onto the candidate list (crc32(key) mod len(instances)): the
// same key always picks the same instance for a given instance list. It
// intentionally does not track failure cooldowns the way RoundRobin and
// WeightedRandom do — see PickForKey.
//
// A ring of virtual nodes only pays for itself when the instance list
// changes often enough that minimizing remapped keys actually matters; the
// candidate list here comes from one registry.Discover call right before a
// handshake, not a live, constantly-churning membership set, so the extra
// bookkeeping of virtual nodes and a sorted ring buys nothing a plain
// modulo hash doesn't already give for this balancer's one real use: sticky
// reconnection (see RegistryResolver.StickyKey in package client).
type ConsistentHashBalancer struct{}

// PickForKey deterministically selects the instance a given key (normally
// a remembered session.Config.SID from a prior connection to this group)
// maps to, so a client reconnecting after a transient disconnect lands
// back on the same Engine.IO server instance it was talking to before,
// instead of round-robining onto a server with no memory of its sid.
func (b *ConsistentHashBalancer) PickForKey(key string, instances []registry.EndpointInstance) (*registry.EndpointInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no endpoints available")
	}
	hash := crc32.ChecksumIEEE([]byte(key))
	return &instances[hash%uint32(len(instances))], nil
}

// Pick satisfies the Balancer interface for a fresh Connect that has no
// prior sid to key on. There is no meaningful key at that point, so this
// deliberately does not call PickForKey with a synthetic one (e.g. an
// instance's own address) — that would just be an obscure round-robin.
// It returns the first candidate; callers that care about sid affinity
// should resolve through RegistryResolver.StickyKey instead, which calls
// PickForKey directly once a sid exists.
func (b *ConsistentHashBalancer) Pick(instances []registry.EndpointInstance) (*registry.EndpointInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no endpoints available")
	}
	return &instances[0], nil
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
