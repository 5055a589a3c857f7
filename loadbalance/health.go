package loadbalance

import (
	"sync"
	"time"

	"github.com/PhilippGackstatter/engineio/registry"
)

// Penalizer is implemented by balancers that can act on real poll/handshake
// outcomes instead of picking from a static instance list alone. client.
// Connect calls Penalize when a handshake against a resolved endpoint fails
// transport-side, and session.Engine calls it again if that endpoint's poll
// loop later dies with a transport error — so an instance that is actually
// failing round trips, not just one the registry hasn't gotten around to
// evicting yet, drops out of rotation for a while.
type Penalizer interface {
	Penalize(addr string, cooldown time.Duration)
}

// DefaultFailureCooldown is used by client.RegistryResolver when no
// explicit cooldown is configured.
const DefaultFailureCooldown = 30 * time.Second

// healthTracker records short-lived cooldowns for endpoints that recently
// failed a handshake or a poll round trip. It is embedded by balancers that
// want to skip a flaky instance temporarily without the registry entry
// itself ever being touched — deregistration stays the server's own job
// (graceful shutdown, process crash via lease expiry); this is purely a
// client-side, in-memory, best-effort avoidance.
type healthTracker struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func (h *healthTracker) Penalize(addr string, cooldown time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.until == nil {
		h.until = make(map[string]time.Time)
	}
	h.until[addr] = time.Now().Add(cooldown)
}

// usable filters instances currently under a cooldown. If every instance is
// penalized, it returns the original list unfiltered — a stale penalty that
// has outlived the endpoint list's only other options must not turn into a
// hard failure to pick anything at all.
func (h *healthTracker) usable(instances []registry.EndpointInstance) []registry.EndpointInstance {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.until) == 0 || len(instances) == 0 {
		return instances
	}

	now := time.Now()
	filtered := make([]registry.EndpointInstance, 0, len(instances))
	for _, inst := range instances {
		if until, penalized := h.until[inst.Addr]; penalized && now.Before(until) {
			continue
		}
		filtered = append(filtered, inst)
	}
	if len(filtered) == 0 {
		return instances
	}
	return filtered
}
