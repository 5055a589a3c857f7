package loadbalance

import (
	"fmt"
	"testing"
	"time"

	"github.com/PhilippGackstatter/engineio/registry"
)

var testInstances = []registry.EndpointInstance{
	{Addr: "http://10.0.0.1:3000/engine.io/", Weight: 10, Version: "1.0"},
	{Addr: "http://10.0.0.2:3000/engine.io/", Weight: 5, Version: "1.0"},
	{Addr: "http://10.0.0.3:3000/engine.io/", Weight: 10, Version: "1.0"},
}

func TestRoundRobin(t *testing.T) {
	b := &RoundRobinBalancer{}

	results := make([]string, 3)
	for i := 0; i < 3; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		results[i] = inst.Addr
	}

	inst, _ := b.Pick(testInstances)
	if inst.Addr != results[0] {
		t.Fatalf("expect wrap around to %s, got %s", results[0], inst.Addr)
	}
}

func TestRoundRobinEmpty(t *testing.T) {
	b := &RoundRobinBalancer{}
	_, err := b.Pick([]registry.EndpointInstance{})
	if err == nil {
		t.Fatal("expect error for empty endpoint list")
	}
}

func TestRoundRobinSkipsPenalizedInstance(t *testing.T) {
	b := &RoundRobinBalancer{}
	penalized := testInstances[1].Addr

	b.Penalize(penalized, time.Minute)

	for i := 0; i < 10; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		if inst.Addr == penalized {
			t.Fatalf("Pick returned penalized instance %s", penalized)
		}
	}
}

func TestRoundRobinFallsBackWhenAllPenalized(t *testing.T) {
	b := &RoundRobinBalancer{}
	for _, inst := range testInstances {
		b.Penalize(inst.Addr, time.Minute)
	}

	// Every instance is under cooldown: Pick must still return something
	// rather than refusing to ever connect again.
	if _, err := b.Pick(testInstances); err != nil {
		t.Fatalf("expected a fallback pick when all instances are penalized, got error: %v", err)
	}
}

func TestWeightedRandom(t *testing.T) {
	b := &WeightedRandomBalancer{}

	counts := map[string]int{}
	n := 10000
	for i := 0; i < n; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		counts[inst.Addr]++
	}

	ratio := float64(counts[testInstances[0].Addr]) / float64(counts[testInstances[1].Addr])
	if ratio < 1.5 || ratio > 2.5 {
		t.Fatalf("weight ratio = %.2f, expect ~2.0", ratio)
	}
}

func TestWeightedRandomExcludesPenalizedInstance(t *testing.T) {
	b := &WeightedRandomBalancer{}
	penalized := testInstances[0].Addr // highest weight, would dominate the draw
	b.Penalize(penalized, time.Minute)

	for i := 0; i < 200; i++ {
		inst, err := b.Pick(testInstances)
		if err != nil {
			t.Fatal(err)
		}
		if inst.Addr == penalized {
			t.Fatalf("Pick returned penalized instance %s", penalized)
		}
	}
}

func TestConsistentHashPickForKeyIsStable(t *testing.T) {
	b := &ConsistentHashBalancer{}

	inst1, err := b.PickForKey("session-sid-123", testInstances)
	if err != nil {
		t.Fatal(err)
	}
	inst2, err := b.PickForKey("session-sid-123", testInstances)
	if err != nil {
		t.Fatal(err)
	}
	if inst1.Addr != inst2.Addr {
		t.Fatalf("same sid mapped to different instances: %s vs %s", inst1.Addr, inst2.Addr)
	}
}

func TestConsistentHashPickForKeyDistributesAcrossInstances(t *testing.T) {
	b := &ConsistentHashBalancer{}

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		inst, err := b.PickForKey(fmt.Sprintf("sid-%d", i), testInstances)
		if err != nil {
			t.Fatal(err)
		}
		seen[inst.Addr] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expect at least 2 different instances across 100 sids, got %d", len(seen))
	}
}

func TestConsistentHashPickForKeyEmpty(t *testing.T) {
	b := &ConsistentHashBalancer{}
	if _, err := b.PickForKey("any-key", nil); err == nil {
		t.Fatal("expect error for empty endpoint list")
	}
}
