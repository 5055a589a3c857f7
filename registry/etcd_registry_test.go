package registry

import (
	"testing"
	"time"
)

// TestLeaseSecondsDerivesFromPingInterval checks the conversion a server
// operator actually relies on: deriving a registration lease from a few
// multiples of the Engine.IO pingInterval it advertises, rather than
// picking an arbitrary etcd TTL. A 25s pingInterval with a x3 margin
// should yield a 75s lease; a sub-second margin must still floor at
// minLeaseTTL instead of producing a lease etcd would reject.
func TestLeaseSecondsDerivesFromPingInterval(t *testing.T) {
	pingInterval := 25 * time.Second
	if got, want := leaseSeconds(3*pingInterval), int64(75); got != want {
		t.Fatalf("leaseSeconds(3x pingInterval) = %d, want %d", got, want)
	}
	if got := leaseSeconds(100 * time.Millisecond); got != int64(minLeaseTTL/time.Second) {
		t.Fatalf("leaseSeconds(100ms) = %d, want floor of %d", got, minLeaseTTL/time.Second)
	}
}

// TestRegisterAndDiscover exercises EtcdRegistry against a local etcd
// instance; skipped when none is reachable, since it assumes a dev-box
// etcd at localhost:2379.
func TestRegisterAndDiscover(t *testing.T) {
	reg, err := NewEtcdRegistry([]string{"localhost:2379"})
	if err != nil {
		t.Skipf("etcd unavailable: %v", err)
	}

	inst1 := EndpointInstance{Addr: "http://127.0.0.1:3000/engine.io/", Weight: 10, Version: "1.0"}
	inst2 := EndpointInstance{Addr: "http://127.0.0.1:3001/engine.io/", Weight: 5, Version: "1.0"}

	if err := reg.Register("default", inst1, 10*time.Second); err != nil {
		t.Skipf("etcd unavailable: %v", err)
	}
	if err := reg.Register("default", inst2, 10*time.Second); err != nil {
		t.Fatal(err)
	}

	instances, err := reg.Discover("default")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 endpoints, got %d", len(instances))
	}

	if err := reg.Deregister("default", inst1.Addr); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	instances, err = reg.Discover("default")
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect 1 endpoint after deregister, got %d", len(instances))
	}
	if instances[0].Addr != inst2.Addr {
		t.Fatalf("expect %s, got %s", inst2.Addr, instances[0].Addr)
	}

	reg.Deregister("default", inst2.Addr)
}
