// Package registry provides the etcd-based implementation of the Registry
// interface.
//
// etcd is a distributed key-value store that provides strong consistency
// (Raft protocol). We use it as a "distributed phonebook" for Engine.IO
// server instances:
//
//	Key:   /engineio/{groupName}/{Addr}
//	Value: JSON-encoded EndpointInstance
//
// Registration uses TTL-based leases: if a server crashes, its lease
// expires and the entry is automatically removed, preventing a dead
// endpoint from being handed out to Connect.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// minLeaseTTL is etcd's own floor: a lease shorter than one second would
// just thrash Grant/Revoke on every KeepAlive tick.
const minLeaseTTL = time.Second

// EtcdRegistry implements Registry using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client
}

// NewEtcdRegistry creates a new registry connected to the given etcd
// endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

func keyPrefix(groupName string) string {
	return "/engineio/" + groupName + "/"
}

// leaseSeconds converts a registration TTL to the whole-second count etcd
// leases require, flooring at minLeaseTTL so a caller deriving leaseTTL
// from a server's pingInterval (which can be sub-second in tests) never
// grants a lease etcd would immediately thrash on.
func leaseSeconds(leaseTTL time.Duration) int64 {
	if leaseTTL < minLeaseTTL {
		leaseTTL = minLeaseTTL
	}
	seconds := int64((leaseTTL + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// Register adds an endpoint to etcd under a lease good for leaseTTL,
// rounded up to whole seconds (etcd leases are second-granularity) and
// floored at minLeaseTTL.
func (r *EtcdRegistry) Register(groupName string, instance EndpointInstance, leaseTTL time.Duration) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, leaseSeconds(leaseTTL))
	if err != nil {
		return fmt.Errorf("granting lease for %q: %w", instance.Addr, err)
	}

	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, keyPrefix(groupName)+instance.Addr, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}

	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes an endpoint from etcd.
func (r *EtcdRegistry) Deregister(groupName string, addr string) error {
	ctx := context.TODO()
	_, err := r.client.Delete(ctx, keyPrefix(groupName)+addr)
	return err
}

// Watch monitors a group's key prefix in etcd and emits updated endpoint
// lists whenever membership changes.
func (r *EtcdRegistry) Watch(groupName string) <-chan []EndpointInstance {
	ctx := context.TODO()
	ch := make(chan []EndpointInstance, 1)
	prefix := keyPrefix(groupName)

	go func() {
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			instances, _ := r.Discover(groupName)
			ch <- instances
		}
	}()

	return ch
}

// Discover returns all currently registered endpoints for a group.
func (r *EtcdRegistry) Discover(groupName string) ([]EndpointInstance, error) {
	ctx := context.TODO()
	resp, err := r.client.Get(ctx, keyPrefix(groupName), clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]EndpointInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance EndpointInstance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}
