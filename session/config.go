// Package session implements the Engine.IO session engine: the three
// cooperating goroutines (poll, ping, write) that share a Config and an
// outbound channel for the lifetime of one connected session.
package session

import (
	"sync/atomic"
	"time"
)

// Config is the shared, immutable-after-handshake record every session
// goroutine holds a reference to. The sid, base URL, and ping timings never
// change after the handshake; isConnected and pingReceived are the only
// mutable state, and both are plain atomics, since each is a single flag
// read and written independently rather than a group of fields needing
// atomic updates together.
type Config struct {
	SID     string
	BaseURL string

	PingInterval time.Duration // dwell between pings: max(0, I-T)
	PingTimeout  time.Duration // deadline for a pong after a ping: T

	isConnected  atomic.Bool
	pingReceived atomic.Bool
}

// NewConfig builds a Config from the handshake's raw millisecond intervals,
// initializing both flags to true per spec.md §4.3.
func NewConfig(sid, baseURL string, pingIntervalMs, pingTimeoutMs uint32) *Config {
	timeout := time.Duration(pingTimeoutMs) * time.Millisecond
	interval := time.Duration(pingIntervalMs)*time.Millisecond - timeout
	if interval < 0 {
		interval = 0
	}
	c := &Config{
		SID:          sid,
		BaseURL:      baseURL,
		PingInterval: interval,
		PingTimeout:  timeout,
	}
	c.isConnected.Store(true)
	c.pingReceived.Store(true)
	return c
}

// IsConnected reports whether the session is still considered live. Once it
// flips to false, it never flips back.
func (c *Config) IsConnected() bool {
	return c.isConnected.Load()
}

// Disconnect flips isConnected to false. Idempotent — safe to call from any
// of the three session goroutines, any number of times.
func (c *Config) Disconnect() {
	c.isConnected.Store(false)
}

// MarkPingReceived records that a Pong arrived. NewConfig sets the same flag
// directly, so a fresh session starts with no ping outstanding.
func (c *Config) MarkPingReceived() {
	c.pingReceived.Store(true)
}

// MarkPingSent clears the flag right after a Ping is enqueued, so the ping
// loop can tell whether a Pong arrived before its deadline.
func (c *Config) MarkPingSent() {
	c.pingReceived.Store(false)
}

// PingReceived reports whether a Pong has arrived since the last Ping was
// sent.
func (c *Config) PingReceived() bool {
	return c.pingReceived.Load()
}
