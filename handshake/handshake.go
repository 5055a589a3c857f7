// Package handshake performs the Engine.IO v3 long-polling handshake: the
// single GET that opens a session and returns the parameters the session
// engine needs.
package handshake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/PhilippGackstatter/engineio/eioerr"
	"github.com/PhilippGackstatter/engineio/middleware"
	"github.com/PhilippGackstatter/engineio/packet"
	"github.com/PhilippGackstatter/engineio/payload"
	"github.com/PhilippGackstatter/engineio/session"
)

// openPacket mirrors the server's handshake JSON body. upgrades is parsed
// but never consulted — the WebSocket transport is out of scope.
type openPacket struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval uint32   `json:"pingInterval"`
	PingTimeout  uint32   `json:"pingTimeout"`
}

// Options configures the handshake's HTTP round trip. Retry applies only
// here, never to the poll/write loops.
type Options struct {
	HTTPClient     *http.Client
	Logger         *zap.Logger
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 200 * time.Millisecond
	}
	return o
}

// Do issues GET {baseURL}?transport=polling&EIO=3, decodes the payload,
// validates the first packet is Open, and builds a *session.Config from it.
func Do(baseURL string, opts Options) (*session.Config, error) {
	opts = opts.withDefaults()

	chain := middleware.Chain(
		middleware.LoggingMiddleware(opts.Logger),
		middleware.RetryMiddleware(opts.MaxRetries, opts.RetryBaseDelay),
		middleware.TimeoutMiddleware(opts.RequestTimeout),
	)
	rt := chain(func(req *http.Request) (*http.Response, error) {
		return opts.HTTPClient.Do(req)
	})

	url := fmt.Sprintf("%s?transport=polling&EIO=3", baseURL)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, eioerr.Transportf(err, "building handshake request")
	}

	resp, err := rt(req)
	if err != nil {
		return nil, eioerr.Transportf(err, "handshake request to %s failed", baseURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eioerr.Transportf(err, "reading handshake response body")
	}

	packets, err := payload.Decode(body)
	if err != nil {
		return nil, err
	}
	if packets[0].Type != packet.Open {
		return nil, eioerr.Protocolf("handshake response's first packet is %s, want Open", packets[0].Type)
	}
	if packets[0].Data.IsBinary {
		return nil, eioerr.Protocolf("handshake Open packet carries binary data, want JSON text")
	}

	var open openPacket
	if err := json.Unmarshal([]byte(packets[0].Data.Text), &open); err != nil {
		return nil, eioerr.Protocolf("malformed handshake JSON: %v", err)
	}

	return session.NewConfig(open.SID, baseURL, open.PingInterval, open.PingTimeout), nil
}
