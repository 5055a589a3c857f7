package session

import (
	"fmt"
	"time"
)

// PollURL builds the poll/post URL for an established session: the base URL
// plus transport, protocol version, sid, and a cache-busting timestamp that
// must be recomputed on every call.
func PollURL(cfg *Config) string {
	now := time.Now()
	return fmt.Sprintf("%s?transport=polling&EIO=3&sid=%s&t=%d.%d",
		cfg.BaseURL, cfg.SID, now.Unix(), now.UnixNano()%1e9)
}
