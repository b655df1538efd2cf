package vault

import (
	"encoding/json"
	"time"
)

// Item is the envelope stored for every value
type Item struct {
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Encrypted bool   `json:"encrypted"`
	ExpiresAt *int64 `json:"expiresAt,omitempty"` // epoch milliseconds
}

func parseItem(raw string) (*Item, error) {
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Deadline returns the moment the item stops being valid: the explicit
// deadline or the session timeout, whichever comes first.
func (it *Item) Deadline(timeout time.Duration) time.Time {
	deadline := time.UnixMilli(it.Timestamp).Add(timeout)
	if it.ExpiresAt != nil {
		if explicit := time.UnixMilli(*it.ExpiresAt); explicit.Before(deadline) {
			return explicit
		}
	}
	return deadline
}

// Expired reports whether the item is stale at now
func (it *Item) Expired(now time.Time, timeout time.Duration) bool {
	nowMs := now.UnixMilli()
	if it.ExpiresAt != nil && nowMs > *it.ExpiresAt {
		return true
	}
	return nowMs-it.Timestamp > timeout.Milliseconds()
}
