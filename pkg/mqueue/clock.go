package mqueue

import (
	"time"

	"github.com/google/uuid"
)

// stampLayout is a fixed-width UTC ISO-8601 layout with millisecond
// precision. Stamps in this form order lexicographically, so the claim
// filter can compare them with $lte/$gt directly.
const stampLayout = "2006-01-02T15:04:05.000Z"

func nowStamp() string {
	return time.Now().UTC().Format(stampLayout)
}

func stampAfter(d time.Duration) string {
	return time.Now().UTC().Add(d).Format(stampLayout)
}

// newToken returns a fresh ack token. Tokens are opaque credentials; the
// unique sparse index on the ack field guarantees no two in-flight leases
// ever share one.
func newToken() string {
	return uuid.NewString()
}
