// Package ulid generates prefixed, lexicographically sortable identifiers on
// top of github.com/oklog/ulid/v2.
//
// Reviews use database-assigned integer keys; ULIDs are only used for
// values that never touch the database, such as HTTP request IDs.
package ulid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// PrefixRequest is the prefix for request IDs
	PrefixRequest = "req"

	// PrefixSeparator is used to separate the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// Generate creates a new ULID string with the current timestamp
func Generate() string {
	return NewWithTime(time.Now()).String()
}

// NewWithTime creates a ULID for the given time. Calls within the same
// millisecond yield strictly increasing values.
func NewWithTime(t time.Time) ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy)
}

// GenerateWithPrefix creates a new ULID string prefixed with prefix and the separator
func GenerateWithPrefix(prefix string) string {
	return prefix + PrefixSeparator + Generate()
}

// RequestID generates a new request ID
func RequestID() string {
	return GenerateWithPrefix(PrefixRequest)
}
