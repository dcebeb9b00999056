// Package id issues transaction identifiers.
//
// IDs are ULIDs: they sort by creation time, and two IDs minted in the same
// millisecond still sort in minting order.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID for the given instant.
func New(at time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(at), entropy)
	if err != nil {
		// The per-millisecond counter ran out or crypto/rand failed.
		panic(err)
	}
	return v.String()
}
