package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable record identifier. Issues,
// actions and inspection submissions all use these, so insertion order
// falls out of a plain `order by id`.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// IsValid reports whether s parses as an identifier produced by New.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
