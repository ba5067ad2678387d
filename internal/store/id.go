package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Spin results and audit entries sort by occurred_at with id as the
// tiebreak, so ids minted in one process must stay monotonic within a
// timestamp. ulid.Monotonic guarantees that only for serialized calls,
// hence the mutex.
var (
	idEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	idEntropyMu sync.Mutex
)

// NewID mints a sortable unique id for a new row.
func NewID() string {
	idEntropyMu.Lock()
	defer idEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}
