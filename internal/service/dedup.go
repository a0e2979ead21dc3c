package service

import (
	"sync"
	"time"
)

// DefaultDedupRetention is how long a sale stays marked as notified. A
// payment row written as part of the same purchase transaction lands
// well inside this window.
const DefaultDedupRetention = 2 * time.Minute

// DedupWindow remembers which sale IDs produced a notification
// recently, so the settlement leg of an already-notified sale does not
// fire a second message. Entries expire lazily on lookup.
type DedupWindow struct {
	mu        sync.Mutex
	retention time.Duration
	entries   map[int64]time.Time
	now       func() time.Time
}

// NewDedupWindow creates a dedup window with the given retention.
func NewDedupWindow(retention time.Duration) *DedupWindow {
	return &DedupWindow{
		retention: retention,
		entries:   make(map[int64]time.Time),
		now:       time.Now,
	}
}

// Mark records that the sale produced a notification just now. A zero
// ID (no linked sale) is ignored.
func (w *DedupWindow) Mark(saleID int64) {
	if saleID == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[saleID] = w.now()
}

// Recent reports whether the sale was marked inside the retention
// window. Expired entries are removed on the way out.
func (w *DedupWindow) Recent(saleID int64) bool {
	if saleID == 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ts, ok := w.entries[saleID]
	if !ok {
		return false
	}
	if w.now().Sub(ts) > w.retention {
		delete(w.entries, saleID)
		return false
	}
	return true
}
