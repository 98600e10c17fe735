package wifiscand

import "sync"

/* HistoryStore keeps a sliding window of signal readings per BSSID
 * for the life of the process. Addresses are never evicted, only
 * the readings for each address are trimmed to the window size.
 *
 * Usage:
 *  hs := NewHistoryStore(20)
 *  window := hs.Append("aa:bb:cc:dd:ee:ff", -42)
 */
type HistoryStore struct {
	mu      sync.Mutex
	limit   int
	signals map[string][]int
}

func NewHistoryStore(limit int) *HistoryStore {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{
		limit:   limit,
		signals: map[string][]int{},
	}
}

// Append records a reading and returns a copy of the window for
// bssid, oldest first.
func (h *HistoryStore) Append(bssid string, signal int) []int {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := append(h.signals[bssid], signal)
	if len(window) > h.limit {
		// copy rather than reslice so the backing array does not grow forever
		window = append([]int(nil), window[len(window)-h.limit:]...)
	}
	h.signals[bssid] = window

	return append([]int(nil), window...)
}

// Get returns a copy of the window for bssid, or an empty slice.
func (h *HistoryStore) Get(bssid string) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int{}, h.signals[bssid]...)
}

// Len is the number of addresses seen so far.
func (h *HistoryStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.signals)
}

func (h *HistoryStore) Limit() int {
	return h.limit
}
