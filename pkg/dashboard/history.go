package dashboard

import "github.com/Sternrassler/edge-cache-lab/pkg/client"

// HistoryCapacity is the number of results a HistoryLog keeps.
const HistoryCapacity = 10

// HistoryLog is a bounded log of probe results. Once full, each push
// drops the oldest entry.
type HistoryLog struct {
	entries [HistoryCapacity]client.Result
	next    int
	size    int
}

// Push adds result as the most recent entry.
func (h *HistoryLog) Push(result client.Result) {
	h.entries[h.next] = result
	h.next = (h.next + 1) % HistoryCapacity
	if h.size < HistoryCapacity {
		h.size++
	}
}

// Len returns the number of stored entries.
func (h *HistoryLog) Len() int {
	return h.size
}

// Entries returns a copy of the log, most recent first.
func (h *HistoryLog) Entries() []client.Result {
	out := make([]client.Result, 0, h.size)
	for i := 1; i <= h.size; i++ {
		idx := (h.next - i + HistoryCapacity) % HistoryCapacity
		out = append(out, h.entries[idx])
	}
	return out
}
