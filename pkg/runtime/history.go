package runtime

import (
	"encoding/json"
	"sync"
	"time"
)

// Record captures one commit or dispatch for audit and debugging.
type Record struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Path     string        `json:"path,omitempty"`
	Type     string        `json:"type"`
	Payload  any           `json:"payload,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
	At       time.Time     `json:"at"`
}

// history is a bounded, append-only record log. Oldest records are dropped
// once the limit is reached.
type history struct {
	mu      sync.Mutex
	limit   int
	entries []Record
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) append(record Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, record)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

func (h *history) records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.entries))
	copy(out, h.entries)
	return out
}

// HistoryToJSON serialises records for logging or transport helpers.
func HistoryToJSON(records []Record) ([]byte, error) {
	return json.Marshal(records)
}

// HistoryFromJSON deserialises a payload previously generated via
// HistoryToJSON.
func HistoryFromJSON(payload []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}
