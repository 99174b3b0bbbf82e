package metrics

import "sync"

// LogBuffer keeps the most recent log entries in a fixed-size ring.
// It is the only state that survives between rounds.
type LogBuffer struct {
	mu    sync.Mutex
	data  []LogEntry
	head  int // next write position
	count int
}

// NewLogBuffer creates a buffer holding at most limit entries. A limit of
// zero (or less) keeps nothing.
func NewLogBuffer(limit int) *LogBuffer {
	if limit < 0 {
		limit = 0
	}
	return &LogBuffer{data: make([]LogEntry, limit)}
}

// Limit returns the buffer capacity.
func (b *LogBuffer) Limit() int {
	return len(b.data)
}

// Push appends entries in chronological order (oldest first). Once full, the
// oldest entries are overwritten.
func (b *LogBuffer) Push(entries ...LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.data)
	if size == 0 {
		return
	}
	for _, e := range entries {
		b.data[b.head] = e
		b.head = (b.head + 1) % size
		if b.count < size {
			b.count++
		}
	}
}

// Entries returns a copy of the buffered entries, newest first.
func (b *LogBuffer) Entries() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.data)
	out := make([]LogEntry, 0, b.count)
	for i := 1; i <= b.count; i++ {
		idx := (b.head - i + size) % size
		out = append(out, b.data[idx])
	}
	return out
}

// Len returns the number of buffered entries.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
