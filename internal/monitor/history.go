package monitor

import (
	"sync"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// DefaultHistorySize is the number of rounds kept for the sparklines.
const DefaultHistorySize = 60

// History keeps recent CPU and memory percentages for sparkline rendering.
// Rounds whose value was unavailable leave no point.
type History struct {
	mu     sync.RWMutex
	cpu    *ringBuffer
	memory *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history holding size points per metric.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		cpu:    newRingBuffer(size),
		memory: newRingBuffer(size),
	}
}

// Push records the values of one snapshot.
func (h *History) Push(snap metrics.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if snap.CPU.Available() {
		h.cpu.push(snap.CPU.Value.UsagePercent)
	}
	if snap.Memory.Available() {
		h.memory.push(snap.Memory.Value.UsagePercent())
	}
}

// CPU returns up to count CPU percentages, oldest first.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.getLast(count)
}

// Memory returns up to count memory percentages, oldest first.
func (h *History) Memory(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.memory.getLast(count)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	count = min(count, r.count)

	result := make([]float64, count)
	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
