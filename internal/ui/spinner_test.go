package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_NoAnimation(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Sampling", false)

	s.Start()
	assert.Empty(t, buf.String())

	s.Success()
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, SymbolSuccess+" Sampling "), out)
	assert.True(t, strings.HasSuffix(out, "s\n"))
	assert.NotContains(t, out, "\r")
}

func TestSpinner_Animates(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Sampling", true)

	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Fail()

	out := buf.String()
	assert.Contains(t, out, SpinnerFrames.Frames[0]+" Sampling…")
	assert.Contains(t, out, "\r")
	assert.True(t, strings.HasSuffix(out, "\n"))

	last := out[strings.LastIndex(out, "\r")+1:]
	assert.True(t, strings.HasPrefix(last, SymbolFail+" Sampling "), last)
}

func TestSpinner_FinishIsIdempotent(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "x", false)

	s.Success()
	assert.Empty(t, buf.String(), "finishing before Start writes nothing")

	s.Start()
	s.Success()
	s.Fail()
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", FormatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", FormatDuration(1200*time.Millisecond))
}
