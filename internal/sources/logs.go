package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// LogSource follows the systemd journal. The first sample loads the last
// entries of the current boot; later samples only read entries after the
// last seen cursor. New entries go into the shared LogBuffer and the result
// is its newest-first view.
type LogSource struct {
	runner   Runner
	priority string
	buffer   *metrics.LogBuffer

	mu     sync.Mutex
	cursor string
}

// NewLogSource creates a journal source filtered to priority (e.g. "err")
// and bounded by buffer.
func NewLogSource(runner Runner, priority string, buffer *metrics.LogBuffer) *LogSource {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &LogSource{runner: runner, priority: priority, buffer: buffer}
}

// Sample implements the source contract.
func (s *LogSource) Sample(ctx context.Context) ([]metrics.LogEntry, error) {
	limit := s.buffer.Limit()
	if limit == 0 {
		return []metrics.LogEntry{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	args := []string{
		"--output=json", "--no-pager", "--boot",
		"--priority=" + s.priority,
		"--lines=" + strconv.Itoa(limit),
	}
	if s.cursor != "" {
		args = append(args, "--after-cursor="+s.cursor)
	}

	out, err := s.runner.Run(ctx, "journalctl", args...)
	if err != nil {
		return nil, err
	}

	entries, cursor := ParseJournal(out)
	if cursor != "" {
		s.cursor = cursor
	}
	s.buffer.Push(entries...)
	return s.buffer.Entries(), nil
}

type journalRecord struct {
	Cursor     string          `json:"__CURSOR"`
	Realtime   string          `json:"__REALTIME_TIMESTAMP"`
	Priority   string          `json:"PRIORITY"`
	Unit       string          `json:"_SYSTEMD_UNIT"`
	Identifier string          `json:"SYSLOG_IDENTIFIER"`
	Message    json.RawMessage `json:"MESSAGE"`
}

// ParseJournal parses `journalctl -o json` output (one object per line) into
// entries in chronological order, and returns the cursor of the last entry.
// Malformed lines are skipped.
func ParseJournal(out []byte) ([]metrics.LogEntry, string) {
	var entries []metrics.LogEntry
	var cursor string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec journalRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}

		entry := metrics.LogEntry{
			Unit:     rec.Unit,
			Message:  journalMessage(rec.Message),
			Priority: 6,
		}
		if entry.Unit == "" {
			entry.Unit = rec.Identifier
		}
		if p, err := strconv.Atoi(rec.Priority); err == nil {
			entry.Priority = p
		}
		if us, err := strconv.ParseInt(rec.Realtime, 10, 64); err == nil {
			entry.Time = time.UnixMicro(us)
		}

		entries = append(entries, entry)
		if rec.Cursor != "" {
			cursor = rec.Cursor
		}
	}
	return entries, cursor
}

// journalMessage decodes MESSAGE, which journald emits as a byte array when
// the text is not valid UTF-8.
func journalMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var b []int
	if err := json.Unmarshal(raw, &b); err == nil {
		buf := make([]byte, 0, len(b))
		for _, c := range b {
			buf = append(buf, byte(c))
		}
		return strings.TrimSpace(strings.ToValidUTF8(string(buf), "?"))
	}
	return ""
}
