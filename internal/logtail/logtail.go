package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  map[string]string
	Raw     string
}

var (
	timeKeys    = []string{"time", "ts"}
	levelKeys   = []string{"level", "lvl"}
	messageKeys = []string{"message", "msg"}
)

// Parse decodes a pslog structured line. Non-JSON input yields an Entry with
// only Raw set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return entry
	}
	if raw := takeString(payload, timeKeys); raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			entry.Time = ts
		}
	}
	entry.Level = strings.ToUpper(takeString(payload, levelKeys))
	entry.Message = takeString(payload, messageKeys)
	if len(payload) > 0 {
		entry.Fields = make(map[string]string, len(payload))
		for k, v := range payload {
			entry.Fields[k] = fmt.Sprint(v)
		}
	}
	return entry
}

// ParseLines parses each line in order.
func ParseLines(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, Parse(line))
	}
	return entries
}

// String renders the entry on one line with fields sorted by key.
func (e Entry) String() string {
	if e.Level == "" && e.Message == "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level, e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Fields[k])
	}
	return b.String()
}

func takeString(payload map[string]any, keys []string) string {
	for _, key := range keys {
		if value, ok := payload[key].(string); ok {
			delete(payload, key)
			return value
		}
	}
	return ""
}
