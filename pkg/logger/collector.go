package logger

import (
	"sync"
	"time"
)

// Entry is one retained log record.
type Entry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Collector retains the most recent warn/error log records in memory so the
// health endpoint can report them. Records with the same level, message and
// caller are deduplicated into a counted entry.
type Collector struct {
	mu      sync.Mutex
	max     int
	entries map[string]*Entry
	order   []string
}

// NewCollector creates a collector retaining at most max distinct entries.
func NewCollector(max int) *Collector {
	if max <= 0 {
		max = 50
	}
	return &Collector{
		max:     max,
		entries: make(map[string]*Entry),
	}
}

func (c *Collector) Add(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := level + "|" + message + "|" + caller

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
		return
	}

	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &Entry{
		Level:     level,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
	c.order = append(c.order, key)
}

// Recent returns the retained entries, oldest first.
func (c *Collector) Recent() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.entries[key])
	}
	return out
}
