package telemetry

import (
	"sync"
	"time"
)

const defaultBufferSize = 1000

// Entry is one recorded activity-log line.
type Entry struct {
	TS     time.Time      `json:"ts"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Buffer keeps the most recent log entries in memory for the admin dashboard
// and fans them out to live subscribers. It is constructed at process startup
// and passed to the components that record through it.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	head    int
	size    int
	cap     int
	subs    map[int]chan Entry
	nextSub int
}

// NewBuffer builds a Buffer retaining up to capacity entries; capacity <= 0
// selects the default of 1000.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultBufferSize
	}
	return &Buffer{
		entries: make([]Entry, capacity),
		cap:     capacity,
		subs:    make(map[int]chan Entry),
	}
}

// Log records an entry, emits the matching stdout line, and notifies
// subscribers. Slow subscribers are skipped, never waited on. Sends happen
// under the mutex so a concurrent cancel cannot close a channel mid-send.
func (b *Buffer) Log(level, msg string, fields map[string]any) {
	write(level, msg, fields)

	entry := Entry{TS: time.Now().UTC(), Level: level, Msg: msg, Fields: fields}

	b.mu.Lock()
	b.entries[(b.head+b.size)%b.cap] = entry
	if b.size < b.cap {
		b.size++
	} else {
		b.head = (b.head + 1) % b.cap
	}
	for _, ch := range b.subs {
		select {
		case ch <- entry:
		default:
		}
	}
	b.mu.Unlock()
}

// Recent returns up to n entries, newest first. n <= 0 returns everything
// retained.
func (b *Buffer) Recent(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > b.size {
		n = b.size
	}
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		idx := (b.head + b.size - 1 - i + b.cap) % b.cap
		out = append(out, b.entries[idx])
	}
	return out
}

// Subscribe registers a live feed of new entries. The returned cancel func
// must be called to release the subscription.
func (b *Buffer) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, 64)
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
