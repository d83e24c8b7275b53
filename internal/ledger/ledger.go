package ledger

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Entry is one answered comment.
type Entry struct {
	CommentID string    `json:"comment_id"`
	RepliedAt time.Time `json:"replied_at"`
}

// Ledger is the set of comment ids that received an automated reply. It has no
// removal path, so Len never decreases.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]Entry), now: time.Now}
}

// FromEntries builds a ledger from persisted entries, ignoring blank ids and
// keeping the earliest timestamp for duplicates.
func FromEntries(entries []Entry) *Ledger {
	l := New()
	for _, entry := range lo.Filter(entries, func(e Entry, _ int) bool {
		return strings.TrimSpace(e.CommentID) != ""
	}) {
		if existing, ok := l.entries[entry.CommentID]; ok && !entry.RepliedAt.Before(existing.RepliedAt) {
			continue
		}
		l.entries[entry.CommentID] = entry
	}
	return l
}

// WithClock overrides the timestamp source. Intended for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now != nil {
		l.now = now
	}
	return l
}

// Contains reports whether id has been answered.
func (l *Ledger) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[id]
	return ok
}

// Add records id. It returns false when id is blank or already present.
func (l *Ledger) Add(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[id]; ok {
		return false
	}
	l.entries[id] = Entry{CommentID: id, RepliedAt: l.now().UTC()}
	return true
}

// Len returns the number of answered comments.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns all entries newest first, ties broken by id.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	entries := lo.Values(l.entries)
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].RepliedAt.Equal(entries[j].RepliedAt) {
			return entries[i].RepliedAt.After(entries[j].RepliedAt)
		}
		return entries[i].CommentID < entries[j].CommentID
	})
	return entries
}

// IDs returns the answered comment ids in lexical order.
func (l *Ledger) IDs() []string {
	l.mu.RLock()
	ids := lo.Keys(l.entries)
	l.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
