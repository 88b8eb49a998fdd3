package roster

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ysy950803/chatroster/internal/model"
)

// MemberList is a caller-owned, ordered member buffer. A Resolver writes
// resolved windows into it in place while other goroutines may read it; each
// window lands under the write lock, so readers never see half a window.
type MemberList struct {
	mu      sync.RWMutex
	entries []model.MemberEntry

	resolving atomic.Bool
}

func NewMemberList(entries ...model.MemberEntry) *MemberList {
	l := &MemberList{entries: make([]model.MemberEntry, 0, len(entries))}
	l.entries = append(l.entries, entries...)
	return l
}

// NewMemberListFromIDs puts header in front of the raw member ids. The header
// is the first placeholder, which the resolver treats as a delimiter.
func NewMemberListFromIDs(header string, ids []string) *MemberList {
	entries := make([]model.MemberEntry, 0, len(ids)+1)
	entries = append(entries, model.Placeholder(header))
	for _, id := range ids {
		entries = append(entries, model.Placeholder(id))
	}
	return &MemberList{entries: entries}
}

func (l *MemberList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *MemberList) At(i int) (model.MemberEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.entries) {
		return model.MemberEntry{}, false
	}
	return l.entries[i], true
}

// Entries returns a copy of the current entries.
func (l *MemberList) Entries() []model.MemberEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.MemberEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *MemberList) Append(entries ...model.MemberEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entries...)
}

// Pending counts entries still waiting for lookup.
func (l *MemberList) Pending() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		if e.IsPlaceholder() {
			n++
		}
	}
	return n
}

func (l *MemberList) Resolving() bool {
	return l.resolving.Load()
}

func (l *MemberList) firstPlaceholder() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, e := range l.entries {
		if e.IsPlaceholder() {
			return i
		}
	}
	return -1
}

// ids returns the identifiers in [start, end), clamped to the list.
func (l *MemberList) ids(start, end int) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if end > len(l.entries) {
		end = len(l.entries)
	}
	if start < 0 || start >= end {
		return nil
	}
	out := make([]string, 0, end-start)
	for _, e := range l.entries[start:end] {
		out = append(out, e.ID)
	}
	return out
}

// splice overwrites [start, start+len(members)) with resolved records.
func (l *MemberList) splice(start int, members []*model.Member) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if start < 0 || start+len(members) > len(l.entries) {
		return fmt.Errorf("splice [%d, %d) out of range for %d entries", start, start+len(members), len(l.entries))
	}
	for i, m := range members {
		l.entries[start+i] = model.Resolved(m)
	}
	return nil
}
