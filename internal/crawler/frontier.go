package crawler

import (
	"maps"
	"slices"
)

// Frontier holds the traversal state of one discovery run.
//
// The queue holds addresses awaiting a visit, seen holds addresses already
// scheduled (or deliberately not scheduled), and discovered holds every
// allowed address encountered. Every seen address is also discovered, and
// discovered only grows.
type Frontier struct {
	queue      []string
	seen       map[string]struct{}
	discovered map[string]struct{}
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queue:      make([]string, 0),
		seen:       make(map[string]struct{}),
		discovered: make(map[string]struct{}),
	}
}

// Seed schedules the start address. An allowed start address is also
// recorded as seen and discovered; a disallowed one is only visited.
func (f *Frontier) Seed(addr string, allowed bool) {
	if allowed {
		f.Add(addr)
	}
	f.queue = append(f.queue, addr)
}

// Add records addr as discovered. It reports whether addr was not seen
// before, in which case it is now marked seen.
func (f *Frontier) Add(addr string) bool {
	f.discovered[addr] = struct{}{}
	if _, ok := f.seen[addr]; ok {
		return false
	}
	f.seen[addr] = struct{}{}
	return true
}

// Enqueue appends addr to the back of the queue.
func (f *Frontier) Enqueue(addr string) {
	f.queue = append(f.queue, addr)
}

// Next removes and returns the head of the queue.
func (f *Frontier) Next() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	head := f.queue[0]
	f.queue = f.queue[1:]
	return head, true
}

// Pending returns the number of queued addresses.
func (f *Frontier) Pending() int {
	return len(f.queue)
}

// IsSeen reports whether addr has been marked seen.
func (f *Frontier) IsSeen(addr string) bool {
	_, ok := f.seen[addr]
	return ok
}

// IsDiscovered reports whether addr is in the discovered set.
func (f *Frontier) IsDiscovered(addr string) bool {
	_, ok := f.discovered[addr]
	return ok
}

// Links returns the discovered set sorted lexicographically.
func (f *Frontier) Links() []string {
	return slices.Sorted(maps.Keys(f.discovered))
}
