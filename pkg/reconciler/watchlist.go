package reconciler

import (
	"container/list"
	"sort"
	"sync"
)

// boundedSet is a set of usernames that holds at most max names and forgets
// the oldest first.
type boundedSet struct {
	mu    sync.Mutex
	max   int
	order *list.List
	names map[string]*list.Element
}

func newBoundedSet(size int) *boundedSet {
	if size <= 0 {
		size = 1
	}
	return &boundedSet{
		max:   size,
		order: list.New(),
		names: make(map[string]*list.Element),
	}
}

func (s *boundedSet) add(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.names[username]; ok {
		return
	}
	if s.order.Len() >= s.max {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.names, oldest.Value.(string))
	}
	s.names[username] = s.order.PushBack(username)
}

func (s *boundedSet) remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.names[username]; ok {
		s.order.Remove(el)
		delete(s.names, username)
	}
}

func (s *boundedSet) has(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.names[username]
	return ok
}

func (s *boundedSet) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *boundedSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// Watchlist remembers usernames that may be registered on the ledger without
// a similarity record. It holds at most size names and forgets the oldest
// first.
type Watchlist struct {
	set *boundedSet
}

// NewWatchlist returns an empty watchlist holding up to size names.
func NewWatchlist(size int) *Watchlist {
	return &Watchlist{set: newBoundedSet(size)}
}

// Watch adds username. Watching a name twice keeps its original position.
func (w *Watchlist) Watch(username string) { w.set.add(username) }

// Resolve forgets username.
func (w *Watchlist) Resolve(username string) { w.set.remove(username) }

// Snapshot returns the watched names in sorted order.
func (w *Watchlist) Snapshot() []string { return w.set.snapshot() }

// Len returns the number of watched names.
func (w *Watchlist) Len() int { return w.set.len() }
