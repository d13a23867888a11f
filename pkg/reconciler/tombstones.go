package reconciler

// Tombstones remembers usernames whose orphaned similarity record was
// deleted, so verification can still tell an abandoned registration apart
// from a user who never registered. Entries are cleared when the username
// registers again; the oldest are forgotten once size is reached.
type Tombstones struct {
	set *boundedSet
}

// NewTombstones returns an empty set holding up to size names.
func NewTombstones(size int) *Tombstones {
	return &Tombstones{set: newBoundedSet(size)}
}

// Bury records that username's orphaned similarity record was removed.
func (t *Tombstones) Bury(username string) { t.set.add(username) }

// Buried reports whether username lost an orphaned record and has not
// registered since.
func (t *Tombstones) Buried(username string) bool { return t.set.has(username) }

// Clear forgets username.
func (t *Tombstones) Clear(username string) { t.set.remove(username) }

// Len returns the number of remembered names.
func (t *Tombstones) Len() int { return t.set.len() }
