package bsp

const (
	// DefaultStoreSize is the initial CellStore capacity
	DefaultStoreSize = 16
	// CompactFraction of destroyed slots (relative to capacity) that triggers compaction
	CompactFraction = 0.2
	// MinCompactDestroyed is the absolute floor below which compaction never runs
	MinCompactDestroyed = 8
)

// CellStore is a growable arena of occupants. Destroyed entries stay in place
// until compaction, which invalidates every index handed out so far.
type CellStore struct {
	cells     []*Occupant
	count     int
	destroyed int
}

// NewCellStore allocates a store with the given starting capacity
func NewCellStore(startSize int) *CellStore {
	if startSize < 1 {
		startSize = DefaultStoreSize
	}
	return &CellStore{cells: make([]*Occupant, startSize)}
}

// Add appends o and returns its handle, doubling capacity when full
func (s *CellStore) Add(o *Occupant) int {
	if s.count == len(s.cells) {
		grown := make([]*Occupant, len(s.cells)*2)
		copy(grown, s.cells)
		s.cells = grown
	}
	s.cells[s.count] = o
	s.count++
	return s.count - 1
}

// Get returns the occupant behind a handle
func (s *CellStore) Get(i int) *Occupant { return s.cells[i] }

// Len returns the number of slots in use, destroyed ones included
func (s *CellStore) Len() int { return s.count }

// Cap returns the allocated capacity
func (s *CellStore) Cap() int { return len(s.cells) }

// Destroyed returns the number of tombstones since the last compaction
func (s *CellStore) Destroyed() int { return s.destroyed }

// IncrementDestroyed records one more tombstone
func (s *CellStore) IncrementDestroyed() { s.destroyed++ }

// NeedsCompaction reports whether enough tombstones have accumulated
func (s *CellStore) NeedsCompaction() bool {
	return s.destroyed >= MinCompactDestroyed &&
		float64(s.destroyed) >= CompactFraction*float64(len(s.cells))
}

// CompactIfNeeded drops tombstoned occupants in place, preserving order
func (s *CellStore) CompactIfNeeded() bool {
	if !s.NeedsCompaction() {
		return false
	}
	n := 0
	for i := 0; i < s.count; i++ {
		if o := s.cells[i]; !o.destroyed {
			s.cells[n] = o
			n++
		}
	}
	clear(s.cells[n:s.count])
	s.count = n
	s.destroyed = 0
	return true
}
