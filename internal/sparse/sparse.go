// Package sparse provides a sparse set of instruction addresses.
//
// A sparse set supports O(1) insertion, membership testing and clearing while
// keeping a dense list of its elements in insertion order. The epsilon closure
// relies on that order: the first address discovered is the first address
// iterated, which is what decides tie-breaks between accepting rules.
package sparse

// SparseSet is a set of uint32 values drawn from [0, capacity).
// The sparse array maps a value to its index in the dense array; a value is a
// member only if the two arrays agree, so Clear never has to touch sparse.
type SparseSet struct {
	sparse []uint32 // value -> index in dense
	dense  []uint32 // members, in insertion order
}

// NewSparseSet creates a new sparse set able to hold values below capacity.
func NewSparseSet(capacity uint32) *SparseSet {
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Capacity returns the exclusive upper bound on values the set can hold.
func (s *SparseSet) Capacity() int {
	return len(s.sparse)
}

// Resize clears the set and makes room for values below capacity.
// Existing storage is reused when it is already large enough.
func (s *SparseSet) Resize(capacity uint32) {
	if uint32(len(s.sparse)) < capacity {
		s.sparse = make([]uint32, capacity)
		s.dense = make([]uint32, 0, capacity)
		return
	}
	s.dense = s.dense[:0]
}

// Insert adds value to the set and reports whether it was newly added.
// Panics if value >= Capacity().
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	//nolint:gosec // G115: dense never grows past len(sparse), which fits in uint32
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains returns true if the value is in the set
func (s *SparseSet) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all elements from the set in O(1) time
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements in the set
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// IsEmpty returns true if the set contains no elements
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the members in insertion order.
// The returned slice is valid until the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}
