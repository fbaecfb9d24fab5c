// Package arena provides a growable, index-addressed record buffer that hands out
// contiguous sub-ranges (chunks) and reclaims them through a coalescing free list.
//
// Chunks address records by index, never by pointer: indices stay valid while the
// backing slice grows, so parallel passes can hold chunk descriptors across frames.
// Slices returned by Slice are views and must be re-fetched after any Allocate or Expand.
//
// Thread-safety: NOT thread-safe. Allocation and release happen in the sequential
// registration phase; parallel passes only read or write records inside chunks they own.
package arena

import "fmt"

// Chunk identifies a contiguous sub-range [Start, Start+Length) of an arena.
// It carries no ownership; the zero value is the empty (invalid) chunk.
type Chunk struct {
	Start  int
	Length int
}

// Empty is the invalid chunk returned for zero or negative length requests.
var Empty = Chunk{}

// IsValid reports whether the chunk covers at least one record.
func (c Chunk) IsValid() bool {
	return c.Length > 0
}

// End returns the exclusive end index of the chunk.
func (c Chunk) End() int {
	return c.Start + c.Length
}

// Overlaps reports whether two chunks share at least one index.
func (c Chunk) Overlaps(o Chunk) bool {
	if !c.IsValid() || !o.IsValid() {
		return false
	}
	return c.Start < o.End() && o.Start < c.End()
}

// Sub returns the sub-range of c starting at offset with the given length,
// clipped to c. An out-of-range request yields Empty.
func (c Chunk) Sub(offset, length int) Chunk {
	if offset < 0 || length <= 0 || offset >= c.Length {
		return Empty
	}
	if offset+length > c.Length {
		length = c.Length - offset
	}
	return Chunk{Start: c.Start + offset, Length: length}
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%d,+%d)", c.Start, c.Length)
}
