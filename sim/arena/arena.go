package arena

import (
	"fmt"
	"slices"
)

// minCapacity is the smallest backing buffer an arena starts with.
const minCapacity = 16

// Arena is a growable buffer of fixed-size records T handing out chunks.
//
// Invariants:
//   - free chunks never overlap each other or any live chunk
//   - adjacent free chunks are merged on release
//   - used equals the end of the highest chunk not trimmed from the tail
//   - records outside live chunks are zero
type Arena[T any] struct {
	data []T     // len(data) is the capacity
	used int     // high-water mark
	free []Chunk // unordered
}

// New creates an arena with room for at least capacity records.
// Panics if T is not a plain record (see IsPlainRecord).
func New[T any](capacity int) *Arena[T] {
	mustBePlainRecord[T]()
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &Arena[T]{data: make([]T, capacity)}
}

// Used returns the high-water mark: every index below it belongs to a live or free chunk.
func (a *Arena[T]) Used() int { return a.used }

// Cap returns the number of records the backing buffer holds without growing.
func (a *Arena[T]) Cap() int { return len(a.data) }

// FreeLength returns the number of records sitting in free chunks below Used.
func (a *Arena[T]) FreeLength() int {
	n := 0
	for _, f := range a.free {
		n += f.Length
	}
	return n
}

// LiveLength returns the number of records inside live chunks.
func (a *Arena[T]) LiveLength() int { return a.used - a.FreeLength() }

// FreeChunks returns a copy of the free list ordered by start index.
func (a *Arena[T]) FreeChunks() []Chunk {
	out := slices.Clone(a.free)
	slices.SortFunc(out, func(x, y Chunk) int { return x.Start - y.Start })
	return out
}

// Allocate reserves length zeroed records.
// A free chunk is reused when one is large enough (lowest start index first); a larger
// one is split and its remainder stays free. Otherwise the buffer grows and the chunk
// is cut from the tail. Zero or negative length yields Empty.
func (a *Arena[T]) Allocate(length int) Chunk {
	if length <= 0 {
		return Empty
	}
	if i := a.findFree(length); i >= 0 {
		f := a.free[i]
		if f.Length == length {
			a.removeFree(i)
		} else {
			a.free[i] = Chunk{Start: f.Start + length, Length: f.Length - length}
		}
		return Chunk{Start: f.Start, Length: length}
	}
	a.grow(a.used + length)
	c := Chunk{Start: a.used, Length: length}
	a.used += length
	return c
}

// AllocateFrom reserves len(values) records and copies values into them.
func (a *Arena[T]) AllocateFrom(values []T) Chunk {
	c := a.Allocate(len(values))
	if c.IsValid() {
		copy(a.data[c.Start:c.End()], values)
	}
	return c
}

// Release returns a chunk to the free list, merging it with free neighbours on
// either side. A merged chunk that reaches the tail lowers Used instead.
// Releasing an invalid chunk is a no-op. Panics on out-of-range or double release.
func (a *Arena[T]) Release(c Chunk) {
	if !c.IsValid() {
		return
	}
	a.checkLive(c)
	clear(a.data[c.Start:c.End()])

	merged := c
	for i := 0; i < len(a.free); {
		f := a.free[i]
		if f.End() == merged.Start || merged.End() == f.Start {
			merged = Chunk{Start: min(f.Start, merged.Start), Length: f.Length + merged.Length}
			a.removeFree(i)
			continue
		}
		i++
	}
	if merged.End() == a.used {
		a.used = merged.Start
		return
	}
	a.free = append(a.free, merged)
}

// Expand moves the contents of c into a new chunk of newLength records and releases c.
// The returned chunk generally has a different Start; callers must recompute every index
// derived from c. newLength <= c.Length returns c unchanged; an invalid c behaves like
// Allocate.
func (a *Arena[T]) Expand(c Chunk, newLength int) Chunk {
	if !c.IsValid() {
		return a.Allocate(newLength)
	}
	if newLength <= c.Length {
		return c
	}
	a.checkLive(c)
	nc := a.Allocate(newLength)
	copy(a.data[nc.Start:nc.Start+c.Length], a.data[c.Start:c.End()])
	a.Release(c)
	return nc
}

// Fill writes v into every record of c. Invalid chunks are ignored.
func (a *Arena[T]) Fill(c Chunk, v T) {
	if !c.IsValid() {
		return
	}
	a.checkRange(c)
	s := a.data[c.Start:c.End()]
	for i := range s {
		s[i] = v
	}
}

// Slice returns a view of the records in c. The view is invalidated by any later
// Allocate, AllocateFrom or Expand that grows the buffer.
func (a *Arena[T]) Slice(c Chunk) []T {
	if !c.IsValid() {
		return nil
	}
	a.checkRange(c)
	return a.data[c.Start:c.End():c.End()]
}

// At returns a pointer to record i. The pointer has the same lifetime as a Slice view.
func (a *Arena[T]) At(i int) *T {
	if i < 0 || i >= a.used {
		panic(fmt.Sprintf("arena: index %d out of range [0,%d)", i, a.used))
	}
	return &a.data[i]
}

// Reset drops every chunk and zeroes the used range; capacity is kept.
func (a *Arena[T]) Reset() {
	clear(a.data[:a.used])
	a.used = 0
	a.free = a.free[:0]
}

// Copy copies records from src chunk sc into dst chunk dc and returns the number of
// records copied (the shorter of the two chunks). dst and src may be the same arena.
func Copy[T any](dst, src *Arena[T], dc, sc Chunk) int {
	if !dc.IsValid() || !sc.IsValid() {
		return 0
	}
	return copy(dst.Slice(dc), src.Slice(sc))
}

// grow makes room for at least need records, at least doubling the buffer.
func (a *Arena[T]) grow(need int) {
	if need <= len(a.data) {
		return
	}
	newCap := max(len(a.data)*2, need)
	data := make([]T, newCap)
	copy(data, a.data[:a.used])
	a.data = data
}

// findFree returns the index in the free list of the lowest-addressed chunk that can
// hold length records, or -1.
func (a *Arena[T]) findFree(length int) int {
	best := -1
	for i, f := range a.free {
		if f.Length < length {
			continue
		}
		if best < 0 || f.Start < a.free[best].Start {
			best = i
		}
	}
	return best
}

func (a *Arena[T]) removeFree(i int) {
	last := len(a.free) - 1
	a.free[i] = a.free[last]
	a.free = a.free[:last]
}

func (a *Arena[T]) checkRange(c Chunk) {
	if c.Start < 0 || c.End() > a.used {
		panic(fmt.Sprintf("arena: chunk %v out of range [0,%d)", c, a.used))
	}
}

func (a *Arena[T]) checkLive(c Chunk) {
	a.checkRange(c)
	for _, f := range a.free {
		if f.Overlaps(c) {
			panic(fmt.Sprintf("arena: chunk %v overlaps free chunk %v (double release?)", c, f))
		}
	}
}
