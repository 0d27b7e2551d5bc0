// Package arena implements the first-fit, coalescing, aligned byte
// allocator backing actor stacks. Each issued Region carries the
// two DEADBEEFCAFEBABE guard words the scheduler checks after every
// actor-to-scheduler switch.
//
// actorcore runs actors as goroutines (see the root package's doc
// comment for why), so an actor's physical stack is supplied and grown
// by the Go runtime, not by this arena. Arena still implements the exact
// first-fit/coalescing algorithm over a virtual offset space and is
// exercised by Spawn/death-cleanup to enforce the configured stack budget
// (NOMEM on exhaustion) and to provide the guard-word bookkeeping the
// CRASH_STACK path requires — the same role the allocator plays on a
// bare-metal target, minus supplying physical backing memory.
package arena

import (
	"fmt"
	"sort"
)

const (
	alignment   = 16
	minBlock    = 64
	headerSize  = 16 // bookkeeping overhead assumed per split block
	guardWord   = uint64(0xDEADBEEFCAFEBABE)
)

// Region is a logical stack allocation: an offset/size extent plus guard
// words bracketing it.
type Region struct {
	Offset    uint64
	Size      uint64
	GuardLow  uint64
	GuardHigh uint64
	valid     bool
}

// GuardsOK reports whether both guard words still hold their sentinel
// value. A mismatch is the CRASH_STACK condition.
func (r Region) GuardsOK() bool {
	return r.GuardLow == guardWord && r.GuardHigh == guardWord
}

// CorruptGuard is a test-only hook that flips the low guard word so tests
// can exercise the CRASH_STACK path deterministically.
func (r *Region) CorruptGuard() {
	r.GuardLow = ^guardWord
}

type block struct {
	offset, size uint64
}

// Arena is a single ARENA_SIZE byte region managed as a free list of
// blocks, first-fit allocation, address-ordered coalescing on free.
type Arena struct {
	capacity uint64
	free     []block // kept sorted by offset
	used     map[uint64]uint64
}

// New creates an arena of the given capacity in bytes.
func New(capacity uint64) *Arena {
	return &Arena{
		capacity: capacity,
		free:     []block{{offset: 0, size: capacity}},
		used:     make(map[uint64]uint64),
	}
}

func roundUp(n, mult uint64) uint64 {
	if n == 0 {
		return mult
	}
	return (n + mult - 1) / mult * mult
}

// Alloc reserves n bytes (rounded up to 16) from the first block that
// fits, splitting off the remainder when it's at least header+MinBlock,
// otherwise consuming the whole block. Returns ok=false (NOMEM to the
// caller) when no block is large enough.
func (a *Arena) Alloc(n uint64) (Region, bool) {
	size := roundUp(n, alignment)
	for i, b := range a.free {
		if b.size < size {
			continue
		}
		remaining := b.size - size
		if remaining >= headerSize+minBlock {
			a.free[i] = block{offset: b.offset + size, size: remaining}
		} else {
			size = b.size // consume the whole block, including slack
			a.free = append(a.free[:i], a.free[i+1:]...)
		}
		a.used[b.offset] = size
		return Region{
			Offset: b.offset, Size: size,
			GuardLow: guardWord, GuardHigh: guardWord, valid: true,
		}, true
	}
	return Region{}, false
}

// Free releases a region, inserting it in address order and coalescing
// with adjacent free blocks.
func (a *Arena) Free(r Region) error {
	if !r.valid {
		return nil
	}
	size, ok := a.used[r.Offset]
	if !ok {
		return fmt.Errorf("arena: free of unknown offset %d", r.Offset)
	}
	delete(a.used, r.Offset)

	a.free = append(a.free, block{offset: r.Offset, size: size})
	sort.Slice(a.free, func(i, j int) bool { return a.free[i].offset < a.free[j].offset })

	merged := a.free[:0]
	for _, b := range a.free {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.offset+last.size == b.offset {
				last.size += b.size
				continue
			}
		}
		merged = append(merged, b)
	}
	a.free = merged
	return nil
}

// Allocated returns the number of bytes currently in use, for tests and
// the "allocated==0 after cleanup" invariant.
func (a *Arena) Allocated() uint64 {
	var total uint64
	for _, size := range a.used {
		total += size
	}
	return total
}

// Capacity returns the arena's fixed size.
func (a *Arena) Capacity() uint64 { return a.capacity }
