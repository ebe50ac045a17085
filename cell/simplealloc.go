/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cell

import (
	"encoding/binary"
	"math/rand"
	"unsafe"

	"github.com/google/uuid"
)

// SimpleAllocator hands out cells from a fixed page and reclaims them with a
// stop-the-world mark-and-sweep. Cells never move once allocated, so a PCell
// held across a collection stays valid iff it is rooted.
//
// The page is carved out of pointer-free memory: free slots carry XOR-hashed
// next links, and the Go runtime must never mistake those for pointers.
type SimpleAllocator struct {
	ncells  int
	mem     []uint64 // keeps the page alive
	base    unsafe.Pointer
	free    *freeCell
	roots   *rootSet
	gcCount int
	rnd     *rand.Rand // per-allocator salt source
	id      uuid.UUID
}

// freeCell aliases a free slot in the page. The link is stored XORed with a
// random salt, so a stale PCell that lands on a free slot reads garbage
// instead of a plausible cell.
type freeCell struct {
	salt uintptr
	next uintptr
	_    [2]uintptr
}

var _ [unsafe.Sizeof(Cell{}) - unsafe.Sizeof(freeCell{})]byte
var _ [unsafe.Sizeof(freeCell{}) - unsafe.Sizeof(Cell{})]byte

func (f *freeCell) setNext(n *freeCell) { f.next = uintptr(unsafe.Pointer(n)) ^ f.salt }
func (f *freeCell) nextFree() *freeCell { return (*freeCell)(unsafe.Pointer(f.next ^ f.salt)) }

func NewSimpleAllocator(ncells int) *SimpleAllocator {
	if ncells <= 0 {
		panic("allocator must hold at least one cell")
	}
	id := uuid.New()
	cellSize := unsafe.Sizeof(Cell{})
	mem := make([]uint64, ncells*int(cellSize/8)+int(cellSize/8)-1)
	base := unsafe.Pointer(&mem[0])
	if r := uintptr(base) % cellSize; r != 0 {
		base = unsafe.Add(base, cellSize-r)
	}
	a := &SimpleAllocator{
		ncells: ncells,
		mem:    mem,
		base:   base,
		roots:  newRootSet(),
		rnd:    rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(id[:8])))),
		id:     id,
	}
	a.gc(nil) // sweeps the whole page into the free list
	a.gcCount = 0
	return a
}

func (a *SimpleAllocator) cellAt(i int) *Cell {
	return (*Cell)(unsafe.Add(a.base, uintptr(i)*unsafe.Sizeof(Cell{})))
}

func (a *SimpleAllocator) index(c *Cell) int {
	off := uintptr(unsafe.Pointer(c)) - uintptr(a.base)
	if off%unsafe.Sizeof(Cell{}) != 0 || off >= uintptr(a.ncells)*unsafe.Sizeof(Cell{}) {
		panic("cell pointer outside the page")
	}
	return int(off / unsafe.Sizeof(Cell{}))
}

func (a *SimpleAllocator) NewCell(head Elem, tail Elem, extra ...*Elem) (*Cell, error) {
	if a.free == nil {
		a.gc(extra)
		if a.free == nil {
			return nil, ErrOutOfMemory
		}
	}
	f := a.free
	a.free = f.nextFree()
	p := (*Cell)(unsafe.Pointer(f))
	p.head = head
	p.tail = tail
	if a.free == nil {
		// the pool just ran dry: collect eagerly so the next allocation has a
		// chance without one. The fresh cell is pinned; it does not move.
		e := NewPCell(p)
		a.roots.add(&e)
		a.gc(extra)
		a.roots.del(&e)
	}
	return p, nil
}

func (a *SimpleAllocator) gc(extra []*Elem) {
	freeBefore := a.countFree()
	// mark-on-visit keeps the walk cycle-safe and the stack within ncells
	live := make([]bool, a.ncells)
	stack := make([]*Cell, 0, 64)
	mark := func(c *Cell) {
		if i := a.index(c); !live[i] {
			live[i] = true
			stack = append(stack, c)
		}
	}
	a.roots.each(extra, func(loc *Elem) {
		if auxTag(loc.aux) == tagPCell && loc.ptr != nil {
			mark(loc.ptr)
		}
	})
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if auxTag(c.head.aux) == tagPCell && c.head.ptr != nil {
			mark(c.head.ptr)
		}
		if auxTag(c.tail.aux) == tagPCell && c.tail.ptr != nil {
			mark(c.tail.ptr)
		}
	}
	var free *freeCell
	nfree := 0
	for i := a.ncells - 1; i >= 0; i-- {
		if !live[i] {
			f := (*freeCell)(unsafe.Pointer(a.cellAt(i)))
			f.salt = uintptr(a.rnd.Uint64())
			f.setNext(free)
			free = f
			nfree++
		}
	}
	a.free = free
	a.gcCount++
	traceGC(a.id, a.gcCount, nfree-freeBefore)
}

func (a *SimpleAllocator) countFree() int {
	n := 0
	for f := a.free; f != nil; f = f.nextFree() {
		n++
	}
	return n
}

func (a *SimpleAllocator) GC() { a.gc(nil) }
func (a *SimpleAllocator) GCCount() int { return a.gcCount }
func (a *SimpleAllocator) NumAllocated() int { return a.ncells - a.countFree() }
func (a *SimpleAllocator) NumCells() int { return a.ncells }
func (a *SimpleAllocator) AddRoot(loc *Elem) { a.roots.add(loc) }
func (a *SimpleAllocator) DelRoot(loc *Elem) { a.roots.del(loc) }
func (a *SimpleAllocator) ID() uuid.UUID { return a.id }
