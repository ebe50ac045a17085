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

import "github.com/google/uuid"

// TestAllocator relocates every live cell on every allocation, so any cell
// pointer held across NewCell without being rooted dangles immediately and is
// caught by the poison check or by the collector. Use it in tests to prove
// root registrations are complete; it is far too slow for anything else.
type TestAllocator struct {
	ncells    int
	gcCount   int
	roots     *rootSet
	allocated map[*Cell]struct{}
	id        uuid.UUID
}

func NewTestAllocator(ncells int) *TestAllocator {
	if ncells <= 0 {
		panic("allocator must hold at least one cell")
	}
	return &TestAllocator{
		ncells:    ncells,
		roots:     newRootSet(),
		allocated: make(map[*Cell]struct{}, ncells),
		id:        uuid.New(),
	}
}

func (a *TestAllocator) NewCell(head Elem, tail Elem, extra ...*Elem) (*Cell, error) {
	c := &Cell{head, tail}
	a.allocated[c] = struct{}{}
	e := NewPCell(c)
	a.roots.add(&e)
	a.shift(extra)
	if len(a.allocated) >= a.ncells {
		a.collect(extra)
	}
	a.roots.del(&e)
	if len(a.allocated) > a.ncells {
		p := e.PCell()
		p.poison()
		delete(a.allocated, p)
		return nil, ErrOutOfMemory
	}
	return e.PCell(), nil
}

// shift reallocates every cell and rewrites all registered roots, the extras
// and all intra-heap references to the new addresses. Vacated cells are
// poisoned so stale handles cannot be read silently.
func (a *TestAllocator) shift(extra []*Elem) {
	moved := make(map[*Cell]*Cell, len(a.allocated))
	for p := range a.allocated {
		moved[p] = &Cell{p.head, p.tail}
	}
	next := make(map[*Cell]struct{}, len(moved))
	for p, q := range moved {
		if auxTag(q.head.aux) == tagPCell && q.head.ptr != nil {
			if n, ok := moved[q.head.ptr]; ok {
				q.head.ptr = n
			}
		}
		if auxTag(q.tail.aux) == tagPCell && q.tail.ptr != nil {
			if n, ok := moved[q.tail.ptr]; ok {
				q.tail.ptr = n
			}
		}
		next[q] = struct{}{}
		p.poison()
	}
	a.roots.each(extra, func(loc *Elem) {
		if auxTag(loc.aux) == tagPCell && loc.ptr != nil {
			if n, ok := moved[loc.ptr]; ok {
				loc.ptr = n
			}
		}
	})
	a.allocated = next
}

func (a *TestAllocator) collect(extra []*Elem) {
	// mark-on-visit keeps the walk cycle-safe and the stack within ncells
	live := make(map[*Cell]struct{}, len(a.allocated))
	stack := make([]*Cell, 0, len(a.allocated))
	mark := func(c *Cell) {
		if _, ok := live[c]; ok {
			return
		}
		if _, ok := a.allocated[c]; !ok {
			panic("dangling cell reference reached the collector")
		}
		live[c] = struct{}{}
		stack = append(stack, c)
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
	freed := 0
	for p := range a.allocated {
		if _, ok := live[p]; !ok {
			p.poison()
			delete(a.allocated, p)
			freed++
		}
	}
	a.gcCount++
	traceGC(a.id, a.gcCount, freed)
}

func (a *TestAllocator) GC() { a.collect(nil) }
func (a *TestAllocator) GCCount() int { return a.gcCount }
func (a *TestAllocator) NumAllocated() int { return len(a.allocated) }
func (a *TestAllocator) NumCells() int { return a.ncells }
func (a *TestAllocator) AddRoot(loc *Elem) { a.roots.add(loc) }
func (a *TestAllocator) DelRoot(loc *Elem) { a.roots.del(loc) }
func (a *TestAllocator) ID() uuid.UUID { return a.id }
