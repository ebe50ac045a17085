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
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrOutOfMemory is returned by NewCell when no free cell exists even after a
// collection. The allocator instance stays usable, but the caller got nothing.
var ErrOutOfMemory = errors.New("out of memory: no free cell after collection")

// Allocator owns a fixed pool of cells and the roots that keep them alive.
//
// NewCell may collect before returning; the caller-supplied extra locations
// are traced as additional roots during that collection and, under a shifting
// allocator, rewritten to the cells' new addresses. Any cell pointer held
// across the call that is reachable from neither the registered roots nor the
// extras must be considered invalid afterwards.
type Allocator interface {
	NewCell(head Elem, tail Elem, extra ...*Elem) (*Cell, error)
	GC()
	GCCount() int
	NumAllocated() int
	NumCells() int
	AddRoot(loc *Elem)
	DelRoot(loc *Elem)
	ID() uuid.UUID
}

// Root pins a stack-local value for its lifetime. Release must run on every
// exit path; callers defer it immediately after construction.
//
//	r := cell.NewRoot(a, e)
//	defer r.Release()
type Root struct {
	alloc Allocator
	E     Elem
}

func NewRoot(a Allocator, e Elem) *Root {
	r := &Root{a, e}
	a.AddRoot(&r.E)
	return r
}

func (r *Root) Release() {
	r.alloc.DelRoot(&r.E)
}

// Copy registers the new holder's own location, so both handles stay valid
// independently.
func (r *Root) Copy() *Root {
	return NewRoot(r.alloc, r.E)
}

func traceGC(id uuid.UUID, count int, freed int) {
	if Settings.Trace {
		fmt.Printf("allocator %s: gc #%d freed %d cells\n", id.String()[:8], count, freed)
	}
}
