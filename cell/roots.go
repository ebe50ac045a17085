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
	"unsafe"

	"github.com/google/btree"
)

// rootSet tracks the Elem locations outside the heap that the collector must
// treat as live. Locations are ordered by address; registration and removal
// must come in balanced pairs.
type rootSet struct {
	tree *btree.BTreeG[*Elem]
}

func newRootSet() *rootSet {
	return &rootSet{btree.NewG[*Elem](8, func(a, b *Elem) bool {
		return uintptr(unsafe.Pointer(a)) < uintptr(unsafe.Pointer(b))
	})}
}

func (r *rootSet) add(loc *Elem) {
	if _, dup := r.tree.ReplaceOrInsert(loc); dup {
		panic("root location registered twice")
	}
}

func (r *rootSet) del(loc *Elem) {
	if _, ok := r.tree.Delete(loc); !ok {
		panic("deregistering unknown root location")
	}
}

// each visits every registered location plus the supplied extras. The current
// value at each location is what the collector traces.
func (r *rootSet) each(extra []*Elem, f func(loc *Elem)) {
	r.tree.Ascend(func(loc *Elem) bool {
		f(loc)
		return true
	})
	for _, loc := range extra {
		f(loc)
	}
}
