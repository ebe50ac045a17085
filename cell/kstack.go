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

// Stack is a LIFO whose backing store is heap cells: items are consed onto a
// chain, so pinning Items() as a root (or passing it as an extra root) keeps
// every pending item alive across allocations. Under a shifting allocator the
// chain is rewritten in place like any other root.
type Stack struct {
	alloc Allocator
	items Elem // cons chain, null when empty
}

func NewStack(a Allocator) *Stack {
	return &Stack{a, Null()}
}

// Push conses e onto the chain. The extras are forwarded to the allocator on
// top of the stack's own storage and the pushed value itself.
func (s *Stack) Push(e Elem, extra ...*Elem) error {
	extra = append(extra, &s.items, &e)
	c, err := s.alloc.NewCell(e, s.items, extra...)
	if err != nil {
		return err
	}
	s.items = NewPCell(c)
	return nil
}

func (s *Stack) Top() Elem {
	if s.items.IsNull() {
		panic("top of empty stack")
	}
	return s.items.PCell().Head()
}

func (s *Stack) Pop() {
	if s.items.IsNull() {
		panic("pop of empty stack")
	}
	s.items = s.items.PCell().Tail()
}

func (s *Stack) Empty() bool { return s.items.IsNull() }

// Items exposes the storage location for root registration.
func (s *Stack) Items() *Elem { return &s.items }
