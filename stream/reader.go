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
package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/launix-de/kcon/cell"
)

// Reader parses the bracket notation into cells. Parsing is iterative in two
// phases: parseElems builds each list reversed while matching brackets, then
// reverseAndReduce re-orients the result. Both phases keep their pending work
// on heap-backed stacks that are pinned at every allocation, so a collection
// in the middle of a parse never eats the partial result.
type Reader struct {
	alloc cell.Allocator
	in    *bufio.Reader
}

func NewReader(a cell.Allocator, r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{a, br}
}

// Parse consumes one expression: a byte literal or a bracketed list.
func (r *Reader) Parse() (cell.Elem, error) {
	c, err := r.readNonSpace()
	if err != nil {
		return cell.Null(), syntaxError("Unexpected end of input")
	}
	switch {
	case c == '[':
		rev, err := r.parseElems()
		if err != nil {
			return cell.Null(), err
		}
		return r.reverseAndReduce(rev)
	case isDigit(c):
		r.in.UnreadByte()
		b, err := r.parseByte()
		if err != nil {
			return cell.Null(), err
		}
		return cell.NewByte(b), nil
	default:
		return cell.Null(), syntaxError("Unexpected '" + string(c) + "'")
	}
}

// ParseString parses exactly one expression from s.
func ParseString(a cell.Allocator, s string) (cell.Elem, error) {
	r := NewReader(a, strings.NewReader(s))
	e, err := r.Parse()
	if err != nil {
		return cell.Null(), err
	}
	return e, r.End()
}

// AtEOF reports whether only whitespace remains.
func (r *Reader) AtEOF() bool {
	_, err := r.readNonSpace()
	if err != nil {
		return true
	}
	r.in.UnreadByte()
	return false
}

// End consumes trailing whitespace and fails on anything else.
func (r *Reader) End() error {
	c, err := r.readNonSpace()
	if err != nil {
		return nil
	}
	return syntaxError("unexpected character after expression '" + string(c) + "'")
}

func (r *Reader) readNonSpace() (byte, error) {
	for {
		c, err := r.in.ReadByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			return c, nil
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (r *Reader) parseByte() (byte, error) {
	v := 0
	seen := false
	bad := false
	for {
		c, err := r.in.ReadByte()
		if err != nil {
			break
		}
		if !isDigit(c) {
			r.in.UnreadByte()
			break
		}
		seen = true
		if !bad {
			v = v*10 + int(c-'0')
			if v > 255 {
				bad = true
			}
		}
	}
	if !seen || bad {
		return 0, syntaxError("Malformed byte")
	}
	return byte(v), nil
}

// parseElems matches brackets and conses every element onto the current tail,
// producing each list in reverse order. The opening '[' has already been
// consumed. tails holds the partial parent lists of the open brackets.
func (r *Reader) parseElems() (cell.Elem, error) {
	tail := cell.Null()
	tails := cell.NewStack(r.alloc)
	for {
		c, err := r.readNonSpace()
		if err != nil {
			return cell.Null(), eosError()
		}
		switch {
		case c == ']':
			if tail.IsNull() {
				return cell.Null(), syntaxError("Unexpected empty cell")
			}
			if isSingleton(tail) {
				return cell.Null(), syntaxError("Unexpected singleton")
			}
			if tails.Empty() {
				return tail, nil
			}
			elems := tail
			tail = tails.Top()
			tails.Pop()
			nc, err := r.alloc.NewCell(elems, tail, &elems, &tail, tails.Items())
			if err != nil {
				return cell.Null(), err
			}
			tail = cell.NewPCell(nc)
		case c == '[':
			if err := tails.Push(tail, &tail); err != nil {
				return cell.Null(), err
			}
			tail = cell.Null()
		case isDigit(c):
			r.in.UnreadByte()
			b, err := r.parseByte()
			if err != nil {
				return cell.Null(), err
			}
			nc, err := r.alloc.NewCell(cell.NewByte(b), tail, &tail, tails.Items())
			if err != nil {
				return cell.Null(), err
			}
			tail = cell.NewPCell(nc)
		default:
			return cell.Null(), syntaxError("Unexpected '" + string(c) + "'")
		}
	}
}

// isSingleton reports whether the reversed chain holds exactly one element.
func isSingleton(e cell.Elem) bool {
	return e.IsPCell() && !e.IsNull() && e.PCell().Tail().IsNull()
}

// reverseAndReduce walks a reversed list and builds the final dotted chain.
// Nested sublists are handled with two explicit stacks instead of native
// recursion: pcells remembers where to resume, tails the partial results.
// Cell pointers are re-read through the pinned locals after every allocation
// because a shifting allocator moves them.
func (r *Reader) reverseAndReduce(rev cell.Elem) (cell.Elem, error) {
	p := rev
	tail := cell.Null()
	tails := cell.NewStack(r.alloc)
	pcells := cell.NewStack(r.alloc)
	for !(p.IsNull() && pcells.Empty()) {
		if p.IsNull() {
			// finished a sublist; its reduction becomes the head of the parent
			if !tail.IsPCell() {
				panic("expected reduced sublist to be a cell")
			}
			head := tail
			p = pcells.Top()
			pcells.Pop()
			tail = tails.Top()
			tails.Pop()
			if tail.IsNull() {
				tail = head
			} else {
				nc, err := r.alloc.NewCell(head, tail, &head, &tail, &p, pcells.Items(), tails.Items())
				if err != nil {
					return cell.Null(), err
				}
				tail = cell.NewPCell(nc)
			}
		} else {
			if !p.PCell().Tail().IsPCell() {
				panic("expected cell tail in reverse and reduce")
			}
			if p.PCell().Head().IsPCell() {
				if err := pcells.Push(p.PCell().Tail(), &p, &tail, tails.Items()); err != nil {
					return cell.Null(), err
				}
				if err := tails.Push(tail, &p, &tail, pcells.Items()); err != nil {
					return cell.Null(), err
				}
				p = p.PCell().Head()
				tail = cell.Null()
			} else {
				head := p.PCell().Head()
				if tail.IsNull() {
					tail = head
				} else {
					nc, err := r.alloc.NewCell(head, tail, &tail, &p, pcells.Items(), tails.Items())
					if err != nil {
						return cell.Null(), err
					}
					tail = cell.NewPCell(nc)
				}
				p = p.PCell().Tail()
			}
		}
	}
	if !tails.Empty() {
		panic("cell and tail stack mismatch")
	}
	return tail, nil
}
