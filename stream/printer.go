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
	"io"
	"strconv"
	"strings"

	"github.com/launix-de/kcon/cell"
)

// Printer renders cells in the bracket notation. Flat mode elides the
// brackets of right-nested tails; deep mode gives every pair its own pair of
// brackets. The walk is iterative: a structure of depth d costs O(d) entries
// on an explicit tail stack, never native stack.
type Printer struct {
	w    io.Writer
	deep bool
	err  error
}

func NewPrinter(w io.Writer, deep bool) *Printer {
	return &Printer{w: w, deep: deep}
}

// Print writes one element. Allocates no cells, so the value needs no root
// for the duration of the call.
func (p *Printer) Print(e cell.Elem) error {
	if e.IsPCell() {
		p.writeRune('[')
		p.format(e)
		p.writeRune(']')
	} else {
		p.writeString(strconv.Itoa(int(e.Byte())))
	}
	return p.err
}

// ToString renders e into a string, honoring the mode.
func ToString(e cell.Elem, deep bool) string {
	var sb strings.Builder
	NewPrinter(&sb, deep).Print(e)
	return sb.String()
}

func (p *Printer) writeString(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *Printer) writeRune(c byte) {
	if p.err == nil {
		_, p.err = p.w.Write([]byte{c})
	}
}

// tailFrame records a pending tail and the brackets still open for it.
type tailFrame struct {
	elem cell.Elem
	ln   int
}

func (p *Printer) format(e cell.Elem) {
	var stack []tailFrame
	t := tailFrame{e, 0}
	for {
		if t.elem.IsByte() || t.elem.IsNull() {
			if t.elem.IsNull() {
				p.writeString("<null>")
			} else {
				p.writeString(strconv.Itoa(int(t.elem.Byte())))
			}
			if p.deep {
				for l := t.ln; l != 0; l-- {
					p.writeRune(']')
				}
			}
			if len(stack) == 0 {
				return
			}
			p.writeString("] ")
			t = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if p.deep && t.elem.IsPCell() {
				p.writeRune('[')
			}
		} else {
			c := t.elem.PCell()
			h, tl := c.Head(), c.Tail()
			switch {
			case h.IsPCell() && tl.IsPCell():
				stack = append(stack, tailFrame{tl, t.ln + 1})
				p.writeRune('[')
				t = tailFrame{h, 0}
			case h.IsPCell():
				stack = append(stack, tailFrame{tl, t.ln})
				p.writeRune('[')
				t = tailFrame{h, 0}
			case tl.IsPCell():
				p.writeString(strconv.Itoa(int(h.Byte())))
				p.writeRune(' ')
				t = tailFrame{tl, t.ln + 1}
				if p.deep {
					p.writeRune('[')
				}
			default:
				p.writeString(strconv.Itoa(int(h.Byte())))
				p.writeRune(' ')
				t = tailFrame{tl, t.ln}
			}
		}
	}
}
