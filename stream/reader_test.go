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
	"strings"
	"testing"

	"github.com/launix-de/kcon/cell"
	"github.com/stretchr/testify/require"
)

// equalElem compares structurally with an explicit stack; byte atoms by
// value, cells by shape.
func equalElem(a, b cell.Elem) bool {
	type pair struct{ a, b cell.Elem }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.IsByte() != p.b.IsByte() {
			return false
		}
		if p.a.IsByte() {
			if p.a.Byte() != p.b.Byte() {
				return false
			}
			continue
		}
		if p.a.IsNull() || p.b.IsNull() {
			if p.a.IsNull() != p.b.IsNull() {
				return false
			}
			continue
		}
		ca, cb := p.a.PCell(), p.b.PCell()
		stack = append(stack, pair{ca.Head(), cb.Head()}, pair{ca.Tail(), cb.Tail()})
	}
	return true
}

func TestParseByteLiteral(t *testing.T) {
	a := cell.NewSimpleAllocator(16)
	e, err := ParseString(a, " 42 ")
	require.NoError(t, err)
	require.True(t, e.IsByte())
	require.Equal(t, byte(42), e.Byte())

	_, err = ParseString(a, "256")
	require.EqualError(t, err, "Malformed byte")
	_, err = ParseString(a, "999999999999999999999")
	require.EqualError(t, err, "Malformed byte")
}

func TestParseList(t *testing.T) {
	a := cell.NewSimpleAllocator(64)
	e, err := ParseString(a, "[1 2]")
	require.NoError(t, err)
	c := e.PCell()
	require.Equal(t, byte(1), c.Head().Byte())
	require.Equal(t, byte(2), c.Tail().Byte())

	// a longer list is a right-dotted chain
	e, err = ParseString(a, "[1 2 3]")
	require.NoError(t, err)
	c = e.PCell()
	require.Equal(t, byte(1), c.Head().Byte())
	require.Equal(t, byte(2), c.Tail().PCell().Head().Byte())
	require.Equal(t, byte(3), c.Tail().PCell().Tail().Byte())
}

func TestParseErrors(t *testing.T) {
	a := cell.NewSimpleAllocator(64)
	cases := []struct {
		in  string
		msg string
		eos bool
	}{
		{"[]", "Unexpected empty cell", false},
		{"[5]", "Unexpected singleton", false},
		{"[1 2 ", "Unexpected end of input", true},
		{"[1 [2 3]", "Unexpected end of input", true},
		{"[", "Unexpected end of input", true},
		{"", "Unexpected end of input", false},
		{"[1 x]", "Unexpected 'x'", false},
		{"x", "Unexpected 'x'", false},
		{"[300 1]", "Malformed byte", false},
		{"[1 2] 3", "unexpected character after expression '3'", false},
	}
	for _, tc := range cases {
		_, err := ParseString(a, tc.in)
		require.EqualError(t, err, tc.msg, "input %q", tc.in)
		require.Equal(t, tc.eos, IsEOS(err), "input %q", tc.in)
	}
}

func TestNestedTrailingListMergesIntoTail(t *testing.T) {
	// [0 [1 2]] and [0 1 2] denote the same chain
	a := cell.NewSimpleAllocator(64)
	e1, err := ParseString(a, "[0 [1 2]]")
	require.NoError(t, err)
	r1 := cell.NewRoot(a, e1)
	defer r1.Release()
	e2, err := ParseString(a, "[0 1 2]")
	require.NoError(t, err)
	require.True(t, equalElem(r1.E, e2))
}

func TestWhitespaceCollapses(t *testing.T) {
	a := cell.NewSimpleAllocator(64)
	e, err := ParseString(a, " [ 0\t[3   3]\n2 ] ")
	require.NoError(t, err)
	require.Equal(t, "[0 [3 3] 2]", ToString(e, false))
}

func TestRoundTrip(t *testing.T) {
	canonical := []string{
		"[1 2]",
		"[0 [3 3] 2]",
		"[1 2 3 4 5]",
		"[[1 2] 3]",
		"[[1 2] [3 4] 5]",
		"[10 [20 [30 40] 50] 60]",
		"[[255 0] 255]",
		"42",
	}
	a := cell.NewSimpleAllocator(1024)
	for _, s := range canonical {
		e, err := ParseString(a, s)
		require.NoError(t, err, "input %q", s)
		r := cell.NewRoot(a, e)
		require.Equal(t, s, ToString(r.E, false), "flat round trip of %q", s)

		// reparsing either printed form yields the same structure
		flat, err := ParseString(a, ToString(r.E, false))
		require.NoError(t, err)
		rf := cell.NewRoot(a, flat)
		deep, err := ParseString(a, ToString(r.E, true))
		require.NoError(t, err)
		require.True(t, equalElem(r.E, rf.E), "flat reparse of %q", s)
		require.True(t, equalElem(r.E, deep), "deep reparse of %q", s)
		rf.Release()
		r.Release()
	}
}

func TestReaderUnderShiftingAllocator(t *testing.T) {
	a := cell.NewTestAllocator(128)
	e, err := ParseString(a, "[0 [3 3] 2]")
	require.NoError(t, err)
	require.Equal(t, "[0 [3 3] 2]", ToString(e, false))
}

func TestReaderSurvivesCollectionsMidParse(t *testing.T) {
	// a heap too small for the accumulated garbage of repeated parses: the
	// reader's pinned stacks must keep each partial result alive
	for _, kind := range []string{"simple", "test"} {
		a := cell.NewAllocator(kind, 24)
		for i := 0; i < 10; i++ {
			e, err := ParseString(a, "[1 2 3 4 5]")
			require.NoError(t, err, "%s allocator, iteration %d", kind, i)
			require.Equal(t, "[1 2 3 4 5]", ToString(e, false))
		}
		require.GreaterOrEqual(t, a.GCCount(), 1, "%s allocator must have collected", kind)
	}
}

func TestDeepChainsWithoutNativeRecursion(t *testing.T) {
	if testing.Short() {
		t.Skip("deep-chain stress skipped in short mode")
	}
	const depth = 100000
	a := cell.NewSimpleAllocator(1 << 20)

	// right-nested: [1 [1 [ ... [1 2] ... ]]]
	in := strings.Repeat("[1 ", depth) + "2" + strings.Repeat("]", depth)
	e, err := ParseString(a, in)
	require.NoError(t, err)
	r := cell.NewRoot(a, e)
	flat := ToString(r.E, false)
	require.Equal(t, "["+strings.Repeat("1 ", depth)+"2]", flat)
	require.Equal(t, flat, ToString(r.E, false)) // deterministic
	deep := ToString(r.E, true)
	require.True(t, strings.HasPrefix(deep, "[1 [1 "))
	r.Release()

	// left-nested: [[ ... [1 2] 3] ... 3]
	a2 := cell.NewSimpleAllocator(1 << 20)
	in = strings.Repeat("[", depth) + "1 2" + strings.Repeat(" 3]", depth)
	e, err = ParseString(a2, in)
	require.NoError(t, err)
	r2 := cell.NewRoot(a2, e)
	out := ToString(r2.E, false)
	require.True(t, strings.HasPrefix(out, strings.Repeat("[", depth)+"1 2"))
	r2.Release()
}
