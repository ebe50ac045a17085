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
	"testing"

	"github.com/launix-de/kcon/cell"
	"github.com/stretchr/testify/require"
)

func TestFlatAndDeepModes(t *testing.T) {
	a := cell.NewSimpleAllocator(64)
	e, err := ParseString(a, "[0 [3 3] 2]")
	require.NoError(t, err)
	require.Equal(t, "[0 [3 3] 2]", ToString(e, false))
	require.Equal(t, "[0 [[3 3] 2]]", ToString(e, true))
}

func TestPrintByteAtom(t *testing.T) {
	require.Equal(t, "7", ToString(cell.NewByte(7), false))
	require.Equal(t, "255", ToString(cell.NewByte(255), true))
}

func TestPrintNull(t *testing.T) {
	// null never comes out of the reader, but clients can hold it
	a := cell.NewSimpleAllocator(8)
	c, err := a.NewCell(cell.NewByte(1), cell.Null())
	require.NoError(t, err)
	require.Equal(t, "[1 <null>]", ToString(cell.NewPCell(c), false))
	require.Equal(t, "[1 [<null>]]", ToString(cell.NewPCell(c), true))
}

func TestPrinterDeterminism(t *testing.T) {
	a := cell.NewSimpleAllocator(256)
	e, err := ParseString(a, "[10 [20 [30 40] 50] 60]")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.Equal(t, "[10 [20 [30 40] 50] 60]", ToString(e, false))
		require.Equal(t, "[10 [[20 [[30 40] 50]] 60]]", ToString(e, true))
	}
}

func TestPrinterAllocatesNothing(t *testing.T) {
	a := cell.NewSimpleAllocator(64)
	e, err := ParseString(a, "[1 2 3]")
	require.NoError(t, err)
	before := a.NumAllocated()
	_ = ToString(e, false)
	_ = ToString(e, true)
	require.Equal(t, before, a.NumAllocated())
}
