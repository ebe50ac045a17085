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

type SettingsT struct {
	NCells    int    // heap capacity in cells
	Allocator string // "simple" or "test"
	Deep      bool   // print every pair with its own brackets
	Trace     bool   // one line per collection
}

var Settings SettingsT = SettingsT{65536, "simple", false, false}

// NewAllocator builds the allocator selected by kind.
func NewAllocator(kind string, ncells int) Allocator {
	switch kind {
	case "test":
		return NewTestAllocator(ncells)
	case "simple":
		return NewSimpleAllocator(ncells)
	default:
		panic("unknown allocator kind '" + kind + "'")
	}
}
