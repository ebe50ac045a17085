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

import "errors"

// SyntaxError reports malformed input. EOS marks input that ran out in the
// middle of an expression; an interactive caller reacts by asking for more
// input instead of reporting a hard error.
type SyntaxError struct {
	Msg string
	EOS bool
}

func (e *SyntaxError) Error() string { return e.Msg }

func syntaxError(msg string) error {
	return &SyntaxError{Msg: msg}
}

func eosError() error {
	return &SyntaxError{Msg: "Unexpected end of input", EOS: true}
}

// IsEOS reports whether err is a syntax error caused by exhausted input.
func IsEOS(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.EOS
}
