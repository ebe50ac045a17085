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
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/launix-de/kcon/cell"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestOpenInputTransparentDecompression(t *testing.T) {
	dir := t.TempDir()
	content := "[1 2]\n[3 [4 5] 6]\n"

	plain := filepath.Join(dir, "exprs.kcon")
	require.NoError(t, os.WriteFile(plain, []byte(content), 0644))

	gzPath := filepath.Join(dir, "exprs.kcon.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	xzPath := filepath.Join(dir, "exprs.kcon.xz")
	f, err = os.Create(xzPath)
	require.NoError(t, err)
	xw, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = xw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{plain, gzPath, xzPath} {
		in, err := openInput(path)
		require.NoError(t, err, path)
		got, err := io.ReadAll(in)
		require.NoError(t, err, path)
		require.Equal(t, content, string(got), path)
		require.NoError(t, in.Close())
	}
}

func TestReadAllExpressionsFromStream(t *testing.T) {
	a := cell.NewSimpleAllocator(256)
	r := NewReader(a, strings.NewReader("[1 2]  [3 [4 5] 6]\n42"))
	var got []string
	for !r.AtEOF() {
		e, err := r.Parse()
		require.NoError(t, err)
		got = append(got, ToString(e, false))
	}
	require.Equal(t, []string{"[1 2]", "[3 [4 5] 6]", "42"}, got)
}
