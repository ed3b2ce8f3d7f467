/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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
package listobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorSeesMutation(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3, 4)
	it, err := l.Iter()
	require.NoError(t, err)
	defer it.Release()

	v, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	require.NoError(t, l.Set(1, 42))
	v, ok, err = it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, int64(2), it.Index())

	require.NoError(t, l.DelSlice(slice(t, At(1), None, 1)))
	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	// exhaustion is permanent
	require.NoError(t, l.Append(9))
	require.NoError(t, l.Append(10))
	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIteratorKeepsPayloadAlive(t *testing.T) {
	rt := NewRuntime(Options{})
	l, err := rt.FromValues(Int64, 7, 8)
	require.NoError(t, err)
	it, err := l.Iter()
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.Refcount())

	require.NoError(t, l.Release())
	assert.Equal(t, 1, rt.Stats().LiveCount)

	var got []any
	for {
		v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []any{int64(7), int64(8)}, got)

	require.NoError(t, it.Release())
	require.NoError(t, it.Release())
	assert.Equal(t, 0, rt.Stats().LiveCount)
	_, ok, err := it.Next()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRangeOverFunc(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 5, 6, 7)
	var idx []int
	var sum int64
	for i, v := range l.All() {
		idx = append(idx, i)
		sum += v.(int64)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, idx)
	assert.Equal(t, int64(11), sum)
	assert.Equal(t, int64(1), l.Refcount(), "iterator released on break")

	c := owned(t)(rt.FromIterable(Int64, l.Values()))
	assert.Equal(t, []int64{5, 6, 7}, contents(t, c))
}
