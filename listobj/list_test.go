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
	"errors"
	"math"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/launix-de/listjit/jit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := NewRuntime(Options{HeapLimit: 64 << 20})
	t.Cleanup(func() {
		assert.Equal(t, 0, rt.Stats().LiveCount, "leaked payloads")
	})
	return rt
}

// ints builds an int64 list that is released when the test ends
func ints(t *testing.T, rt *Runtime, values ...int64) List {
	t.Helper()
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	l, err := rt.FromValues(Int64, args...)
	require.NoError(t, err)
	t.Cleanup(func() { l.Release() })
	return l
}

// owned wraps a (List, error) call: owned(t)(l.Copy())
func owned(t *testing.T) func(List, error) List {
	return func(l List, err error) List {
		t.Helper()
		require.NoError(t, err)
		t.Cleanup(func() { l.Release() })
		return l
	}
}

func contents(t *testing.T, l List) []int64 {
	t.Helper()
	items, err := l.ToSlice()
	require.NoError(t, err)
	result := make([]int64, len(items))
	for i, v := range items {
		result[i] = v.(int64)
	}
	return result
}

func slice(t *testing.T, start, stop Bound, step int64) Slice {
	t.Helper()
	s, err := NewSlice(start, stop, step)
	require.NoError(t, err)
	return s
}

func TestEveryOperationCompiles(t *testing.T) {
	for _, def := range jit.Declarations() {
		if !strings.HasPrefix(def.Name, "list.") {
			continue
		}
		for _, typ := range []ItemType{Int64, Int32, Uint8, Float64, Bool} {
			_, err := jit.Specialize(def.Name, typ)
			require.NoError(t, err, "%s[%s]", def.Name, typ.Name())
		}
	}
}

func TestScenarios(t *testing.T) {
	rt := newRuntime(t)

	t.Run("del lst[1:4]", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3, 4, 5)
		require.NoError(t, l.DelSlice(slice(t, At(1), At(4), 1)))
		assert.Equal(t, []int64{1, 5}, contents(t, l))
	})
	t.Run("lst[-2:]", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3, 4, 5)
		s := owned(t)(l.GetSlice(slice(t, At(-2), None, 1)))
		assert.Equal(t, []int64{4, 5}, contents(t, s))
	})
	t.Run("lst[::-1]", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		s := owned(t)(l.GetSlice(slice(t, None, None, -1)))
		assert.Equal(t, []int64{3, 2, 1}, contents(t, s))
	})
	t.Run("lst[1:1] = [9,9]", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		require.NoError(t, l.SetSlice(slice(t, At(1), At(1), 1), ints(t, rt, 9, 9)))
		assert.Equal(t, []int64{1, 9, 9, 2, 3}, contents(t, l))
	})
	t.Run("pop(1)", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		v, err := l.PopAt(1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
		assert.Equal(t, []int64{1, 3}, contents(t, l))
	})
	t.Run("sorted reverse", func(t *testing.T) {
		src := ints(t, rt, 3, 1, 2)
		s := owned(t)(rt.Sorted(Int64, src.Values(), true))
		assert.Equal(t, []int64{3, 2, 1}, contents(t, s))
	})
}

func TestSliceTable(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 0, 1, 2, 3, 4)
	cases := []struct {
		start, stop Bound
		step        int64
		want        []int64
	}{
		{At(1), At(4), 1, []int64{1, 2, 3}},
		{None, None, 2, []int64{0, 2, 4}},
		{At(4), At(1), -1, []int64{4, 3, 2}},
		{At(-1), At(-6), -1, []int64{4, 3, 2, 1, 0}},
		{At(10), At(20), 1, []int64{}},
		{At(-10), At(2), 1, []int64{0, 1}},
		{At(3), At(1), 1, []int64{}},
		{At(1), At(10), -1, []int64{}},
		{None, None, -2, []int64{4, 2, 0}},
		{At(-100), At(100), 3, []int64{0, 3}},
		{At(5), None, -1, []int64{4, 3, 2, 1, 0}},
		{None, At(-100), -1, []int64{4, 3, 2, 1, 0}},
	}
	for _, c := range cases {
		s := slice(t, c.start, c.stop, c.step)
		t.Run(s.String(), func(t *testing.T) {
			got := owned(t)(l.GetSlice(s))
			assert.Equal(t, c.want, contents(t, got))
		})
	}
}

// every slice must produce exactly the indices the normalized bounds walk
func TestSliceLengthProperty(t *testing.T) {
	rt := newRuntime(t)
	bounds := []Bound{None}
	for i := int64(-7); i <= 7; i++ {
		bounds = append(bounds, At(i))
	}
	for _, n := range []int64{0, 1, 3, 5} {
		values := make([]int64, n)
		for i := range values {
			values[i] = int64(i) * 10
		}
		l := ints(t, rt, values...)
		for _, step := range []int64{-3, -2, -1, 1, 2, 3} {
			for _, start := range bounds {
				for _, stop := range bounds {
					s := slice(t, start, stop, step)
					fixed := FixSlice(s, n)
					var want []int64
					for i := fixed.Start; (step > 0 && i < fixed.Stop) || (step < 0 && i > fixed.Stop); i += step {
						want = append(want, values[i])
					}
					require.Equal(t, int64(len(want)), SliceLength(fixed), "n=%d %s", n, s)

					got, err := l.GetSlice(s)
					require.NoError(t, err)
					items := contents(t, got)
					require.NoError(t, got.Release())
					if want == nil {
						want = []int64{}
					}
					require.Equal(t, want, items, "n=%d %s", n, s)
				}
			}
		}
	}
}

func TestZeroStep(t *testing.T) {
	rt := newRuntime(t)
	_, err := NewSlice(None, None, 0)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))

	l := ints(t, rt, 1, 2, 3)
	_, err = l.GetSlice(Slice{0, 3, 0})
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
	assert.Equal(t, []int64{1, 2, 3}, contents(t, l))
}

func TestSetSlice(t *testing.T) {
	rt := newRuntime(t)

	t.Run("shrink", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3, 4, 5)
		require.NoError(t, l.SetSlice(slice(t, At(1), At(4), 1), ints(t, rt, 0)))
		assert.Equal(t, []int64{1, 0, 5}, contents(t, l))
	})
	t.Run("grow in the middle", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3, 4)
		require.NoError(t, l.SetSlice(slice(t, At(1), At(2), 1), ints(t, rt, 7, 8, 9)))
		assert.Equal(t, []int64{1, 7, 8, 9, 3, 4}, contents(t, l))
	})
	t.Run("reversed stop", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		require.NoError(t, l.SetSlice(slice(t, At(2), At(0), 1), ints(t, rt, 5)))
		assert.Equal(t, []int64{1, 2, 5, 3}, contents(t, l))
	})
	t.Run("extended", func(t *testing.T) {
		l := ints(t, rt, 0, 1, 2, 3, 4)
		require.NoError(t, l.SetSlice(slice(t, None, None, 2), ints(t, rt, 7, 8, 9)))
		assert.Equal(t, []int64{7, 1, 8, 3, 9}, contents(t, l))
	})
	t.Run("negative step", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		require.NoError(t, l.SetSlice(slice(t, None, None, -1), ints(t, rt, 4, 5, 6)))
		assert.Equal(t, []int64{6, 5, 4}, contents(t, l))
	})
	t.Run("extended size mismatch", func(t *testing.T) {
		l := ints(t, rt, 0, 1, 2, 3, 4)
		err := l.SetSlice(slice(t, None, None, 2), ints(t, rt, 1, 2))
		assert.True(t, errors.Is(err, ErrSizeMismatch))
		assert.Equal(t, []int64{0, 1, 2, 3, 4}, contents(t, l))
	})
	t.Run("self assignment", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		require.NoError(t, l.SetSlice(slice(t, At(1), At(1), 1), l))
		assert.Equal(t, []int64{1, 1, 2, 3, 2, 3}, contents(t, l))
	})
	t.Run("other item type", func(t *testing.T) {
		l := ints(t, rt, 1, 2, 3)
		f := owned(t)(rt.FromValues(Float64, 7.0, 8.0))
		require.NoError(t, l.SetSlice(slice(t, At(0), At(1), 1), f))
		assert.Equal(t, []int64{7, 8, 2, 3}, contents(t, l))
	})
}

// lst[::k] = lst[::k] leaves lst unchanged for every step
func TestSliceRoundTrip(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 5, 4, 3, 2, 1, 0)
	for _, step := range []int64{-3, -2, -1, 1, 2, 3} {
		s := slice(t, None, None, step)
		part, err := l.GetSlice(s)
		require.NoError(t, err)
		require.NoError(t, l.SetSlice(s, part))
		require.NoError(t, part.Release())
		assert.Equal(t, []int64{5, 4, 3, 2, 1, 0}, contents(t, l), "step %d", step)
	}
	c := owned(t)(l.Copy())
	eq, err := c.Equal(l)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.False(t, c.Is(l))
}

func TestDelSlice(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3, 4, 5)
	err := l.DelSlice(slice(t, None, None, 2))
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, contents(t, l))

	require.NoError(t, l.DelSlice(slice(t, At(3), At(1), 1)))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, contents(t, l))
	require.NoError(t, l.DelSlice(slice(t, At(-2), None, 1)))
	assert.Equal(t, []int64{1, 2, 3}, contents(t, l))
}

func TestGrowthPolicy(t *testing.T) {
	rt := newRuntime(t)
	l := owned(t)(rt.New(Int64, 0))
	before := rt.Stats().Reallocs
	const n = 2000
	for i := 0; i < n; i++ {
		require.NoError(t, l.Append(i))
		require.GreaterOrEqual(t, l.Capacity(), l.Len())
	}
	reallocs := rt.Stats().Reallocs - before
	assert.LessOrEqual(t, reallocs, int64(4*math.Log2(n)))
	assert.Equal(t, n, l.Len())
	v, err := l.Get(n - 1)
	require.NoError(t, err)
	assert.Equal(t, int64(n-1), v)
}

func TestShrinkPolicy(t *testing.T) {
	rt := newRuntime(t)
	values := make([]int64, 100)
	l := ints(t, rt, values...)
	require.Equal(t, 100, l.Capacity())

	require.NoError(t, l.Resize(30))
	assert.Equal(t, 100, l.Capacity(), "within hysteresis")
	require.NoError(t, l.Resize(10))
	assert.Equal(t, 10, l.Capacity())
	assert.Equal(t, 10, l.Len())
}

func TestResizeIdempotent(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3)
	before := rt.Stats().Reallocs
	require.NoError(t, l.Resize(l.Len()))
	assert.Equal(t, before, rt.Stats().Reallocs)
	assert.Equal(t, []int64{1, 2, 3}, contents(t, l))

	empty := owned(t)(rt.New(Int64, 100))
	require.NoError(t, empty.Resize(0))
	assert.Equal(t, before, rt.Stats().Reallocs)
}

func TestOutOfMemoryKeepsList(t *testing.T) {
	rt := NewRuntime(Options{HeapLimit: 1024})
	values := make([]any, 100)
	for i := range values {
		values[i] = int64(i)
	}
	l, err := rt.FromValues(Int64, values...)
	require.NoError(t, err)

	err = l.Append(100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Equal(t, 100, l.Len())
	v, err := l.Get(99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), v)

	_, err = l.Mul(math.MaxInt64 / 2)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	_, err = rt.New(Int64, math.MaxInt64/4)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	_, err = l.Copy()
	assert.True(t, errors.Is(err, ErrOutOfMemory))

	require.NoError(t, l.Release())
	assert.Equal(t, 0, rt.Stats().LiveCount)
	assert.Equal(t, int64(0), rt.Stats().LiveBytes)
}

func TestSelfAssignmentOutOfMemoryReleasesCopy(t *testing.T) {
	rt := NewRuntime(Options{HeapLimit: 600})
	l, err := rt.FromValues(Int64, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
	require.NoError(t, err)
	err = l.SetSlice(slice(t, None, None, 1), l)
	require.NoError(t, err)
	err = l.SetSlice(slice(t, At(0), At(0), 1), l)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Equal(t, 1, rt.Stats().LiveCount)
	assert.Equal(t, 20, l.Len())
	require.NoError(t, l.Release())
}

func TestIndexingErrors(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3)

	v, err := l.Get(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = l.Get(3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = l.Get(-4)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.True(t, errors.Is(l.Set(5, 1), ErrIndexOutOfRange))
	assert.True(t, errors.Is(l.DelItem(-5), ErrIndexOutOfRange))

	require.NoError(t, l.Set(-3, 7))
	require.NoError(t, l.DelItem(1))
	assert.Equal(t, []int64{7, 3}, contents(t, l))
}

func TestPop(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2)
	_, err := l.PopAt(5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	v, err := l.PopAt(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	v, err = l.Pop()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = l.Pop()
	assert.True(t, errors.Is(err, ErrEmptyContainer))
	_, err = l.PopAt(0)
	assert.True(t, errors.Is(err, ErrEmptyContainer))
}

func TestInsertClamps(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3)
	require.NoError(t, l.Insert(100, 9))
	require.NoError(t, l.Insert(-100, 0))
	require.NoError(t, l.Insert(-1, 8))
	require.NoError(t, l.Insert(2, 5))
	assert.Equal(t, []int64{0, 1, 5, 2, 3, 8, 9}, contents(t, l))
}

func TestSearch(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3, 2)

	cases := []struct {
		bounds []int
		want   int
	}{
		{nil, 1},
		{[]int{2}, 3},
		{[]int{-1}, 3},
		{[]int{-100}, 1},
		{[]int{0, -1}, 1},
	}
	for _, c := range cases {
		i, err := l.Index(2, c.bounds...)
		require.NoError(t, err, "%v", c.bounds)
		assert.Equal(t, c.want, i, "%v", c.bounds)
	}
	_, err := l.Index(2, 2, 3)
	assert.True(t, errors.Is(err, ErrValueNotFound))
	_, err = l.Index(2, 0, -3)
	assert.True(t, errors.Is(err, ErrValueNotFound))
	_, err = l.Index(2, 0, 4, 1)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
	_, err = l.Index("x", 0, 4, 1)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation), "bound count is checked first")

	n, err := l.Count(2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	ok, err := l.Contains(3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.Contains(7)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = l.Contains("x")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, errors.Is(l.Remove(7), ErrValueNotFound))
	assert.Equal(t, []int64{1, 2, 3, 2}, contents(t, l))
	require.NoError(t, l.Remove(2))
	assert.Equal(t, []int64{1, 3, 2}, contents(t, l))
}

func TestConcatAndRepeat(t *testing.T) {
	rt := newRuntime(t)
	a := ints(t, rt, 1, 2)
	b := ints(t, rt, 3, 4, 5)

	sum := owned(t)(a.Concat(b))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, contents(t, sum))
	head := owned(t)(sum.GetSlice(slice(t, At(0), At(2), 1)))
	tail := owned(t)(sum.GetSlice(slice(t, At(2), None, 1)))
	eq, err := head.Equal(a)
	require.NoError(t, err)
	assert.True(t, eq)
	eq, err = tail.Equal(b)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, []int64{1, 2}, contents(t, a), "operands unchanged")

	rep := owned(t)(a.Mul(3))
	assert.Equal(t, []int64{1, 2, 1, 2, 1, 2}, contents(t, rep))
	none := owned(t)(a.Mul(-2))
	assert.Equal(t, []int64{}, contents(t, none))

	require.NoError(t, b.IMul(2))
	assert.Equal(t, []int64{3, 4, 5, 3, 4, 5}, contents(t, b))
	require.NoError(t, b.IMul(0))
	assert.Equal(t, 0, b.Len())

	require.NoError(t, a.IAdd(a))
	assert.Equal(t, []int64{1, 2, 1, 2}, contents(t, a))
}

func TestExtend(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1)
	require.NoError(t, l.Extend(ints(t, rt, 2, 3)))
	require.NoError(t, l.Extend(owned(t)(rt.FromValues(Float64, 4.0))))
	require.NoError(t, l.ExtendSeq(slices.Values([]any{5, int64(6)})))
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, contents(t, l))

	err := l.Extend(owned(t)(rt.FromValues(Float64, 1.5)))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestCompare(t *testing.T) {
	rt := newRuntime(t)
	lists := [][]int64{{}, {1}, {1, 2}, {1, 3}, {2}, {1, 2, 0}, {0, 9, 9}}
	for _, x := range lists {
		for _, y := range lists {
			a, b := ints(t, rt, x...), ints(t, rt, y...)
			lt, err := a.Less(b)
			require.NoError(t, err)
			gt, err := a.Greater(b)
			require.NoError(t, err)
			le, err := a.LessEqual(b)
			require.NoError(t, err)
			eq, err := a.Equal(b)
			require.NoError(t, err)

			assert.False(t, lt && gt, "%v %v", x, y)
			if eq {
				assert.False(t, lt || gt, "%v %v", x, y)
			}
			assert.Equal(t, slices.Compare(x, y) < 0, lt, "%v < %v", x, y)
			assert.Equal(t, slices.Compare(x, y) <= 0, le, "%v <= %v", x, y)
			assert.Equal(t, slices.Equal(x, y), eq, "%v == %v", x, y)
		}
	}
}

func TestCrossType(t *testing.T) {
	rt := newRuntime(t)
	i := ints(t, rt, 1, 2)
	f := owned(t)(rt.FromValues(Float64, 1.0, 2.0))

	eq, err := i.Equal(f)
	require.NoError(t, err)
	assert.False(t, eq)
	ne, err := i.NotEqual(f)
	require.NoError(t, err)
	assert.True(t, ne)
	_, err = i.Less(f)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = i.Concat(f)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.True(t, errors.Is(i.IAdd(f), ErrTypeMismatch))
	assert.True(t, errors.Is(i.Append(1.5), ErrTypeMismatch))
	assert.True(t, errors.Is(i.Append("x"), ErrTypeMismatch))
}

func TestIs(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1)
	other := ints(t, rt, 1)
	alias, err := l.Ref()
	require.NoError(t, err)
	defer alias.Release()
	assert.True(t, l.Is(l))
	assert.True(t, l.Is(alias))
	assert.False(t, l.Is(other))
	assert.Equal(t, int64(2), l.Refcount())
}

func TestReverseAndSort(t *testing.T) {
	rt := newRuntime(t)
	odd := ints(t, rt, 1, 2, 3)
	even := ints(t, rt, 1, 2, 3, 4)
	require.NoError(t, odd.Reverse())
	require.NoError(t, even.Reverse())
	assert.Equal(t, []int64{3, 2, 1}, contents(t, odd))
	assert.Equal(t, []int64{4, 3, 2, 1}, contents(t, even))

	l := ints(t, rt, 5, -1, 3, 3, 0, 9)
	require.NoError(t, l.Sort(false))
	assert.Equal(t, []int64{-1, 0, 3, 3, 5, 9}, contents(t, l))
	require.NoError(t, l.Sort(true))
	assert.Equal(t, []int64{9, 5, 3, 3, 0, -1}, contents(t, l))

	f := owned(t)(rt.FromValues(Float64, 2.5, -1.0, 0.5))
	require.NoError(t, f.Sort(false))
	items, err := f.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []any{-1.0, 0.5, 2.5}, items)

	old := DefaultSorter
	DefaultSorter = sort.Sort
	defer func() { DefaultSorter = old }()
	small := owned(t)(rt.FromValues(Int32, 3, 1, 2))
	require.NoError(t, small.Sort(false))
	items, err = small.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2), int32(3)}, items)
}

func TestMiscMethods(t *testing.T) {
	rt := newRuntime(t)
	l := ints(t, rt, 1, 2, 3)
	assert.True(t, l.Bool())
	assert.Equal(t, "[1, 2, 3]", l.String())

	c := owned(t)(l.Copy())
	require.NoError(t, c.Set(0, 9))
	assert.Equal(t, []int64{1, 2, 3}, contents(t, l))

	require.NoError(t, l.Clear())
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Bool())
	assert.Equal(t, "[]", l.String())

	f := owned(t)(rt.FromValues(Float64, 1.0, 2.5))
	assert.Equal(t, "[1.0, 2.5]", f.String())
	b := owned(t)(rt.FromValues(Bool, true, false))
	assert.Equal(t, "[True, False]", b.String())

	_, err := rt.FromValues(Uint8, 256)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = rt.FromValues(Int32, int64(math.MaxInt32)+1)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	u := owned(t)(rt.FromValues(Uint8, 255, 0))
	items, err := u.ToSlice()
	require.NoError(t, err)
	assert.Equal(t, []any{uint8(255), uint8(0)}, items)
}

type refcountedType struct{ ItemType }

func (refcountedType) Refcounted() bool { return true }

func TestRefcountedItemsRejected(t *testing.T) {
	rt := newRuntime(t)
	_, err := rt.New(refcountedType{Int64}, 0)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
	_, err = ItemTypeByName("list")
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
	typ, err := ItemTypeByName("float")
	require.NoError(t, err)
	assert.Equal(t, Float64, typ)
}
