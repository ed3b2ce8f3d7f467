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
	"fmt"
	"math"

	"github.com/launix-de/listjit/jit"
)

// Slice is a (start, stop, step) triple. Before normalization start and
// stop may hold the "no bound" sentinels produced by NewSlice.
type Slice struct {
	Start, Stop, Step int64
}

// Bound is an optional slice bound.
type Bound struct {
	v   int64
	set bool
}

// None is the omitted bound, as in lst[:3].
var None = Bound{}

func At(i int64) Bound {
	return Bound{v: i, set: true}
}

func (b Bound) Get() (int64, bool) { return b.v, b.set }

// NewSlice builds lst[start:stop:step]. A zero step is rejected here,
// before anything is normalized.
func NewSlice(start, stop Bound, step int64) (Slice, error) {
	if step == 0 {
		return Slice{}, fmt.Errorf("slice step cannot be zero: %w", ErrUnsupportedOperation)
	}
	s := Slice{Step: step}
	if step > 0 {
		s.Start, s.Stop = 0, math.MaxInt64
	} else {
		s.Start, s.Stop = math.MaxInt64, math.MinInt64
	}
	if start.set {
		s.Start = start.v
	}
	if stop.set {
		s.Stop = stop.v
	}
	return s, nil
}

// Full is lst[:].
var Full = Slice{0, math.MaxInt64, 1}

func (s Slice) String() string {
	return fmt.Sprintf("[%d:%d:%d]", s.Start, s.Stop, s.Step)
}

// FixIndex wraps a negative index once; the result is not clamped.
func FixIndex(idx, size int64) int64 {
	if idx < 0 {
		return idx + size
	}
	return idx
}

// FixSlice normalizes start and stop for a sequence of the given size.
func FixSlice(s Slice, size int64) Slice {
	lower, upper := int64(0), size
	if s.Step < 0 {
		lower, upper = -1, size-1
	}
	fix := func(bound int64) int64 {
		bound = FixIndex(bound, size)
		if bound < 0 {
			return lower
		}
		if bound >= size {
			return upper
		}
		return bound
	}
	return Slice{fix(s.Start), fix(s.Stop), s.Step}
}

// SliceLength counts the indices a normalized slice visits.
func SliceLength(s Slice) int64 {
	delta := s.Stop - s.Start
	if s.Step > 0 {
		if delta <= 0 {
			return 0
		}
		return (delta-1)/s.Step + 1
	}
	if delta >= 0 {
		return 0
	}
	return (delta+1)/s.Step + 1
}

// --- emitters ---

func emitFixIndex(b *jit.Builder, idx, size jit.Value) jit.Value {
	return b.Select(b.Lt(idx, b.Const(0)), b.Add(idx, size), idx)
}

func emitIsOutOfBounds(b *jit.Builder, idx, size jit.Value) jit.Value {
	return b.Or(b.Lt(idx, b.Const(0)), b.Ge(idx, size))
}

// emitClampIndex clamps into [0, size].
func emitClampIndex(b *jit.Builder, idx, size jit.Value) jit.Value {
	return b.Max(b.Const(0), b.Min(idx, size))
}

func emitGuardStep(b *jit.Builder, step jit.Value) {
	b.If(b.Eq(step, b.Const(0)), func() {
		b.Raise(jit.KindUnsupportedOperation, "slice step cannot be zero")
	})
}

// emitFixSlice returns the normalized start and stop in fresh registers.
func emitFixSlice(b *jit.Builder, start, stop, step, size jit.Value) (jit.Value, jit.Value) {
	s := b.Var(start)
	e := b.Var(stop)
	fixBound := func(bound, lower, upper jit.Value) {
		fixed := emitFixIndex(b, bound, size)
		b.Set(bound, fixed)
		b.If(b.Lt(fixed, b.Const(0)), func() { b.Set(bound, lower) })
		b.If(b.Ge(fixed, size), func() { b.Set(bound, upper) })
	}
	b.IfElse(b.Lt(step, b.Const(0)), func() {
		lower, upper := b.Const(-1), b.AddImm(size, -1)
		fixBound(s, lower, upper)
		fixBound(e, lower, upper)
	}, func() {
		lower := b.Const(0)
		fixBound(s, lower, size)
		fixBound(e, lower, size)
	})
	return s, e
}

func emitSliceLength(b *jit.Builder, start, stop, step jit.Value) jit.Value {
	one := b.Const(1)
	zero := b.Const(0)
	neg := b.Lt(step, zero)
	delta := b.Sub(stop, start)
	dividend := b.Select(neg, b.Add(delta, one), b.Sub(delta, one))
	nominal := b.Add(one, b.Div(dividend, step))
	empty := b.Select(neg, b.Ge(delta, zero), b.Le(delta, zero))
	return b.Select(empty, zero, nominal)
}
