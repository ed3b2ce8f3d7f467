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
	"iter"
	"math"
	"strings"

	"github.com/launix-de/listjit/nrt"
)

// List is one owning reference to a payload. Copying a List does not add a
// reference; use Ref for a second owner and Release for every owner.
type List struct {
	rt *Runtime
	t  ItemType
	h  nrt.Handle
}

func (l List) Handle() nrt.Handle { return l.h }
func (l List) ItemType() ItemType { return l.t }
func (l List) IsNil() bool        { return l.h == 0 }

// Ref adds an owner to the payload.
func (l List) Ref() (List, error) {
	return l, l.rt.heapOp(func(h *nrt.Heap) error { return h.Incref(l.h) })
}

// Release drops this owner; the payload is freed with its last owner.
func (l List) Release() error {
	if l.h == 0 {
		return nil
	}
	return l.rt.heapOp(func(h *nrt.Heap) error { return h.Decref(l.h) })
}

func (l List) Refcount() int64 {
	l.rt.mu.Lock()
	defer l.rt.mu.Unlock()
	return l.rt.Heap.Refcount(l.h)
}

func (l List) call(op string, args ...int64) ([]int64, error) {
	return l.rt.call(op, l.t, append([]int64{int64(l.h)}, args...)...)
}

func (l List) wrap(res []int64, err error) (List, error) {
	if err != nil {
		return List{}, err
	}
	return List{rt: l.rt, t: l.t, h: nrt.Handle(res[0])}, nil
}

func (l List) sameType(o List, op string) error {
	if l.t != o.t {
		return fmt.Errorf("%s of %s and %s lists: %w", op, l.t.Name(), o.t.Name(), ErrTypeMismatch)
	}
	return nil
}

func (l List) mustInt(op string) int64 {
	res, err := l.call(op)
	if err != nil {
		panic(err)
	}
	return res[0]
}

// Len panics on a released list, like every accessor without an error result.
func (l List) Len() int      { return int(l.mustInt("list.len")) }
func (l List) Capacity() int { return int(l.mustInt("list.capacity")) }
func (l List) Bool() bool    { return l.mustInt("list.bool") != 0 }

// Resize sets the size directly; new slots hold undefined items.
func (l List) Resize(n int) error {
	_, err := l.call("list.resize", int64(n))
	return err
}

func (l List) Get(i int) (any, error) {
	res, err := l.call("list.getitem", int64(i))
	if err != nil {
		return nil, err
	}
	return l.t.Box(res[0]), nil
}

func (l List) Set(i int, v any) error {
	x, err := l.t.Unbox(v)
	if err != nil {
		return err
	}
	_, err = l.call("list.setitem", int64(i), x)
	return err
}

func (l List) DelItem(i int) error {
	_, err := l.call("list.delitem", int64(i))
	return err
}

func (l List) Append(v any) error {
	x, err := l.t.Unbox(v)
	if err != nil {
		return err
	}
	_, err = l.call("list.append", x)
	return err
}

func (l List) Insert(i int, v any) error {
	x, err := l.t.Unbox(v)
	if err != nil {
		return err
	}
	_, err = l.call("list.insert", int64(i), x)
	return err
}

func (l List) Pop() (any, error) {
	res, err := l.call("list.pop")
	if err != nil {
		return nil, err
	}
	return l.t.Box(res[0]), nil
}

func (l List) PopAt(i int) (any, error) {
	res, err := l.call("list.pop_at", int64(i))
	if err != nil {
		return nil, err
	}
	return l.t.Box(res[0]), nil
}

func (l List) Remove(v any) error {
	x, err := l.t.Unbox(v)
	if err != nil {
		return err
	}
	_, err = l.call("list.remove", x)
	return err
}

// Index returns the first position of v; bounds are the optional start and
// stop of lst.index(v, start, stop).
func (l List) Index(v any, bounds ...int) (int, error) {
	if len(bounds) > 2 {
		return 0, fmt.Errorf("index takes at most 2 bounds, got %d: %w", len(bounds), ErrUnsupportedOperation)
	}
	x, err := l.t.Unbox(v)
	if err != nil {
		return 0, err
	}
	start, stop := int64(0), int64(math.MaxInt64)
	if len(bounds) > 0 {
		start = int64(bounds[0])
	}
	if len(bounds) > 1 {
		stop = int64(bounds[1])
	}
	res, err := l.call("list.index", x, start, stop)
	if err != nil {
		return 0, err
	}
	return int(res[0]), nil
}

func (l List) Count(v any) (int, error) {
	x, err := l.t.Unbox(v)
	if err != nil {
		return 0, err
	}
	res, err := l.call("list.count", x)
	if err != nil {
		return 0, err
	}
	return int(res[0]), nil
}

// Contains is `v in lst`. A value that cannot be an item is simply absent.
func (l List) Contains(v any) (bool, error) {
	x, err := l.t.Unbox(v)
	if err != nil {
		return false, nil
	}
	res, err := l.call("list.contains", x)
	if err != nil {
		return false, err
	}
	return res[0] != 0, nil
}

func (l List) Reverse() error {
	_, err := l.call("list.reverse")
	return err
}

func (l List) Sort(reverse bool) error {
	r := int64(0)
	if reverse {
		r = 1
	}
	_, err := l.call("list.sort", r)
	return err
}

// Extend takes the bulk copy path for a list of the same item type and
// appends item by item otherwise.
func (l List) Extend(src List) error {
	if l.t == src.t {
		_, err := l.call("list.extend", int64(src.h))
		return err
	}
	return l.ExtendSeq(src.Values())
}

func (l List) ExtendSeq(seq iter.Seq[any]) error {
	for v := range seq {
		if err := l.Append(v); err != nil {
			return err
		}
	}
	return nil
}

func (l List) Copy() (List, error) {
	return l.wrap(l.call("list.copy"))
}

func (l List) Clear() error {
	_, err := l.call("list.clear")
	return err
}

// --- operators ---

func (l List) Concat(o List) (List, error) {
	if err := l.sameType(o, "concat"); err != nil {
		return List{}, err
	}
	return l.wrap(l.call("list.concat", int64(o.h)))
}

func (l List) IAdd(o List) error {
	if err := l.sameType(o, "+="); err != nil {
		return err
	}
	_, err := l.call("list.iadd", int64(o.h))
	return err
}

func (l List) Mul(n int) (List, error) {
	return l.wrap(l.call("list.mul", int64(n)))
}

func (l List) IMul(n int) error {
	_, err := l.call("list.imul", int64(n))
	return err
}

func (l List) boolOp(op string, o List) (bool, error) {
	res, err := l.call(op, int64(o.h))
	if err != nil {
		return false, err
	}
	return res[0] != 0, nil
}

// Equal is false for lists of different item types.
func (l List) Equal(o List) (bool, error) {
	if l.t != o.t {
		return false, nil
	}
	return l.boolOp("list.eq", o)
}

func (l List) NotEqual(o List) (bool, error) {
	eq, err := l.Equal(o)
	return !eq, err
}

func (l List) Less(o List) (bool, error) {
	if err := l.sameType(o, "<"); err != nil {
		return false, err
	}
	return l.boolOp("list.lt", o)
}

func (l List) LessEqual(o List) (bool, error) {
	if err := l.sameType(o, "<="); err != nil {
		return false, err
	}
	return l.boolOp("list.le", o)
}

func (l List) Greater(o List) (bool, error)      { return o.Less(l) }
func (l List) GreaterEqual(o List) (bool, error) { return o.LessEqual(l) }

// Is reports whether both lists share one payload.
func (l List) Is(o List) bool {
	if l.rt != o.rt {
		return false
	}
	res, err := l.call("list.is", int64(o.h))
	return err == nil && res[0] != 0
}

// --- slicing ---

func (l List) GetSlice(s Slice) (List, error) {
	return l.wrap(l.call("list.getslice", s.Start, s.Stop, s.Step))
}

func (l List) SetSlice(s Slice, src List) error {
	if l.t != src.t {
		// generic source: materialize in this list's item type first
		tmp, err := l.rt.FromIterable(l.t, src.Values())
		if err != nil {
			return err
		}
		defer tmp.Release()
		src = tmp
	}
	_, err := l.call("list.setslice", s.Start, s.Stop, s.Step, int64(src.h))
	return err
}

func (l List) DelSlice(s Slice) error {
	_, err := l.call("list.delslice", s.Start, s.Stop, s.Step)
	return err
}

// --- conversion ---

// Values yields the items through an iterator; a fault ends the sequence.
func (l List) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		it, err := l.Iter()
		if err != nil {
			return
		}
		defer it.Release()
		for {
			v, ok, err := it.Next()
			if err != nil || !ok || !yield(v) {
				return
			}
		}
	}
}

// All yields index/item pairs.
func (l List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		i := 0
		for v := range l.Values() {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}

func (l List) ToSlice() ([]any, error) {
	it, err := l.Iter()
	if err != nil {
		return nil, err
	}
	defer it.Release()
	var result []any
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, v)
	}
}

// String renders the list like Python's repr.
func (l List) String() string {
	if l.h == 0 {
		return "<nil list>"
	}
	it, err := l.Iter()
	if err != nil {
		return "<released list>"
	}
	defer it.Release()
	var sb strings.Builder
	sb.WriteByte('[')
	for first := true; ; first = false {
		raw, ok, err := it.nextRaw()
		if err != nil || !ok {
			break
		}
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(l.t.Format(raw))
	}
	sb.WriteByte(']')
	return sb.String()
}
