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

import "github.com/launix-de/listjit/jit"

/*
Payload layout inside one nrt allocation:

	@0   capacity int64
	@8   size     int64
	@16  capacity * itemsize bytes of items

The data pointer is fetched from the handle on every access. Anything that
resizes moves the payload, so an address held across a resize is stale.
*/
const (
	offCapacity = 0
	offSize     = 8
	headerSize  = 16
)

// listInst emits accesses to the payload behind handle h.
type listInst struct {
	b *jit.Builder
	t ItemType
	h jit.Value

	// cleanup is emitted before every OutOfMemory raise of a resize, for
	// operations that own temporary allocations.
	cleanup func()
}

func newListInst(b *jit.Builder, t ItemType, h jit.Value) *listInst {
	return &listInst{b: b, t: t, h: h}
}

func (l *listInst) data() jit.Value {
	return l.b.DataPtr(l.h)
}

func (l *listInst) size() jit.Value {
	return l.b.Load(l.data(), offSize, 8, true)
}

func (l *listInst) setSize(n jit.Value) {
	l.b.Store(l.data(), offSize, 8, n)
}

func (l *listInst) capacity() jit.Value {
	return l.b.Load(l.data(), offCapacity, 8, true)
}

func (l *listInst) setCapacity(n jit.Value) {
	l.b.Store(l.data(), offCapacity, 8, n)
}

func (l *listInst) itemAddr(idx jit.Value) jit.Value {
	b := l.b
	return b.Add(b.AddImm(l.data(), headerSize), b.MulImm(idx, l.t.Size()))
}

// getItem, setItem and initItem do no bounds checking.
func (l *listInst) getItem(idx jit.Value) jit.Value {
	return l.t.EmitLoad(l.b, l.itemAddr(idx), 0)
}

func (l *listInst) setItem(idx, v jit.Value) {
	l.t.EmitStore(l.b, l.itemAddr(idx), 0, v)
}

// initItem writes into capacity that held no item before. Plain scalars
// have no lifecycle, so it is the same store as setItem.
func (l *listInst) initItem(idx, v jit.Value) {
	l.setItem(idx, v)
}

func (l *listInst) fixIndex(idx jit.Value) jit.Value {
	return emitFixIndex(l.b, idx, l.size())
}

func (l *listInst) clampIndex(idx jit.Value) jit.Value {
	return emitClampIndex(l.b, idx, l.size())
}

func (l *listInst) guardIndex(idx jit.Value, msg string) {
	l.b.If(emitIsOutOfBounds(l.b, idx, l.size()), func() {
		l.b.Raise(jit.KindIndexOutOfRange, msg)
	})
}

func (l *listInst) fixSlice(start, stop, step jit.Value) (jit.Value, jit.Value) {
	return emitFixSlice(l.b, start, stop, step, l.size())
}

// move relocates count items inside the payload; ranges may overlap.
func (l *listInst) move(dst, src, count jit.Value) {
	b := l.b
	b.Move(l.itemAddr(dst), l.itemAddr(src), b.MulImm(count, l.t.Size()))
}

// copyFrom copies count items of src starting at srcIdx to dstIdx. src may
// be a different payload of the same item type.
func (l *listInst) copyFrom(dstIdx jit.Value, src *listInst, srcIdx, count jit.Value) {
	b := l.b
	b.Move(l.itemAddr(dstIdx), src.itemAddr(srcIdx), b.MulImm(count, l.t.Size()))
}

// allocBytes computes n*itemsize+header; fail is emitted on overflow
func allocBytes(b *jit.Builder, t ItemType, n jit.Value, fail func()) jit.Value {
	items, ovf1 := b.MulOvf(n, b.Const(t.Size()))
	total, ovf2 := b.AddOvf(items, b.Const(headerSize))
	b.If(b.Or(b.Or(ovf1, ovf2), b.Lt(n, b.Const(0))), fail)
	return total
}

// allocateList emits a fresh payload with capacity n and size 0. The
// returned handle holds one reference.
func allocateList(b *jit.Builder, t ItemType, n jit.Value) *listInst {
	fail := func() { b.Raise(jit.KindOutOfMemory, "cannot allocate list") }
	h := b.Alloc(allocBytes(b, t, n, fail))
	b.If(b.Eq(h, b.Const(0)), fail)
	l := newListInst(b, t, h)
	l.setCapacity(n)
	l.setSize(b.Const(0))
	return l
}

func (l *listInst) raiseResize() {
	if l.cleanup != nil {
		l.cleanup()
	}
	l.b.Raise(jit.KindOutOfMemory, "cannot resize list")
}

func (l *listInst) realloc(newCap jit.Value) {
	b := l.b
	ok := b.Realloc(l.h, allocBytes(b, l.t, newCap, l.raiseResize))
	b.If(b.Not(ok), l.raiseResize)
	l.setCapacity(newCap)
}

// resize sets size to n and adapts the capacity: shrink to exactly n when
// capacity exceeds 4*n, grow to n + n/4 + 8 when n does not fit. A call that
// leaves the size unchanged touches nothing.
func (l *listInst) resize(n jit.Value) {
	b := l.b
	b.If(b.Ne(n, l.size()), func() {
		allocated := l.capacity()
		b.If(b.Gt(b.Shr(allocated, b.Const(2)), n), func() {
			l.realloc(n)
		})
		b.If(b.Lt(allocated, n), func() {
			grown, ovf1 := b.AddOvf(n, b.Shr(n, b.Const(2)))
			grown, ovf2 := b.AddOvf(grown, b.Const(8))
			b.If(b.Or(ovf1, ovf2), l.raiseResize)
			l.realloc(grown)
		})
		l.setSize(n)
	})
}

// copyList emits a new list holding the items of l.
func (l *listInst) copyList() *listInst {
	n := l.size()
	dest := allocateList(l.b, l.t, n)
	dest.setSize(n)
	dest.copyFrom(l.b.Const(0), l, l.b.Const(0), n)
	return dest
}
