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

var sliceParams = []param{pList, pStart, pStop, pStep}

// forSlice visits the count-th position of a normalized slice as
// index = start + count*step, ascending or descending with the step.
func forSlice(b *jit.Builder, start, step, length jit.Value, body func(idx, count jit.Value)) {
	b.ForRange(b.Const(0), length, func(count jit.Value, l *jit.Loop) {
		body(b.Add(start, b.Mul(count, step)), count)
	})
}

func init() {
	jit.DeclareTitle("Slicing")

	declare("list.getslice", "lst[start:stop:step] into a new list", sliceParams, "list", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			step := b.Param(3)
			emitGuardStep(b, step)
			start, stop := l.fixSlice(b.Param(1), b.Param(2), step)
			length := emitSliceLength(b, start, stop, step)
			dest := allocateList(b, t, length)
			dest.setSize(length)
			forSlice(b, start, step, length, func(idx, count jit.Value) {
				dest.initItem(count, l.getItem(idx))
			})
			b.Ret(dest.h)
		})

	declare("list.setslice", "lst[start:stop:step] = other; only step 1 may change the size",
		append(sliceParams[:4:4], param{Name: "source", Type: "list", Desc: "items to assign"}), "none", 0,
		func(b *jit.Builder, t ItemType) {
			dest := newListInst(b, t, b.Param(0))
			step := b.Param(3)
			emitGuardStep(b, step)
			start, stop := dest.fixSlice(b.Param(1), b.Param(2), step)
			avail := emitSliceLength(b, start, stop, step)
			srcSize := newListInst(b, t, b.Param(4)).size()
			delta := b.Sub(srcSize, avail)
			one, zero := b.Const(1), b.Const(0)
			b.If(b.And(b.Ne(step, one), b.Ne(delta, zero)), func() {
				b.Raise(jit.KindSizeMismatch, "attempt to assign sequence of size %d to extended slice of size %d", srcSize, avail)
			})

			// lst[a:b] = lst reads from a private copy
			srcHandle := b.Var(b.Param(4))
			owned := b.Eq(b.Param(0), b.Param(4))
			b.If(owned, func() {
				b.Set(srcHandle, newListInst(b, t, b.Param(4)).copyList().h)
			})
			src := newListInst(b, t, srcHandle)
			release := func() {
				b.If(owned, func() { b.Decref(srcHandle) })
			}
			dest.cleanup = release

			b.IfElse(b.Eq(step, one), func() {
				n := dest.size()
				realStop := b.Add(start, avail)
				tail := b.Sub(n, realStop)
				b.If(b.Lt(zero, delta), func() {
					dest.resize(b.Add(n, delta))
					dest.move(b.Add(realStop, delta), realStop, tail)
				})
				b.If(b.Lt(delta, zero), func() {
					dest.move(b.Add(realStop, delta), realStop, tail)
					dest.resize(b.Add(n, delta))
				})
				dest.copyFrom(start, src, zero, srcSize)
			}, func() {
				forSlice(b, start, step, avail, func(idx, count jit.Value) {
					dest.setItem(idx, src.getItem(count))
				})
			})
			release()
			b.Ret()
		})

	declare("list.delslice", "del lst[start:stop]; steps other than 1 are unsupported", sliceParams, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			step := b.Param(3)
			emitGuardStep(b, step)
			start, stop := l.fixSlice(b.Param(1), b.Param(2), step)
			b.If(b.Ne(step, b.Const(1)), func() {
				b.Raise(jit.KindUnsupportedOperation, "unsupported del list[start:stop:step] with step != 1")
			})
			length := emitSliceLength(b, start, stop, step)
			realStop := b.Add(start, length)
			n := l.size()
			l.move(start, realStop, b.Sub(n, realStop))
			l.resize(b.Sub(n, length))
			b.Ret()
		})
}
