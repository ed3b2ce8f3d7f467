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

func checkedAdd(b *jit.Builder, x, y jit.Value, msg string) jit.Value {
	sum, ovf := b.AddOvf(x, y)
	b.If(ovf, func() { b.Raise(jit.KindOutOfMemory, msg) })
	return sum
}

// emitExtendList appends the items of the second list to the first. The
// source size is read before the resize so that a += a doubles.
func emitExtendList(b *jit.Builder, t ItemType) {
	dest := newListInst(b, t, b.Param(0))
	src := newListInst(b, t, b.Param(1))
	srcSize := src.size()
	destSize := dest.size()
	dest.resize(checkedAdd(b, destSize, srcSize, "cannot resize list"))
	dest.copyFrom(destSize, src, b.Const(0), srcSize)
	b.Ret()
}

// emitRepeatCount clamps a negative factor to 0 and returns (factor, total).
// An empty source forces the factor to 0 so no empty blocks are walked.
func emitRepeatCount(b *jit.Builder, n, srcSize jit.Value, msg string) (jit.Value, jit.Value) {
	zero := b.Const(0)
	n = b.Select(b.Or(b.Lt(n, zero), b.Eq(srcSize, zero)), zero, n)
	total, ovf := b.MulOvf(n, srcSize)
	b.If(ovf, func() { b.Raise(jit.KindOutOfMemory, msg) })
	return n, total
}

func init() {
	jit.DeclareTitle("Concatenation and repetition")

	declare("list.concat", "a + b into a new list", []param{pList, pOther}, "list", 1,
		func(b *jit.Builder, t ItemType) {
			x := newListInst(b, t, b.Param(0))
			y := newListInst(b, t, b.Param(1))
			m, n := x.size(), y.size()
			total := checkedAdd(b, m, n, "cannot allocate list")
			dest := allocateList(b, t, total)
			dest.setSize(total)
			zero := b.Const(0)
			dest.copyFrom(zero, x, zero, m)
			dest.copyFrom(m, y, zero, n)
			b.Ret(dest.h)
		})

	declare("list.iadd", "a += b in place", []param{pList, pOther}, "none", 0, emitExtendList)

	declare("list.extend", "appends all items of a list of the same item type in one bulk copy",
		[]param{pList, pOther}, "none", 0, emitExtendList)

	declare("list.mul", "a * n into a new list; negative n counts as 0",
		[]param{pList, {Name: "n", Type: "int", Desc: "repetitions"}}, "list", 1,
		func(b *jit.Builder, t ItemType) {
			src := newListInst(b, t, b.Param(0))
			srcSize := src.size()
			n, total := emitRepeatCount(b, b.Param(1), srcSize, "cannot allocate list")
			dest := allocateList(b, t, total)
			dest.setSize(total)
			b.ForRange(b.Const(0), n, func(rep jit.Value, l *jit.Loop) {
				dest.copyFrom(b.Mul(rep, srcSize), src, b.Const(0), srcSize)
			})
			b.Ret(dest.h)
		})

	declare("list.imul", "a *= n in place; negative n counts as 0",
		[]param{pList, {Name: "n", Type: "int", Desc: "repetitions"}}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			srcSize := l.size()
			n, total := emitRepeatCount(b, b.Param(1), srcSize, "cannot resize list")
			l.resize(total)
			b.ForRange(b.Const(1), n, func(rep jit.Value, loop *jit.Loop) {
				l.copyFrom(b.Mul(rep, srcSize), l, b.Const(0), srcSize)
			})
			b.Ret()
		})
}
