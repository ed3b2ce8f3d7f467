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

// emitLexCompare decides on the first differing pair; if there is none the
// length comparison (< or <=) decides.
func emitLexCompare(b *jit.Builder, t ItemType, orEqual bool) {
	x := newListInst(b, t, b.Param(0))
	y := newListInst(b, t, b.Param(1))
	m, n := x.size(), y.size()
	var result jit.Value
	if orEqual {
		result = b.Var(b.Le(m, n))
	} else {
		result = b.Var(b.Lt(m, n))
	}
	b.ForRange(b.Const(0), b.Min(m, n), func(i jit.Value, l *jit.Loop) {
		v, w := x.getItem(i), y.getItem(i)
		b.If(t.EmitLt(b, v, w), func() {
			b.Set(result, b.Const(1))
			l.Break()
		})
		b.If(t.EmitLt(b, w, v), func() {
			b.Set(result, b.Const(0))
			l.Break()
		})
	})
	b.Ret(result)
}

func init() {
	jit.DeclareTitle("Comparison")

	declare("list.eq", "a == b: same size and pairwise equal items, stops at the first mismatch",
		[]param{pList, pOther}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			x := newListInst(b, t, b.Param(0))
			y := newListInst(b, t, b.Param(1))
			n := x.size()
			result := b.Var(b.Eq(n, y.size()))
			b.If(result, func() {
				b.ForRange(b.Const(0), n, func(i jit.Value, l *jit.Loop) {
					b.If(b.Not(t.EmitEq(b, x.getItem(i), y.getItem(i))), func() {
						b.Set(result, b.Const(0))
						l.Break()
					})
				})
			})
			b.Ret(result)
		})

	declare("list.lt", "a < b, lexicographic; a > b is list.lt(b, a)", []param{pList, pOther}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			emitLexCompare(b, t, false)
		})

	declare("list.le", "a <= b, lexicographic; a >= b is list.le(b, a)", []param{pList, pOther}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			emitLexCompare(b, t, true)
		})

	declare("list.is", "a is b: both share one payload", []param{pList, pOther}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			b.Ret(b.Eq(b.Param(0), b.Param(1)))
		})

	declare("list.cmp_items", "item ordering used by sort: a < b, or b < a if reverse",
		[]param{
			{Name: "a", Type: "int", Desc: "address of the first item"},
			{Name: "b", Type: "int", Desc: "address of the second item"},
			{Name: "reverse", Type: "bool", Desc: "flip the comparison"},
		}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			x := t.EmitLoad(b, b.Param(0), 0)
			y := t.EmitLoad(b, b.Param(1), 0)
			b.Ret(b.Select(b.Param(2), t.EmitLt(b, y, x), t.EmitLt(b, x, y)))
		})
}
