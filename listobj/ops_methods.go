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

// removeAt deletes the item at a valid index: the tail moves left first,
// then the list shrinks.
func (l *listInst) removeAt(idx, n jit.Value) {
	b := l.b
	last := b.AddImm(n, -1)
	l.move(idx, b.AddImm(idx, 1), b.Sub(last, idx))
	l.resize(last)
}

func (l *listInst) guardNotEmpty(n jit.Value) {
	b := l.b
	b.If(b.Eq(n, b.Const(0)), func() {
		b.Raise(jit.KindEmptyContainer, "pop from empty list")
	})
}

// scan walks all items and calls found for every item equal to v.
func (l *listInst) scan(from, to, v jit.Value, found func(i jit.Value, loop *jit.Loop)) {
	b := l.b
	b.ForRange(from, to, func(i jit.Value, loop *jit.Loop) {
		b.If(l.t.EmitEq(b, l.getItem(i), v), func() {
			found(i, loop)
		})
	})
}

func init() {
	jit.DeclareTitle("Methods")

	declare("list.append", "appends one item; amortized O(1)", []param{pList, pItem}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			n := l.size()
			l.resize(b.AddImm(n, 1))
			l.initItem(n, b.Param(1))
			b.Ret()
		})

	declare("list.insert", "inserts before index; out of range positions are clamped",
		[]param{pList, pIndex, pItem}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			idx := l.clampIndex(l.fixIndex(b.Param(1)))
			n := l.size()
			l.resize(b.AddImm(n, 1))
			l.move(b.AddImm(idx, 1), idx, b.Sub(n, idx))
			l.setItem(idx, b.Param(2))
			b.Ret()
		})

	declare("list.pop", "removes and returns the last item", []param{pList}, "item", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			n := l.size()
			l.guardNotEmpty(n)
			last := b.AddImm(n, -1)
			v := l.getItem(last)
			l.resize(last)
			b.Ret(v)
		})

	declare("list.pop_at", "removes and returns the item at index", []param{pList, pIndex}, "item", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			idx := l.fixIndex(b.Param(1))
			n := l.size()
			l.guardNotEmpty(n)
			l.guardIndex(idx, "pop index out of range")
			v := l.getItem(idx)
			l.removeAt(idx, n)
			b.Ret(v)
		})

	declare("list.remove", "removes the first item equal to value", []param{pList, pItem}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			n := l.size()
			pos := b.Var(b.Const(-1))
			l.scan(b.Const(0), n, b.Param(1), func(i jit.Value, loop *jit.Loop) {
				b.Set(pos, i)
				loop.Break()
			})
			b.If(b.Lt(pos, b.Const(0)), func() {
				b.Raise(jit.KindValueNotFound, "list.remove(x): x not in list")
			})
			l.removeAt(pos, n)
			b.Ret()
		})

	declare("list.index", "position of the first item equal to value in [start, stop)",
		[]param{pList, pItem, pStart, pStop}, "int", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			n := l.size()
			zero := b.Const(0)
			start := b.Var(b.Param(2))
			b.If(b.Lt(start, zero), func() {
				b.Set(start, b.Max(b.Add(start, n), zero))
			})
			stop := b.Var(b.Param(3))
			b.If(b.Lt(stop, zero), func() {
				b.Set(stop, b.Add(stop, n))
			})
			b.Set(stop, b.Min(stop, n))
			l.scan(start, stop, b.Param(1), func(i jit.Value, loop *jit.Loop) {
				b.Ret(i)
			})
			b.Raise(jit.KindValueNotFound, "value not in list")
		})

	declare("list.count", "number of items equal to value", []param{pList, pItem}, "int", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			count := b.Var(b.Const(0))
			l.scan(b.Const(0), l.size(), b.Param(1), func(i jit.Value, loop *jit.Loop) {
				b.Set(count, b.AddImm(count, 1))
			})
			b.Ret(count)
		})

	declare("list.contains", "value in lst", []param{pList, pItem}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			result := b.Var(b.Const(0))
			l.scan(b.Const(0), l.size(), b.Param(1), func(i jit.Value, loop *jit.Loop) {
				b.Set(result, b.Const(1))
				loop.Break()
			})
			b.Ret(result)
		})

	declare("list.reverse", "reverses the items in place", []param{pList}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			n := l.size()
			b.ForRange(b.Const(0), b.Div(n, b.Const(2)), func(i jit.Value, loop *jit.Loop) {
				j := b.Sub(b.AddImm(n, -1), i) // index -i-1
				x, y := l.getItem(i), l.getItem(j)
				l.setItem(i, y)
				l.setItem(j, x)
			})
			b.Ret()
		})
}
