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

type param = jit.DeclarationParameter

var (
	pList  = param{Name: "list", Type: "list", Desc: "list handle"}
	pOther = param{Name: "other", Type: "list", Desc: "list handle of the same item type"}
	pItem  = param{Name: "value", Type: "item", Desc: "item value"}
	pIndex = param{Name: "index", Type: "int", Desc: "index, negative values count from the end"}
	pStart = param{Name: "start", Type: "int", Desc: "slice start"}
	pStop  = param{Name: "stop", Type: "int", Desc: "slice stop"}
	pStep  = param{Name: "step", Type: "int", Desc: "slice step, must not be zero"}
)

// declare registers an operation whose body is emitted per item type.
func declare(name, desc string, params []param, returns string, numResults int, emit func(b *jit.Builder, t ItemType)) {
	jit.Declare(&jit.Declaration{
		Name:       name,
		Desc:       desc,
		Params:     params,
		Returns:    returns,
		NumResults: numResults,
		Emit: func(b *jit.Builder, td jit.TypeDesc) {
			emit(b, td.(ItemType))
		},
	})
}

func init() {
	jit.DeclareTitle("Storage")

	declare("list.new", "allocates an empty list with room for n items",
		[]param{{Name: "n", Type: "int", Desc: "initial capacity"}}, "list", 1,
		func(b *jit.Builder, t ItemType) {
			l := allocateList(b, t, b.Param(0))
			b.Ret(l.h)
		})

	declare("list.len", "number of items", []param{pList}, "int", 1,
		func(b *jit.Builder, t ItemType) {
			b.Ret(newListInst(b, t, b.Param(0)).size())
		})

	declare("list.capacity", "number of allocated item slots", []param{pList}, "int", 1,
		func(b *jit.Builder, t ItemType) {
			b.Ret(newListInst(b, t, b.Param(0)).capacity())
		})

	declare("list.bool", "true if the list is not empty", []param{pList}, "bool", 1,
		func(b *jit.Builder, t ItemType) {
			b.Ret(b.Ne(newListInst(b, t, b.Param(0)).size(), b.Const(0)))
		})

	declare("list.resize", "sets the size, growing or shrinking the allocation by the amortization policy; new slots are zero or stale",
		[]param{pList, {Name: "n", Type: "int", Desc: "new size"}}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			n := b.Param(1)
			b.If(b.Lt(n, b.Const(0)), func() {
				b.Raise(jit.KindUnsupportedOperation, "cannot resize list to %d items", n)
			})
			newListInst(b, t, b.Param(0)).resize(n)
			b.Ret()
		})

	declare("list.copy", "shallow copy, list(lst) and lst[:]", []param{pList}, "list", 1,
		func(b *jit.Builder, t ItemType) {
			b.Ret(newListInst(b, t, b.Param(0)).copyList().h)
		})

	declare("list.clear", "removes all items", []param{pList}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			newListInst(b, t, b.Param(0)).resize(b.Const(0))
			b.Ret()
		})

	jit.DeclareTitle("Indexing")

	declare("list.getitem", "lst[index]", []param{pList, pIndex}, "item", 1,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			idx := l.fixIndex(b.Param(1))
			l.guardIndex(idx, "list index out of range")
			b.Ret(l.getItem(idx))
		})

	declare("list.setitem", "lst[index] = value", []param{pList, pIndex, pItem}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			idx := l.fixIndex(b.Param(1))
			l.guardIndex(idx, "list assignment index out of range")
			l.setItem(idx, b.Param(2))
			b.Ret()
		})

	declare("list.delitem", "del lst[index]", []param{pList, pIndex}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			idx := l.fixIndex(b.Param(1))
			l.guardIndex(idx, "list assignment index out of range")
			n := b.AddImm(l.size(), -1)
			l.move(idx, b.AddImm(idx, 1), b.Sub(n, idx))
			l.resize(n)
			b.Ret()
		})

	declare("list.iter_next", "advances an iterator: returns (valid, item) for the cursor position; the size is re-read on every call",
		[]param{pList, {Name: "cursor", Type: "int", Desc: "iterator position"}}, "bool,item", 2,
		func(b *jit.Builder, t ItemType) {
			l := newListInst(b, t, b.Param(0))
			idx := b.Param(1)
			valid := b.Lt(idx, l.size())
			item := b.Var(b.Const(0))
			b.If(valid, func() {
				b.Set(item, l.getItem(idx))
			})
			b.Ret(valid, item)
		})
}
