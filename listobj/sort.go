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
	"sort"

	"github.com/launix-de/listjit/jit"
	"github.com/launix-de/listjit/nrt"
)

// Sorter sorts in place. The default is a stable sort so equal items keep
// their order, as with Python's list.sort.
type Sorter func(data sort.Interface)

var DefaultSorter Sorter = sort.Stable

// itemSorter adapts a payload to sort.Interface. Less runs the compiled
// comparator; the first error stops further comparisons.
type itemSorter struct {
	m        *jit.Machine
	cmp      *jit.Function
	base     int64 // address of item 0
	n        int64
	itemsize int64
	reverse  int64
	err      error
}

func (s *itemSorter) Len() int { return int(s.n) }

func (s *itemSorter) Less(i, j int) bool {
	if s.err != nil {
		return false
	}
	res, err := s.m.Run(s.cmp, s.base+int64(i)*s.itemsize, s.base+int64(j)*s.itemsize, s.reverse)
	if err != nil {
		s.err = err
		return false
	}
	return res[0] != 0
}

func (s *itemSorter) Swap(i, j int) {
	if s.err != nil {
		return
	}
	if err := s.m.Heap.Swap(s.base+int64(i)*s.itemsize, s.base+int64(j)*s.itemsize, s.itemsize); err != nil {
		s.err = err
	}
}

// args: list handle, comparator ref, reverse, itemsize
var sortIntrinsic = jit.RegisterIntrinsic("list.sort", 4, 0, func(m *jit.Machine, args []int64) ([]int64, error) {
	cmp, err := jit.FunctionByRef(args[1])
	if err != nil {
		return nil, err
	}
	data, err := m.Heap.Data(nrt.Handle(args[0]))
	if err != nil {
		return nil, err
	}
	n, err := m.Heap.Load(data+offSize, 8)
	if err != nil {
		return nil, err
	}
	s := &itemSorter{m: m, cmp: cmp, base: data + headerSize, n: int64(n), itemsize: args[3], reverse: args[2]}
	if s.n > 1 {
		DefaultSorter(s)
	}
	if s.err != nil {
		return nil, fmt.Errorf("sort: %w", s.err)
	}
	return nil, nil
})

func init() {
	jit.DeclareTitle("Sorting")

	declare("list.sort", "sorts in place; reverse selects the flipped comparator",
		[]param{pList, {Name: "reverse", Type: "bool", Desc: "descending order"}}, "none", 0,
		func(b *jit.Builder, t ItemType) {
			cmp, err := jit.Specialize("list.cmp_items", t)
			if err != nil {
				panic(err)
			}
			b.Call(sortIntrinsic, b.Param(0), b.Const(jit.FunctionRef(cmp)), b.Ne(b.Param(1), b.Const(0)), b.Const(t.Size()))
			b.Ret()
		})
}
