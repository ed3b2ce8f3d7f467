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

import "github.com/launix-de/listjit/nrt"

// Iterator is a cursor that co-owns the payload of its list. It sees every
// mutation made through the list, truncation included.
type Iterator struct {
	src       List
	index     int64
	exhausted bool
	released  bool
}

// Iter starts a new iterator at position 0.
func (l List) Iter() (*Iterator, error) {
	if err := l.rt.heapOp(func(h *nrt.Heap) error { return h.Incref(l.h) }); err != nil {
		return nil, err
	}
	return &Iterator{src: l}, nil
}

func (it *Iterator) nextRaw() (int64, bool, error) {
	if it.exhausted || it.released {
		return 0, false, nil
	}
	res, err := it.src.call("list.iter_next", it.index)
	if err != nil {
		return 0, false, err
	}
	if res[0] == 0 {
		it.exhausted = true
		return 0, false, nil
	}
	it.index++
	return res[1], true, nil
}

// Next yields the item at the cursor. Once it reports false it stays
// exhausted, even if the list grows again.
func (it *Iterator) Next() (any, bool, error) {
	raw, ok, err := it.nextRaw()
	if !ok {
		return nil, false, err
	}
	return it.src.t.Box(raw), true, nil
}

func (it *Iterator) Index() int64 { return it.index }

// Release drops the iterator's reference. Releasing twice is a no-op.
func (it *Iterator) Release() error {
	if it.released {
		return nil
	}
	it.released = true
	return it.src.Release()
}
