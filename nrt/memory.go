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
package nrt

import (
	"encoding/binary"
	"fmt"
)

// resolve finds the bytes [addr, addr+n) inside one live block
func (h *Heap) resolve(addr, n int64) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("access of %d bytes at %#x: %w", n, addr, ErrFault)
	}
	if mi := h.last; mi != nil && addr >= mi.addr && addr+n <= mi.addr+int64(len(mi.data)) {
		off := addr - mi.addr
		return mi.data[off : off+n], nil
	}
	var found *MemInfo
	h.blocks.DescendLessOrEqual(&MemInfo{addr: addr}, func(mi *MemInfo) bool {
		found = mi
		return false
	})
	if found == nil || addr+n > found.addr+int64(len(found.data)) {
		return nil, fmt.Errorf("access of %d bytes at %#x: %w", n, addr, ErrFault)
	}
	h.last = found
	off := addr - found.addr
	return found.data[off : off+n], nil
}

// Load reads width bytes (1, 2, 4 or 8) little endian, zero extended.
func (h *Heap) Load(addr int64, width int) (uint64, error) {
	b, err := h.resolve(addr, int64(width))
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("load width %d: %w", width, ErrFault)
}

// Store writes the low width bytes of v little endian.
func (h *Heap) Store(addr int64, width int, v uint64) error {
	b, err := h.resolve(addr, int64(width))
	if err != nil {
		return err
	}
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		return fmt.Errorf("store width %d: %w", width, ErrFault)
	}
	return nil
}

// Move copies n bytes from src to dst; the ranges may overlap and may live
// in different blocks.
func (h *Heap) Move(dst, src, n int64) error {
	if n == 0 {
		return nil
	}
	s, err := h.resolve(src, n)
	if err != nil {
		return err
	}
	d, err := h.resolve(dst, n)
	if err != nil {
		return err
	}
	copy(d, s) // copy is memmove
	return nil
}

// Bytes exposes [addr, addr+n) for bulk host access (sorting, printing).
// The slice is only valid until the next reallocation or free.
func (h *Heap) Bytes(addr, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return h.resolve(addr, n)
}

// Swap exchanges two non-overlapping ranges of n bytes.
func (h *Heap) Swap(a, b, n int64) error {
	if a == b || n == 0 {
		return nil
	}
	x, err := h.resolve(a, n)
	if err != nil {
		return err
	}
	y, err := h.resolve(b, n)
	if err != nil {
		return err
	}
	for i := range x {
		x[i], y[i] = y[i], x[i]
	}
	return nil
}
