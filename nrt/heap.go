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

/*
nrt - native runtime heap
-------------------------

Generated code never sees Go pointers. It works on int64 addresses inside a
virtual address space that is owned by a Heap. Every allocation is a MemInfo
with a reference count; the allocation is reclaimed as soon as the count
drops to zero.

 - addresses are never reused, so a stale data pointer faults instead of
   silently reading another allocation
 - reallocation always moves the block to a fresh address
 - blocks are separated by a guard gap so off-by-one accesses fault, too

*/
package nrt

import (
	"errors"
	"fmt"

	"github.com/docker/go-units"
	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handle identifies a MemInfo. The zero Handle is the null handle.
type Handle int64

var (
	ErrInvalidHandle = errors.New("invalid handle")
	ErrFault         = errors.New("memory fault")
	ErrLimit         = errors.New("heap limit exceeded")
)

const (
	baseAddress = int64(1) << 20
	blockAlign  = 16
	guardGap    = 64
)

// DefaultLimit is used by NewHeap when Options.Limit is zero.
var DefaultLimit int64 = 1 << 30

// MemInfo is the header of one reference counted allocation.
type MemInfo struct {
	handle Handle
	refcnt int64
	addr   int64
	data   []byte
}

func (mi *MemInfo) Handle() Handle  { return mi.handle }
func (mi *MemInfo) Refcount() int64 { return mi.refcnt }
func (mi *MemInfo) Addr() int64     { return mi.addr }
func (mi *MemInfo) Size() int64     { return int64(len(mi.data)) }

type Options struct {
	Limit  int64 // maximum number of live payload bytes, 0 = DefaultLimit
	Logger *zerolog.Logger
}

// Stats counts heap events since creation.
type Stats struct {
	Allocs    int64
	Reallocs  int64
	Frees     int64
	Failures  int64
	LiveBytes int64
	LiveCount int
}

type Heap struct {
	ID     uuid.UUID
	Logger zerolog.Logger

	blocks  *btree.BTreeG[*MemInfo] // ordered by addr
	handles map[Handle]*MemInfo
	last    *MemInfo // last resolved block

	nextAddr   int64
	nextHandle Handle
	limit      int64
	stats      Stats
}

func blockLess(a, b *MemInfo) bool {
	return a.addr < b.addr
}

func NewHeap(opts Options) *Heap {
	h := &Heap{
		ID:         uuid.New(),
		Logger:     zerolog.Nop(),
		blocks:     btree.NewG[*MemInfo](16, blockLess),
		handles:    make(map[Handle]*MemInfo),
		nextAddr:   baseAddress,
		nextHandle: 1,
		limit:      opts.Limit,
	}
	if h.limit <= 0 {
		h.limit = DefaultLimit
	}
	if opts.Logger != nil {
		h.Logger = opts.Logger.With().Str("heap", h.ID.String()).Logger()
	}
	return h
}

func (h *Heap) Limit() int64 { return h.limit }

// SetLimit changes the live byte budget; existing allocations are kept even
// if they exceed the new limit.
func (h *Heap) SetLimit(limit int64) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	h.limit = limit
}

func (h *Heap) Stats() Stats {
	s := h.stats
	s.LiveCount = len(h.handles)
	return s
}

// reserve hands out a fresh address range; the gap behind it stays unmapped
func (h *Heap) reserve(size int64) int64 {
	addr := h.nextAddr
	h.nextAddr += (size+blockAlign-1)/blockAlign*blockAlign + guardGap
	return addr
}

func (h *Heap) fits(grow int64) bool {
	return grow <= h.limit-h.stats.LiveBytes
}

// Allocate creates a new allocation with refcount 1.
func (h *Heap) Allocate(size int64) (Handle, error) {
	if size < 0 || !h.fits(size) {
		h.stats.Failures++
		h.Logger.Debug().Int64("size", size).Str("limit", units.BytesSize(float64(h.limit))).Msg("allocation refused")
		return 0, fmt.Errorf("cannot allocate %s: %w", units.BytesSize(float64(size)), ErrLimit)
	}
	mi := &MemInfo{
		handle: h.nextHandle,
		refcnt: 1,
		addr:   h.reserve(size),
		data:   make([]byte, size),
	}
	h.nextHandle++
	h.handles[mi.handle] = mi
	h.blocks.ReplaceOrInsert(mi)
	h.stats.Allocs++
	h.stats.LiveBytes += size
	h.Logger.Debug().Int64("handle", int64(mi.handle)).Int64("addr", mi.addr).Str("size", units.BytesSize(float64(size))).Msg("allocate")
	return mi.handle, nil
}

// Reallocate resizes the allocation behind hnd. On failure the old block is
// left untouched. Shrinking never fails.
func (h *Heap) Reallocate(hnd Handle, size int64) error {
	mi, ok := h.handles[hnd]
	if !ok {
		return ErrInvalidHandle
	}
	old := int64(len(mi.data))
	if size < 0 || (size > old && !h.fits(size-old)) {
		h.stats.Failures++
		h.Logger.Debug().Int64("handle", int64(hnd)).Int64("size", size).Msg("reallocation refused")
		return fmt.Errorf("cannot grow to %s: %w", units.BytesSize(float64(size)), ErrLimit)
	}
	data := make([]byte, size)
	copy(data, mi.data)
	h.blocks.Delete(mi)
	mi.addr = h.reserve(size)
	mi.data = data
	h.blocks.ReplaceOrInsert(mi)
	h.last = nil
	h.stats.Reallocs++
	h.stats.LiveBytes += size - old
	h.Logger.Debug().Int64("handle", int64(hnd)).Int64("addr", mi.addr).Str("from", units.BytesSize(float64(old))).Str("to", units.BytesSize(float64(size))).Msg("reallocate")
	return nil
}

func (h *Heap) Lookup(hnd Handle) (*MemInfo, error) {
	mi, ok := h.handles[hnd]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return mi, nil
}

// Data returns the current address of the payload behind hnd.
func (h *Heap) Data(hnd Handle) (int64, error) {
	mi, err := h.Lookup(hnd)
	if err != nil {
		return 0, err
	}
	return mi.addr, nil
}

func (h *Heap) Incref(hnd Handle) error {
	mi, err := h.Lookup(hnd)
	if err != nil {
		return err
	}
	mi.refcnt++
	return nil
}

// Decref drops one reference and frees the allocation at zero.
func (h *Heap) Decref(hnd Handle) error {
	mi, err := h.Lookup(hnd)
	if err != nil {
		return err
	}
	mi.refcnt--
	if mi.refcnt > 0 {
		return nil
	}
	h.blocks.Delete(mi)
	delete(h.handles, hnd)
	if h.last == mi {
		h.last = nil
	}
	h.stats.Frees++
	h.stats.LiveBytes -= int64(len(mi.data))
	h.Logger.Debug().Int64("handle", int64(hnd)).Msg("free")
	mi.data = nil
	return nil
}

func (h *Heap) Refcount(hnd Handle) int64 {
	if mi, ok := h.handles[hnd]; ok {
		return mi.refcnt
	}
	return 0
}

// Live lists all live allocations ordered by address.
func (h *Heap) Live() []*MemInfo {
	result := make([]*MemInfo, 0, h.blocks.Len())
	h.blocks.Ascend(func(mi *MemInfo) bool {
		result = append(result, mi)
		return true
	})
	return result
}
