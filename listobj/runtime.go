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
	"iter"
	"sync"

	"github.com/launix-de/listjit/jit"
	"github.com/launix-de/listjit/nrt"
	"github.com/rs/zerolog"
)

var (
	ErrOutOfMemory          = jit.ErrOutOfMemory
	ErrIndexOutOfRange      = jit.ErrIndexOutOfRange
	ErrEmptyContainer       = jit.ErrEmptyContainer
	ErrValueNotFound        = jit.ErrValueNotFound
	ErrSizeMismatch         = jit.ErrSizeMismatch
	ErrUnsupportedOperation = jit.ErrUnsupportedOperation
	ErrTypeMismatch         = jit.ErrTypeMismatch
	ErrFault                = jit.ErrFault
)

// Runtime owns one heap and runs the specialized operations on it. Calls
// are serialized; lists of one Runtime must not be mixed with another's.
type Runtime struct {
	Heap    *nrt.Heap
	Machine *jit.Machine
	Logger  zerolog.Logger

	mu sync.Mutex
}

type Options struct {
	HeapLimit int64 // 0 = nrt.DefaultLimit
	Logger    *zerolog.Logger
}

func NewRuntime(opts Options) *Runtime {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	heap := nrt.NewHeap(nrt.Options{Limit: opts.HeapLimit, Logger: &logger})
	return &Runtime{
		Heap:    heap,
		Machine: jit.NewMachine(heap, logger),
		Logger:  logger,
	}
}

// SetHeapLimit changes the heap budget; live lists are not affected.
func (rt *Runtime) SetHeapLimit(limit int64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.Heap.SetLimit(limit)
}

func (rt *Runtime) Stats() nrt.Stats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Heap.Stats()
}

// Steps is the number of instructions executed so far.
func (rt *Runtime) Steps() int64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Machine.Steps
}

// call runs operation op specialized for t
func (rt *Runtime) call(op string, t ItemType, args ...int64) ([]int64, error) {
	fn, err := jit.Specialize(op, t)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Machine.Run(fn, args...)
}

func (rt *Runtime) heapOp(f func(h *nrt.Heap) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return f(rt.Heap)
}

func checkItemType(t ItemType) error {
	if rc, ok := t.(interface{ Refcounted() bool }); ok && rc.Refcounted() {
		return fmt.Errorf("list of refcounted %s items: %w", t.Name(), ErrUnsupportedOperation)
	}
	return nil
}

// New allocates an empty list with room for capacity items.
func (rt *Runtime) New(t ItemType, capacity int) (List, error) {
	if err := checkItemType(t); err != nil {
		return List{}, err
	}
	res, err := rt.call("list.new", t, int64(capacity))
	if err != nil {
		return List{}, err
	}
	return List{rt: rt, t: t, h: nrt.Handle(res[0])}, nil
}

// FromValues builds a list holding values in order.
func (rt *Runtime) FromValues(t ItemType, values ...any) (List, error) {
	l, err := rt.New(t, len(values))
	if err != nil {
		return List{}, err
	}
	if err := l.Resize(len(values)); err != nil {
		l.Release()
		return List{}, err
	}
	for i, v := range values {
		if err := l.Set(i, v); err != nil {
			l.Release()
			return List{}, err
		}
	}
	return l, nil
}

// FromIterable appends every item of seq to a new list.
func (rt *Runtime) FromIterable(t ItemType, seq iter.Seq[any]) (List, error) {
	l, err := rt.New(t, 0)
	if err != nil {
		return List{}, err
	}
	if err := l.ExtendSeq(seq); err != nil {
		l.Release()
		return List{}, err
	}
	return l, nil
}

// Sorted materializes seq into a new list and sorts it.
func (rt *Runtime) Sorted(t ItemType, seq iter.Seq[any], reverse bool) (List, error) {
	l, err := rt.FromIterable(t, seq)
	if err != nil {
		return List{}, err
	}
	if err := l.Sort(reverse); err != nil {
		l.Release()
		return List{}, err
	}
	return l, nil
}
