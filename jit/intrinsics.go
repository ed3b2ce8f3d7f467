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
package jit

import (
	"fmt"
	"sync"
)

// IntrinsicFunc is host code callable from generated code.
type IntrinsicFunc func(m *Machine, args []int64) ([]int64, error)

type Intrinsic struct {
	ID         int
	Name       string
	NumArgs    int
	NumResults int
	Fn         IntrinsicFunc
}

var (
	intrinsicMu sync.RWMutex
	intrinsics  []*Intrinsic
	functionMu  sync.RWMutex
	functions   []*Function // compiled functions addressable by index
)

// RegisterIntrinsic makes fn callable through Builder.Call.
func RegisterIntrinsic(name string, numArgs, numResults int, fn IntrinsicFunc) *Intrinsic {
	intrinsicMu.Lock()
	defer intrinsicMu.Unlock()
	in := &Intrinsic{ID: len(intrinsics), Name: name, NumArgs: numArgs, NumResults: numResults, Fn: fn}
	intrinsics = append(intrinsics, in)
	return in
}

func intrinsicByID(id int64) *Intrinsic {
	intrinsicMu.RLock()
	defer intrinsicMu.RUnlock()
	if id < 0 || id >= int64(len(intrinsics)) {
		return nil
	}
	return intrinsics[id]
}

// FunctionRef returns a stable index for fn that generated code can pass
// around as a plain value (e.g. comparators for sort).
func FunctionRef(fn *Function) int64 {
	functionMu.Lock()
	defer functionMu.Unlock()
	for i, f := range functions {
		if f == fn {
			return int64(i)
		}
	}
	functions = append(functions, fn)
	return int64(len(functions) - 1)
}

func FunctionByRef(ref int64) (*Function, error) {
	functionMu.RLock()
	defer functionMu.RUnlock()
	if ref < 0 || ref >= int64(len(functions)) {
		return nil, fmt.Errorf("jit: unknown function ref %d", ref)
	}
	return functions[ref], nil
}
