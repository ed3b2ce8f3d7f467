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
	"math"
	"strconv"
	"strings"

	"github.com/launix-de/listjit/jit"
)

// ItemType is the per-element metadata a list is specialized for. Values
// travel through registers as int64; floats as their IEEE bits.
type ItemType interface {
	jit.TypeDesc
	EmitLoad(b *jit.Builder, addr jit.Value, off int64) jit.Value
	EmitStore(b *jit.Builder, addr jit.Value, off int64, v jit.Value)
	EmitEq(b *jit.Builder, x, y jit.Value) jit.Value
	EmitLt(b *jit.Builder, x, y jit.Value) jit.Value
	Box(v int64) any
	Unbox(v any) (int64, error)
	Format(v int64) string
}

type scalarKind uint8

const (
	kindInt scalarKind = iota
	kindUint
	kindFloat
	kindBool
)

type scalarType struct {
	name string
	size int64
	kind scalarKind
}

var (
	Int64   ItemType = &scalarType{"int64", 8, kindInt}
	Int32   ItemType = &scalarType{"int32", 4, kindInt}
	Uint8   ItemType = &scalarType{"uint8", 1, kindUint}
	Float64 ItemType = &scalarType{"float64", 8, kindFloat}
	Bool    ItemType = &scalarType{"bool", 1, kindBool}
)

var itemTypes = map[string]ItemType{
	"int64": Int64, "int": Int64,
	"int32":   Int32,
	"uint8":   Uint8, "byte": Uint8,
	"float64": Float64, "float": Float64,
	"bool": Bool,
}

// ItemTypeByName resolves the names accepted by the REPL and the CLI.
func ItemTypeByName(name string) (ItemType, error) {
	if t, ok := itemTypes[strings.ToLower(name)]; ok {
		return t, nil
	}
	if name == "list" {
		return nil, fmt.Errorf("nested lists: %w", ErrUnsupportedOperation)
	}
	return nil, fmt.Errorf("unknown item type %q: %w", name, ErrTypeMismatch)
}

func (s *scalarType) Name() string { return s.name }
func (s *scalarType) Size() int64  { return s.size }

func (s *scalarType) EmitLoad(b *jit.Builder, addr jit.Value, off int64) jit.Value {
	return b.Load(addr, off, int(s.size), s.kind == kindInt)
}

func (s *scalarType) EmitStore(b *jit.Builder, addr jit.Value, off int64, v jit.Value) {
	b.Store(addr, off, int(s.size), v)
}

func (s *scalarType) EmitEq(b *jit.Builder, x, y jit.Value) jit.Value {
	if s.kind == kindFloat {
		return b.FEq(x, y)
	}
	return b.Eq(x, y)
}

func (s *scalarType) EmitLt(b *jit.Builder, x, y jit.Value) jit.Value {
	if s.kind == kindFloat {
		return b.FLt(x, y)
	}
	return b.Lt(x, y)
}

func (s *scalarType) Box(v int64) any {
	switch s.kind {
	case kindFloat:
		return math.Float64frombits(uint64(v))
	case kindBool:
		return v != 0
	}
	switch s.size {
	case 1:
		return uint8(v)
	case 4:
		return int32(v)
	}
	return v
}

func (s *scalarType) Unbox(v any) (int64, error) {
	var i int64
	switch x := v.(type) {
	case bool:
		if s.kind != kindBool {
			return 0, fmt.Errorf("bool in %s list: %w", s.name, ErrTypeMismatch)
		}
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		if s.kind == kindFloat {
			return int64(math.Float64bits(x)), nil
		}
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("%v in %s list: %w", x, s.name, ErrTypeMismatch)
		}
		i = int64(x)
	case int:
		i = int64(x)
	case int64:
		i = x
	case int32:
		i = int64(x)
	case uint8:
		i = int64(x)
	default:
		return 0, fmt.Errorf("%T in %s list: %w", v, s.name, ErrTypeMismatch)
	}
	switch s.kind {
	case kindFloat:
		return int64(math.Float64bits(float64(i))), nil
	case kindBool:
		return 0, fmt.Errorf("%d in bool list: %w", i, ErrTypeMismatch)
	case kindUint:
		if i < 0 || i > math.MaxUint8 {
			return 0, fmt.Errorf("%d out of range for %s: %w", i, s.name, ErrTypeMismatch)
		}
	default:
		if s.size == 4 && (i < math.MinInt32 || i > math.MaxInt32) {
			return 0, fmt.Errorf("%d out of range for %s: %w", i, s.name, ErrTypeMismatch)
		}
	}
	return i, nil
}

// Format renders one item the way Python's repr does.
func (s *scalarType) Format(v int64) string {
	switch s.kind {
	case kindBool:
		if v != 0 {
			return "True"
		}
		return "False"
	case kindFloat:
		f := math.Float64frombits(uint64(v))
		switch {
		case math.IsNaN(f):
			return "nan"
		case math.IsInf(f, 1):
			return "inf"
		case math.IsInf(f, -1):
			return "-inf"
		}
		r := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(r, ".eE") {
			r += ".0"
		}
		return r
	}
	return strconv.FormatInt(v, 10)
}
