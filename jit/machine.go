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
	"errors"
	"fmt"
	"math"

	"github.com/launix-de/listjit/nrt"
	"github.com/rs/zerolog"
)

// Machine executes functions against one heap. Every Run gets its own
// register frame, so intrinsics may call back into Run (sort comparators).
type Machine struct {
	Heap   *nrt.Heap
	Logger zerolog.Logger
	Steps  int64 // executed instructions
}

func NewMachine(heap *nrt.Heap, logger zerolog.Logger) *Machine {
	return &Machine{Heap: heap, Logger: logger}
}

func (m *Machine) fault(fn *Function, pc int, err error) error {
	return &Error{Kind: KindFault, Func: fn.Name, Msg: fmt.Sprintf("pc %d: %s", pc, fn.Code[pc].String()), Cause: err}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func signExtend(v uint64, width uint8) int64 {
	switch width {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	case 4:
		return int64(int32(v))
	}
	return int64(v)
}

func mulOverflows(a, b, p int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return true
	}
	return p/b != a
}

func f64(v int64) float64 {
	return math.Float64frombits(uint64(v))
}

// Run executes fn with the given arguments and returns its results.
func (m *Machine) Run(fn *Function, args ...int64) ([]int64, error) {
	if len(args) != fn.NumParams {
		return nil, fmt.Errorf("jit: %s expects %d arguments, got %d", fn.Name, fn.NumParams, len(args))
	}
	if tr := currentTrace(); tr != nil {
		tr.Event(fn.Name, "jit", "B")
		defer tr.Event(fn.Name, "jit", "E")
	}
	regs := make([]int64, fn.NumRegs+1)
	copy(regs[1:], args)
	code := fn.Code
	pc := 0
	for {
		in := &code[pc]
		m.Steps++
		next := pc + 1
		switch in.Op {
		case OpNop:
		case OpConst:
			regs[in.Dst] = in.Imm
		case OpMov:
			regs[in.Dst] = regs[in.A]
		case OpAdd:
			regs[in.Dst] = regs[in.A] + regs[in.B]
		case OpSub:
			regs[in.Dst] = regs[in.A] - regs[in.B]
		case OpMul:
			regs[in.Dst] = regs[in.A] * regs[in.B]
		case OpDiv, OpRem:
			if regs[in.B] == 0 {
				return nil, m.fault(fn, pc, errors.New("division by zero"))
			}
			if in.Op == OpDiv {
				regs[in.Dst] = regs[in.A] / regs[in.B]
			} else {
				regs[in.Dst] = regs[in.A] % regs[in.B]
			}
		case OpShl:
			if s := regs[in.B]; s < 0 || s > 63 {
				regs[in.Dst] = 0
			} else {
				regs[in.Dst] = regs[in.A] << s
			}
		case OpShr:
			s := regs[in.B]
			if s < 0 || s > 63 {
				s = 63
			}
			regs[in.Dst] = regs[in.A] >> s
		case OpAnd:
			regs[in.Dst] = regs[in.A] & regs[in.B]
		case OpOr:
			regs[in.Dst] = regs[in.A] | regs[in.B]
		case OpAddOvf:
			a, b := regs[in.A], regs[in.B]
			s := a + b
			regs[in.Dst] = s
			regs[in.Dst2] = boolToInt((a^s)&(b^s) < 0)
		case OpMulOvf:
			a, b := regs[in.A], regs[in.B]
			p := a * b
			regs[in.Dst] = p
			regs[in.Dst2] = boolToInt(mulOverflows(a, b, p))
		case OpEq:
			regs[in.Dst] = boolToInt(regs[in.A] == regs[in.B])
		case OpNe:
			regs[in.Dst] = boolToInt(regs[in.A] != regs[in.B])
		case OpLt:
			regs[in.Dst] = boolToInt(regs[in.A] < regs[in.B])
		case OpLe:
			regs[in.Dst] = boolToInt(regs[in.A] <= regs[in.B])
		case OpFEq:
			regs[in.Dst] = boolToInt(f64(regs[in.A]) == f64(regs[in.B]))
		case OpFLt:
			regs[in.Dst] = boolToInt(f64(regs[in.A]) < f64(regs[in.B]))
		case OpFLe:
			regs[in.Dst] = boolToInt(f64(regs[in.A]) <= f64(regs[in.B]))
		case OpNot:
			regs[in.Dst] = boolToInt(regs[in.A] == 0)
		case OpSelect:
			if regs[in.A] != 0 {
				regs[in.Dst] = regs[in.B]
			} else {
				regs[in.Dst] = regs[in.C]
			}
		case OpLoad:
			v, err := m.Heap.Load(regs[in.A]+in.Imm, int(in.Width))
			if err != nil {
				return nil, m.fault(fn, pc, err)
			}
			if in.Signed {
				regs[in.Dst] = signExtend(v, in.Width)
			} else {
				regs[in.Dst] = int64(v)
			}
		case OpStore:
			if err := m.Heap.Store(regs[in.A]+in.Imm, int(in.Width), uint64(regs[in.B])); err != nil {
				return nil, m.fault(fn, pc, err)
			}
		case OpMove:
			if err := m.Heap.Move(regs[in.A], regs[in.B], regs[in.C]); err != nil {
				return nil, m.fault(fn, pc, err)
			}
		case OpJmp:
			next = int(in.Target)
		case OpBr:
			if regs[in.A] != 0 {
				next = int(in.Target)
			}
		case OpBrz:
			if regs[in.A] == 0 {
				next = int(in.Target)
			}
		case OpAlloc:
			h, err := m.Heap.Allocate(regs[in.A])
			if err != nil {
				if !errors.Is(err, nrt.ErrLimit) {
					return nil, m.fault(fn, pc, err)
				}
				m.Logger.Debug().Str("func", fn.Name).Err(err).Msg("alloc refused")
			}
			regs[in.Dst] = int64(h)
		case OpRealloc:
			err := m.Heap.Reallocate(nrt.Handle(regs[in.A]), regs[in.B])
			if err != nil {
				if !errors.Is(err, nrt.ErrLimit) {
					return nil, m.fault(fn, pc, err)
				}
				m.Logger.Debug().Str("func", fn.Name).Err(err).Msg("realloc refused")
			}
			regs[in.Dst] = boolToInt(err == nil)
		case OpData:
			addr, err := m.Heap.Data(nrt.Handle(regs[in.A]))
			if err != nil {
				return nil, m.fault(fn, pc, err)
			}
			regs[in.Dst] = addr
		case OpIncref:
			if err := m.Heap.Incref(nrt.Handle(regs[in.A])); err != nil {
				return nil, m.fault(fn, pc, err)
			}
		case OpDecref:
			if err := m.Heap.Decref(nrt.Handle(regs[in.A])); err != nil {
				return nil, m.fault(fn, pc, err)
			}
		case OpCall:
			intr := intrinsicByID(in.Imm)
			vals := make([]int64, len(in.Args))
			for i, r := range in.Args {
				vals[i] = regs[r]
			}
			res, err := intr.Fn(m, vals)
			if err != nil {
				var jerr *Error
				if errors.As(err, &jerr) {
					return nil, err
				}
				return nil, m.fault(fn, pc, err)
			}
			if len(res) != len(in.Res) {
				return nil, m.fault(fn, pc, fmt.Errorf("%s returned %d values, want %d", intr.Name, len(res), len(in.Res)))
			}
			for i, r := range in.Res {
				regs[r] = res[i]
			}
		case OpRaise:
			vals := make([]any, len(in.Args))
			for i, r := range in.Args {
				vals[i] = regs[r]
			}
			msg := in.Msg
			if len(vals) > 0 {
				msg = fmt.Sprintf(in.Msg, vals...)
			}
			return nil, &Error{Kind: in.Kind, Func: fn.Name, Msg: msg}
		case OpRet:
			res := make([]int64, len(in.Args))
			for i, r := range in.Args {
				res[i] = regs[r]
			}
			return res, nil
		default:
			return nil, m.fault(fn, pc, fmt.Errorf("illegal opcode %d", in.Op))
		}
		pc = next
	}
}
