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

	"github.com/bits-and-blooms/bitset"
)

// reads and writes of one instruction
func (in *Inst) operands() (reads, writes []Value) {
	switch in.Op {
	case OpConst:
		return nil, []Value{in.Dst}
	case OpMov, OpNot, OpLoad, OpAlloc, OpData:
		return []Value{in.A}, []Value{in.Dst}
	case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpShl, OpShr, OpAnd, OpOr,
		OpEq, OpNe, OpLt, OpLe, OpFEq, OpFLt, OpFLe, OpRealloc:
		return []Value{in.A, in.B}, []Value{in.Dst}
	case OpAddOvf, OpMulOvf:
		return []Value{in.A, in.B}, []Value{in.Dst, in.Dst2}
	case OpSelect:
		return []Value{in.A, in.B, in.C}, []Value{in.Dst}
	case OpStore:
		return []Value{in.A, in.B}, nil
	case OpMove:
		return []Value{in.A, in.B, in.C}, nil
	case OpBr, OpBrz, OpIncref, OpDecref:
		return []Value{in.A}, nil
	case OpCall:
		return in.Args, in.Res
	case OpRaise, OpRet:
		return in.Args, nil
	}
	return nil, nil
}

func (in *Inst) isJump() bool {
	return in.Op == OpJmp || in.Op == OpBr || in.Op == OpBrz
}

func (in *Inst) isTerminator() bool {
	return in.Op == OpJmp || in.Op == OpRet || in.Op == OpRaise
}

// Verify checks structural invariants of a finished function: every
// register that is read is written somewhere, jumps stay inside the code,
// the function cannot fall off its end and returns have the declared arity.
func Verify(fn *Function) error {
	if len(fn.Code) == 0 {
		return fmt.Errorf("jit: %s: empty function", fn.Name)
	}
	written := bitset.New(uint(fn.NumRegs + 1))
	for i := 1; i <= fn.NumParams; i++ {
		written.Set(uint(i))
	}
	for _, in := range fn.Code {
		_, writes := in.operands()
		for _, r := range writes {
			if r == 0 || int(r) > fn.NumRegs {
				return fmt.Errorf("jit: %s: write to invalid register r%d", fn.Name, r)
			}
			written.Set(uint(r))
		}
	}
	for pc, in := range fn.Code {
		reads, _ := in.operands()
		for _, r := range reads {
			if r == 0 || !written.Test(uint(r)) {
				return fmt.Errorf("jit: %s: pc %d (%s) reads undefined register r%d", fn.Name, pc, in.Op, r)
			}
		}
		if in.isJump() && (in.Target < 0 || int(in.Target) >= len(fn.Code)) {
			return fmt.Errorf("jit: %s: pc %d jumps out of code to %d", fn.Name, pc, in.Target)
		}
		switch in.Op {
		case OpRet:
			if len(in.Args) != fn.NumResults {
				return fmt.Errorf("jit: %s: pc %d returns %d values, want %d", fn.Name, pc, len(in.Args), fn.NumResults)
			}
		case OpCall:
			intr := intrinsicByID(in.Imm)
			if intr == nil {
				return fmt.Errorf("jit: %s: pc %d calls unknown intrinsic %d", fn.Name, pc, in.Imm)
			}
			if len(in.Args) != intr.NumArgs {
				return fmt.Errorf("jit: %s: pc %d passes %d args to %s, want %d", fn.Name, pc, len(in.Args), intr.Name, intr.NumArgs)
			}
		case OpLoad, OpStore:
			switch in.Width {
			case 1, 2, 4, 8:
			default:
				return fmt.Errorf("jit: %s: pc %d has invalid width %d", fn.Name, pc, in.Width)
			}
		}
	}
	if !fn.Code[len(fn.Code)-1].isTerminator() {
		return fmt.Errorf("jit: %s: code falls off the end", fn.Name)
	}
	return nil
}
