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

/*
Emitter Contract
================

Operations are not written as Go statements. Each Declaration provides an
Emit callback that writes instructions into a Builder:

	func(b *Builder, t TypeDesc)

Values:

  Every Value is a virtual int64 register. Registers are mutable: Var()
  allocates one, Set() overwrites it, so loop counters and accumulators are
  ordinary registers. Parameters occupy the first registers of a function.
  Value(0) is never allocated and means "no value".

Memory:

  Addresses are int64 values inside the nrt heap. The only way to get one is
  DataPtr(handle). Any instruction that may reallocate (Realloc, Call of an
  intrinsic) invalidates previously loaded addresses; emitters re-read the
  data pointer instead of caching it.

Control flow:

  Labels are reserved with ReserveLabel, placed with MarkLabel and resolved
  by ResolveFixups once the function is finished. Emitters should prefer the
  structured helpers If/IfElse/Loop/ForRange.

Errors:

  Raise terminates the function with a *Error. There is no unwinding, so an
  emitter that owns a fresh allocation must Decref it before raising.
*/

import (
	"github.com/google/uuid"
)

// Value is a virtual register.
type Value uint32

// Label is a jump target inside one function.
type Label uint16

// Op is an instruction opcode.
type Op uint8

const (
	OpNop Op = iota
	OpConst  // Dst = Imm
	OpMov    // Dst = A
	OpAdd    // Dst = A + B
	OpSub    // Dst = A - B
	OpMul    // Dst = A * B
	OpDiv    // Dst = A / B (truncated)
	OpRem    // Dst = A % B
	OpShl    // Dst = A << B
	OpShr    // Dst = A >> B (arithmetic)
	OpAnd    // Dst = A & B
	OpOr     // Dst = A | B
	OpAddOvf // Dst = A + B, Dst2 = overflow
	OpMulOvf // Dst = A * B, Dst2 = overflow
	OpEq     // Dst = A == B
	OpNe     // Dst = A != B
	OpLt     // Dst = A < B (signed)
	OpLe     // Dst = A <= B (signed)
	OpFEq    // Dst = float(A) == float(B)
	OpFLt    // Dst = float(A) < float(B)
	OpFLe    // Dst = float(A) <= float(B)
	OpNot    // Dst = A == 0
	OpSelect // Dst = A != 0 ? B : C
	OpLoad   // Dst = mem[A+Imm], Width bytes, Signed
	OpStore  // mem[A+Imm] = B, Width bytes
	OpMove   // memmove(A, B, C bytes)
	OpJmp    // goto Target
	OpBr     // if A != 0 goto Target
	OpBrz    // if A == 0 goto Target
	OpAlloc  // Dst = allocate(A), 0 on failure
	OpRealloc
	OpData   // Dst = data_pointer(A)
	OpIncref // incref(A)
	OpDecref // decref(A)
	OpCall   // Results = intrinsic[Imm](Args)
	OpRaise  // raise Kind(Msg % Args)
	OpRet    // return Args
	opCount
)

var opNames = [opCount]string{
	OpNop: "nop", OpConst: "const", OpMov: "mov", OpAdd: "add", OpSub: "sub",
	OpMul: "mul", OpDiv: "div", OpRem: "rem", OpShl: "shl", OpShr: "shr",
	OpAnd: "and", OpOr: "or", OpAddOvf: "add.ovf", OpMulOvf: "mul.ovf",
	OpEq: "eq", OpNe: "ne", OpLt: "lt", OpLe: "le", OpFEq: "feq", OpFLt: "flt",
	OpFLe: "fle", OpNot: "not", OpSelect: "select", OpLoad: "load",
	OpStore: "store", OpMove: "memmove", OpJmp: "jmp", OpBr: "br", OpBrz: "brz",
	OpAlloc: "nrt.alloc", OpRealloc: "nrt.realloc", OpData: "nrt.data",
	OpIncref: "nrt.incref", OpDecref: "nrt.decref", OpCall: "call",
	OpRaise: "raise", OpRet: "ret",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "op?"
}

// Inst is one instruction. Which fields are used depends on Op.
type Inst struct {
	Op     Op
	Dst    Value
	Dst2   Value
	A      Value
	B      Value
	C      Value
	Imm    int64
	Width  uint8
	Signed bool
	Target int32 // resolved jump target (pc)
	Kind   ErrorKind
	Msg    string
	Args   []Value
	Res    []Value
}

// JITFixup records a forward reference that must be patched after all
// labels are placed.
type JITFixup struct {
	CodePos int32 // instruction index
	LabelID Label
}

// Function is a finished, verified instruction sequence.
type Function struct {
	ID         uuid.UUID
	Name       string
	NumParams  int
	NumResults int
	NumRegs    int
	Code       []Inst
}

// TypeDesc describes the static type a specialization is compiled for.
type TypeDesc interface {
	Name() string
	Size() int64
}
