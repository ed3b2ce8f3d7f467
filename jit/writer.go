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

	"github.com/google/uuid"
)

// Builder is the platform-independent code emitter.
type Builder struct {
	Name       string
	numParams  int
	numResults int
	numRegs    int
	code       []Inst

	Labels []int32 // -1 until placed
	Fixups []JITFixup
}

func NewBuilder(name string, numParams, numResults int) *Builder {
	return &Builder{
		Name:       name,
		numParams:  numParams,
		numResults: numResults,
		numRegs:    numParams,
	}
}

// Param returns the register holding the i-th parameter.
func (b *Builder) Param(i int) Value {
	if i < 0 || i >= b.numParams {
		panic(fmt.Sprintf("jit: %s has no parameter %d", b.Name, i))
	}
	return Value(i + 1)
}

func (b *Builder) newReg() Value {
	b.numRegs++
	return Value(b.numRegs)
}

func (b *Builder) emit(in Inst) {
	b.code = append(b.code, in)
}

// Pos is the index of the next instruction.
func (b *Builder) Pos() int32 {
	return int32(len(b.code))
}

// DefineLabel allocates a new label at the current write position.
func (b *Builder) DefineLabel() Label {
	id := Label(len(b.Labels))
	b.Labels = append(b.Labels, b.Pos())
	return id
}

// ReserveLabel allocates a label ID for later placement via MarkLabel.
func (b *Builder) ReserveLabel() Label {
	id := Label(len(b.Labels))
	b.Labels = append(b.Labels, -1)
	return id
}

// MarkLabel sets the position of a previously reserved label.
func (b *Builder) MarkLabel(id Label) {
	b.Labels[id] = b.Pos()
}

// AddFixup records that the next instruction jumps to labelID.
func (b *Builder) AddFixup(labelID Label) {
	b.Fixups = append(b.Fixups, JITFixup{CodePos: b.Pos(), LabelID: labelID})
}

// ResolveFixups patches all recorded forward references after code generation.
func (b *Builder) ResolveFixups() error {
	for _, f := range b.Fixups {
		target := b.Labels[f.LabelID]
		if target < 0 {
			return fmt.Errorf("jit: %s: undefined label %d", b.Name, f.LabelID)
		}
		b.code[f.CodePos].Target = target
	}
	return nil
}

// Finish resolves labels, verifies the code and returns the function.
func (b *Builder) Finish() (*Function, error) {
	if err := b.ResolveFixups(); err != nil {
		return nil, err
	}
	fn := &Function{
		ID:         uuid.New(),
		Name:       b.Name,
		NumParams:  b.numParams,
		NumResults: b.numResults,
		NumRegs:    b.numRegs,
		Code:       b.code,
	}
	if err := Verify(fn); err != nil {
		return nil, err
	}
	return fn, nil
}

// --- values ---

func (b *Builder) Const(v int64) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpConst, Dst: dst, Imm: v})
	return dst
}

// Var allocates a mutable register initialized with init.
func (b *Builder) Var(init Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpMov, Dst: dst, A: init})
	return dst
}

// Set overwrites register dst.
func (b *Builder) Set(dst, src Value) {
	b.emit(Inst{Op: OpMov, Dst: dst, A: src})
}

func (b *Builder) binop(op Op, x, y Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: op, Dst: dst, A: x, B: y})
	return dst
}

func (b *Builder) Add(x, y Value) Value { return b.binop(OpAdd, x, y) }
func (b *Builder) Sub(x, y Value) Value { return b.binop(OpSub, x, y) }
func (b *Builder) Mul(x, y Value) Value { return b.binop(OpMul, x, y) }
func (b *Builder) Div(x, y Value) Value { return b.binop(OpDiv, x, y) }
func (b *Builder) Rem(x, y Value) Value { return b.binop(OpRem, x, y) }
func (b *Builder) Shl(x, y Value) Value { return b.binop(OpShl, x, y) }
func (b *Builder) Shr(x, y Value) Value { return b.binop(OpShr, x, y) }
func (b *Builder) And(x, y Value) Value { return b.binop(OpAnd, x, y) }
func (b *Builder) Or(x, y Value) Value  { return b.binop(OpOr, x, y) }

func (b *Builder) AddImm(x Value, imm int64) Value {
	return b.Add(x, b.Const(imm))
}

func (b *Builder) MulImm(x Value, imm int64) Value {
	return b.Mul(x, b.Const(imm))
}

// AddOvf returns x+y and a flag that is 1 on signed overflow.
func (b *Builder) AddOvf(x, y Value) (Value, Value) {
	dst, ovf := b.newReg(), b.newReg()
	b.emit(Inst{Op: OpAddOvf, Dst: dst, Dst2: ovf, A: x, B: y})
	return dst, ovf
}

// MulOvf returns x*y and a flag that is 1 on signed overflow.
func (b *Builder) MulOvf(x, y Value) (Value, Value) {
	dst, ovf := b.newReg(), b.newReg()
	b.emit(Inst{Op: OpMulOvf, Dst: dst, Dst2: ovf, A: x, B: y})
	return dst, ovf
}

func (b *Builder) Eq(x, y Value) Value  { return b.binop(OpEq, x, y) }
func (b *Builder) Ne(x, y Value) Value  { return b.binop(OpNe, x, y) }
func (b *Builder) Lt(x, y Value) Value  { return b.binop(OpLt, x, y) }
func (b *Builder) Le(x, y Value) Value  { return b.binop(OpLe, x, y) }
func (b *Builder) Gt(x, y Value) Value  { return b.binop(OpLt, y, x) }
func (b *Builder) Ge(x, y Value) Value  { return b.binop(OpLe, y, x) }
func (b *Builder) FEq(x, y Value) Value { return b.binop(OpFEq, x, y) }
func (b *Builder) FLt(x, y Value) Value { return b.binop(OpFLt, x, y) }
func (b *Builder) FLe(x, y Value) Value { return b.binop(OpFLe, x, y) }

func (b *Builder) Not(x Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpNot, Dst: dst, A: x})
	return dst
}

func (b *Builder) Select(cond, x, y Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpSelect, Dst: dst, A: cond, B: x, C: y})
	return dst
}

func (b *Builder) Min(x, y Value) Value { return b.Select(b.Lt(x, y), x, y) }
func (b *Builder) Max(x, y Value) Value { return b.Select(b.Lt(x, y), y, x) }

// --- memory ---

func (b *Builder) Load(addr Value, off int64, width int, signed bool) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpLoad, Dst: dst, A: addr, Imm: off, Width: uint8(width), Signed: signed})
	return dst
}

func (b *Builder) Store(addr Value, off int64, width int, v Value) {
	b.emit(Inst{Op: OpStore, A: addr, B: v, Imm: off, Width: uint8(width)})
}

// Move emits an overlap-safe memmove of n bytes.
func (b *Builder) Move(dst, src, n Value) {
	b.emit(Inst{Op: OpMove, A: dst, B: src, C: n})
}

// --- branches ---

func (b *Builder) Jmp(l Label) {
	b.AddFixup(l)
	b.emit(Inst{Op: OpJmp})
}

func (b *Builder) Br(cond Value, l Label) {
	b.AddFixup(l)
	b.emit(Inst{Op: OpBr, A: cond})
}

func (b *Builder) Brz(cond Value, l Label) {
	b.AddFixup(l)
	b.emit(Inst{Op: OpBrz, A: cond})
}

// --- refcounted allocator ---

// Alloc returns a fresh handle with refcount 1 or 0 if the allocator refused.
func (b *Builder) Alloc(size Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpAlloc, Dst: dst, A: size})
	return dst
}

// Realloc returns 1 on success and 0 if the allocator refused; the old
// allocation is intact in the latter case.
func (b *Builder) Realloc(handle, size Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpRealloc, Dst: dst, A: handle, B: size})
	return dst
}

func (b *Builder) DataPtr(handle Value) Value {
	dst := b.newReg()
	b.emit(Inst{Op: OpData, Dst: dst, A: handle})
	return dst
}

func (b *Builder) Incref(handle Value) {
	b.emit(Inst{Op: OpIncref, A: handle})
}

func (b *Builder) Decref(handle Value) {
	b.emit(Inst{Op: OpDecref, A: handle})
}

// --- calls and exits ---

// Call invokes a host intrinsic.
func (b *Builder) Call(in *Intrinsic, args ...Value) []Value {
	res := make([]Value, in.NumResults)
	for i := range res {
		res[i] = b.newReg()
	}
	b.emit(Inst{Op: OpCall, Imm: int64(in.ID), Args: args, Res: res})
	return res
}

// Raise terminates with an error; msg is a format string for args.
func (b *Builder) Raise(kind ErrorKind, msg string, args ...Value) {
	b.emit(Inst{Op: OpRaise, Kind: kind, Msg: msg, Args: args})
}

func (b *Builder) Ret(vals ...Value) {
	b.emit(Inst{Op: OpRet, Args: vals})
}
