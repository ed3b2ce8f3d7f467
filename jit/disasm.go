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
	"strconv"
	"strings"
)

func regList(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = "r" + strconv.Itoa(int(v))
	}
	return strings.Join(parts, ", ")
}

func (in *Inst) String() string {
	switch in.Op {
	case OpConst:
		return fmt.Sprintf("r%d = const %d", in.Dst, in.Imm)
	case OpMov, OpNot, OpAlloc, OpData:
		return fmt.Sprintf("r%d = %s r%d", in.Dst, in.Op, in.A)
	case OpAddOvf, OpMulOvf:
		return fmt.Sprintf("r%d, r%d = %s r%d, r%d", in.Dst, in.Dst2, in.Op, in.A, in.B)
	case OpSelect:
		return fmt.Sprintf("r%d = select r%d, r%d, r%d", in.Dst, in.A, in.B, in.C)
	case OpLoad:
		sign := "u"
		if in.Signed {
			sign = "s"
		}
		return fmt.Sprintf("r%d = load.%s%d [r%d%+d]", in.Dst, sign, in.Width*8, in.A, in.Imm)
	case OpStore:
		return fmt.Sprintf("store.%d [r%d%+d], r%d", in.Width*8, in.A, in.Imm, in.B)
	case OpMove:
		return fmt.Sprintf("memmove r%d, r%d, r%d", in.A, in.B, in.C)
	case OpJmp:
		return fmt.Sprintf("jmp @%d", in.Target)
	case OpBr, OpBrz:
		return fmt.Sprintf("%s r%d, @%d", in.Op, in.A, in.Target)
	case OpIncref, OpDecref:
		return fmt.Sprintf("%s r%d", in.Op, in.A)
	case OpCall:
		name := fmt.Sprint(in.Imm)
		if intr := intrinsicByID(in.Imm); intr != nil {
			name = intr.Name
		}
		if len(in.Res) == 0 {
			return fmt.Sprintf("call %s(%s)", name, regList(in.Args))
		}
		return fmt.Sprintf("%s = call %s(%s)", regList(in.Res), name, regList(in.Args))
	case OpRaise:
		return fmt.Sprintf("raise %s %q (%s)", in.Kind, in.Msg, regList(in.Args))
	case OpRet:
		return "ret " + regList(in.Args)
	case OpNop:
		return "nop"
	}
	return fmt.Sprintf("r%d = %s r%d, r%d", in.Dst, in.Op, in.A, in.B)
}

// String disassembles the function.
func (fn *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%d params) %d results, %d regs ; %s\n", fn.Name, fn.NumParams, fn.NumResults, fn.NumRegs, fn.ID)
	for pc := range fn.Code {
		fmt.Fprintf(&sb, "%5d  %s\n", pc, fn.Code[pc].String())
	}
	return sb.String()
}
