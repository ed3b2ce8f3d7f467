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

// opraises loads a package, finds every declare("list.x", ...) call, and
// lists the error kinds the emitter of each operation can raise. Static
// calls and every function value an emitter hands on (If/Loop bodies,
// helper callbacks) are followed, so a kind may show up that one specific
// path never reaches.
//
// Usage:
//   go run ./tools/opraises/ ./listobj                  # table
//   go run ./tools/opraises/ -md ./listobj              # markdown table
//   go run ./tools/opraises/ -dump=list.pop ./listobj   # SSA dump of one emitter
package main

import (
	"fmt"
	"go/constant"
	"os"
	"sort"
	"strings"

	"github.com/launix-de/listjit/jit"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

const modulePath = "github.com/launix-de/listjit"

var dumpOp string
var markdown bool
var verbose bool

type operation struct {
	name string
	emit *ssa.Function
}

func main() {
	var dirs []string
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-dump=") {
			dumpOp = arg[len("-dump="):]
		} else if arg == "-md" {
			markdown = true
		} else if arg == "-v" || arg == "--verbose" {
			verbose = true
		} else {
			dirs = append(dirs, arg)
		}
	}
	if len(dirs) == 0 {
		fmt.Fprintf(os.Stderr, "usage: opraises [-md] [-dump=OP] [-v] <package dir> ...\n")
		os.Exit(1)
	}

	// Load packages with full type info for SSA
	cfg := &packages.Config{
		Mode: packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps | packages.NeedImports | packages.NeedName,
	}
	pkgs, err := packages.Load(cfg, dirs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load package: %v\n", err)
		os.Exit(1)
	}
	if len(pkgs) == 0 {
		fmt.Fprintf(os.Stderr, "no packages found\n")
		os.Exit(1)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}

	// Build SSA
	prog, _ := ssautil.AllPackages(pkgs, 0)
	prog.Build()

	ops := collectOperations(prog)
	sort.Slice(ops, func(i, j int) bool { return ops[i].name < ops[j].name })

	a := &analyzer{memo: map[*ssa.Function]kindSet{}}
	if markdown {
		fmt.Println("| operation | raises |")
		fmt.Println("|---|---|")
	}
	for _, op := range ops {
		if dumpOp == op.name {
			dumpSSA(op.emit)
		}
		kinds := a.raises(op.emit).String()
		if markdown {
			fmt.Printf("| `%s` | %s |\n", op.name, kinds)
		} else {
			fmt.Printf("  %-18s %s\n", op.name, kinds)
		}
	}
}

// collectOperations finds the calls of a declare helper whose first argument
// is a constant name and whose last argument is the emitter.
func collectOperations(prog *ssa.Program) []operation {
	var ops []operation
	for fn := range ssautil.AllFunctions(prog) {
		if !inModule(fn) {
			continue
		}
		for _, block := range fn.Blocks {
			for _, instr := range block.Instrs {
				call, ok := instr.(*ssa.Call)
				if !ok {
					continue
				}
				callee := call.Common().StaticCallee()
				if callee == nil || callee.Name() != "declare" || len(call.Common().Args) < 2 {
					continue
				}
				args := call.Common().Args
				name, ok := args[0].(*ssa.Const)
				if !ok || name.Value == nil || name.Value.Kind() != constant.String {
					continue
				}
				var emit *ssa.Function
				switch v := args[len(args)-1].(type) {
				case *ssa.Function:
					emit = v
				case *ssa.MakeClosure:
					emit = v.Fn.(*ssa.Function)
				}
				if emit == nil {
					fmt.Fprintf(os.Stderr, "  %s: emitter is not a function value\n", constant.StringVal(name.Value))
					continue
				}
				ops = append(ops, operation{constant.StringVal(name.Value), emit})
			}
		}
	}
	return ops
}

func inModule(fn *ssa.Function) bool {
	return fn.Pkg != nil && strings.HasPrefix(fn.Pkg.Pkg.Path(), modulePath)
}

// --- raise analysis ---

type kindSet uint32

func (ks kindSet) String() string {
	var names []string
	for k := jit.KindOutOfMemory; k <= jit.KindFault; k++ {
		if ks&(1<<k) != 0 {
			names = append(names, k.String())
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

type analyzer struct {
	memo map[*ssa.Function]kindSet
}

func isRaise(fn *ssa.Function) bool {
	return fn.Name() == "Raise" && fn.Signature.Recv() != nil && fn.Pkg != nil && fn.Pkg.Pkg.Path() == modulePath+"/jit"
}

func (a *analyzer) raises(fn *ssa.Function) kindSet {
	if ks, ok := a.memo[fn]; ok {
		return ks
	}
	a.memo[fn] = 0 // recursion guard
	var ks kindSet
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			if call, ok := instr.(ssa.CallInstruction); ok {
				if callee := call.Common().StaticCallee(); callee != nil && isRaise(callee) {
					if k, ok := call.Common().Args[1].(*ssa.Const); ok && k.Value != nil {
						n, _ := constant.Int64Val(k.Value)
						ks |= 1 << n
					} else if verbose {
						fmt.Fprintf(os.Stderr, "  %s: raise with a non-constant kind: %s\n", fn, instr)
					}
					continue
				}
			}
			for _, op := range instr.Operands(nil) {
				if op == nil || *op == nil {
					continue
				}
				if callee, ok := (*op).(*ssa.Function); ok && inModule(callee) {
					ks |= a.raises(callee)
				}
			}
		}
	}
	a.memo[fn] = ks
	return ks
}

// --- SSA dump ---

func dumpSSA(fn *ssa.Function) {
	fmt.Printf("\n  SSA for %s (%d blocks):\n", fn.Name(), len(fn.Blocks))
	for _, block := range fn.Blocks {
		fmt.Printf("    BB%d:", block.Index)
		if len(block.Preds) > 0 {
			preds := make([]string, len(block.Preds))
			for i, p := range block.Preds {
				preds[i] = fmt.Sprintf("BB%d", p.Index)
			}
			fmt.Printf(" <- %s", strings.Join(preds, ", "))
		}
		fmt.Println()
		for _, instr := range block.Instrs {
			fmt.Printf("      %-60s %T\n", instr, instr)
		}
		fmt.Println()
	}
	for _, anon := range fn.AnonFuncs {
		dumpSSA(anon)
	}
}
