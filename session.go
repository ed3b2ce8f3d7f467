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
package main

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/launix-de/listjit/jit"
	"github.com/launix-de/listjit/listobj"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Session evaluates the statement language of the prompt. Every list held
// in a variable owns one reference; every list an expression yields is a
// fresh reference the caller has to drop.
type Session struct {
	rt   *listobj.Runtime
	vars map[string]any
	out  io.Writer
}

func NewSession(rt *listobj.Runtime, out io.Writer) *Session {
	return &Session{rt: rt, vars: make(map[string]any), out: out}
}

// Close releases all variables.
func (s *Session) Close() {
	for name, v := range s.vars {
		drop(v)
		delete(s.vars, name)
	}
}

func drop(values ...any) {
	for _, v := range values {
		if l, ok := v.(listobj.List); ok {
			l.Release()
		}
	}
}

func (s *Session) setVar(name string, v any) {
	if old, ok := s.vars[name]; ok {
		drop(old)
	}
	s.vars[name] = v
}

// Exec runs one statement and returns the repr of its value ("" for
// statements without a value).
func (s *Session) Exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return "", nil
	}
	switch fields[0] {
	case "help":
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		return "", jit.Help(s.out, name)
	case "stats":
		s.printStats()
		return "", nil
	case "settings":
		res, err := listobj.ChangeSettings(fields[1:]...)
		if err != nil {
			return "", err
		}
		return formatSetting(res), nil
	case "vars":
		names := maps.Keys(s.vars)
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(s.out, "%s = %s\n", name, repr(s.vars[name]))
		}
		return "", nil
	}

	toks, err := lex(line)
	if err != nil {
		return "", err
	}
	if toks[0].kind == tokIdent && toks[0].text == "del" {
		return "", s.execDel(toks[1:])
	}
	if len(toks) > 2 && toks[0].kind == tokIdent && (toks[1].text == "+=" || toks[1].text == "*=") {
		return "", s.execCompound(toks[0].text, toks[1].text, toks[2:])
	}
	for i, t := range toks {
		if t.kind == tokOp && t.text == "=" && depthAt(toks, i) == 0 {
			return "", s.execAssign(toks[:i], toks[i:])
		}
	}
	p := &parser{s: s, toks: toks}
	v, err := p.parseAll()
	if err != nil {
		return "", err
	}
	defer drop(v)
	if v == nil {
		return "", nil
	}
	return repr(v), nil
}

func depthAt(toks []token, i int) int {
	depth := 0
	for _, t := range toks[:i] {
		switch t.text {
		case "[", "(":
			if t.kind == tokOp {
				depth++
			}
		case "]", ")":
			if t.kind == tokOp {
				depth--
			}
		}
	}
	return depth
}

func (s *Session) printStats() {
	st := s.rt.Stats()
	p := message.NewPrinter(language.English)
	p.Fprintf(s.out, "heap %s: %d live payloads, %s of %s\n", s.rt.Heap.ID, st.LiveCount,
		units.BytesSize(float64(st.LiveBytes)), units.BytesSize(float64(s.rt.Heap.Limit())))
	p.Fprintf(s.out, "allocs %d, reallocs %d, refused %d\n", st.Allocs, st.Reallocs, st.Failures)
	p.Fprintf(s.out, "specializations %d, steps %d\n", jit.Specializations(), s.rt.Steps())
}

func formatSetting(v any) string {
	if m, ok := v.(map[string]any); ok {
		keys := maps.Keys(m)
		slices.Sort(keys)
		var sb strings.Builder
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%s: %s", k, repr(m[k]))
		}
		return sb.String()
	}
	return repr(v)
}

// target is the left side of an assignment or a del
type target struct {
	name string
	sub  *subscript
}

func (s *Session) parseTarget(toks []token) (target, error) {
	p := &parser{s: s, toks: append(toks[:len(toks):len(toks)], token{kind: tokEOF})}
	name := p.next()
	if name.kind != tokIdent {
		return target{}, fmt.Errorf("cannot assign to %s", name)
	}
	t := target{name: name.text}
	if p.accept("[") {
		sub, err := p.parseSubscript()
		if err != nil {
			return target{}, err
		}
		t.sub = &sub
	}
	if p.peek().kind != tokEOF {
		return target{}, fmt.Errorf("unexpected %s in assignment target", p.peek())
	}
	return t, nil
}

func (s *Session) targetList(t target) (listobj.List, error) {
	v, ok := s.vars[t.name]
	if !ok {
		return listobj.List{}, fmt.Errorf("name '%s' is not defined", t.name)
	}
	l, ok := v.(listobj.List)
	if !ok {
		return listobj.List{}, fmt.Errorf("'%s' object does not support item assignment: %w", typeName(v), listobj.ErrTypeMismatch)
	}
	return l, nil
}

func (s *Session) execAssign(lhs, rhs []token) error {
	t, err := s.parseTarget(lhs)
	if err != nil {
		return err
	}
	p := &parser{s: s, toks: rhs[1:]}
	v, err := p.parseAll()
	if err != nil {
		return err
	}
	if t.sub == nil {
		s.setVar(t.name, v)
		return nil
	}
	defer drop(v)
	l, err := s.targetList(t)
	if err != nil {
		return err
	}
	if !t.sub.isSlice {
		return l.Set(int(t.sub.index), v)
	}
	src, ok := v.(listobj.List)
	if !ok {
		return fmt.Errorf("can only assign a list to a slice, not %s: %w", typeName(v), listobj.ErrTypeMismatch)
	}
	return l.SetSlice(t.sub.slice, src)
}

func (s *Session) execCompound(name, op string, rhs []token) error {
	cur, ok := s.vars[name]
	if !ok {
		return fmt.Errorf("name '%s' is not defined", name)
	}
	p := &parser{s: s, toks: rhs}
	v, err := p.parseAll()
	if err != nil {
		return err
	}
	defer drop(v)
	if l, ok := cur.(listobj.List); ok {
		if op == "+=" {
			src, ok := v.(listobj.List)
			if !ok {
				return fmt.Errorf("can only concatenate list to list: %w", listobj.ErrTypeMismatch)
			}
			return l.IAdd(src)
		}
		n, err := asInt(v)
		if err != nil {
			return err
		}
		return l.IMul(int(n))
	}
	var res any
	if op == "+=" {
		res, err = arith("+", cur, v)
	} else {
		res, err = arith("*", cur, v)
	}
	if err != nil {
		return err
	}
	s.vars[name] = res
	return nil
}

func (s *Session) execDel(toks []token) error {
	t, err := s.parseTarget(toks[:len(toks)-1])
	if err != nil {
		return err
	}
	if t.sub == nil {
		v, ok := s.vars[t.name]
		if !ok {
			return fmt.Errorf("name '%s' is not defined", t.name)
		}
		drop(v)
		delete(s.vars, t.name)
		return nil
	}
	l, err := s.targetList(t)
	if err != nil {
		return err
	}
	if t.sub.isSlice {
		return l.DelSlice(t.sub.slice)
	}
	return l.DelItem(int(t.sub.index))
}

// --- values ---

func typeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "NoneType"
	case listobj.List:
		return "list[" + x.ItemType().Name() + "]"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	}
	return fmt.Sprintf("%T", v)
}

// norm widens boxed items to the interpreter's number types
func norm(v any) any {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case int:
		return int64(x)
	}
	return v
}

func repr(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case listobj.List:
		return x.String()
	case bool:
		return listobj.Bool.Format(boolBits(x))
	case float64:
		return listobj.Float64.Format(int64(math.Float64bits(x)))
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return strconv.Quote(x)
	}
	return fmt.Sprint(v)
}

func boolBits(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func asInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case bool:
		return boolBits(x), nil
	}
	return 0, fmt.Errorf("'%s' object cannot be interpreted as an integer: %w", typeName(v), listobj.ErrTypeMismatch)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case bool:
		return float64(boolBits(x)), true
	case float64:
		return x, true
	}
	return 0, false
}

func truth(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case listobj.List:
		return x.Bool()
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

// inferType picks the item type of an untyped literal
func inferType(items []any) listobj.ItemType {
	if len(items) == 0 {
		return listobj.Int64
	}
	allBool := true
	for _, v := range items {
		switch v.(type) {
		case float64:
			return listobj.Float64
		case bool:
		default:
			allBool = false
		}
	}
	if allBool {
		return listobj.Bool
	}
	return listobj.Int64
}

func arith(op string, a, b any) (any, error) {
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			switch op {
			case "+":
				return ai + bi, nil
			case "-":
				return ai - bi, nil
			case "*":
				return ai * bi, nil
			}
		}
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return nil, fmt.Errorf("unsupported operand types for %s: '%s' and '%s': %w", op, typeName(a), typeName(b), listobj.ErrTypeMismatch)
	}
	switch op {
	case "+":
		return af + bf, nil
	case "-":
		return af - bf, nil
	}
	return af * bf, nil
}

// rangeSeq yields the integers of range(start, stop, step)
func rangeSeq(start, stop, step int64) iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			if !yield(i) {
				return
			}
		}
	}
}
