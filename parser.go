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
	"math"
	"strconv"

	"github.com/launix-de/listjit/listobj"
)

// parser evaluates while it parses; there is no syntax tree.
type parser struct {
	s    *Session
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) isWord(text string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.isOp(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return fmt.Errorf("expected %q, got %s", text, p.peek())
	}
	return nil
}

// parseAll evaluates one expression spanning all tokens
func (p *parser) parseAll() (any, error) {
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		drop(v)
		return nil, fmt.Errorf("unexpected %s", p.peek())
	}
	return v, nil
}

func (p *parser) parseExpr() (any, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	op := ""
	switch t := p.peek(); {
	case t.kind == tokOp && (t.text == "==" || t.text == "!=" || t.text == "<" || t.text == "<=" || t.text == ">" || t.text == ">="):
		op = t.text
	case p.isWord("in"):
		op = "in"
	case p.isWord("is"):
		op = "is"
	case p.isWord("not"):
		op = "not"
	default:
		return left, nil
	}
	p.next()
	if op == "is" && p.isWord("not") {
		p.next()
		op = "is not"
	} else if op == "not" {
		if !p.isWord("in") {
			drop(left)
			return nil, fmt.Errorf("expected \"in\" after \"not\", got %s", p.peek())
		}
		p.next()
		op = "not in"
	}
	right, err := p.parseSum()
	if err != nil {
		drop(left)
		return nil, err
	}
	defer drop(left, right)
	return compare(op, left, right)
}

func (p *parser) parseSum() (any, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		right, err := p.parseProduct()
		if err != nil {
			drop(left)
			return nil, err
		}
		res, err := add(op, left, right)
		drop(left, right)
		if err != nil {
			return nil, err
		}
		left = res
	}
	return left, nil
}

func (p *parser) parseProduct() (any, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept("*") {
		right, err := p.parseUnary()
		if err != nil {
			drop(left)
			return nil, err
		}
		res, err := mul(left, right)
		drop(left, right)
		if err != nil {
			return nil, err
		}
		left = res
	}
	return left, nil
}

func (p *parser) parseUnary() (any, error) {
	if p.accept("-") {
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}
		drop(v)
		return nil, fmt.Errorf("bad operand type for unary -: '%s': %w", typeName(v), listobj.ErrTypeMismatch)
	}
	if p.isWord("not") {
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		defer drop(v)
		return !truth(v), nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (any, error) {
	v, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("["):
			sub, err := p.parseSubscript()
			if err != nil {
				drop(v)
				return nil, err
			}
			res, err := index(v, sub)
			drop(v)
			if err != nil {
				return nil, err
			}
			v = res
		case p.accept("."):
			name := p.next()
			if name.kind != tokIdent {
				drop(v)
				return nil, fmt.Errorf("expected method name, got %s", name)
			}
			if err := p.expect("("); err != nil {
				drop(v)
				return nil, err
			}
			args, err := p.parseArgs()
			if err != nil {
				drop(v)
				return nil, err
			}
			res, err := p.s.method(v, name.text, args)
			drop(v)
			args.drop()
			if err != nil {
				return nil, err
			}
			v = res
		default:
			return v, nil
		}
	}
}

func (p *parser) parsePrimary() (any, error) {
	t := p.next()
	switch t.kind {
	case tokInt:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer %s: %w", t.text, err)
		}
		return n, nil
	case tokFloat:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float %s: %w", t.text, err)
		}
		return f, nil
	case tokString:
		return t.text, nil
	case tokIdent:
		switch t.text {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		case "inf":
			return math.Inf(1), nil
		case "nan":
			return math.NaN(), nil
		}
		if p.accept("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			defer args.drop()
			return p.s.builtin(t.text, args)
		}
		if v, ok := p.s.vars[t.text]; ok {
			if l, ok := v.(listobj.List); ok {
				return l.Ref()
			}
			return v, nil
		}
		if p.isOp("[") {
			if typ, err := listobj.ItemTypeByName(t.text); err == nil {
				p.next()
				return p.parseListLiteral(typ)
			}
		}
		return nil, fmt.Errorf("name '%s' is not defined", t.text)
	case tokOp:
		switch t.text {
		case "[":
			return p.parseListLiteral(nil)
		case "(":
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				drop(v)
				return nil, err
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("unexpected %s", t)
}

// parseListLiteral reads the items after "["; typ nil infers the item type
func (p *parser) parseListLiteral(typ listobj.ItemType) (any, error) {
	var items []any
	for !p.accept("]") {
		if len(items) > 0 {
			if err := p.expect(","); err != nil {
				drop(items...)
				return nil, err
			}
			if p.accept("]") {
				break
			}
		}
		v, err := p.parseExpr()
		if err != nil {
			drop(items...)
			return nil, err
		}
		items = append(items, v)
	}
	if typ == nil {
		typ = inferType(items)
	}
	l, err := p.s.rt.FromValues(typ, items...)
	drop(items...)
	if err != nil {
		return nil, err
	}
	return l, nil
}

type subscript struct {
	isSlice bool
	index   int64
	slice   listobj.Slice
}

// parseSubscript reads everything after "[" up to and including "]"
func (p *parser) parseSubscript() (subscript, error) {
	var bounds [3]listobj.Bound
	var present [3]bool
	part := 0
	for {
		if !p.isOp(":") && !p.isOp("]") {
			v, err := p.parseExpr()
			if err != nil {
				return subscript{}, err
			}
			if v != nil {
				n, err := asInt(v)
				drop(v)
				if err != nil {
					return subscript{}, fmt.Errorf("list indices must be integers: %w", err)
				}
				bounds[part] = listobj.At(n)
				present[part] = true
			}
		}
		if p.accept("]") {
			break
		}
		if part == 2 {
			return subscript{}, fmt.Errorf("expected \"]\", got %s", p.peek())
		}
		if err := p.expect(":"); err != nil {
			return subscript{}, err
		}
		part++
	}
	if part == 0 {
		if !present[0] {
			return subscript{}, fmt.Errorf("empty subscript")
		}
		n, _ := bounds[0].Get()
		return subscript{index: n}, nil
	}
	step := int64(1)
	if present[2] {
		step, _ = bounds[2].Get()
	}
	s, err := listobj.NewSlice(bounds[0], bounds[1], step)
	if err != nil {
		return subscript{}, err
	}
	return subscript{isSlice: true, slice: s}, nil
}

type arguments struct {
	pos []any
	kw  map[string]any
}

func (a arguments) drop() {
	drop(a.pos...)
	for _, v := range a.kw {
		drop(v)
	}
}

// parseArgs reads everything after "(" up to and including ")"
func (p *parser) parseArgs() (arguments, error) {
	args := arguments{kw: map[string]any{}}
	for !p.accept(")") {
		if len(args.pos)+len(args.kw) > 0 {
			if err := p.expect(","); err != nil {
				args.drop()
				return arguments{}, err
			}
		}
		if p.peek().kind == tokIdent && p.toks[p.pos+1].kind == tokOp && p.toks[p.pos+1].text == "=" {
			name := p.next().text
			p.next()
			v, err := p.parseExpr()
			if err != nil {
				args.drop()
				return arguments{}, err
			}
			args.kw[name] = v
			continue
		}
		v, err := p.parseExpr()
		if err != nil {
			args.drop()
			return arguments{}, err
		}
		args.pos = append(args.pos, v)
	}
	return args, nil
}
