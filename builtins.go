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

	"github.com/launix-de/listjit/listobj"
)

func compare(op string, a, b any) (any, error) {
	la, aIsList := a.(listobj.List)
	lb, bIsList := b.(listobj.List)
	switch op {
	case "in", "not in":
		if !bIsList {
			return nil, fmt.Errorf("argument of type '%s' is not iterable: %w", typeName(b), listobj.ErrTypeMismatch)
		}
		ok, err := lb.Contains(a)
		return ok == (op == "in"), err
	case "is", "is not":
		same := false
		if aIsList && bIsList {
			same = la.Is(lb)
		} else if !aIsList && !bIsList {
			same = a == b
		}
		return same == (op == "is"), nil
	}
	if aIsList && bIsList {
		switch op {
		case "==":
			return la.Equal(lb)
		case "!=":
			return la.NotEqual(lb)
		case "<":
			return la.Less(lb)
		case "<=":
			return la.LessEqual(lb)
		case ">":
			return la.Greater(lb)
		default:
			return la.GreaterEqual(lb)
		}
	}
	if aIsList || bIsList {
		switch op {
		case "==":
			return false, nil
		case "!=":
			return true, nil
		}
		return nil, fmt.Errorf("'%s' not supported between '%s' and '%s': %w", op, typeName(a), typeName(b), listobj.ErrTypeMismatch)
	}
	if ai, ok := asExactInt(a); ok {
		if bi, ok := asExactInt(b); ok {
			return ordered(op, ai, bi), nil
		}
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		switch op {
		case "==":
			return a == b, nil
		case "!=":
			return a != b, nil
		}
		return nil, fmt.Errorf("'%s' not supported between '%s' and '%s': %w", op, typeName(a), typeName(b), listobj.ErrTypeMismatch)
	}
	return ordered(op, af, bf), nil
}

func ordered[T int64 | float64](op string, a, b T) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	}
	return a >= b
}

// asExactInt rejects floats so that large integers compare without rounding
func asExactInt(v any) (int64, bool) {
	if _, ok := v.(float64); ok {
		return 0, false
	}
	n, err := asInt(v)
	return n, err == nil
}

func add(op string, a, b any) (any, error) {
	if la, ok := a.(listobj.List); ok && op == "+" {
		lb, ok := b.(listobj.List)
		if !ok {
			return nil, fmt.Errorf("can only concatenate list (not \"%s\") to list: %w", typeName(b), listobj.ErrTypeMismatch)
		}
		return la.Concat(lb)
	}
	return arith(op, a, b)
}

func mul(a, b any) (any, error) {
	if _, ok := b.(listobj.List); ok {
		a, b = b, a
	}
	if l, ok := a.(listobj.List); ok {
		n, err := asInt(b)
		if err != nil {
			return nil, fmt.Errorf("can't multiply sequence by non-int: %w", err)
		}
		return l.Mul(int(n))
	}
	return arith("*", a, b)
}

func index(v any, sub subscript) (any, error) {
	l, ok := v.(listobj.List)
	if !ok {
		return nil, fmt.Errorf("'%s' object is not subscriptable: %w", typeName(v), listobj.ErrTypeMismatch)
	}
	if sub.isSlice {
		return l.GetSlice(sub.slice)
	}
	item, err := l.Get(int(sub.index))
	return norm(item), err
}

func (a arguments) count(name string, min, max int) error {
	if len(a.pos) < min || len(a.pos) > max {
		if min == max {
			return fmt.Errorf("%s() takes exactly %d arguments (%d given)", name, min, len(a.pos))
		}
		return fmt.Errorf("%s() takes %d to %d arguments (%d given)", name, min, max, len(a.pos))
	}
	return nil
}

// flag reads an optional bool from the keyword or the positional slot i
func (a arguments) flag(name string, i int) bool {
	if v, ok := a.kw[name]; ok {
		return truth(v)
	}
	if i < len(a.pos) {
		return truth(a.pos[i])
	}
	return false
}

func (a arguments) list(name string, i int) (listobj.List, error) {
	l, ok := a.pos[i].(listobj.List)
	if !ok {
		return listobj.List{}, fmt.Errorf("%s() argument must be a list, not '%s': %w", name, typeName(a.pos[i]), listobj.ErrTypeMismatch)
	}
	return l, nil
}

func (a arguments) ints(from int) ([]int, error) {
	var result []int
	for _, v := range a.pos[from:] {
		n, err := asInt(v)
		if err != nil {
			return nil, err
		}
		result = append(result, int(n))
	}
	return result, nil
}

func (s *Session) builtin(name string, args arguments) (any, error) {
	switch name {
	case "len":
		if err := args.count(name, 1, 1); err != nil {
			return nil, err
		}
		l, err := args.list(name, 0)
		if err != nil {
			return nil, err
		}
		return int64(l.Len()), nil
	case "bool":
		if err := args.count(name, 0, 1); err != nil {
			return nil, err
		}
		return args.flag("", 0), nil
	case "list":
		if err := args.count(name, 0, 1); err != nil {
			return nil, err
		}
		if len(args.pos) == 0 {
			return s.rt.New(listobj.Int64, 0)
		}
		l, err := args.list(name, 0)
		if err != nil {
			return nil, err
		}
		return l.Copy()
	case "sorted":
		if err := args.count(name, 1, 1); err != nil {
			return nil, err
		}
		l, err := args.list(name, 0)
		if err != nil {
			return nil, err
		}
		return s.rt.Sorted(l.ItemType(), l.Values(), args.flag("reverse", 1))
	case "range":
		if err := args.count(name, 1, 3); err != nil {
			return nil, err
		}
		b, err := args.ints(0)
		if err != nil {
			return nil, err
		}
		start, stop, step := 0, b[0], 1
		if len(b) > 1 {
			start, stop = b[0], b[1]
		}
		if len(b) > 2 {
			step = b[2]
		}
		if step == 0 {
			return nil, fmt.Errorf("range() arg 3 must not be zero: %w", listobj.ErrUnsupportedOperation)
		}
		return s.rt.FromIterable(listobj.Int64, rangeSeq(int64(start), int64(stop), int64(step)))
	case "type":
		if err := args.count(name, 1, 1); err != nil {
			return nil, err
		}
		return typeName(args.pos[0]), nil
	}
	if typ, err := listobj.ItemTypeByName(name); err == nil {
		// int32(x) converts a list to another item type
		if err := args.count(name, 0, 1); err != nil {
			return nil, err
		}
		if len(args.pos) == 0 {
			return s.rt.New(typ, 0)
		}
		l, err := args.list(name, 0)
		if err != nil {
			return nil, err
		}
		return s.rt.FromIterable(typ, l.Values())
	}
	return nil, fmt.Errorf("name '%s' is not defined", name)
}

func (s *Session) method(recv any, name string, args arguments) (any, error) {
	l, ok := recv.(listobj.List)
	if !ok {
		return nil, fmt.Errorf("'%s' object has no attribute '%s'", typeName(recv), name)
	}
	switch name {
	case "append", "remove", "count", "extend":
		if err := args.count(name, 1, 1); err != nil {
			return nil, err
		}
	case "insert":
		if err := args.count(name, 2, 2); err != nil {
			return nil, err
		}
	case "pop":
		if err := args.count(name, 0, 1); err != nil {
			return nil, err
		}
	case "index":
		if err := args.count(name, 1, 3); err != nil {
			return nil, err
		}
	case "sort":
		if err := args.count(name, 0, 1); err != nil {
			return nil, err
		}
	case "resize":
		if err := args.count(name, 1, 1); err != nil {
			return nil, err
		}
	default:
		if err := args.count(name, 0, 0); err != nil {
			return nil, err
		}
	}

	switch name {
	case "append":
		return nil, l.Append(args.pos[0])
	case "insert":
		i, err := asInt(args.pos[0])
		if err != nil {
			return nil, err
		}
		return nil, l.Insert(int(i), args.pos[1])
	case "pop":
		if len(args.pos) == 0 {
			v, err := l.Pop()
			return norm(v), err
		}
		i, err := asInt(args.pos[0])
		if err != nil {
			return nil, err
		}
		v, err := l.PopAt(int(i))
		return norm(v), err
	case "remove":
		return nil, l.Remove(args.pos[0])
	case "index":
		bounds, err := args.ints(1)
		if err != nil {
			return nil, err
		}
		i, err := l.Index(args.pos[0], bounds...)
		return int64(i), err
	case "count":
		n, err := l.Count(args.pos[0])
		return int64(n), err
	case "reverse":
		return nil, l.Reverse()
	case "sort":
		return nil, l.Sort(args.flag("reverse", 0))
	case "extend":
		src, err := args.list(name, 0)
		if err != nil {
			return nil, err
		}
		return nil, l.Extend(src)
	case "copy":
		return l.Copy()
	case "clear":
		return nil, l.Clear()
	case "capacity":
		return int64(l.Capacity()), nil
	case "resize":
		n, err := asInt(args.pos[0])
		if err != nil {
			return nil, err
		}
		return nil, l.Resize(int(n))
	}
	return nil, fmt.Errorf("'list' object has no attribute '%s'", name)
}
