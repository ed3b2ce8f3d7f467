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
	"errors"
	"fmt"
	"strings"
	"unicode"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of line"
	}
	return fmt.Sprintf("%q", t.text)
}

// errIncomplete asks the prompt for a continuation line
var errIncomplete = errors.New("expecting matching ]")

var operators = []string{"==", "!=", "<=", ">=", "+=", "*=", "<", ">", "=", "+", "-", "*", "[", "]", "(", ")", ",", ":", "."}

func lex(line string) ([]token, error) {
	var toks []token
	depth := 0
	for i := 0; i < len(line); {
		c := rune(line[i])
		switch {
		case c == '#':
			i = len(line)
		case unicode.IsSpace(c):
			i++
		case c == '_' || unicode.IsLetter(c):
			j := i
			for j < len(line) && (line[j] == '_' || unicode.IsLetter(rune(line[j])) || unicode.IsDigit(rune(line[j]))) {
				j++
			}
			toks = append(toks, token{tokIdent, line[i:j], i})
			i = j
		case unicode.IsDigit(c):
			j, kind := i, tokInt
			for j < len(line) && (unicode.IsDigit(rune(line[j])) || line[j] == '.' || line[j] == 'e' || line[j] == '_') {
				if line[j] == '.' || line[j] == 'e' {
					kind = tokFloat
				}
				if line[j] == 'e' && j+1 < len(line) && (line[j+1] == '-' || line[j+1] == '+') {
					j++
				}
				j++
			}
			toks = append(toks, token{kind, strings.ReplaceAll(line[i:j], "_", ""), i})
			i = j
		case c == '"' || c == '\'':
			j := strings.IndexByte(line[i+1:], line[i])
			if j < 0 {
				return nil, fmt.Errorf("unterminated string at %d", i)
			}
			toks = append(toks, token{tokString, line[i+1 : i+1+j], i})
			i += j + 2
		default:
			op := ""
			for _, o := range operators {
				if strings.HasPrefix(line[i:], o) {
					op = o
					break
				}
			}
			if op == "" {
				return nil, fmt.Errorf("unexpected character %q at %d", c, i)
			}
			switch op {
			case "[", "(":
				depth++
			case "]", ")":
				depth--
			}
			toks = append(toks, token{tokOp, op, i})
			i += len(op)
		}
	}
	if depth > 0 {
		return nil, errIncomplete
	}
	return append(toks, token{tokEOF, "", len(line)}), nil
}
