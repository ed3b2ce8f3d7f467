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

import "errors"

type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindOutOfMemory
	KindIndexOutOfRange
	KindEmptyContainer
	KindValueNotFound
	KindSizeMismatch
	KindUnsupportedOperation
	KindTypeMismatch
	KindFault
)

var (
	ErrOutOfMemory          = errors.New("out of memory")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrEmptyContainer       = errors.New("empty container")
	ErrValueNotFound        = errors.New("value not found")
	ErrSizeMismatch         = errors.New("size mismatch")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrFault                = errors.New("fault")
)

var kindSentinels = map[ErrorKind]error{
	KindOutOfMemory:          ErrOutOfMemory,
	KindIndexOutOfRange:      ErrIndexOutOfRange,
	KindEmptyContainer:       ErrEmptyContainer,
	KindValueNotFound:        ErrValueNotFound,
	KindSizeMismatch:         ErrSizeMismatch,
	KindUnsupportedOperation: ErrUnsupportedOperation,
	KindTypeMismatch:         ErrTypeMismatch,
	KindFault:                ErrFault,
}

// Sentinel returns the error value errors.Is matches for this kind.
func (k ErrorKind) Sentinel() error {
	return kindSentinels[k]
}

func (k ErrorKind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return "error"
}

// Error is raised by generated code.
type Error struct {
	Kind  ErrorKind
	Func  string
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Msg
	if e.Func != "" {
		s = e.Func + ": " + s
	}
	if e.Cause != nil {
		s += " (" + e.Cause.Error() + ")"
	}
	return s
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

func (e *Error) Unwrap() error {
	return e.Cause
}
