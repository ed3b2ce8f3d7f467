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

// If emits then() guarded by cond != 0.
func (b *Builder) If(cond Value, then func()) {
	end := b.ReserveLabel()
	b.Brz(cond, end)
	then()
	b.MarkLabel(end)
}

func (b *Builder) IfElse(cond Value, then, els func()) {
	otherwise := b.ReserveLabel()
	end := b.ReserveLabel()
	b.Brz(cond, otherwise)
	then()
	b.Jmp(end)
	b.MarkLabel(otherwise)
	els()
	b.MarkLabel(end)
}

// Loop is the control handle passed to loop bodies.
type Loop struct {
	b    *Builder
	next Label
	end  Label
}

// Break leaves the loop.
func (l *Loop) Break() {
	l.b.Jmp(l.end)
}

func (l *Loop) BreakIf(cond Value) {
	l.b.Br(cond, l.end)
}

func (l *Loop) BreakUnless(cond Value) {
	l.b.Brz(cond, l.end)
}

// Continue jumps to the next iteration (after the counter step in ForRange).
func (l *Loop) Continue() {
	l.b.Jmp(l.next)
}

// Loop repeats body until it breaks.
func (b *Builder) Loop(body func(l *Loop)) {
	top := b.DefineLabel()
	l := &Loop{b: b, next: top, end: b.ReserveLabel()}
	body(l)
	b.Jmp(top)
	b.MarkLabel(l.end)
}

// ForRange runs body for i in [start, stop) with step 1. stop is read on
// every iteration.
func (b *Builder) ForRange(start, stop Value, body func(i Value, l *Loop)) {
	i := b.Var(start)
	top := b.DefineLabel()
	l := &Loop{b: b, next: b.ReserveLabel(), end: b.ReserveLabel()}
	l.BreakIf(b.Ge(i, stop))
	body(i, l)
	b.MarkLabel(l.next)
	b.Set(i, b.AddImm(i, 1))
	b.Jmp(top)
	b.MarkLabel(l.end)
}
