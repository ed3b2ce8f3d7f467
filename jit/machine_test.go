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
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/launix-de/listjit/nrt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testType struct{}

func (testType) Name() string { return "test" }
func (testType) Size() int64  { return 8 }

func newMachine(t *testing.T) *Machine {
	t.Helper()
	return NewMachine(nrt.NewHeap(nrt.Options{Limit: 1 << 20}), zerolog.Nop())
}

func run(t *testing.T, m *Machine, b *Builder, args ...int64) []int64 {
	t.Helper()
	fn, err := b.Finish()
	require.NoError(t, err)
	res, err := m.Run(fn, args...)
	require.NoError(t, err)
	return res
}

func TestArithmetic(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("arith", 2, 4)
	x, y := b.Param(0), b.Param(1)
	b.Ret(b.Add(x, y), b.Sub(x, y), b.Div(x, y), b.Max(x, y))
	assert.Equal(t, []int64{9, 5, 3, 7}, run(t, m, b, 7, 2))
}

func TestOverflowFlags(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("ovf", 2, 4)
	s, sovf := b.AddOvf(b.Param(0), b.Param(1))
	p, povf := b.MulOvf(b.Param(0), b.Param(1))
	b.Ret(s, sovf, p, povf)

	fn, err := b.Finish()
	require.NoError(t, err)
	cases := []struct {
		a, b   int64
		addOvf int64
		mulOvf int64
	}{
		{3, 4, 0, 0},
		{math.MaxInt64, 1, 1, 0},
		{math.MinInt64, -1, 1, 1},
		{1 << 31, 1 << 31, 0, 0},
		{1 << 32, 1 << 32, 0, 1},
		{0, math.MinInt64, 0, 0},
	}
	for _, c := range cases {
		res, err := m.Run(fn, c.a, c.b)
		require.NoError(t, err)
		assert.Equal(t, c.addOvf, res[1], "add %d %d", c.a, c.b)
		assert.Equal(t, c.mulOvf, res[3], "mul %d %d", c.a, c.b)
	}
}

func TestForRangeSum(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("sum", 1, 1)
	acc := b.Var(b.Const(0))
	b.ForRange(b.Const(0), b.Param(0), func(i Value, l *Loop) {
		b.If(b.Eq(i, b.Const(5)), l.Continue)
		b.Set(acc, b.Add(acc, i))
	})
	b.Ret(acc)
	assert.Equal(t, []int64{45 - 5}, run(t, m, b, 10))
	assert.Equal(t, []int64{0}, run(t, m, sumBuilder(), -3)[:1])
}

func sumBuilder() *Builder {
	b := NewBuilder("empty", 1, 1)
	acc := b.Var(b.Const(0))
	b.ForRange(b.Const(0), b.Param(0), func(i Value, l *Loop) {
		b.Set(acc, b.Add(acc, i))
	})
	b.Ret(acc)
	return b
}

func TestLoopBreak(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("firstpow", 1, 1)
	v := b.Var(b.Const(1))
	b.Loop(func(l *Loop) {
		l.BreakIf(b.Ge(v, b.Param(0)))
		b.Set(v, b.Shl(v, b.Const(1)))
	})
	b.Ret(v)
	assert.Equal(t, []int64{128}, run(t, m, b, 100))
}

func TestIfElse(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("sign", 1, 1)
	r := b.Var(b.Const(0))
	b.IfElse(b.Lt(b.Param(0), b.Const(0)), func() {
		b.Set(r, b.Const(-1))
	}, func() {
		b.If(b.Gt(b.Param(0), b.Const(0)), func() { b.Set(r, b.Const(1)) })
	})
	b.Ret(r)
	fn, err := b.Finish()
	require.NoError(t, err)
	for in, want := range map[int64]int64{-5: -1, 0: 0, 9: 1} {
		res, err := m.Run(fn, in)
		require.NoError(t, err)
		assert.Equal(t, want, res[0])
	}
}

func TestMemoryAndRefcount(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("mem", 0, 2)
	h := b.Alloc(b.Const(32))
	p := b.DataPtr(h)
	b.Store(p, 0, 4, b.Const(-2))
	b.Store(p, 8, 8, b.Const(77))
	b.Move(b.AddImm(p, 16), p, b.Const(16))
	b.Realloc(h, b.Const(64))
	p2 := b.DataPtr(h)
	signed := b.Load(p2, 16, 4, true)
	unsigned := b.Load(p2, 24, 8, false)
	b.Decref(h)
	b.Ret(signed, unsigned)
	assert.Equal(t, []int64{-2, 77}, run(t, m, b))
	assert.Equal(t, 0, m.Heap.Stats().LiveCount)
}

func TestAllocRefusedReturnsZero(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("big", 0, 1)
	b.Ret(b.Alloc(b.Const(1 << 30)))
	assert.Equal(t, []int64{0}, run(t, m, b))
}

func TestStaleAddressFaults(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("stale", 0, 1)
	h := b.Alloc(b.Const(16))
	p := b.DataPtr(h)
	b.Realloc(h, b.Const(32))
	b.Ret(b.Load(p, 0, 8, false))
	fn, err := b.Finish()
	require.NoError(t, err)
	_, err = m.Run(fn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFault))
	assert.True(t, errors.Is(err, nrt.ErrFault))
}

func TestRaise(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("guard", 1, 1)
	b.If(b.Lt(b.Param(0), b.Const(0)), func() {
		b.Raise(KindIndexOutOfRange, "index %d out of range", b.Param(0))
	})
	b.Ret(b.Param(0))
	fn, err := b.Finish()
	require.NoError(t, err)

	_, err = m.Run(fn, -4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.False(t, errors.Is(err, ErrValueNotFound))
	var jerr *Error
	require.True(t, errors.As(err, &jerr))
	assert.Equal(t, "guard", jerr.Func)
	assert.Equal(t, "index -4 out of range", jerr.Msg)

	res, err := m.Run(fn, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, res)
}

func TestDivisionByZeroFaults(t *testing.T) {
	m := newMachine(t)
	b := NewBuilder("div", 2, 1)
	b.Ret(b.Div(b.Param(0), b.Param(1)))
	fn, err := b.Finish()
	require.NoError(t, err)
	_, err = m.Run(fn, 1, 0)
	assert.True(t, errors.Is(err, ErrFault))
}

func TestIntrinsicCall(t *testing.T) {
	twice := RegisterIntrinsic("test.twice", 1, 1, func(m *Machine, args []int64) ([]int64, error) {
		return []int64{args[0] * 2}, nil
	})
	m := newMachine(t)
	b := NewBuilder("call", 1, 1)
	b.Ret(b.Call(twice, b.Param(0))[0])
	assert.Equal(t, []int64{42}, run(t, m, b, 21))
}

func TestVerifyRejects(t *testing.T) {
	t.Run("undefined register", func(t *testing.T) {
		fn := &Function{Name: "bad", NumRegs: 2, NumResults: 1, Code: []Inst{{Op: OpRet, Args: []Value{2}}}}
		assert.ErrorContains(t, Verify(fn), "undefined register")
	})
	t.Run("fall through", func(t *testing.T) {
		b := NewBuilder("open", 0, 0)
		b.Const(1)
		_, err := b.Finish()
		assert.ErrorContains(t, err, "falls off")
	})
	t.Run("arity", func(t *testing.T) {
		b := NewBuilder("arity", 0, 2)
		b.Ret(b.Const(1))
		_, err := b.Finish()
		assert.ErrorContains(t, err, "returns 1 values")
	})
	t.Run("unplaced label", func(t *testing.T) {
		b := NewBuilder("label", 0, 0)
		b.Jmp(b.ReserveLabel())
		_, err := b.Finish()
		assert.ErrorContains(t, err, "undefined label")
	})
}

func TestDisassembly(t *testing.T) {
	b := NewBuilder("disasm", 1, 1)
	b.If(b.Eq(b.Param(0), b.Const(0)), func() {
		b.Raise(KindEmptyContainer, "empty")
	})
	b.Ret(b.Load(b.Param(0), 8, 8, false))
	fn, err := b.Finish()
	require.NoError(t, err)
	s := fn.String()
	assert.Contains(t, s, "func disasm(1 params)")
	assert.Contains(t, s, "brz r3, @4")
	assert.Contains(t, s, "load.u64 [r1+8]")
	assert.Contains(t, s, `raise empty container "empty"`)
}

func TestSpecializeOnce(t *testing.T) {
	emitted := 0
	Declare(&Declaration{
		Name:       "test.inc",
		Desc:       "adds one",
		Params:     []DeclarationParameter{{Name: "x", Type: "int", Desc: "value"}},
		Returns:    "int",
		NumResults: 1,
		Emit: func(b *Builder, t TypeDesc) {
			emitted++
			b.Ret(b.AddImm(b.Param(0), 1))
		},
	})
	f1, err := Specialize("test.inc", testType{})
	require.NoError(t, err)
	f2, err := Specialize("test.inc", testType{})
	require.NoError(t, err)
	assert.Same(t, f1, f2)
	assert.Equal(t, 1, emitted)
	assert.Equal(t, "test.inc[test]", f1.Name)

	_, err = Specialize("test.missing", testType{})
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Help(&buf, "test.inc"))
	assert.Contains(t, buf.String(), "adds one")
}

func TestSpecializeRecoversPanics(t *testing.T) {
	Declare(&Declaration{
		Name:       "test.broken",
		NumResults: 0,
		Emit: func(b *Builder, t TypeDesc) {
			b.Param(3)
		},
	})
	_, err := Specialize("test.broken", testType{})
	assert.ErrorContains(t, err, "no parameter 3")
}

func TestTraceWritesJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SetTrace(true, dir))
	m := newMachine(t)
	b := NewBuilder("traced", 0, 0)
	b.Ret()
	run(t, m, b)
	require.NoError(t, SetTrace(false, ""))

	files, err := filepath.Glob(filepath.Join(dir, "trace_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "traced", events[0]["name"])
	assert.Equal(t, "B", events[0]["ph"])
	assert.Equal(t, "E", events[1]["ph"])
}

func TestDocumentation(t *testing.T) {
	DeclareTitle("Test")
	Declare(&Declaration{Name: "test.doc", Desc: "documented", Returns: "none", Emit: func(b *Builder, t TypeDesc) { b.Ret() }})
	dir := t.TempDir()
	require.NoError(t, WriteDocumentation(dir))
	data, err := os.ReadFile(filepath.Join(dir, "test.md"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "## test.doc"))
}
