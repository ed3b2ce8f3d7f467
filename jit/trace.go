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
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Tracefile writes chrome://tracing compatible JSON.
type Tracefile struct {
	isFirst bool
	file    io.WriteCloser
	m       sync.Mutex
}

type traceEvent struct {
	Name  string         `json:"name"`
	Cat   string         `json:"cat"`
	Ph    string         `json:"ph"`
	Ts    int64          `json:"ts"`
	Pid   int            `json:"pid"`
	Tid   int            `json:"tid"`
	Scope string         `json:"s,omitempty"`
	Args  map[string]any `json:"args,omitempty"`
}

var (
	traceMu sync.Mutex
	Trace   *Tracefile // default trace: set to not nil if you want to trace
)

var start = time.Now()

// SetTrace closes the current trace and opens a new one in dir if on.
func SetTrace(on bool, dir string) error {
	traceMu.Lock()
	defer traceMu.Unlock()
	if Trace != nil {
		Trace.Close()
		Trace = nil
	}
	if !on {
		return nil
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("trace_%d.json", time.Now().Unix())))
	if err != nil {
		return err
	}
	Trace = NewTrace(f)
	return nil
}

func currentTrace() *Tracefile {
	traceMu.Lock()
	defer traceMu.Unlock()
	return Trace
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	return &Tracefile{file: file, isFirst: true}
}

func (t *Tracefile) Close() {
	t.m.Lock()
	defer t.m.Unlock()
	t.file.Write([]byte("]"))
	t.file.Close()
}

func (t *Tracefile) Duration(name string, cat string, f func()) {
	t.EventHalf(name, cat, "B", 0, 0)
	defer t.EventHalf(name, cat, "E", 0, 0)
	f()
}

func (t *Tracefile) Event(name string, cat string, typ string) {
	t.EventHalf(name, cat, typ, 0, 0)
}

func (t *Tracefile) EventHalf(name string, cat string, typ string, tid int, pid int) {
	t.EventFull(name, cat, typ, time.Since(start).Microseconds(), tid, pid)
}

/*
	@name string function
	@cat string comma separated categories (for filtering)
	@typ B/E for begin/end, X for events
	@ts timestamp in microseconds
*/
func (t *Tracefile) EventFull(name string, cat string, typ string, ts int64, tid int, pid int) {
	b, err := json.Marshal(traceEvent{Name: name, Cat: cat, Ph: typ, Ts: ts, Pid: pid, Tid: tid, Scope: "g"})
	if err != nil {
		return
	}
	t.m.Lock()
	defer t.m.Unlock()
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(",\n"))
	}
	t.file.Write(b)
}
