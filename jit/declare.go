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
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Declaration describes one operation. Emit writes its body for a given
// item type; every parameter and result is one register.
type Declaration struct {
	Name       string
	Desc       string
	Params     []DeclarationParameter
	Returns    string // none | int | bool | item | list | iterator
	NumResults int
	Emit       func(b *Builder, t TypeDesc)
}

type DeclarationParameter struct {
	Name string
	Type string // int | bool | item | list | iterator | func
	Desc string
}

var Logger = zerolog.Nop()

// DisasmOnCompile logs the disassembly of every new specialization.
var DisasmOnCompile bool

var (
	declMu             sync.RWMutex
	declaration_titles []string
	declarations       = make(map[string]*Declaration)
)

func DeclareTitle(title string) {
	declMu.Lock()
	defer declMu.Unlock()
	declaration_titles = append(declaration_titles, "#"+title)
}

func Declare(def *Declaration) {
	declMu.Lock()
	defer declMu.Unlock()
	if _, ok := declarations[def.Name]; ok {
		panic("operation declared twice: " + def.Name)
	}
	declaration_titles = append(declaration_titles, def.Name)
	declarations[def.Name] = def
}

func Lookup(name string) (*Declaration, bool) {
	declMu.RLock()
	defer declMu.RUnlock()
	def, ok := declarations[name]
	return def, ok
}

// Declarations returns all operations ordered by name.
func Declarations() []*Declaration {
	declMu.RLock()
	defer declMu.RUnlock()
	names := maps.Keys(declarations)
	slices.Sort(names)
	result := make([]*Declaration, len(names))
	for i, name := range names {
		result[i] = declarations[name]
	}
	return result
}

// Help prints the operation list (name == "") or the details of one operation.
func Help(w io.Writer, name string) error {
	declMu.RLock()
	defer declMu.RUnlock()
	if name == "" {
		fmt.Fprintln(w, "Available operations:")
		for _, title := range declaration_titles {
			if title[0] == '#' {
				fmt.Fprintln(w, "")
				fmt.Fprintln(w, "-- "+title[1:]+" --")
			} else {
				fmt.Fprintln(w, "  "+title+": "+strings.Split(declarations[title].Desc, "\n")[0])
			}
		}
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "get further information by typing: help <operation>")
		return nil
	}
	def, ok := declarations[name]
	if !ok {
		return fmt.Errorf("operation not found: %s", name)
	}
	fmt.Fprintln(w, "Help for: "+def.Name)
	fmt.Fprintln(w, "===")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, def.Desc)
	fmt.Fprintln(w, "")
	for _, p := range def.Params {
		fmt.Fprintln(w, " - "+p.Name+" ("+p.Type+"): "+p.Desc)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Returns: "+def.Returns)
	return nil
}

// slugify makes a filesystem-safe, lowercase slug from a chapter title.
func slugify(s string) string {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "chapter"
	}
	return b.String()
}

// WriteDocumentation generates index.md plus one markdown file per chapter.
func WriteDocumentation(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", folder, err)
	}
	declMu.RLock()
	defer declMu.RUnlock()

	type chapter struct {
		Title string
		Slug  string
		Defs  []*Declaration
	}
	var chapters []*chapter
	current := &chapter{Title: "General", Slug: "general"}
	for _, t := range declaration_titles {
		if t[0] == '#' {
			current = &chapter{Title: t[1:], Slug: slugify(t[1:])}
			chapters = append(chapters, current)
			continue
		}
		if len(chapters) == 0 {
			chapters = append(chapters, current)
		}
		current.Defs = append(current.Defs, declarations[t])
	}

	index, err := os.Create(filepath.Join(folder, "index.md"))
	if err != nil {
		return err
	}
	defer index.Close()
	fmt.Fprint(index, "# Operations\n\n")
	for _, ch := range chapters {
		if len(ch.Defs) == 0 {
			continue
		}
		fmt.Fprintf(index, "- [%s](%s.md)\n", ch.Title, ch.Slug)

		f, err := os.Create(filepath.Join(folder, ch.Slug+".md"))
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "# %s\n\n", ch.Title)
		for _, def := range ch.Defs {
			fmt.Fprintf(f, "## %s\n\n", def.Name)
			if def.Desc != "" {
				fmt.Fprintf(f, "%s\n\n", def.Desc)
			}
			fmt.Fprint(f, "### Parameters\n\n")
			if len(def.Params) == 0 {
				fmt.Fprint(f, "_This operation has no parameters._\n\n")
			} else {
				for _, p := range def.Params {
					fmt.Fprintf(f, "- **%s** (`%s`): %s\n", p.Name, p.Type, p.Desc)
				}
				fmt.Fprintln(f)
			}
			fmt.Fprintf(f, "### Returns\n\n`%s`\n\n", def.Returns)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// --- specialization cache ---

type specKey struct {
	op  string
	typ string
}

var (
	specMu sync.Mutex
	specs  = make(map[specKey]func() (*Function, error))
)

// Specialize returns the function for operation name compiled for t. Each
// (operation, type) pair is compiled at most once per process.
func Specialize(name string, t TypeDesc) (*Function, error) {
	key := specKey{name, t.Name()}
	specMu.Lock()
	get, ok := specs[key]
	if !ok {
		get = sync.OnceValues(func() (*Function, error) {
			def, ok := Lookup(name)
			if !ok {
				return nil, fmt.Errorf("jit: unknown operation %s", name)
			}
			return compile(def, t)
		})
		specs[key] = get
	}
	specMu.Unlock()
	return get()
}

// Specializations returns the number of cached (operation, type) pairs.
func Specializations() int {
	specMu.Lock()
	defer specMu.Unlock()
	return len(specs)
}

func compile(def *Declaration, t TypeDesc) (fn *Function, err error) {
	defer func() {
		if r := recover(); r != nil {
			fn = nil
			err = fmt.Errorf("jit: emitting %s for %s: %v", def.Name, t.Name(), r)
		}
	}()
	b := NewBuilder(def.Name+"["+t.Name()+"]", len(def.Params), def.NumResults)
	def.Emit(b, t)
	fn, err = b.Finish()
	if err != nil {
		return nil, err
	}
	Logger.Debug().Str("func", fn.Name).Int("insts", len(fn.Code)).Int("regs", fn.NumRegs).Str("id", fn.ID.String()).Msg("compiled")
	if DisasmOnCompile {
		Logger.Info().Msg("\n" + fn.String())
	}
	return fn, nil
}
