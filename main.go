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
/*
	listjit: Python style lists compiled per item type, with a small
	statement prompt to play with them
*/
package main

import (
	"bufio"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dc0d/onexit"
	"github.com/google/uuid"
	"github.com/launix-de/listjit/jit"
	"github.com/launix-de/listjit/listobj"
	"github.com/rs/zerolog"
)

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
	return strings.Join(*i, "; ")
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

var (
	session    *Session
	logger     zerolog.Logger
	exitOnce   sync.Once
	stopConfig func() error
)

// runFile executes a statement file line by line; open brackets continue on
// the next line.
func runFile(s *Session, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	pending, lineno := "", 0
	for scanner.Scan() {
		lineno++
		line := pending + scanner.Text()
		result, err := s.Exec(line)
		if errors.Is(err, errIncomplete) {
			pending = line + " "
			continue
		}
		pending = ""
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineno, err)
		}
		if result != "" {
			fmt.Println(result)
		}
	}
	if pending != "" {
		return fmt.Errorf("%s:%d: %w", filename, lineno, errIncomplete)
	}
	return scanner.Err()
}

// printAsm prints the specialization named OP:TYPE, e.g. list.append:int32
func printAsm(name string) error {
	op, typename, ok := strings.Cut(name, ":")
	if !ok {
		typename = "int64"
	}
	typ, err := listobj.ItemTypeByName(typename)
	if err != nil {
		return err
	}
	fn, err := jit.Specialize(op, typ)
	if err != nil {
		return err
	}
	fmt.Print(fn.String())
	return nil
}

func main() {
	fmt.Print(`listjit Copyright (C) 2024-2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	// init random generator for UUIDs
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute statement (repeatable)")
	var asm arrayFlags
	flag.Var(&asm, "asm", "Print the compiled code of OP:TYPE, e.g. list.append:int32 (repeatable)")
	config := flag.String("config", "", "YAML settings file; reloaded whenever it changes")
	trace := flag.Bool("trace", false, "Write a chrome trace of all operation calls")
	docs := flag.String("docs", "", "Write the operation reference as markdown into this folder and exit")
	flag.Parse()
	scripts := flag.Args()

	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	jit.Logger = logger

	if *docs != "" {
		if err := jit.WriteDocumentation(*docs); err != nil {
			logger.Fatal().Err(err).Msg("writing documentation")
		}
		return
	}

	// settings
	if *trace {
		listobj.Settings.Trace = true
	}
	if *config != "" {
		stop, err := listobj.WatchSettings(*config, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("file", *config).Msg("loading settings")
		}
		stopConfig = stop
	}
	if err := listobj.InitSettings(); err != nil {
		logger.Fatal().Err(err).Msg("settings")
	}

	for _, name := range asm {
		if err := printAsm(name); err != nil {
			logger.Error().Err(err).Str("asm", name).Msg("cannot compile")
		}
	}

	rt := listobj.NewRuntime(listobj.Options{Logger: &logger})
	listobj.OnSettingsChange(func(s listobj.SettingsT) {
		if limit, err := listobj.ParseHeapLimit(s.HeapLimit); err == nil {
			rt.SetHeapLimit(limit)
		}
	})
	session = NewSession(rt, os.Stdout)
	onexit.Register(exitroutine)

	for _, script := range scripts {
		fmt.Println("Loading " + script + " ...")
		if err := runFile(session, script); err != nil {
			logger.Error().Err(err).Msg("script failed")
		}
	}
	for _, command := range commands {
		fmt.Println("Executing " + command + " ...")
		result, err := session.Exec(command)
		if err != nil {
			logger.Error().Err(err).Str("statement", command).Msg("failed")
		} else if result != "" {
			fmt.Println(result)
		}
	}
	if len(asm) > 0 && len(commands) == 0 && len(scripts) == 0 {
		exitroutine()
		return
	}

	// install exit handler
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func() {
		<-cancelChan
		exitroutine()
		os.Exit(1)
	})()

	fmt.Print(`

    Type help to list the operations, stats for the heap

`)

	// REPL shell
	Repl(session)

	// normal shutdown
	exitroutine()
}

func exitroutine() {
	exitOnce.Do(func() {
		fmt.Println("Exit procedure...")
		if replInstance != nil {
			// in case it dosen't exit properly
			replInstance.Close()
		}
		if stopConfig != nil {
			stopConfig()
		}
		if session != nil {
			session.Close()
			if st := session.rt.Stats(); st.LiveCount > 0 {
				logger.Warn().Int("payloads", st.LiveCount).Int64("bytes", st.LiveBytes).Msg("lists still alive at exit")
			}
		}
		jit.SetTrace(false, "")
		fmt.Println("Exit procedure finished")
	})
}
