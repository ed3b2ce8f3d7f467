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
package listobj

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dc0d/onexit"
	"github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"
	"github.com/launix-de/listjit/jit"
	"github.com/launix-de/listjit/nrt"
	"github.com/rs/zerolog"
)

type SettingsT struct {
	HeapLimit       string `yaml:"heap_limit"` // "512MiB", "2GB" or "50%" of RAM
	Trace           bool   `yaml:"trace"`
	TraceDir        string `yaml:"trace_dir"`
	LogLevel        string `yaml:"log_level"`
	DisasmOnCompile bool   `yaml:"disasm_on_compile"`
}

var Settings SettingsT = SettingsT{"1GiB", false, "", "info", false}

var (
	settingsMu        sync.Mutex
	settingsListeners []func(SettingsT)
	exitOnce          sync.Once
)

// OnSettingsChange registers f to run after every successful change.
func OnSettingsChange(f func(SettingsT)) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settingsListeners = append(settingsListeners, f)
}

// totalMemoryBytes reads total physical RAM from /proc/meminfo (Linux).
func totalMemoryBytes() int64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				kb, err := strconv.ParseInt(fields[1], 10, 64)
				if err == nil {
					return kb * 1024
				}
			}
			break
		}
	}
	return 0
}

// ParseHeapLimit accepts sizes understood by go-units or a percentage of RAM.
func ParseHeapLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		p, err := strconv.Atoi(pct)
		if err != nil || p < 1 || p > 100 {
			return 0, fmt.Errorf("invalid heap limit %q", s)
		}
		total := totalMemoryBytes()
		if total <= 0 {
			return 0, fmt.Errorf("heap limit %q: total memory unknown", s)
		}
		return total * int64(p) / 100, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid heap limit %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid heap limit %q", s)
	}
	return n, nil
}

func applySettings(s SettingsT) error {
	limit, err := ParseHeapLimit(s.HeapLimit)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	nrt.DefaultLimit = limit
	zerolog.SetGlobalLevel(level)
	jit.DisasmOnCompile = s.DisasmOnCompile
	return nil
}

// InitSettings pushes Settings into the packages. Call it after you filled
// Settings.
func InitSettings() error {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if err := applySettings(Settings); err != nil {
		return err
	}
	if err := jit.SetTrace(Settings.Trace, Settings.TraceDir); err != nil {
		return err
	}
	exitOnce.Do(func() {
		onexit.Register(func() { jit.SetTrace(false, "") }) // close trace file on exit
	})
	return nil
}

func (s SettingsT) asMap() map[string]any {
	return map[string]any{
		"HeapLimit":       s.HeapLimit,
		"Trace":           s.Trace,
		"TraceDir":        s.TraceDir,
		"LogLevel":        s.LogLevel,
		"DisasmOnCompile": s.DisasmOnCompile,
	}
}

// ChangeSettings lists all settings (no args), reads one (name) or sets one
// (name, value) from its string form.
func ChangeSettings(a ...string) (any, error) {
	settingsMu.Lock()
	if len(a) == 0 {
		defer settingsMu.Unlock()
		return Settings.asMap(), nil
	}
	if len(a) == 1 {
		defer settingsMu.Unlock()
		v, ok := Settings.asMap()[a[0]]
		if !ok {
			return nil, fmt.Errorf("unknown setting: %s", a[0])
		}
		return v, nil
	}
	next := Settings
	var err error
	switch a[0] {
	case "HeapLimit":
		next.HeapLimit = a[1]
	case "Trace":
		next.Trace, err = strconv.ParseBool(a[1])
	case "TraceDir":
		next.TraceDir = a[1]
	case "LogLevel":
		next.LogLevel = a[1]
	case "DisasmOnCompile":
		next.DisasmOnCompile, err = strconv.ParseBool(a[1])
	default:
		err = fmt.Errorf("unknown setting: %s", a[0])
	}
	if err == nil {
		err = setSettingsLocked(next)
	}
	listeners := settingsListeners
	current := Settings
	settingsMu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, f := range listeners {
		f(current)
	}
	return true, nil
}

func setSettingsLocked(next SettingsT) error {
	if err := applySettings(next); err != nil {
		return err
	}
	if next.Trace != Settings.Trace || (next.Trace && next.TraceDir != Settings.TraceDir) {
		if err := jit.SetTrace(next.Trace, next.TraceDir); err != nil {
			return err
		}
	}
	Settings = next
	return nil
}

// LoadSettings replaces Settings with the YAML file at path; keys missing in
// the file keep their current value.
func LoadSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	settingsMu.Lock()
	next := Settings
	if err := yaml.Unmarshal(data, &next); err != nil {
		settingsMu.Unlock()
		return fmt.Errorf("%s: %w", path, err)
	}
	err = setSettingsLocked(next)
	listeners := settingsListeners
	current := Settings
	settingsMu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, f := range listeners {
		f(current)
	}
	return nil
}

// WatchSettings loads path once and reloads it whenever it changes on disk.
// Reload errors are logged. The returned function stops watching.
func WatchSettings(path string, logger zerolog.Logger) (func() error, error) {
	if err := LoadSettings(path); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				// flush all other events
			flush:
				for {
					time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
					select {
					case <-watcher.Events:
					default:
						break flush
					}
				}
				if err := LoadSettings(path); err != nil {
					logger.Error().Err(err).Str("file", path).Msg("settings reload failed")
				} else {
					logger.Info().Str("file", path).Msg("settings reloaded")
				}
				// text editors rename, so we have to rewatch
				if err := watcher.Add(path); err != nil {
					logger.Warn().Err(err).Str("file", path).Msg("cannot rewatch settings")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("settings watcher")
			}
		}
	}()
	return watcher.Close, nil
}
