/*
Copyright (C) 2026  Carl-Philip Hänsch

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
package stream

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unsafe"

	"github.com/chzyer/readline"
	"github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"
	"github.com/launix-de/kcon/cell"
)

const newprompt = ">>> "
const contprompt = "... "

const helpText = `:quit :exit     leave the shell
:help           this text
:gc             run a collection now
:stats          heap usage and collection count
:mode flat|deep printing mode
:load FILE      parse and print every expression in FILE (.xz/.gz ok)
:watch FILE     like :load, rerun whenever FILE changes
`

var ReplInstance *readline.Instance

// Repl reads expressions line by line, accumulating input until it parses.
// An expression that runs off the end of the line keeps the shell collecting
// with the continuation prompt instead of reporting an error.
func Repl(a cell.Allocator) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".kcon-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()
	ReplInstance = l

	oldline := ""
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(oldline)+len(line) == 0 {
				break
			}
			oldline = ""
			l.SetPrompt(newprompt)
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		input := oldline + line
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if !command(a, trimmed[1:]) {
				break
			}
			oldline = ""
			continue
		}
		if processInput(a, input) {
			oldline = input + "\n"
			l.SetPrompt(contprompt)
		} else {
			oldline = ""
			l.SetPrompt(newprompt)
		}
	}
}

// processInput parses and echoes one expression. It reports whether the
// input was incomplete and the caller should collect more lines.
func processInput(a cell.Allocator, input string) (more bool) {
	// anti-panic func
	defer func() {
		if r := recover(); r != nil {
			fmt.Println("panic:", r)
		}
	}()
	rd := NewReader(a, strings.NewReader(input))
	e, err := rd.Parse()
	if err == nil {
		err = rd.End()
	}
	if err != nil {
		if IsEOS(err) {
			return true
		}
		fmt.Println("Syntax:", err)
		return false
	}
	fmt.Println(ToString(e, cell.Settings.Deep))
	return false
}

func command(a cell.Allocator, cmd string) bool {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		fmt.Println("Syntax: Expected command after ':'")
		return true
	}
	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Print(helpText)
	case "gc":
		a.GC()
		fmt.Printf("gc #%d: %d cells live\n", a.GCCount(), a.NumAllocated())
	case "stats":
		heap := float64(a.NumCells()) * float64(unsafe.Sizeof(cell.Cell{}))
		fmt.Printf("allocator %s: %d/%d cells live, heap %s, %d collections\n",
			a.ID().String()[:8], a.NumAllocated(), a.NumCells(), units.BytesSize(heap), a.GCCount())
	case "mode":
		if len(fields) == 2 && (fields[1] == "flat" || fields[1] == "deep") {
			cell.Settings.Deep = fields[1] == "deep"
		} else {
			fmt.Println("usage: :mode flat|deep")
		}
	case "load":
		if len(fields) == 2 {
			LoadFile(a, fields[1])
		} else {
			fmt.Println("usage: :load FILE")
		}
	case "watch":
		if len(fields) == 2 {
			watchFile(fields[1])
		} else {
			fmt.Println("usage: :watch FILE")
		}
	default:
		fmt.Println("Command: unknown command '" + fields[0] + "'")
	}
	return true
}

// LoadFile parses every expression in a file and prints each one back.
func LoadFile(a cell.Allocator, path string) {
	in, err := openInput(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer in.Close()
	rd := NewReader(a, in)
	for !rd.AtEOF() {
		e, err := rd.Parse()
		if err != nil {
			fmt.Println("Syntax:", err)
			return
		}
		fmt.Println(ToString(e, cell.Settings.Deep))
	}
}

// watchFile reloads on every change. A single allocator is not safe to share
// with the watcher goroutine, so every reload parses into a fresh one.
func watchFile(path string) {
	reread := func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Println(r)
			}
		}()
		a := cell.NewAllocator(cell.Settings.Allocator, cell.Settings.NCells)
		LoadFile(a, path)
	}
	reread()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Println(err)
		return
	}
	go func() {
		for range watcher.Events {
			// flush all other events
			for {
				time.Sleep(10 * time.Millisecond) // editors fire several events per save
				select {
				case <-watcher.Events:
					// ignore
				default:
					goto to_reread
				}
			}
		to_reread:
			reread()
			watcher.Add(path) // text editors rename, so we have to rewatch
		}
	}()
	if err := watcher.Add(path); err != nil {
		fmt.Println(err)
	}
}
