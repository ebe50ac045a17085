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
/*
	kcon fixed-capacity cons-cell runtime with a root-tracked collector
*/
package main

import "os"
import "fmt"
import "flag"
import "syscall"
import "os/signal"
import "crypto/rand"
import "github.com/google/uuid"
import "github.com/dc0d/onexit"
import "github.com/launix-de/kcon/cell"
import "github.com/launix-de/kcon/stream"

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
	return "dummy"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func main() {
	fmt.Print(`kcon Copyright (C) 2026  Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	// init random generator for allocator ids
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Parse and print an expression")
	flag.IntVar(&cell.Settings.NCells, "ncells", cell.Settings.NCells, "Heap capacity in cells")
	flag.StringVar(&cell.Settings.Allocator, "alloc", cell.Settings.Allocator, "Allocator: simple or test")
	flag.BoolVar(&cell.Settings.Deep, "deep", cell.Settings.Deep, "Print every pair with its own brackets")
	flag.BoolVar(&cell.Settings.Trace, "trace", cell.Settings.Trace, "Print a line per collection")
	flag.Parse()
	files := flag.Args()

	a := cell.NewAllocator(cell.Settings.Allocator, cell.Settings.NCells)

	for _, path := range files {
		fmt.Println("Loading " + path + " ...")
		stream.LoadFile(a, path)
	}
	for _, command := range commands {
		e, err := stream.ParseString(a, command)
		if err != nil {
			fmt.Println("Syntax:", err)
			continue
		}
		fmt.Println(stream.ToString(e, cell.Settings.Deep))
	}

	// install exit handler
	onexit.Register(exitroutine)
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func() {
		<-cancelChan
		exitroutine()
		os.Exit(1)
	})()

	fmt.Print(`

    Type :help to show commands

`)
	// REPL shell
	stream.Repl(a)

	// normal shutdown
	exitroutine()
}

func exitroutine() {
	if stream.ReplInstance != nil {
		// in case it dosen't exit properly
		stream.ReplInstance.Close()
	}
}
