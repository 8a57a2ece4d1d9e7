// Command mazkernel runs the hosted kernel simulation: it brings up every
// subsystem via internal/kernel.Bootstrap, runs the init-process
// demonstration, and optionally forwards real keystrokes from the
// controlling terminal into the keyboard driver via the timer and
// keyboard driver goroutines.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"mazkernel/internal/kernel"
	"mazkernel/internal/memory"
)

func main() {
	interactive := flag.Bool("interactive", false, "forward raw terminal keystrokes into the keyboard driver")
	stats := flag.Bool("stats", false, "print syscall stats after the demo completes")
	flag.Parse()

	mm := memory.MemoryMap{{Start: 0x100000, End: 0x800000, Type: memory.Usable}}

	k, err := kernel.Bootstrap(kernel.Config{MemoryMap: mm})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mazkernel: boot failed: %v\n", err)
		os.Exit(1)
	}

	k.RunDemo()

	if *interactive {
		if err := runInteractive(k); err != nil {
			fmt.Fprintf(os.Stderr, "mazkernel: interactive mode: %v\n", err)
		}
	}

	printConsole(k)

	if *stats {
		fmt.Print(k.Syscalls.Stats.Report())
	}
}

// runInteractive puts stdin into raw mode and runs the kernel's driver
// goroutines (timer tick and keyboard poll) with stdin as the keyboard
// source, until Ctrl-C ends the session.
func runInteractive(k *kernel.Kernel) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	return k.RunDrivers(context.Background(), os.Stdin)
}

func printConsole(k *kernel.Kernel) {
	row, _ := k.Console.Cursor()
	for r := 0; r <= row; r++ {
		line := make([]byte, 0, 80)
		for c := 0; c < 80; c++ {
			cell := k.Console.Cell(r, c)
			line = append(line, cell.Glyph)
		}
		fmt.Println(string(line))
	}
}
