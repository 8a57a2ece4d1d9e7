// Command consoledump boots a throwaway kernel, runs the init-process
// demonstration, and writes the resulting console grid out as a PNG.
// It is the inverse of tools/imageconvert (image -> kernel binary blob):
// here the kernel's own text buffer is the source and a PNG is the
// output, for inspecting what the console would have displayed without
// a VGA-capable terminal.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"mazkernel/internal/kernel"
	"mazkernel/internal/memory"
)

func main() {
	outputPath := flag.String("o", "console.png", "output PNG path")
	fontPath := flag.String("font", "", "optional TTF font file to render glyphs with")
	flag.Parse()

	var ttfBytes []byte
	if *fontPath != "" {
		b, err := os.ReadFile(*fontPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading font: %v\n", err)
			os.Exit(1)
		}
		ttfBytes = b
	}

	mm := memory.MemoryMap{{Start: 0x100000, End: 0x800000, Type: memory.Usable}}
	k, err := kernel.Bootstrap(kernel.Config{MemoryMap: mm})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error booting kernel: %v\n", err)
		os.Exit(1)
	}
	k.RunDemo()

	img, err := k.Console.Snapshot(ttfBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering console snapshot: %v\n", err)
		os.Exit(1)
	}

	outFile, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if err := png.Encode(outFile, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	fmt.Printf("Wrote %dx%d console snapshot to %s\n", bounds.Dx(), bounds.Dy(), *outputPath)
}
