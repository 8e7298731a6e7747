// Command gen-frames writes a synthetic JSON-lines frame recording for
// replaying through facetrack.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/lilacgalaxy/vts-face-tracker/internal/engine"
	"github.com/lilacgalaxy/vts-face-tracker/internal/synth"
)

func main() {
	output := flag.String("o", "frames.jsonl", "output path, - for stdout")
	frames := flag.Int("n", 300, "number of frames")
	interval := flag.Int64("interval", 33, "milliseconds between frames")
	flag.Parse()

	var w io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("create %s: %v", *output, err)
		}
		defer f.Close()
		w = f
	}

	if err := generate(w, *frames, *interval); err != nil {
		log.Fatal(err)
	}
	if *output != "-" {
		log.Printf("wrote %d frames to %s", *frames, *output)
	}
}

func generate(w io.Writer, n int, intervalMS int64) error {
	fw := engine.NewFrameWriter(w)
	for _, f := range synth.Sequence(n, intervalMS) {
		if err := fw.Write(f); err != nil {
			return err
		}
	}
	return fw.Flush()
}
