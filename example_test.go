package vu_test

import (
	"context"
	"fmt"
	"log"
	"time"

	vu "github.com/cwbudde/algo-vu"
	"github.com/cwbudde/algo-vu/capture"
	"github.com/cwbudde/algo-vu/wavesink"
)

// Capture five seconds from the default input device, record the raw audio
// to disk, and print the most recent loudness readings.
func ExamplePipeline() {
	sink, err := wavesink.Create("capture.wav", 44100)
	if err != nil {
		log.Fatal(err)
	}

	p, err := vu.New(
		vu.WithDevice(capture.DefaultDevice),
		vu.WithBlockTap(sink),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		log.Fatal(err)
	}

	for _, r := range p.Snapshot(10) {
		fmt.Printf("%6.1f dB\n", r.Loudness)
	}
}
