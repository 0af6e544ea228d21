// Command vumon monitors a live audio input and prints per-block peak
// loudness with five-band energy meters.
//
// Usage:
//
//	vumon [flags]
//
// Examples:
//
//	vumon -list
//	vumon -device default
//	vumon -device "ZOOM F3 Driver" -wav capture.wav
//	vumon -duration 10s -verbose
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	vu "github.com/cwbudde/algo-vu"
	"github.com/cwbudde/algo-vu/capture"
	"github.com/cwbudde/algo-vu/loudness"
	"github.com/cwbudde/algo-vu/wavesink"
)

const meterWidth = 24

func main() {
	var (
		device   = flag.String("device", capture.DefaultDevice, "input device name, or \"default\"")
		list     = flag.Bool("list", false, "list input devices and exit")
		duration = flag.Duration("duration", 0, "capture duration, 0 runs until interrupted")
		capacity = flag.Int("capacity", 0, "transport capacity in blocks")
		retain   = flag.Int("history", 0, "history retention in readings")
		wavPath  = flag.String("wav", "", "record raw audio to this WAV file")
		interval = flag.Duration("interval", 250*time.Millisecond, "display refresh interval")
		verbose  = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *list {
		if err := listDevices(); err != nil {
			fmt.Fprintln(os.Stderr, "vumon:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*device, *duration, *capacity, *retain, *wavPath, *interval, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "vumon:", err)
		os.Exit(1)
	}
}

func listDevices() error {
	devices, err := capture.ListDevices()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCHANNELS\tRATE\tDEFAULT")
	for _, d := range devices {
		def := ""
		if d.Default {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%s\n", d.Name, d.InputChannels, d.SampleRate, def)
	}
	return w.Flush()
}

//nolint:funlen
func run(device string, duration time.Duration, capacity, retain int, wavPath string, interval time.Duration, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer l.Sync()
		logger = l
	}

	opts := []vu.Option{
		vu.WithDevice(device),
		vu.WithLogger(logger),
	}
	if capacity > 0 {
		opts = append(opts, vu.WithTransportCapacity(capacity))
	}
	if retain > 0 {
		opts = append(opts, vu.WithHistoryCapacity(retain))
	}

	var sink *wavesink.Sink
	if wavPath != "" {
		// Sample rate is only known after the device opens; probe first.
		probe, err := vu.New(opts...)
		if err != nil {
			return err
		}
		rate := probe.SampleRate()
		if err := probe.Close(); err != nil {
			return err
		}

		sink, err = wavesink.Create(wavPath, rate)
		if err != nil {
			return err
		}
		opts = append(opts, vu.WithBlockTap(sink))
	}

	p, err := vu.New(opts...)
	if err != nil {
		if sink != nil {
			sink.Close()
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	fmt.Printf("device: %s (%d Hz)\n", p.DeviceName(), p.SampleRate())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if dropped := p.Dropped(); dropped > 0 {
				fmt.Printf("\ndropped %d readings under load\n", dropped)
			}
			fmt.Println()
			return err
		case <-ticker.C:
			printReading(p.Snapshot(1))
		}
	}
}

func printReading(snap []vu.Reading) {
	if len(snap) == 0 {
		return
	}
	r := snap[len(snap)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "\r%7.1f dB", r.Loudness)
	for _, e := range r.Bands {
		fmt.Fprintf(&sb, "  %s %s", e.Band.Name, bar(e.Mean))
	}
	fmt.Print(sb.String())
}

// bar renders a fixed-width meter from a linear band mean. The scale is
// logarithmic so quiet content still moves the low end of the bar.
func bar(mean float32) string {
	db := float64(loudness.Floor)
	if mean > 0 {
		db = 20 * math.Log10(float64(mean))
	}

	// Map [-60, +20] dB onto the bar width.
	frac := (db + 60) / 80
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	fill := int(frac * meterWidth)
	return strings.Repeat("#", fill) + strings.Repeat("-", meterWidth-fill)
}
