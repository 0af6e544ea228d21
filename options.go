package vu

import (
	"go.uber.org/zap"

	"github.com/cwbudde/algo-vu/capture"
	"github.com/cwbudde/algo-vu/history"
	"github.com/cwbudde/algo-vu/spectral"
	"github.com/cwbudde/algo-vu/transport"
)

// tapLaneCapacity bounds the raw-block lane feeding an optional tap. Raw
// blocks are heavier than readings, so the lane is kept short.
const tapLaneCapacity = 32

type config struct {
	device       string
	blockSize    int
	transportCap int
	historyCap   int
	logger       *zap.Logger
	tap          BlockTap
	analyzerOpts []spectral.Option
	statsEvery   int
}

func defaultConfig() config {
	return config{
		device:       capture.DefaultDevice,
		blockSize:    capture.DefaultBlockSize,
		transportCap: transport.DefaultCapacity,
		historyCap:   history.DefaultCapacity,
		logger:       zap.NewNop(),
		statsEvery:   64,
	}
}

// Option adjusts Pipeline construction.
type Option func(*config)

// WithDevice selects the input device: capture.DefaultDevice or an exact
// device name.
func WithDevice(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.device = name
		}
	}
}

// WithBlockSize overrides the frames delivered per callback.
func WithBlockSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.blockSize = n
		}
	}
}

// WithLogger sets the pipeline logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithTransportCapacity bounds the reading hand-off queue.
func WithTransportCapacity(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.transportCap = n
		}
	}
}

// WithHistoryCapacity bounds the rolling history retention.
func WithHistoryCapacity(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.historyCap = n
		}
	}
}

// WithBlockTap registers a consumer-side destination for copies of the raw
// sample blocks, such as a WAV recorder. The tap runs on its own goroutine
// and may block; the capture callback only enqueues.
func WithBlockTap(tap BlockTap) Option {
	return func(cfg *config) {
		cfg.tap = tap
	}
}

// WithAnalyzerOptions forwards options to the spectral analyzer.
func WithAnalyzerOptions(opts ...spectral.Option) Option {
	return func(cfg *config) {
		cfg.analyzerOpts = append(cfg.analyzerOpts, opts...)
	}
}

// WithBlockStatsEvery logs block diagnostics on every nth tapped block at
// debug level. Zero disables the diagnostics.
func WithBlockStatsEvery(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.statsEvery = n
		}
	}
}
