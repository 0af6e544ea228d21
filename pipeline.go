package vu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-vu/band"
	"github.com/cwbudde/algo-vu/capture"
	"github.com/cwbudde/algo-vu/history"
	"github.com/cwbudde/algo-vu/loudness"
	"github.com/cwbudde/algo-vu/meter"
	"github.com/cwbudde/algo-vu/spectral"
	"github.com/cwbudde/algo-vu/transport"
)

// Reading is one block's analysis result.
type Reading struct {
	// Seq increments once per captured block, including blocks whose
	// readings were later dropped by backpressure; gaps in a consumer's
	// view identify drops.
	Seq      uint64
	Loudness float32
	Bands    [band.Count]band.Energy
}

// BlockTap receives copies of raw sample blocks on the consumer side.
// *wavesink.Sink satisfies it.
type BlockTap interface {
	WriteBlock(block []float32) error
	Close() error
}

// blockBuf wraps a pooled sample copy so Put does not allocate.
type blockBuf struct {
	data []float32
}

// Pipeline owns the capture source, analysis, hand-off, and history for one
// capture session. Create with New, drive with Run, read with Snapshot.
type Pipeline struct {
	log      *zap.Logger
	src      *capture.Source
	analyzer *spectral.Analyzer
	readings *transport.Chan[Reading]
	blocks   *transport.Chan[*blockBuf]
	hist     *history.Store[Reading]
	tap      BlockTap
	meter    *meter.Meter
	pool     sync.Pool

	statsEvery  int
	seq         uint64
	analyzeErrs atomic.Uint64
}

// New opens the configured device and prepares the pipeline without starting
// the stream. Callers that never Run must still Close.
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	src, err := capture.Open(capture.Config{
		Device:    cfg.device,
		BlockSize: cfg.blockSize,
		Logger:    cfg.logger,
	})
	if err != nil {
		return nil, err
	}

	analyzerOpts := append([]spectral.Option{spectral.WithBlockSize(cfg.blockSize)}, cfg.analyzerOpts...)
	analyzer, err := spectral.New(src.SampleRate(), analyzerOpts...)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("vu: %w", err)
	}

	p := &Pipeline{
		log:        cfg.logger,
		src:        src,
		analyzer:   analyzer,
		readings:   transport.New[Reading](cfg.transportCap),
		hist:       history.New[Reading](cfg.historyCap),
		tap:        cfg.tap,
		statsEvery: cfg.statsEvery,
	}
	p.pool.New = func() any {
		return &blockBuf{data: make([]float32, cfg.blockSize)}
	}

	if cfg.tap != nil {
		p.blocks = transport.New[*blockBuf](tapLaneCapacity)
		p.meter = meter.New(cfg.blockSize)
	}

	return p, nil
}

// History returns the rolling store shared with presentation code.
func (p *Pipeline) History() *history.Store[Reading] { return p.hist }

// Snapshot returns up to the lastN most recent readings, most recent last.
func (p *Pipeline) Snapshot(lastN int) []Reading { return p.hist.Snapshot(lastN) }

// SampleRate returns the negotiated device sample rate.
func (p *Pipeline) SampleRate() uint32 { return p.src.SampleRate() }

// DeviceName returns the selected device's name.
func (p *Pipeline) DeviceName() string { return p.src.DeviceName() }

// Dropped returns the number of readings discarded by backpressure.
func (p *Pipeline) Dropped() uint64 { return p.readings.Dropped() }

// AnalyzeErrors returns the number of blocks whose analysis failed.
func (p *Pipeline) AnalyzeErrors() uint64 { return p.analyzeErrs.Load() }

// Run starts the stream and blocks until ctx is cancelled, then stops the
// stream, drains the consumers, and releases the device. Run may be called
// once per Pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.consumeReadings(consumerCtx)
	}()

	if p.blocks != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.consumeBlocks(consumerCtx)
		}()
	}

	if err := p.src.Start(p.onBlock); err != nil {
		stopConsumers()
		wg.Wait()
		p.src.Close()
		return err
	}

	<-ctx.Done()

	// Stop the producer before closing the channels; TrySend on a closed
	// transport would otherwise race shutdown.
	stopErr := p.src.Stop()

	p.readings.Close()
	if p.blocks != nil {
		p.blocks.Close()
	}
	wg.Wait()

	if p.tap != nil {
		if err := p.tap.Close(); err != nil {
			p.log.Warn("block tap close failed", zap.Error(err))
		}
	}

	if dropped := p.readings.Dropped(); dropped > 0 {
		p.log.Info("readings dropped by backpressure", zap.Uint64("dropped", dropped))
	}

	closeErr := p.src.Close()
	if stopErr != nil {
		return stopErr
	}
	return closeErr
}

// Close releases the capture device for pipelines that never ran.
func (p *Pipeline) Close() error {
	return p.src.Close()
}

// onBlock runs on the audio driver's callback. Steady state performs no
// allocation and never blocks: analysis writes into preallocated buffers,
// and both hand-offs are non-blocking sends.
func (p *Pipeline) onBlock(block []float32) {
	energies, err := p.analyzer.Analyze(block)
	if err != nil {
		p.analyzeErrs.Add(1)
		return
	}

	p.seq++
	p.readings.TrySend(Reading{
		Seq:      p.seq,
		Loudness: loudness.Estimate(block),
		Bands:    energies,
	})

	if p.blocks != nil {
		buf := p.pool.Get().(*blockBuf)
		buf.data = buf.data[:len(block)]
		copy(buf.data, block)
		// An evicted buffer is garbage-collected instead of returned to
		// the pool; overflow on this lane costs churn, not correctness.
		p.blocks.TrySend(buf)
	}
}

func (p *Pipeline) consumeReadings(ctx context.Context) {
	for {
		r, err := p.readings.Recv(ctx)
		if err != nil {
			if !errors.Is(err, transport.ErrClosed) && !errors.Is(err, context.Canceled) {
				p.log.Warn("reading consumer stopped", zap.Error(err))
			}
			return
		}

		p.hist.Append(r)
	}
}

func (p *Pipeline) consumeBlocks(ctx context.Context) {
	var n int
	for {
		buf, err := p.blocks.Recv(ctx)
		if err != nil {
			return
		}

		if werr := p.tap.WriteBlock(buf.data); werr != nil {
			p.log.Warn("block tap write failed", zap.Error(werr))
		}

		n++
		if p.statsEvery > 0 && n%p.statsEvery == 0 && p.log.Core().Enabled(zap.DebugLevel) {
			s := p.meter.Analyze(buf.data)
			p.log.Debug("block stats",
				zap.Float64("rms_db", s.RMSdB),
				zap.Float64("peak_db", s.PeakdB),
				zap.Float64("crest_db", s.CrestFactordB),
				zap.Int("zero_crossings", s.ZeroCrossings),
			)
		}

		p.pool.Put(buf)
	}
}
