package vu

import (
	"context"
	"testing"

	"github.com/cwbudde/algo-vu/history"
	"github.com/cwbudde/algo-vu/internal/audiotest"
	"github.com/cwbudde/algo-vu/loudness"
	"github.com/cwbudde/algo-vu/meter"
	"github.com/cwbudde/algo-vu/spectral"
	"github.com/cwbudde/algo-vu/transport"
	"go.uber.org/zap"
)

// newTestPipeline builds a Pipeline around synthetic blocks, bypassing the
// capture device so the analysis and hand-off paths run in-process.
func newTestPipeline(t *testing.T, tap BlockTap) *Pipeline {
	t.Helper()

	analyzer, err := spectral.New(44100)
	if err != nil {
		t.Fatalf("spectral.New: %v", err)
	}

	p := &Pipeline{
		log:        zap.NewNop(),
		analyzer:   analyzer,
		readings:   transport.New[Reading](transport.DefaultCapacity),
		hist:       history.New[Reading](history.DefaultCapacity),
		tap:        tap,
		statsEvery: 0,
	}
	p.pool.New = func() any {
		return &blockBuf{data: make([]float32, analyzer.BlockSize())}
	}
	if tap != nil {
		p.blocks = transport.New[*blockBuf](tapLaneCapacity)
		p.meter = meter.New(analyzer.BlockSize())
	}
	return p
}

func TestBlocksFlowIntoHistory(t *testing.T) {
	p := newTestPipeline(t, nil)

	sine := audiotest.SineBlock(1000, 44100, 1024)
	for range 10 {
		p.onBlock(sine)
	}

	p.readings.Close()
	p.consumeReadings(context.Background())

	snap := p.Snapshot(0)
	if len(snap) != 10 {
		t.Fatalf("history has %d readings, want 10", len(snap))
	}

	for i, r := range snap {
		if r.Seq != uint64(i+1) {
			t.Fatalf("reading %d has seq %d, want %d", i, r.Seq, i+1)
		}
	}
}

func TestSineReadingShape(t *testing.T) {
	// A 1 kHz tone lands in mid (400-2600 Hz) and must read stronger there
	// than in bass, with a loudness near 0 dBFS.
	p := newTestPipeline(t, nil)

	p.onBlock(audiotest.SineBlock(1000, 44100, 1024))
	p.readings.Close()
	p.consumeReadings(context.Background())

	snap := p.Snapshot(1)
	if len(snap) != 1 {
		t.Fatalf("expected one reading, got %d", len(snap))
	}
	r := snap[0]

	var bass, mid float32
	for _, e := range r.Bands {
		switch e.Band.Name {
		case "bass":
			bass = e.Mean
		case "mid":
			mid = e.Mean
		}
	}
	if mid <= bass {
		t.Fatalf("mid %f should exceed bass %f for 1 kHz tone", mid, bass)
	}

	if r.Loudness < -1 || r.Loudness > 0.1 {
		t.Fatalf("loudness %f dB out of range for unit sine", r.Loudness)
	}
}

func TestSilentBlockReading(t *testing.T) {
	p := newTestPipeline(t, nil)

	p.onBlock(audiotest.SilentBlock(1024))
	p.readings.Close()
	p.consumeReadings(context.Background())

	snap := p.Snapshot(1)
	if len(snap) != 1 {
		t.Fatalf("expected one reading, got %d", len(snap))
	}
	if snap[0].Loudness != loudness.Floor {
		t.Fatalf("silence read %f dB, want floor %f", snap[0].Loudness, loudness.Floor)
	}
	for _, e := range snap[0].Bands {
		if e.Mean != 0 {
			t.Fatalf("band %q nonzero for silence: %f", e.Band.Name, e.Mean)
		}
	}
}

func TestAnalyzeErrorCounted(t *testing.T) {
	p := newTestPipeline(t, nil)

	p.onBlock(make([]float32, 100)) // wrong length
	if p.AnalyzeErrors() != 1 {
		t.Fatalf("AnalyzeErrors = %d, want 1", p.AnalyzeErrors())
	}

	p.readings.Close()
	p.consumeReadings(context.Background())
	if len(p.Snapshot(0)) != 0 {
		t.Fatal("failed block must not produce a reading")
	}
}

type recordingTap struct {
	blocks [][]float32
	closed bool
}

func (r *recordingTap) WriteBlock(block []float32) error {
	cp := make([]float32, len(block))
	copy(cp, block)
	r.blocks = append(r.blocks, cp)
	return nil
}

func (r *recordingTap) Close() error {
	r.closed = true
	return nil
}

func TestBlockTapReceivesCopies(t *testing.T) {
	tap := &recordingTap{}
	p := newTestPipeline(t, tap)

	sine := audiotest.SineBlock(440, 44100, 1024)
	for range 3 {
		p.onBlock(sine)
	}

	p.blocks.Close()
	p.consumeBlocks(context.Background())

	if len(tap.blocks) != 3 {
		t.Fatalf("tap received %d blocks, want 3", len(tap.blocks))
	}
	for i, b := range tap.blocks {
		if len(b) != 1024 {
			t.Fatalf("tap block %d has %d samples, want 1024", i, len(b))
		}
		if b[1] != sine[1] {
			t.Fatalf("tap block %d content mismatch", i)
		}
	}
}

func TestHistoryBounded(t *testing.T) {
	p := newTestPipeline(t, nil)
	sine := audiotest.SineBlock(440, 44100, 1024)

	// More blocks than the history retains.
	for range history.DefaultCapacity + 50 {
		p.onBlock(sine)
		// Drain as we go so the bounded transport does not drop.
		if r, err := p.readings.Recv(context.Background()); err == nil {
			p.hist.Append(r)
		}
	}

	if p.hist.Len() != history.DefaultCapacity {
		t.Fatalf("history holds %d, want %d", p.hist.Len(), history.DefaultCapacity)
	}

	snap := p.Snapshot(0)
	if snap[len(snap)-1].Seq != uint64(history.DefaultCapacity+50) {
		t.Fatalf("newest seq = %d, want %d", snap[len(snap)-1].Seq, history.DefaultCapacity+50)
	}
}

func BenchmarkOnBlock(b *testing.B) {
	analyzer, err := spectral.New(44100)
	if err != nil {
		b.Fatalf("spectral.New: %v", err)
	}

	p := &Pipeline{
		log:      zap.NewNop(),
		analyzer: analyzer,
		readings: transport.New[Reading](transport.DefaultCapacity),
		hist:     history.New[Reading](history.DefaultCapacity),
	}

	block := audiotest.SineBlock(1000, 44100, 1024)

	b.ReportAllocs()
	b.SetBytes(int64(len(block) * 4))
	b.ResetTimer()

	for range b.N {
		p.onBlock(block)
	}
}
