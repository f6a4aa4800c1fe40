package kws

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/spotkit/pkg/audio/pcm"
	"github.com/haivivi/spotkit/pkg/buffer"
)

// Sink receives one Result per completed inference, synchronously from
// within the Write call that produced it.
type Sink func(Result)

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger for non-fatal pipeline faults.
// Default: slog.Default().
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline drives the keyword-spotting stages per audio chunk: it stages
// incoming samples in a ring buffer sized to one analysis window, and each
// time the window fills it produces a feature slice, reusing the overlap
// between consecutive windows by writing the trailing keep region back into
// the ring. Every SlicesToProcess slices it invokes the engine and feeds the
// recognizer.
//
// Pipeline implements io.Writer over raw little-endian L16 bytes.
type Pipeline struct {
	cfg    Config
	front  Frontend
	engine Engine
	rec    *Recognizer
	sink   Sink
	logger *slog.Logger

	ring   *buffer.Ring[int16]
	window []int16 // one analysis window, scratch
	matrix *featureMatrix
	scores []int8 // engine output tensor, scratch

	windowSamples int
	strideSamples int

	// Byte/channel reassembly state carried across Write calls.
	pendingByte   byte
	hasPending    bool
	leftSample    int16
	hasLeftSample bool
	oneSample     [1]int16

	sliceCount  int
	currentTime int64 // stream position in ms, advanced per slice
}

// NewPipeline validates the configuration against the collaborators and
// assembles a ready pipeline. All buffers are allocated here; a returned
// error means setup failed and nothing may run.
func NewPipeline(cfg Config, front Frontend, engine Engine, sink Sink, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if front == nil || engine == nil {
		return nil, fmt.Errorf("kws: pipeline needs a frontend and an engine")
	}
	if got := front.NumChannels(); got != cfg.FeatureSliceSize {
		return nil, fmt.Errorf("%w: frontend produces %d values per window, config expects %d",
			ErrShapeMismatch, got, cfg.FeatureSliceSize)
	}
	if got := engine.InputSize(); got != cfg.FeatureElementCount() {
		return nil, fmt.Errorf("%w: engine input is %d elements, feature matrix is %d",
			ErrShapeMismatch, got, cfg.FeatureElementCount())
	}
	if got := engine.OutputSize(); got != cfg.CategoryCount() {
		return nil, fmt.Errorf("%w: engine output is %d elements, %d labels configured",
			ErrShapeMismatch, got, cfg.CategoryCount())
	}

	p := &Pipeline{
		cfg:           cfg,
		front:         front,
		engine:        engine,
		sink:          sink,
		logger:        slog.Default(),
		rec:           NewRecognizer(cfg),
		windowSamples: cfg.WindowSamples(),
		strideSamples: cfg.StrideSamples(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rec.SetLogger(p.logger)

	if err := p.rec.Begin(); err != nil {
		return nil, err
	}
	p.ring = buffer.NewRing[int16](p.windowSamples)
	p.window = make([]int16, p.windowSamples)
	p.matrix = newFeatureMatrix(cfg.FeatureSliceCount, cfg.FeatureSliceSize)
	p.scores = make([]int8, cfg.CategoryCount())
	return p, nil
}

// Write feeds raw little-endian L16 bytes into the pipeline. Chunks may be
// any length; a split sample (and, for stereo, a split channel pair) is
// carried to the next call. Stereo input is downmixed by averaging each
// pair. All slice production, inference and recognition triggered by these
// bytes completes before Write returns.
func (p *Pipeline) Write(data []byte) (int, error) {
	for _, b := range data {
		if !p.hasPending {
			p.pendingByte = b
			p.hasPending = true
			continue
		}
		sample := int16(p.pendingByte) | int16(b)<<8
		p.hasPending = false

		if p.cfg.Channels == 2 {
			if !p.hasLeftSample {
				p.leftSample = sample
				p.hasLeftSample = true
				continue
			}
			sample = pcm.DownmixPair(p.leftSample, sample)
			p.hasLeftSample = false
		}
		p.pushSample(sample)
	}
	return len(data), nil
}

// pushSample stores one mono sample; when the ring reaches capacity a slice
// is produced, which drains one stride and keeps the window overlap.
func (p *Pipeline) pushSample(sample int16) {
	p.oneSample[0] = sample
	if _, err := p.ring.Write(p.oneSample[:]); err != nil {
		// Cannot happen: the ring is drained whenever it fills. Drop the
		// sample rather than corrupt the window alignment.
		p.logger.Warn("kws: sample ring rejected write", "error", err)
		return
	}
	if p.ring.Free() == 0 {
		p.produceSlice()
	}
}

// produceSlice drains one full window from the ring, restores the keep
// region for overlap reuse, runs the frontend and appends the quantized
// slice to the feature matrix. Every SlicesToProcess slices the engine is
// invoked.
func (p *Pipeline) produceSlice() {
	if n := p.ring.Read(p.window); n != p.windowSamples {
		// Underrun: a partial window must never reach the frontend.
		// Discard the attempt and the partial read; alignment restarts
		// from the samples that follow.
		p.logger.Debug("kws: window underrun, slice discarded",
			"got", n, "want", p.windowSamples)
		return
	}

	// Keep the trailing window-minus-stride samples for the next slice.
	if _, err := p.ring.Write(p.window[p.strideSamples:]); err != nil {
		p.logger.Warn("kws: overlap write-back failed", "error", err)
	}

	p.currentTime += int64(p.cfg.FeatureSliceStrideMs)

	values, err := p.front.Process(p.window)
	if err != nil {
		p.logger.Warn("kws: frontend failed, slice discarded", "error", err)
		return
	}
	p.matrix.addSlice(values)
	p.sliceCount++

	if p.sliceCount >= p.cfg.SlicesToProcess {
		p.sliceCount = 0
		p.runInference()
	}
}

// runInference submits the feature matrix to the engine and feeds the
// scores to the recognizer. Engine failures skip this decision only; the
// pipeline stays usable.
func (p *Pipeline) runInference() {
	if err := p.engine.Invoke(p.matrix.tensor(), p.scores); err != nil {
		p.logger.Warn("kws: inference invoke failed, decision skipped", "error", err)
		return
	}

	res, err := p.rec.Process(p.scores, p.currentTime)
	if err != nil {
		p.logger.Warn("kws: recognizer rejected results", "error", err)
		return
	}
	if p.sink != nil {
		p.sink(res)
	}
}

// Pos returns the current stream position of the synthetic timebase.
func (p *Pipeline) Pos() time.Duration {
	return time.Duration(p.currentTime) * time.Millisecond
}

// Reset re-enters the initial stream state: ring, feature matrix, score
// history, trigger state and timebase are cleared. No memory is released or
// reallocated.
func (p *Pipeline) Reset() {
	p.ring.Reset()
	p.matrix.reset()
	p.front.Reset()
	p.rec.Reset()
	p.hasPending = false
	p.hasLeftSample = false
	p.sliceCount = 0
	p.currentTime = 0
}

// Close releases the engine.
func (p *Pipeline) Close() error {
	return p.engine.Close()
}
