// Package kws implements a streaming keyword-spotting pipeline for
// continuous audio.
//
// # Architecture
//
// The pipeline processes raw L16 audio in five stages:
//
//  1. Sample ring buffer: incoming samples (downmixed to mono) are staged
//     until one analysis window is available.
//  2. Frontend.Process: one audio window → one vector of spectral magnitudes.
//  3. Feature matrix: the magnitudes are quantized to int8 and appended to a
//     sliding matrix of the most recent slices, reusing the overlap between
//     consecutive windows instead of recomputing it.
//  4. Engine.Invoke: the matrix is handed to a quantized inference model,
//     producing one int8 score per category.
//  5. Recognizer.Process: scores are averaged over a trailing time window,
//     thresholded and debounced into a stable command decision.
//
// Everything is allocated once at setup and reused: steady-state Write calls
// perform no heap allocation, so the pipeline is usable under
// microcontroller-style memory constraints.
//
// # Ownership
//
// A Pipeline and its parts are owned by a single caller. All operations run
// synchronously inside Write and either complete or fail; there is no
// internal locking, blocking or cancellation. Callers feeding audio from
// multiple goroutines must serialize externally.
package kws

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned when a Recognizer is used before Begin.
	ErrNotStarted = errors.New("kws: recognizer not started")

	// ErrOutOfOrder is returned when a score update carries a timestamp
	// older than the head of the history queue. The update is rejected and
	// no state changes.
	ErrOutOfOrder = errors.New("kws: results must be in increasing time order")

	// ErrScoreQueueFull reports that the score history queue was at
	// capacity and the newest entry was dropped. Pruning keeps the live
	// window far below capacity, so this signals a misconfigured averaging
	// window rather than normal operation.
	ErrScoreQueueFull = errors.New("kws: score history queue full")

	// ErrShapeMismatch reports a tensor dimension that does not match the
	// configured feature or category geometry. Fatal at setup.
	ErrShapeMismatch = errors.New("kws: tensor shape mismatch")
)

// Config holds the pipeline geometry and decision parameters. The feature
// values are derived from the model's training-time preprocessing; change
// them only together with the model.
type Config struct {
	// SampleRate is the input rate in Hz. The bundled defaults assume 16000.
	SampleRate int

	// Channels is the number of interleaved input channels (1 or 2).
	// Stereo input is downmixed to mono by averaging sample pairs.
	Channels int

	FeatureSliceSize       int // feature values per slice (default 40)
	FeatureSliceCount      int // slices in the feature matrix (default 49)
	FeatureSliceStrideMs   int // time step between slices (default 20)
	FeatureSliceDurationMs int // audio window per slice (default 30)

	// SlicesToProcess is the number of new slices collected between
	// successive model invocations (default 2).
	SlicesToProcess int

	// Recognizer parameters.
	AverageWindowMs    int   // trailing window for score averaging (default 1000)
	DetectionThreshold uint8 // minimum average score to trigger (default 200)
	SuppressionMs      int   // re-trigger holdoff for the same label (default 1500)
	MinimumCount       int   // minimum results before a decision (default 3)

	// Labels holds one name per model output category, in tensor order.
	// By convention the first label is the silence/background category.
	Labels []string
}

// DefaultConfig returns the micro-speech training defaults. Labels must
// still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		SampleRate:             16000,
		Channels:               1,
		FeatureSliceSize:       40,
		FeatureSliceCount:      49,
		FeatureSliceStrideMs:   20,
		FeatureSliceDurationMs: 30,
		SlicesToProcess:        2,
		AverageWindowMs:        1000,
		DetectionThreshold:     200,
		SuppressionMs:          1500,
		MinimumCount:           3,
	}
}

// WindowSamples returns the number of samples in one analysis window.
func (c Config) WindowSamples() int {
	return c.FeatureSliceDurationMs * (c.SampleRate / 1000)
}

// StrideSamples returns the number of samples between window starts.
func (c Config) StrideSamples() int {
	return c.FeatureSliceStrideMs * (c.SampleRate / 1000)
}

// FeatureElementCount returns the total element count of the feature matrix,
// which is also the model input tensor size.
func (c Config) FeatureElementCount() int {
	return c.FeatureSliceSize * c.FeatureSliceCount
}

// CategoryCount returns the number of output categories.
func (c Config) CategoryCount() int {
	return len(c.Labels)
}

// Validate reports the first setup error in the configuration.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < 1000:
		return fmt.Errorf("kws: invalid sample rate %d", c.SampleRate)
	case c.Channels < 1 || c.Channels > 2:
		return fmt.Errorf("kws: unsupported channel count %d", c.Channels)
	case c.FeatureSliceSize <= 0 || c.FeatureSliceCount <= 0:
		return fmt.Errorf("kws: invalid feature geometry %dx%d", c.FeatureSliceCount, c.FeatureSliceSize)
	case c.FeatureSliceStrideMs <= 0 || c.FeatureSliceDurationMs <= 0:
		return fmt.Errorf("kws: invalid slice timing stride=%dms duration=%dms",
			c.FeatureSliceStrideMs, c.FeatureSliceDurationMs)
	case c.FeatureSliceDurationMs <= c.FeatureSliceStrideMs:
		// Equality (a zero keep region, disjoint windows) is representable
		// but rejected: the pipeline's overlap write-back assumes the stride
		// is a strict sub-span of the window, and no supported model is
		// trained on disjoint slices.
		return fmt.Errorf("kws: slice duration %dms must exceed stride %dms for overlap reuse",
			c.FeatureSliceDurationMs, c.FeatureSliceStrideMs)
	case c.SlicesToProcess <= 0:
		return fmt.Errorf("kws: invalid slices per inference %d", c.SlicesToProcess)
	case c.AverageWindowMs <= 0:
		return fmt.Errorf("kws: invalid average window %dms", c.AverageWindowMs)
	case c.MinimumCount <= 0:
		return fmt.Errorf("kws: invalid minimum count %d", c.MinimumCount)
	case len(c.Labels) == 0:
		return errors.New("kws: no labels configured")
	}
	return nil
}

// Result is one command decision, emitted once per completed inference.
type Result struct {
	// Label is the top-scoring category over the averaging window.
	Label string

	// Score is the windowed average for Label, in the 0..255 domain.
	// Zero while the averaging window is still warming up.
	Score uint8

	// IsNew reports that this result is a fresh trigger: the average
	// crossed the detection threshold and the suppression rules allowed it.
	IsNew bool

	// Time is the stream position in milliseconds at which the decision
	// was made. The pipeline timebase is synthetic (advanced by the slice
	// stride per produced slice), so results are reproducible from the
	// byte stream alone.
	Time int64
}

// Frontend turns one audio window into one vector of spectral magnitude
// values. Implementations must be deterministic pure functions of the window
// and their fixed configuration.
//
// The pipeline's default implementation is audio/frontend.State.
type Frontend interface {
	// Process computes the magnitudes for exactly one window. The returned
	// slice may be scratch owned by the implementation, valid until the
	// next call.
	Process(window []int16) ([]uint16, error)

	// NumChannels returns the width of the vectors Process produces.
	NumChannels() int

	// Reset re-enters the initial stream state (clears any adaptive
	// estimates carried between windows).
	Reset()
}

// Engine runs a quantized keyword-spotting model.
//
// The input is the feature matrix as a flat int8 tensor of InputSize()
// elements; the output is one int8 score per category. Implementations
// validate their tensor geometry at construction; Invoke failures are
// per-call and non-fatal to the pipeline.
type Engine interface {
	// InputSize returns the expected input tensor element count.
	InputSize() int

	// OutputSize returns the output tensor element count (category count).
	OutputSize() int

	// Invoke runs the model. input and output are owned by the caller;
	// Invoke must not retain them.
	Invoke(input, output []int8) error

	// Close releases the model's resources.
	Close() error
}
