package kws

import (
	"fmt"
	"log/slog"
	"math"
)

// Recognizer smooths noisy per-inference scores into stable command
// decisions. Individual model invocations on overlapping windows produce
// jittery scores; averaging them over a trailing time window and applying a
// threshold plus a post-trigger suppression period raises the confidence
// that an apparent match is real.
//
// Timestamps fed to Process must be non-decreasing: the recognizer models a
// stream of results over time, not a bag of samples.
type Recognizer struct {
	cfg    Config
	logger *slog.Logger

	started bool
	queue   scoreQueue
	avg     []int32

	prevTopLabel string
	prevTopTime  int64
	hasPrior     bool
}

// NewRecognizer creates a Recognizer in the uninitialized state. Call Begin
// before feeding results.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg, logger: slog.Default()}
}

// SetLogger replaces the logger used for non-fatal faults.
func (r *Recognizer) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Begin validates the category configuration and transitions the recognizer
// to the ready state. The previous-top label starts as the first (silence)
// category.
func (r *Recognizer) Begin() error {
	if len(r.cfg.Labels) == 0 {
		return fmt.Errorf("kws: recognizer needs at least one label")
	}
	r.queue.begin(len(r.cfg.Labels))
	r.avg = make([]int32, len(r.cfg.Labels))
	r.prevTopLabel = r.cfg.Labels[0]
	r.prevTopTime = 0
	r.hasPrior = false
	r.started = true
	return nil
}

// Reset clears the score history and trigger state without reallocating.
func (r *Recognizer) Reset() {
	r.queue.reset()
	if r.started {
		r.prevTopLabel = r.cfg.Labels[0]
	}
	r.prevTopTime = 0
	r.hasPrior = false
}

// Process records one score vector at stream time timeMs and returns the
// current decision.
//
// Scores older than the averaging window are pruned; until the window holds
// MinimumCount results spanning at least a quarter of the window the
// previous top label is re-emitted with score 0. Otherwise the per-category
// scores are re-biased to 0..255, averaged, and the strictly-highest
// category is compared against the detection threshold. A trigger for the
// same label within the suppression period is not reported as new; a
// different label may interrupt immediately.
func (r *Recognizer) Process(scores []int8, timeMs int64) (Result, error) {
	if !r.started {
		return Result{}, ErrNotStarted
	}
	if len(scores) != len(r.cfg.Labels) {
		return Result{}, fmt.Errorf("%w: got %d scores for %d categories",
			ErrShapeMismatch, len(scores), len(r.cfg.Labels))
	}
	if !r.queue.empty() && timeMs < r.queue.front().time {
		return Result{}, fmt.Errorf("%w: timestamp %d < %d",
			ErrOutOfOrder, timeMs, r.queue.front().time)
	}

	if err := r.queue.pushBack(timeMs, scores); err != nil {
		r.logger.Warn("kws: dropping newest result, score history at capacity",
			"capacity", maxResults, "window_ms", r.cfg.AverageWindowMs)
	}

	// Prune results that have aged out of the averaging window.
	timeLimit := timeMs - int64(r.cfg.AverageWindowMs)
	for !r.queue.empty() && r.queue.front().time < timeLimit {
		r.queue.popFront()
	}
	if r.queue.empty() {
		return Result{Label: r.prevTopLabel, Time: timeMs}, nil
	}

	// Too little history makes the average unreliable; hold the previous
	// decision until the window has warmed up.
	count := r.queue.len()
	earliest := r.queue.front().time
	if count < r.cfg.MinimumCount || timeMs-earliest < int64(r.cfg.AverageWindowMs)/4 {
		return Result{Label: r.prevTopLabel, Time: timeMs}, nil
	}

	// Average per category across the retained window. The +128 re-bias
	// moves int8 scores into the unsigned 0..255 domain.
	for i := range r.avg {
		r.avg[i] = 0
	}
	for offset := 0; offset < count; offset++ {
		entry := r.queue.fromFront(offset)
		for i, s := range entry.scores {
			r.avg[i] += int32(s) + 128
		}
	}
	for i := range r.avg {
		r.avg[i] /= int32(count)
	}

	// Highest-scoring category; strictly-greater comparison so the
	// first-seen category wins ties.
	topIdx := 0
	topScore := int32(0)
	for i, v := range r.avg {
		if v > topScore {
			topScore = v
			topIdx = i
		}
	}
	topLabel := r.cfg.Labels[topIdx]

	sinceLastTop := int64(math.MaxInt64)
	if r.hasPrior {
		sinceLastTop = timeMs - r.prevTopTime
	}

	isNew := false
	if topScore > int32(r.cfg.DetectionThreshold) &&
		(topLabel != r.prevTopLabel || sinceLastTop > int64(r.cfg.SuppressionMs)) {
		r.prevTopLabel = topLabel
		r.prevTopTime = timeMs
		r.hasPrior = true
		isNew = true
	}

	return Result{Label: topLabel, Score: uint8(topScore), IsNew: isNew, Time: timeMs}, nil
}
