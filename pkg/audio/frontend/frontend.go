// Package frontend computes fixed-point spectral magnitude features from
// short windows of L16 audio.
//
// Each call to Process turns exactly one audio window into one feature
// vector: Hamming window → radix-2 FFT → triangular mel filterbank between
// the configured band limits → per-channel noise-reduction smoothing →
// PCAN automatic gain control → fixed-point log scaling. The output is a
// []uint16 of NumChannels log-magnitude values, the raw material for a
// quantized feature slice.
//
// The transform is a deterministic function of its input and the
// configuration supplied at construction: the same window always produces
// the same values. All working buffers are allocated once in New; Process
// allocates nothing.
//
// Default parameters follow the micro-speech training convention:
//
//	SampleRate:      16000
//	WindowSizeMs:    30
//	StepSizeMs:      20
//	NumChannels:     40
//	LowerBandLimit:  125 Hz
//	UpperBandLimit:  7500 Hz
//	PCANStrength:    0.95
//	PCANOffset:      80
package frontend

import (
	"fmt"
	"math"
)

// Config controls feature extraction parameters.
type Config struct {
	SampleRate   int // audio sample rate in Hz (default 16000)
	WindowSizeMs int // analysis window length in ms (default 30)
	StepSizeMs   int // window step in ms (default 20)
	NumChannels  int // number of filterbank channels (default 40)

	LowerBandLimit float64 // lowest filterbank frequency in Hz (default 125)
	UpperBandLimit float64 // highest filterbank frequency in Hz (default 7500)

	// Noise reduction: a per-channel running estimate is smoothed with
	// separate coefficients for even and odd channels and subtracted from
	// the signal, floored at MinSignalRemaining of the original.
	NoiseEvenSmoothing float64 // default 0.025
	NoiseOddSmoothing  float64 // default 0.06
	MinSignalRemaining float64 // default 0.05

	// PCAN (per-channel amplitude normalization) gain control, applied
	// between noise reduction and log scaling: each channel is scaled by
	// ((noise + PCANOffset) / PCANOffset)^-PCANStrength, pulling channels
	// riding a high noise floor down toward the quiet ones. Strength 0
	// disables the stage.
	PCANStrength float64 // default 0.95
	PCANOffset   float64 // default 80

	EnableLogScale bool // apply log scaling (default true)
	LogScaleShift  uint // fixed-point scale, out = log(1+x)<<shift (default 6)
}

// DefaultConfig returns the parameter set the bundled models were trained
// with.
func DefaultConfig() Config {
	return Config{
		SampleRate:         16000,
		WindowSizeMs:       30,
		StepSizeMs:         20,
		NumChannels:        40,
		LowerBandLimit:     125.0,
		UpperBandLimit:     7500.0,
		NoiseEvenSmoothing: 0.025,
		NoiseOddSmoothing:  0.06,
		MinSignalRemaining: 0.05,
		PCANStrength:       0.95,
		PCANOffset:         80.0,
		EnableLogScale:     true,
		LogScaleShift:      6,
	}
}

// WindowSamples returns the number of samples in one analysis window.
func (c Config) WindowSamples() int {
	return c.WindowSizeMs * c.SampleRate / 1000
}

// StepSamples returns the number of samples in one window step.
func (c Config) StepSamples() int {
	return c.StepSizeMs * c.SampleRate / 1000
}

// State holds the precomputed tables and running noise estimates of one
// extraction stream. It is owned by a single caller.
type State struct {
	cfg    Config
	window []float64 // Hamming coefficients
	bank   [][]float64
	plan   *fftPlan

	noise    []float64 // per-channel running noise estimate
	pcanNorm float64   // PCANOffset^PCANStrength, unity-gain normalization

	// Scratch reused across Process calls.
	re, im []float64
	power  []float64
	out    []uint16
}

// New creates a State with the given config. The FFT size is the smallest
// power of two holding one window.
func New(cfg Config) (*State, error) {
	if cfg.SampleRate <= 0 || cfg.WindowSizeMs <= 0 || cfg.NumChannels <= 0 {
		return nil, fmt.Errorf("frontend: invalid config: rate=%d window=%dms channels=%d",
			cfg.SampleRate, cfg.WindowSizeMs, cfg.NumChannels)
	}
	if cfg.UpperBandLimit > float64(cfg.SampleRate)/2 {
		return nil, fmt.Errorf("frontend: upper band limit %.0f above Nyquist %d",
			cfg.UpperBandLimit, cfg.SampleRate/2)
	}
	if cfg.PCANStrength > 0 && cfg.PCANOffset <= 0 {
		return nil, fmt.Errorf("frontend: pcan offset %.2f must be positive when strength is set",
			cfg.PCANOffset)
	}

	winSamples := cfg.WindowSamples()
	nfft := 1
	for nfft < winSamples {
		nfft <<= 1
	}

	s := &State{
		cfg:      cfg,
		window:   hammingWindow(winSamples),
		bank:     melFilterBank(cfg.NumChannels, nfft, cfg.SampleRate, cfg.LowerBandLimit, cfg.UpperBandLimit),
		plan:     newFFTPlan(nfft),
		noise:    make([]float64, cfg.NumChannels),
		pcanNorm: math.Pow(cfg.PCANOffset, cfg.PCANStrength),
		re:       make([]float64, nfft),
		im:       make([]float64, nfft),
		power:    make([]float64, nfft/2+1),
		out:      make([]uint16, cfg.NumChannels),
	}
	return s, nil
}

// NumChannels returns the feature vector width.
func (s *State) NumChannels() int {
	return s.cfg.NumChannels
}

// Reset clears the running noise estimates, re-entering the initial stream
// state.
func (s *State) Reset() {
	for i := range s.noise {
		s.noise[i] = 0
	}
}

// Process computes the feature vector for exactly one audio window. The
// returned slice is scratch owned by the State and is valid until the next
// call.
func (s *State) Process(samples []int16) ([]uint16, error) {
	winSamples := len(s.window)
	if len(samples) != winSamples {
		return nil, fmt.Errorf("frontend: window has %d samples, want %d", len(samples), winSamples)
	}

	nfft := s.plan.n
	for i := 0; i < winSamples; i++ {
		s.re[i] = float64(samples[i]) * s.window[i]
		s.im[i] = 0
	}
	for i := winSamples; i < nfft; i++ {
		s.re[i] = 0
		s.im[i] = 0
	}

	s.plan.transform(s.re, s.im)

	// Power spectrum, normalized by the FFT size to keep band energies in a
	// fixed-point friendly range.
	for i := range s.power {
		s.power[i] = (s.re[i]*s.re[i] + s.im[i]*s.im[i]) / float64(nfft)
	}

	for ch := 0; ch < s.cfg.NumChannels; ch++ {
		energy := 0.0
		for k, w := range s.bank[ch] {
			energy += w * s.power[k]
		}

		// Noise reduction: exponential smoothing of the per-channel floor,
		// with distinct coefficients for even and odd channels.
		smoothing := s.cfg.NoiseEvenSmoothing
		if ch%2 == 1 {
			smoothing = s.cfg.NoiseOddSmoothing
		}
		s.noise[ch] += smoothing * (energy - s.noise[ch])

		reduced := energy - s.noise[ch]
		if floor := energy * s.cfg.MinSignalRemaining; reduced < floor {
			reduced = floor
		}

		// PCAN auto gain: normalize each channel against its own noise
		// estimate. Unity gain while the estimate sits at zero.
		if s.cfg.PCANStrength > 0 {
			reduced *= s.pcanNorm * math.Pow(s.noise[ch]+s.cfg.PCANOffset, -s.cfg.PCANStrength)
		}

		if !s.cfg.EnableLogScale {
			s.out[ch] = saturate16(reduced)
			continue
		}
		scaled := math.Log1p(reduced) * float64(int(1)<<s.cfg.LogScaleShift)
		s.out[ch] = saturate16(scaled)
	}

	return s.out, nil
}

func saturate16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
