package frontend

import (
	"math"
	"testing"
)

func TestHammingWindow(t *testing.T) {
	w := hammingWindow(480)
	if len(w) != 480 {
		t.Fatalf("expected 480, got %d", len(w))
	}
	// Hamming window: endpoints should be ~0.08
	if math.Abs(w[0]-0.08) > 0.01 {
		t.Errorf("w[0] = %f, want ~0.08", w[0])
	}
	// Center should be ~1.0
	if math.Abs(w[239]-1.0) > 0.02 {
		t.Errorf("w[239] = %f, want ~1.0", w[239])
	}
}

func TestMelConversion(t *testing.T) {
	// HTK mel scale: 2595 * log10(1 + f/700)
	mel := hzToMel(1000)
	if math.Abs(mel-1000.45) > 1.0 {
		t.Errorf("hzToMel(1000) = %f, want ~1000.45", mel)
	}
	hz := melToHz(mel)
	if math.Abs(hz-1000) > 0.1 {
		t.Errorf("melToHz(hzToMel(1000)) = %f, want 1000", hz)
	}
}

func TestMelFilterBank(t *testing.T) {
	bank := melFilterBank(40, 512, 16000, 125, 7500)
	if len(bank) != 40 {
		t.Fatalf("expected 40 filters, got %d", len(bank))
	}
	halfFFT := 512/2 + 1
	for i, f := range bank {
		if len(f) != halfFFT {
			t.Fatalf("filter %d: expected %d bins, got %d", i, halfFFT, len(f))
		}
		hasNonZero := false
		for _, v := range f {
			if v > 0 {
				hasNonZero = true
				break
			}
		}
		if !hasNonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}
}

func TestFFTPlan(t *testing.T) {
	// DC + 1Hz cosine in an 8-sample window
	n := 8
	p := newFFTPlan(n)
	real := make([]float64, n)
	imag := make([]float64, n)
	for i := range real {
		real[i] = 1.0 + math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	p.transform(real, imag)

	// DC component should be n
	if math.Abs(real[0]-float64(n)) > 0.01 {
		t.Errorf("DC = %f, want %d", real[0], n)
	}
	// First harmonic should be n/2
	if math.Abs(real[1]-float64(n)/2) > 0.01 {
		t.Errorf("H1 real = %f, want %f", real[1], float64(n)/2)
	}
}

func TestProcessDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	win := cfg.WindowSamples()

	samples := make([]int16, win)
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	fa, err := a.Process(samples)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := b.Process(samples)
	if err != nil {
		t.Fatal(err)
	}

	if len(fa) != cfg.NumChannels {
		t.Fatalf("got %d channels, want %d", len(fa), cfg.NumChannels)
	}
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("channel %d differs between identical streams: %d vs %d", i, fa[i], fb[i])
		}
	}
}

func TestProcessWindowSize(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Process(make([]int16, 7)); err == nil {
		t.Fatal("expected error for wrong window size")
	}
}

func TestProcessToneSelectsBand(t *testing.T) {
	cfg := DefaultConfig()
	// Isolate the filterbank: PCAN compresses inter-channel differences.
	cfg.PCANStrength = 0
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	win := cfg.WindowSamples()
	tone := make([]int16, win)
	for i := range tone {
		tone[i] = int16(16000 * math.Sin(2*math.Pi*1000*float64(i)/16000))
	}

	feats, err := s.Process(tone)
	if err != nil {
		t.Fatal(err)
	}

	// The peak channel's center frequency should be near 1 kHz.
	top := 0
	for i, v := range feats {
		if v > feats[top] {
			top = i
		}
	}
	lowMel := hzToMel(cfg.LowerBandLimit)
	highMel := hzToMel(cfg.UpperBandLimit)
	center := melToHz(lowMel + (highMel-lowMel)*float64(top+1)/float64(cfg.NumChannels+1))
	if center < 700 || center > 1400 {
		t.Errorf("peak channel %d centered at %.0f Hz, want near 1000 Hz", top, center)
	}
}

func TestProcessSilenceAfterReset(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	silence := make([]int16, cfg.WindowSamples())
	first, err := s.Process(silence)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]uint16, len(first))
	copy(got, first)

	// Push some signal through to move the noise estimates, then Reset and
	// verify the stream starts over identically.
	tone := make([]int16, cfg.WindowSamples())
	for i := range tone {
		tone[i] = int16(10000 * math.Sin(2*math.Pi*500*float64(i)/16000))
	}
	if _, err := s.Process(tone); err != nil {
		t.Fatal(err)
	}

	s.Reset()
	again, err := s.Process(silence)
	if err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if again[i] != got[i] {
			t.Fatalf("channel %d after Reset = %d, want %d", i, again[i], got[i])
		}
	}
}

func TestProcessPCANGain(t *testing.T) {
	on := DefaultConfig()
	off := DefaultConfig()
	off.PCANStrength = 0

	sOn, err := New(on)
	if err != nil {
		t.Fatal(err)
	}
	sOff, err := New(off)
	if err != nil {
		t.Fatal(err)
	}

	// With the noise estimates at zero the gain is unity, so silence gives
	// identical features with the stage on or off.
	silence := make([]int16, on.WindowSamples())
	fa, err := sOn.Process(silence)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]uint16, len(fa))
	copy(got, fa)
	fb, err := sOff.Process(silence)
	if err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if got[i] != fb[i] {
			t.Fatalf("channel %d on silence: pcan=%d plain=%d", i, got[i], fb[i])
		}
	}

	// A sustained loud tone drives the noise estimates up; the repeat
	// window is normalized against that floor and comes out attenuated.
	tone := make([]int16, on.WindowSamples())
	for i := range tone {
		tone[i] = int16(16000 * math.Sin(2*math.Pi*1000*float64(i)/16000))
	}
	if _, err := sOn.Process(tone); err != nil {
		t.Fatal(err)
	}
	if _, err := sOff.Process(tone); err != nil {
		t.Fatal(err)
	}
	pa, err := sOn.Process(tone)
	if err != nil {
		t.Fatal(err)
	}
	normalized := make([]uint16, len(pa))
	copy(normalized, pa)
	pb, err := sOff.Process(tone)
	if err != nil {
		t.Fatal(err)
	}

	peak := 0
	for i, v := range pb {
		if v > pb[peak] {
			peak = i
		}
	}
	if normalized[peak] >= pb[peak] {
		t.Errorf("peak channel %d: pcan=%d, want below plain=%d", peak, normalized[peak], pb[peak])
	}
}

func BenchmarkProcess(b *testing.B) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	samples := make([]int16, cfg.WindowSamples())
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		if _, err := s.Process(samples); err != nil {
			b.Fatal(err)
		}
	}
}
