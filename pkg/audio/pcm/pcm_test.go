package pcm

import (
	"testing"
	"time"
)

func TestFormatMath(t *testing.T) {
	f := L16Mono16K
	if f.SampleRate() != 16000 || f.Channels() != 1 || f.Depth() != 16 {
		t.Fatalf("unexpected format parameters for %s", f)
	}
	if got := f.BytesInDuration(time.Second); got != 32000 {
		t.Errorf("BytesInDuration(1s) = %d, want 32000", got)
	}
	if got := f.SamplesInDuration(30 * time.Millisecond); got != 480 {
		t.Errorf("SamplesInDuration(30ms) = %d, want 480", got)
	}
	if got := f.Duration(32000); got != time.Second {
		t.Errorf("Duration(32000) = %v, want 1s", got)
	}
	if got := f.Samples(960); got != 480 {
		t.Errorf("Samples(960) = %d, want 480", got)
	}
}

func TestDecodeEncodeSamples(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 12345}
	bytes := EncodeSamples(nil, in)
	if len(bytes) != len(in)*2 {
		t.Fatalf("encoded %d bytes, want %d", len(bytes), len(in)*2)
	}

	out, used := DecodeSamples(nil, bytes)
	if used != len(bytes) {
		t.Fatalf("used = %d, want %d", used, len(bytes))
	}
	for i, v := range in {
		if out[i] != v {
			t.Errorf("out[%d] = %d, want %d", i, out[i], v)
		}
	}
}

func TestDecodeSamplesOddTail(t *testing.T) {
	bytes := EncodeSamples(nil, []int16{7, -7})
	bytes = append(bytes, 0x42) // split trailing byte

	out, used := DecodeSamples(nil, bytes)
	if used != 4 {
		t.Fatalf("used = %d, want 4", used)
	}
	if len(out) != 2 || out[0] != 7 || out[1] != -7 {
		t.Fatalf("out = %v, want [7 -7]", out)
	}
}

func TestDownmixPair(t *testing.T) {
	cases := []struct {
		l, r, want int16
	}{
		{0, 0, 0},
		{100, 200, 150},
		{-100, -200, -150},
		{32767, 32767, 32766}, // truncating halves, no overflow
		{-32768, -32768, -32768},
		{32767, -32768, -1},
	}
	for _, c := range cases {
		if got := DownmixPair(c.l, c.r); got != c.want {
			t.Errorf("DownmixPair(%d, %d) = %d, want %d", c.l, c.r, got, c.want)
		}
	}
}
