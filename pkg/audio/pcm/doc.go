// Package pcm provides format math and sample codecs for raw L16 audio.
//
// The keyword-spotting pipeline consumes audio/L16: signed 16-bit
// little-endian PCM. This package centralizes the arithmetic between bytes,
// samples and durations for the supported formats, and the conversions
// between byte streams and []int16 sample slices, including stereo-to-mono
// downmixing.
package pcm
