// Package resampler normalizes PCM byte streams to the mono 16-bit layout
// the spotting pipeline consumes.
//
// A Reader wraps any little-endian L16 source, collapses stereo pairs to
// mono and converts the sample rate when it differs from the requested
// output rate. Rate conversion is pure Go.
//
//	r, err := resampler.New(in, resampler.Format{SampleRate: 44100, Stereo: true}, 16000)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	io.Copy(pipe, r)
package resampler
