package resampler

// Format describes the byte stream handed to New: little-endian 16-bit
// samples, interleaved left/right when Stereo is set.
type Format struct {
	SampleRate int
	Stereo     bool
}

func (f Format) channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

// frameBytes is the size of one sample across all channels.
func (f Format) frameBytes() int {
	return 2 * f.channels()
}
