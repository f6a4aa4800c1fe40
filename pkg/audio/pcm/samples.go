package pcm

// DecodeSamples converts little-endian L16 bytes into int16 samples appended
// to dst. Only full sample pairs are consumed; the returned count is the
// number of bytes used, so a caller streaming arbitrary chunk sizes can carry
// a split trailing byte to the next call.
func DecodeSamples(dst []int16, p []byte) ([]int16, int) {
	n := len(p) / 2 * 2
	for i := 0; i < n; i += 2 {
		dst = append(dst, int16(p[i])|int16(p[i+1])<<8)
	}
	return dst, n
}

// EncodeSamples converts int16 samples into little-endian L16 bytes appended
// to dst.
func EncodeSamples(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}

// DownmixPair averages a stereo sample pair into one mono sample. The halves
// are divided before the add so the sum cannot overflow int16.
func DownmixPair(left, right int16) int16 {
	return left/2 + right/2
}
