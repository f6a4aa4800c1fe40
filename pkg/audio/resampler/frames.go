package resampler

import "io"

// frameReader aligns reads from an arbitrary byte stream to whole PCM
// frames. A frame split across upstream reads is carried until its
// remaining bytes arrive; a stream that ends mid-frame reports
// io.ErrUnexpectedEOF.
type frameReader struct {
	src  io.Reader
	size int

	tail  [3]byte // carried bytes of an incomplete frame
	nTail int
}

func newFrameReader(src io.Reader, size int) *frameReader {
	return &frameReader{src: src, size: size}
}

// Read fills p with a whole number of frames. It may return (0, nil) when
// the upstream read ended inside a frame; the partial frame is delivered
// once the rest arrives.
func (fr *frameReader) Read(p []byte) (int, error) {
	if len(p) < fr.size {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)-len(p)%fr.size]

	n := copy(p, fr.tail[:fr.nTail])
	fr.nTail = 0
	rn, err := fr.src.Read(p[n:])
	n += rn

	if rem := n % fr.size; rem != 0 {
		if err == io.EOF {
			return n - rem, io.ErrUnexpectedEOF
		}
		n -= rem
		fr.nTail = copy(fr.tail[:], p[n:n+rem])
	}
	return n, err
}
