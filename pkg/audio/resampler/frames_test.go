package resampler

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestFrameReaderOneByteSource(t *testing.T) {
	// A source dribbling one byte per read must still deliver only whole
	// stereo frames, in order.
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	fr := newFrameReader(iotest.OneByteReader(bytes.NewReader(src)), 4)

	got, err := io.ReadAll(fr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Errorf("reassembled %v, want %v", got, src)
	}
}

func TestFrameReaderAlignment(t *testing.T) {
	fr := newFrameReader(bytes.NewReader(make([]byte, 12)), 4)
	n, err := fr.Read(make([]byte, 7))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 4 {
		t.Errorf("read %d bytes into a 7-byte buffer, want one whole frame (4)", n)
	}
}

func TestFrameReaderTruncatedStream(t *testing.T) {
	// Six bytes of four-byte frames: one whole frame, then a torn one.
	fr := newFrameReader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}), 4)
	buf := make([]byte, 16)

	n, err := fr.Read(buf)
	if n != 4 || err != nil {
		t.Fatalf("first read = (%d, %v), want (4, nil)", n, err)
	}
	if _, err := fr.Read(buf); err != io.ErrUnexpectedEOF {
		t.Fatalf("torn final frame: %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFrameReaderShortBuffer(t *testing.T) {
	fr := newFrameReader(bytes.NewReader(make([]byte, 8)), 4)
	if _, err := fr.Read(make([]byte, 3)); err != io.ErrShortBuffer {
		t.Fatalf("sub-frame buffer: %v, want io.ErrShortBuffer", err)
	}
}
