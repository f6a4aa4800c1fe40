// Package wav reads RIFF/WAVE containers holding linear PCM audio.
//
// Only what a capture or test file needs is implemented: chunk scanning up
// to the data chunk, and the fmt fields required to interpret the samples.
// Compressed formats are rejected.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrFormat reports a stream that is not a PCM WAVE file.
var ErrFormat = errors.New("wav: unsupported or malformed file")

const (
	formatPCM = 1
	// WAVE_FORMAT_EXTENSIBLE; the first two bytes of the sub-format GUID
	// carry the real tag, which we require to be PCM.
	formatExtensible = 0xFFFE
)

// Header describes the PCM stream found in the container.
type Header struct {
	SampleRate    int
	Channels      int
	BitsPerSample int

	// DataSize is the data chunk length in bytes. Zero means the length
	// was unknown at write time (streamed capture); read until EOF.
	DataSize int
}

// Reader decodes a WAVE container. Reads return raw little-endian PCM bytes
// from the data chunk.
type Reader struct {
	Header
	r io.Reader
}

// NewReader parses the RIFF header and chunk list of r up to the data
// chunk. The fmt chunk must describe uncompressed PCM.
func NewReader(r io.Reader) (*Reader, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: short RIFF header", ErrFormat)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrFormat)
	}

	w := &Reader{}
	sawFmt := false
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return nil, fmt.Errorf("%w: no data chunk", ErrFormat)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if err := w.parseFmt(r, int(size)); err != nil {
				return nil, err
			}
			sawFmt = true
		case "data":
			if !sawFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt", ErrFormat)
			}
			w.DataSize = int(size)
			if size == 0 || size == 0xFFFFFFFF {
				// Streamed writers leave the size unresolved.
				w.DataSize = 0
				w.r = r
			} else {
				w.r = io.LimitReader(r, int64(size))
			}
			return w, nil
		default:
			// Chunks are word-aligned; a padding byte follows odd sizes.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("%w: truncated %q chunk", ErrFormat, id)
			}
		}
	}
}

func (w *Reader) parseFmt(r io.Reader, size int) error {
	if size < 16 {
		return fmt.Errorf("%w: fmt chunk too short (%d bytes)", ErrFormat, size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: truncated fmt chunk", ErrFormat)
	}
	if size%2 == 1 {
		if _, err := io.CopyN(io.Discard, r, 1); err != nil {
			return fmt.Errorf("%w: truncated fmt chunk", ErrFormat)
		}
	}

	tag := binary.LittleEndian.Uint16(buf[0:2])
	if tag == formatExtensible {
		if size < 40 {
			return fmt.Errorf("%w: extensible fmt chunk too short", ErrFormat)
		}
		tag = binary.LittleEndian.Uint16(buf[24:26])
	}
	if tag != formatPCM {
		return fmt.Errorf("%w: format tag %#x is not PCM", ErrFormat, tag)
	}

	w.Channels = int(binary.LittleEndian.Uint16(buf[2:4]))
	w.SampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
	w.BitsPerSample = int(binary.LittleEndian.Uint16(buf[14:16]))

	if w.Channels < 1 || w.SampleRate < 1 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrFormat, w.Channels, w.SampleRate)
	}
	if w.BitsPerSample != 16 {
		return fmt.Errorf("%w: %d-bit samples, only 16-bit PCM is supported", ErrFormat, w.BitsPerSample)
	}
	return nil
}

// Read returns raw PCM bytes from the data chunk.
func (w *Reader) Read(p []byte) (int, error) {
	return w.r.Read(p)
}
