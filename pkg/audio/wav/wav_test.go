package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// buildWAV assembles a minimal PCM container around the given sample bytes,
// optionally inserting an ignorable chunk before the data chunk.
func buildWAV(sampleRate, channels, bits int, data []byte, extraChunk bool) []byte {
	var fmtChunk bytes.Buffer
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(channels))
	binary.Write(&fmtChunk, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&fmtChunk, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(channels*bits/8))
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(bits))

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.WriteString("fmt ")
	binary.Write(&body, binary.LittleEndian, uint32(fmtChunk.Len()))
	body.Write(fmtChunk.Bytes())
	if extraChunk {
		body.WriteString("LIST")
		binary.Write(&body, binary.LittleEndian, uint32(5))
		body.Write([]byte{1, 2, 3, 4, 5, 0}) // odd size plus pad byte
	}
	body.WriteString("data")
	binary.Write(&body, binary.LittleEndian, uint32(len(data)))
	body.Write(data)

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestReaderParsesHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	r, err := NewReader(bytes.NewReader(buildWAV(16000, 1, 16, pcm, false)))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.SampleRate != 16000 || r.Channels != 1 || r.BitsPerSample != 16 {
		t.Fatalf("header = %+v", r.Header)
	}
	if r.DataSize != len(pcm) {
		t.Errorf("DataSize = %d, want %d", r.DataSize, len(pcm))
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("data = %x, want %x", got, pcm)
	}
}

func TestReaderSkipsUnknownChunks(t *testing.T) {
	pcm := []byte{0xAA, 0xBB}
	r, err := NewReader(bytes.NewReader(buildWAV(44100, 2, 16, pcm, true)))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.SampleRate != 44100 || r.Channels != 2 {
		t.Fatalf("header = %+v", r.Header)
	}
	got, _ := io.ReadAll(r)
	if !bytes.Equal(got, pcm) {
		t.Errorf("data = %x, want %x", got, pcm)
	}
}

func TestReaderLimitsToDataChunk(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	file := buildWAV(16000, 1, 16, pcm, false)
	file = append(file, "TRAILINGGARBAGE"...)

	r, err := NewReader(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, _ := io.ReadAll(r)
	if len(got) != len(pcm) {
		t.Errorf("read %d bytes past the data chunk, want %d", len(got), len(pcm))
	}
}

func TestReaderRejectsNonPCM(t *testing.T) {
	file := buildWAV(16000, 1, 16, nil, false)
	// Patch the format tag to IEEE float.
	copy(file[20:22], []byte{0x03, 0x00})
	if _, err := NewReader(bytes.NewReader(file)); !errors.Is(err, ErrFormat) {
		t.Fatalf("float format: %v, want ErrFormat", err)
	}
}

func TestReaderRejects8Bit(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(buildWAV(8000, 1, 8, nil, false))); !errors.Is(err, ErrFormat) {
		t.Fatalf("8-bit file: %v, want ErrFormat", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	for _, in := range [][]byte{
		nil,
		[]byte("RIFF"),
		[]byte("OggS\x00\x00\x00\x00\x00\x00\x00\x00"),
	} {
		if _, err := NewReader(bytes.NewReader(in)); !errors.Is(err, ErrFormat) {
			t.Errorf("input %q: %v, want ErrFormat", in, err)
		}
	}
}
