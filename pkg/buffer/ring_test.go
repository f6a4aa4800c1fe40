package buffer

import (
	"errors"
	"testing"
)

func TestRingWriteRead(t *testing.T) {
	r := NewRing[int16](8)

	n, err := r.Write([]int16{1, 2, 3, 4})
	if err != nil || n != 4 {
		t.Fatalf("Write = (%d, %v), want (4, nil)", n, err)
	}
	if r.Len() != 4 || r.Free() != 4 {
		t.Fatalf("Len/Free = %d/%d, want 4/4", r.Len(), r.Free())
	}

	out := make([]int16, 4)
	if got := r.Read(out); got != 4 {
		t.Fatalf("Read = %d, want 4", got)
	}
	for i, v := range []int16{1, 2, 3, 4} {
		if out[i] != v {
			t.Errorf("out[%d] = %d, want %d", i, out[i], v)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", r.Len())
	}
}

func TestRingFullBoundary(t *testing.T) {
	r := NewRing[int16](4)

	// Writing exactly capacity succeeds.
	if n, err := r.Write([]int16{1, 2, 3, 4}); err != nil || n != 4 {
		t.Fatalf("Write to capacity = (%d, %v), want (4, nil)", n, err)
	}

	// The next write fails with ErrFull and stores nothing.
	n, err := r.Write([]int16{5})
	if !errors.Is(err, ErrFull) {
		t.Fatalf("Write past capacity err = %v, want ErrFull", err)
	}
	if n != 0 {
		t.Fatalf("Write past capacity n = %d, want 0", n)
	}

	// Draining one element frees exactly one slot.
	one := make([]int16, 1)
	r.Read(one)
	if n, err := r.Write([]int16{5}); err != nil || n != 1 {
		t.Fatalf("Write after drain = (%d, %v), want (1, nil)", n, err)
	}
}

func TestRingPartialWrite(t *testing.T) {
	r := NewRing[int16](4)
	n, err := r.Write([]int16{1, 2, 3, 4, 5, 6})
	if !errors.Is(err, ErrFull) {
		t.Fatalf("err = %v, want ErrFull", err)
	}
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
	out := make([]int16, 4)
	r.Read(out)
	for i, v := range []int16{1, 2, 3, 4} {
		if out[i] != v {
			t.Errorf("out[%d] = %d, want %d", i, out[i], v)
		}
	}
}

func TestRingShortRead(t *testing.T) {
	r := NewRing[int16](8)
	r.Write([]int16{1, 2, 3})
	out := make([]int16, 5)
	if got := r.Read(out); got != 3 {
		t.Fatalf("Read = %d, want 3 (short read)", got)
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing[int16](4)

	// Advance head/tail past the physical end a few times.
	for round := int16(0); round < 10; round++ {
		in := []int16{round, round + 1, round + 2}
		if n, err := r.Write(in); err != nil || n != 3 {
			t.Fatalf("round %d: Write = (%d, %v)", round, n, err)
		}
		out := make([]int16, 3)
		if got := r.Read(out); got != 3 {
			t.Fatalf("round %d: Read = %d, want 3", round, got)
		}
		for i := range in {
			if out[i] != in[i] {
				t.Errorf("round %d: out[%d] = %d, want %d", round, i, out[i], in[i])
			}
		}
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing[int16](4)
	r.Write([]int16{1, 2, 3, 4})
	r.Reset()
	if r.Len() != 0 || r.Free() != 4 {
		t.Fatalf("after Reset Len/Free = %d/%d, want 0/4", r.Len(), r.Free())
	}
	if n, err := r.Write([]int16{9}); err != nil || n != 1 {
		t.Fatalf("Write after Reset = (%d, %v), want (1, nil)", n, err)
	}
}
