package kws

import "testing"

func TestQuantizeFeature(t *testing.T) {
	cases := []struct {
		in   uint16
		want int8
	}{
		{0, -128},
		{333, 0},    // midpoint of the training range maps to the zero point
		{666, 127},  // full scale saturates
		{65535, 127},
	}
	for _, c := range cases {
		if got := quantizeFeature(c.in); got != c.want {
			t.Errorf("quantizeFeature(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestQuantizeFeatureMonotone(t *testing.T) {
	prev := quantizeFeature(0)
	for v := uint16(1); v < 700; v++ {
		got := quantizeFeature(v)
		if got < prev {
			t.Fatalf("quantizeFeature not monotone at %d: %d < %d", v, got, prev)
		}
		prev = got
	}
}

func TestFeatureMatrixChronology(t *testing.T) {
	const sliceSize, sliceCount = 4, 5
	m := newFeatureMatrix(sliceCount, sliceSize)

	// Produce more slices than the matrix holds; it must always contain
	// exactly the most recent sliceCount, oldest first.
	var produced [][]int8
	for k := 0; k < 17; k++ {
		values := make([]uint16, sliceSize)
		for i := range values {
			values[i] = uint16(k*10 + i)
		}
		m.addSlice(values)

		quantized := make([]int8, sliceSize)
		for i, v := range values {
			quantized[i] = quantizeFeature(v)
		}
		produced = append(produced, quantized)
	}

	want := produced[len(produced)-sliceCount:]
	for s := 0; s < sliceCount; s++ {
		row := m.tensor()[s*sliceSize : (s+1)*sliceSize]
		for i := range row {
			if row[i] != want[s][i] {
				t.Fatalf("slice %d element %d = %d, want %d", s, i, row[i], want[s][i])
			}
		}
	}
}

func TestFeatureMatrixPartialFill(t *testing.T) {
	const sliceSize, sliceCount = 3, 4
	m := newFeatureMatrix(sliceCount, sliceSize)

	values := []uint16{400, 500, 600}
	m.addSlice(values)

	// One slice written: it sits in the tail slot, everything before it is
	// still the zero value.
	tensor := m.tensor()
	for i := 0; i < (sliceCount-1)*sliceSize; i++ {
		if tensor[i] != 0 {
			t.Fatalf("head element %d = %d, want 0", i, tensor[i])
		}
	}
	tail := tensor[(sliceCount-1)*sliceSize:]
	for i, v := range values {
		if tail[i] != quantizeFeature(v) {
			t.Errorf("tail[%d] = %d, want %d", i, tail[i], quantizeFeature(v))
		}
	}
}

func TestFeatureMatrixReset(t *testing.T) {
	m := newFeatureMatrix(3, 2)
	m.addSlice([]uint16{600, 600})
	m.reset()
	for i, v := range m.tensor() {
		if v != 0 {
			t.Fatalf("tensor[%d] = %d after reset, want 0", i, v)
		}
	}
}
