package kws

// Feature value scaling, derived from the training-time preprocessing. The
// frontend emits integer magnitudes in roughly a 0 to 670 range; training
// divides them by 25.6 and then 26.0 to reach ~0.0..26.0 floats, and the
// quantized model maps that onto -128..127. Folding the chain into integer
// math gives: value = (feature * 256) / (25.6 * 26.0) - 128, computed with
// round-to-nearest. The formula is kept in this exact form to stay
// bit-compatible with the model's training pipeline.
const (
	featureScale = 256
	featureDiv   = 666 // round(25.6 * 26.0)
	featureBias  = 128
)

// quantizeFeature maps one frontend magnitude to the int8 feature domain.
func quantizeFeature(v uint16) int8 {
	q := (int32(v)*featureScale+featureDiv/2)/featureDiv - featureBias
	if q < -128 {
		q = -128
	}
	if q > 127 {
		q = 127
	}
	return int8(q)
}

// featureMatrix is the sliding window of the most recent sliceCount feature
// slices, stored contiguously (oldest slice first) so it can be handed to
// the inference engine as a single flat tensor.
type featureMatrix struct {
	sliceSize  int
	sliceCount int
	data       []int8
}

func newFeatureMatrix(sliceCount, sliceSize int) *featureMatrix {
	return &featureMatrix{
		sliceSize:  sliceSize,
		sliceCount: sliceCount,
		data:       make([]int8, sliceCount*sliceSize),
	}
}

// addSlice shifts the existing slices one slot toward the head, discarding
// the oldest, and quantizes values into the freed tail slot.
//
// The shift copies (sliceCount-1)*sliceSize elements per update. A
// ring-indexed layout would avoid the copy, but would stop the matrix from
// being one contiguous tensor region; since updates happen once per stride
// interval rather than per sample, the copy is kept.
func (m *featureMatrix) addSlice(values []uint16) {
	copy(m.data, m.data[m.sliceSize:])

	tail := m.data[(m.sliceCount-1)*m.sliceSize:]
	for i, v := range values {
		tail[i] = quantizeFeature(v)
	}
}

// tensor returns the matrix as the flat engine input tensor.
func (m *featureMatrix) tensor() []int8 {
	return m.data
}

// reset zeroes all slices.
func (m *featureMatrix) reset() {
	for i := range m.data {
		m.data[i] = 0
	}
}
