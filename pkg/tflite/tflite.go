// Package tflite provides Go bindings for the TensorFlow Lite C API via CGo.
//
// The package wraps the C API's model/interpreter pair with Go-native types
// and adds [Engine], a fixed-shape int8 inference session for quantized
// keyword-spotting models.
//
// # Architecture
//
// Three core types:
//
//   - [Model] — a parsed .tflite flatbuffer (from file or memory)
//   - [Interpreter] — runs inference on a loaded Model
//   - [Engine] — an Interpreter specialized to one int8 input and one int8
//     output tensor, satisfying the kws.Engine contract
//
// Usage flow:
//
//	model, _ := tflite.NewModelFromMemory(modelData)
//	defer model.Close()
//
//	eng, _ := tflite.NewEngine(model, tflite.WithThreads(1))
//	defer eng.Close()
//
//	err := eng.Invoke(features, scores)
//
// # Linking
//
// The binary links against libtensorflowlite_c. Build the library from the
// TensorFlow source tree or install a prebuilt package for the target.
//
// # Thread Safety
//
// A Model is immutable after creation and safe for concurrent use by
// multiple Interpreters. Each Interpreter (and Engine) must be used from a
// single goroutine.
package tflite

/*
#cgo LDFLAGS: -ltensorflowlite_c
#include <stdlib.h>
#include <tensorflow/lite/c/c_api.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

// ErrModel reports a flatbuffer the library refuses to parse, including
// unsupported schema versions. The C API does not distinguish the cause.
var ErrModel = errors.New("tflite: invalid model")

// Version returns the TensorFlow Lite library version string.
func Version() string {
	return C.GoString(C.TfLiteVersion())
}

// --------------------------------------------------------------------------
// Model
// --------------------------------------------------------------------------

// Model holds a parsed .tflite flatbuffer. Create with [NewModel] or
// [NewModelFromMemory]. A Model is safe for concurrent use by multiple
// Interpreters.
type Model struct {
	model *C.TfLiteModel

	// data pins the flatbuffer bytes for memory-backed models: the C API
	// reads from the buffer for the model's whole lifetime.
	data []byte
}

// NewModel loads a .tflite file from disk.
func NewModel(path string) (*Model, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	m := &Model{model: C.TfLiteModelCreateFromFile(cPath)}
	if m.model == nil {
		return nil, fmt.Errorf("%w: cannot load %q", ErrModel, path)
	}
	runtime.SetFinalizer(m, (*Model).Close)
	return m, nil
}

// NewModelFromMemory parses a .tflite flatbuffer held in memory. This is the
// preferred constructor when the model is embedded in the binary via
// go:embed. The Model keeps a reference to data; callers must not mutate it.
func NewModelFromMemory(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("tflite: empty model data")
	}
	m := &Model{
		model: C.TfLiteModelCreate(unsafe.Pointer(&data[0]), C.size_t(len(data))),
		data:  data,
	}
	if m.model == nil {
		return nil, fmt.Errorf("%w: data is not a parseable flatbuffer", ErrModel)
	}
	runtime.SetFinalizer(m, (*Model).Close)
	return m, nil
}

// Close releases the model. Interpreters created from it must be closed
// first.
func (m *Model) Close() error {
	if m.model != nil {
		C.TfLiteModelDelete(m.model)
		m.model = nil
		m.data = nil
		runtime.SetFinalizer(m, nil)
	}
	return nil
}

// --------------------------------------------------------------------------
// Interpreter
// --------------------------------------------------------------------------

// Interpreter runs inference on a loaded Model. Create with
// [NewInterpreter]. An Interpreter must be used from a single goroutine.
type Interpreter struct {
	interp *C.TfLiteInterpreter
	model  *Model // keeps the model alive while the interpreter exists
}

// InterpreterOption configures interpreter construction.
type InterpreterOption func(*C.TfLiteInterpreterOptions)

// WithThreads sets the number of CPU threads used for inference.
// The default is implementation-defined.
func WithThreads(n int) InterpreterOption {
	return func(o *C.TfLiteInterpreterOptions) {
		C.TfLiteInterpreterOptionsSetNumThreads(o, C.int32_t(n))
	}
}

// NewInterpreter creates an interpreter for the model and allocates its
// tensors.
func NewInterpreter(model *Model, opts ...InterpreterOption) (*Interpreter, error) {
	if model == nil || model.model == nil {
		return nil, fmt.Errorf("tflite: nil model")
	}

	cOpts := C.TfLiteInterpreterOptionsCreate()
	if cOpts == nil {
		return nil, fmt.Errorf("tflite: options_create failed")
	}
	defer C.TfLiteInterpreterOptionsDelete(cOpts)
	for _, opt := range opts {
		opt(cOpts)
	}

	it := &Interpreter{
		interp: C.TfLiteInterpreterCreate(model.model, cOpts),
		model:  model,
	}
	if it.interp == nil {
		return nil, fmt.Errorf("tflite: interpreter_create failed (unsupported ops?)")
	}
	if st := C.TfLiteInterpreterAllocateTensors(it.interp); st != C.kTfLiteOk {
		C.TfLiteInterpreterDelete(it.interp)
		return nil, fmt.Errorf("tflite: allocate_tensors: %s", statusString(st))
	}
	runtime.SetFinalizer(it, (*Interpreter).Close)
	return it, nil
}

// InputCount returns the number of input tensors.
func (it *Interpreter) InputCount() int {
	return int(C.TfLiteInterpreterGetInputTensorCount(it.interp))
}

// OutputCount returns the number of output tensors.
func (it *Interpreter) OutputCount() int {
	return int(C.TfLiteInterpreterGetOutputTensorCount(it.interp))
}

// InputTensor returns the input tensor at index.
func (it *Interpreter) InputTensor(index int) *Tensor {
	return &Tensor{t: C.TfLiteInterpreterGetInputTensor(it.interp, C.int32_t(index))}
}

// OutputTensor returns the output tensor at index.
func (it *Interpreter) OutputTensor(index int) *Tensor {
	return &Tensor{t: C.TfLiteInterpreterGetOutputTensor(it.interp, C.int32_t(index))}
}

// Invoke runs the model on the current input tensor contents.
func (it *Interpreter) Invoke() error {
	if st := C.TfLiteInterpreterInvoke(it.interp); st != C.kTfLiteOk {
		return fmt.Errorf("tflite: invoke: %s", statusString(st))
	}
	return nil
}

// Close releases the interpreter resources.
func (it *Interpreter) Close() error {
	if it.interp != nil {
		C.TfLiteInterpreterDelete(it.interp)
		it.interp = nil
		it.model = nil
		runtime.SetFinalizer(it, nil)
	}
	return nil
}

func statusString(st C.TfLiteStatus) string {
	switch st {
	case C.kTfLiteOk:
		return "ok"
	case C.kTfLiteError:
		return "error"
	case C.kTfLiteDelegateError:
		return "delegate error"
	default:
		return fmt.Sprintf("status %d", int(st))
	}
}

// --------------------------------------------------------------------------
// Tensor
// --------------------------------------------------------------------------

// Type identifies a tensor element type. Values mirror the C API.
type Type int

const (
	Float32 Type = C.kTfLiteFloat32
	Int32   Type = C.kTfLiteInt32
	UInt8   Type = C.kTfLiteUInt8
	Int8    Type = C.kTfLiteInt8
	Int16   Type = C.kTfLiteInt16
)

func (t Type) String() string {
	switch t {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case UInt8:
		return "uint8"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Tensor is a view of one interpreter tensor. It is owned by the
// interpreter and valid only while the interpreter is open.
type Tensor struct {
	t *C.TfLiteTensor
}

// Type returns the element type.
func (t *Tensor) Type() Type {
	return Type(C.TfLiteTensorType(t.t))
}

// ByteSize returns the tensor size in bytes.
func (t *Tensor) ByteSize() int {
	return int(C.TfLiteTensorByteSize(t.t))
}

// Dims returns the tensor shape.
func (t *Tensor) Dims() []int {
	n := int(C.TfLiteTensorNumDims(t.t))
	dims := make([]int, n)
	for i := range dims {
		dims[i] = int(C.TfLiteTensorDim(t.t, C.int32_t(i)))
	}
	return dims
}

// Quantization returns the tensor's affine quantization parameters.
// A (0, 0) result means the tensor is not quantized.
func (t *Tensor) Quantization() (scale float32, zeroPoint int32) {
	qp := C.TfLiteTensorQuantizationParams(t.t)
	return float32(qp.scale), int32(qp.zero_point)
}

// CopyFrom copies p into the tensor. len(p) must equal ByteSize.
func (t *Tensor) CopyFrom(p []byte) error {
	if len(p) == 0 {
		return fmt.Errorf("tflite: empty tensor write")
	}
	if st := C.TfLiteTensorCopyFromBuffer(t.t, unsafe.Pointer(&p[0]), C.size_t(len(p))); st != C.kTfLiteOk {
		return fmt.Errorf("tflite: tensor write of %d bytes into %d-byte tensor: %s",
			len(p), t.ByteSize(), statusString(st))
	}
	return nil
}

// CopyTo copies the tensor into p. len(p) must equal ByteSize.
func (t *Tensor) CopyTo(p []byte) error {
	if len(p) == 0 {
		return fmt.Errorf("tflite: empty tensor read")
	}
	if st := C.TfLiteTensorCopyToBuffer(t.t, unsafe.Pointer(&p[0]), C.size_t(len(p))); st != C.kTfLiteOk {
		return fmt.Errorf("tflite: tensor read of %d bytes from %d-byte tensor: %s",
			len(p), t.ByteSize(), statusString(st))
	}
	return nil
}
