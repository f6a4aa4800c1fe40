package tflite

import (
	"fmt"
	"unsafe"
)

// Engine is an inference session specialized to quantized keyword-spotting
// models: exactly one int8 input tensor and one int8 output tensor, with
// fixed shapes. It satisfies the kws.Engine contract.
type Engine struct {
	interp  *Interpreter
	input   *Tensor
	output  *Tensor
	inSize  int
	outSize int
}

// NewEngine creates an Engine for the model. The model's tensor geometry is
// validated once here; Invoke never re-checks it.
func NewEngine(model *Model, opts ...InterpreterOption) (*Engine, error) {
	interp, err := NewInterpreter(model, opts...)
	if err != nil {
		return nil, err
	}

	e := &Engine{interp: interp}
	if err := e.bindTensors(); err != nil {
		interp.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) bindTensors() error {
	if n := e.interp.InputCount(); n != 1 {
		return fmt.Errorf("tflite: model has %d input tensors, engine needs 1", n)
	}
	if n := e.interp.OutputCount(); n != 1 {
		return fmt.Errorf("tflite: model has %d output tensors, engine needs 1", n)
	}

	e.input = e.interp.InputTensor(0)
	e.output = e.interp.OutputTensor(0)
	if tt := e.input.Type(); tt != Int8 {
		return fmt.Errorf("tflite: input tensor is %s, engine needs int8", tt)
	}
	if tt := e.output.Type(); tt != Int8 {
		return fmt.Errorf("tflite: output tensor is %s, engine needs int8", tt)
	}

	// int8 tensors: byte size equals element count.
	e.inSize = e.input.ByteSize()
	e.outSize = e.output.ByteSize()
	if e.inSize == 0 || e.outSize == 0 {
		return fmt.Errorf("tflite: model has an empty tensor (in=%d out=%d)", e.inSize, e.outSize)
	}
	return nil
}

// InputSize returns the input tensor element count.
func (e *Engine) InputSize() int { return e.inSize }

// OutputSize returns the output tensor element count.
func (e *Engine) OutputSize() int { return e.outSize }

// InputQuantization returns the input tensor's quantization parameters.
func (e *Engine) InputQuantization() (scale float32, zeroPoint int32) {
	return e.input.Quantization()
}

// Invoke runs the model: input is copied in, the graph executed, and the
// scores copied into output. Slice lengths must match the tensor sizes.
func (e *Engine) Invoke(input, output []int8) error {
	if len(input) != e.inSize {
		return fmt.Errorf("tflite: got %d input elements, tensor holds %d", len(input), e.inSize)
	}
	if len(output) != e.outSize {
		return fmt.Errorf("tflite: got %d output elements, tensor holds %d", len(output), e.outSize)
	}

	if err := e.input.CopyFrom(int8Bytes(input)); err != nil {
		return err
	}
	if err := e.interp.Invoke(); err != nil {
		return err
	}
	return e.output.CopyTo(int8Bytes(output))
}

// Close releases the underlying interpreter. The Model stays open and may
// back further engines.
func (e *Engine) Close() error {
	return e.interp.Close()
}

// int8Bytes reinterprets an int8 slice as bytes without copying.
func int8Bytes(p []int8) []byte {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), len(p))
}
