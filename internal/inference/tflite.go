//go:build tflite

package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tphakala/go-tflite"

	"classifyd/internal/pipeline"
)

// tfliteClassifier wraps a single interpreter. Interpreter calls are not
// reentrant, so Predict serializes on mu.
type tfliteClassifier struct {
	mu         sync.Mutex
	model      *tflite.Model
	options    *tflite.InterpreterOptions
	interp     *tflite.Interpreter
	inputLen   int
	numClasses int
	closed     bool
}

func openTFLite(path string, opts Options) (Classifier, error) {
	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, fmt.Errorf("cannot load tflite model %s", path)
	}
	options := tflite.NewInterpreterOptions()
	options.SetNumThread(opts.Threads)
	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		options.Delete()
		model.Delete()
		return nil, errors.New("cannot create tflite interpreter")
	}
	c := &tfliteClassifier{
		model:      model,
		options:    options,
		interp:     interp,
		inputLen:   opts.inputLen(),
		numClasses: opts.NumClasses,
	}
	if status := interp.AllocateTensors(); status != tflite.OK {
		c.release()
		return nil, errors.New("tflite tensor allocation failed")
	}
	input := interp.GetInputTensor(0)
	if input == nil {
		c.release()
		return nil, errors.New("tflite model has no input tensor")
	}
	if n := len(input.Float32s()); n != c.inputLen {
		c.release()
		return nil, fmt.Errorf("tflite input holds %d values, expected %d", n, c.inputLen)
	}
	output := interp.GetOutputTensor(0)
	if output == nil {
		c.release()
		return nil, errors.New("tflite model has no output tensor")
	}
	if n := output.Dim(output.NumDims() - 1); n != c.numClasses {
		c.release()
		return nil, fmt.Errorf("tflite output has %d classes, class table has %d", n, c.numClasses)
	}
	return c, nil
}

func (c *tfliteClassifier) Predict(ctx context.Context, in pipeline.Tensor) ([]float32, error) {
	if err := checkInput(in, c.inputLen); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("tflite classifier is closed")
	}
	copy(c.interp.GetInputTensor(0).Float32s(), in.Data)
	if status := c.interp.Invoke(); status != tflite.OK {
		return nil, errors.New("tflite invoke failed")
	}
	out := make([]float32, c.numClasses)
	copy(out, c.interp.GetOutputTensor(0).Float32s())
	return out, nil
}

func (c *tfliteClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.release()
		c.closed = true
	}
	return nil
}

func (c *tfliteClassifier) release() {
	if c.interp != nil {
		c.interp.Delete()
	}
	if c.options != nil {
		c.options.Delete()
	}
	if c.model != nil {
		c.model.Delete()
	}
}
