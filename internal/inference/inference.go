// Package inference adapts model runtimes to pipeline.Classifier.
//
// Runtimes:
//
//   - ONNX (default build): github.com/yalue/onnxruntime_go. The onnxruntime
//     shared library is loaded at Open time; set Options.LibraryPath or
//     ONNXRUNTIME_LIB when it is not on the default search path.
//   - TFLite: github.com/tphakala/go-tflite, enabled with `-tags=tflite`.
//     Without the tag a stub reports the runtime as unavailable.
package inference

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"classifyd/internal/pipeline"
	"classifyd/pkg/types"
)

// Classifier is a pipeline.Classifier that owns native resources.
type Classifier interface {
	pipeline.Classifier
	io.Closer
}

// Options configures a runtime. Zero values mean "unspecified".
type Options struct {
	// ImageSize is the side of the square NHWC input, e.g. 128.
	ImageSize int
	// NumClasses is the expected length of the score vector.
	NumClasses int
	// Sessions is the number of independent ONNX sessions kept in the pool.
	Sessions int
	// Threads is the intra-op thread count per session or interpreter.
	Threads int
	// InputName and OutputName select ONNX graph endpoints; when empty the
	// first input and output of the graph are used.
	InputName  string
	OutputName string
	// LibraryPath points at the onnxruntime shared library.
	LibraryPath string
}

func (o Options) withDefaults() Options {
	if o.ImageSize <= 0 {
		o.ImageSize = pipeline.DefaultImageSize
	}
	if o.Sessions <= 0 {
		o.Sessions = min(runtime.NumCPU(), 4)
	}
	if o.Threads <= 0 {
		o.Threads = 1
	}
	if o.LibraryPath == "" {
		o.LibraryPath = os.Getenv("ONNXRUNTIME_LIB")
	}
	return o
}

// Open loads the model described by m.
func Open(m types.Model, opts Options) (Classifier, error) {
	opts = opts.withDefaults()
	if opts.NumClasses <= 0 {
		return nil, errors.New("inference: number of classes is required")
	}
	switch m.Runtime {
	case types.RuntimeONNX:
		return openONNX(m.Path, opts)
	case types.RuntimeTFLite:
		return openTFLite(m.Path, opts)
	default:
		return nil, fmt.Errorf("inference: unsupported runtime %q", m.Runtime)
	}
}

// inputLen is the number of float32 values in one NHWC input tensor.
func (o Options) inputLen() int { return o.ImageSize * o.ImageSize * 3 }

// checkInput guards against tensors built for another image size.
func checkInput(in pipeline.Tensor, want int) error {
	if len(in.Data) != want {
		return fmt.Errorf("input has %d values, model expects %d", len(in.Data), want)
	}
	return nil
}
