package pipeline

import "context"

// Tensor is a dense float32 tensor in NHWC layout.
type Tensor struct {
	Shape [4]int
	Data  []float32
}

// At returns the value at row y, column x, channel c of batch item 0.
func (t Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Shape[2]+x)*t.Shape[3]+c]
}

// Classifier scores a preprocessed image. The returned slice holds one score
// per class index.
//
// Implementations are shared by all in-flight requests and must be safe for
// concurrent use. A runtime whose inference call is not reentrant has to
// serialize access itself; the pipeline takes no locks around Predict.
type Classifier interface {
	Predict(ctx context.Context, in Tensor) ([]float32, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, in Tensor) ([]float32, error)

// Predict calls f(ctx, in).
func (f ClassifierFunc) Predict(ctx context.Context, in Tensor) ([]float32, error) {
	return f(ctx, in)
}
