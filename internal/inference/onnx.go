package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"classifyd/internal/pipeline"
)

// envMu guards the process-wide onnxruntime environment.
var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnv(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 && !ort.IsInitialized() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return ErrDependencyUnavailable(fmt.Sprintf("onnxruntime unavailable: %v", err))
		}
	}
	envRefs++
	return nil
}

func releaseEnv() {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		_ = ort.DestroyEnvironment()
	}
}

// onnxSession owns one advanced session and the tensors bound to it.
type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// bindings returns the tensors the session reads from and writes to.
func (s *onnxSession) bindings() ([]ort.ArbitraryTensor, []ort.ArbitraryTensor) {
	return []ort.ArbitraryTensor{s.input}, []ort.ArbitraryTensor{s.output}
}

func (s *onnxSession) destroy() {
	if s.session != nil {
		_ = s.session.Destroy()
	}
	if s.input != nil {
		_ = s.input.Destroy()
	}
	if s.output != nil {
		_ = s.output.Destroy()
	}
}

// onnxClassifier hands each call a session of its own from a pool, so
// concurrent requests never share bound tensors.
type onnxClassifier struct {
	pool       chan *onnxSession
	sessions   []*onnxSession
	inputLen   int
	numClasses int
	closeOnce  sync.Once
}

func openONNX(path string, opts Options) (Classifier, error) {
	if err := acquireEnv(opts.LibraryPath); err != nil {
		return nil, err
	}
	inName, outName, err := resolveONNXNames(path, opts)
	if err != nil {
		releaseEnv()
		return nil, err
	}
	so, err := ort.NewSessionOptions()
	if err != nil {
		releaseEnv()
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer so.Destroy()
	if err := so.SetIntraOpNumThreads(opts.Threads); err != nil {
		releaseEnv()
		return nil, fmt.Errorf("set intra-op threads: %w", err)
	}

	c := &onnxClassifier{
		pool:       make(chan *onnxSession, opts.Sessions),
		inputLen:   opts.inputLen(),
		numClasses: opts.NumClasses,
	}
	inShape := ort.NewShape(1, int64(opts.ImageSize), int64(opts.ImageSize), 3)
	outShape := ort.NewShape(1, int64(opts.NumClasses))
	for i := 0; i < opts.Sessions; i++ {
		s := &onnxSession{}
		if s.input, err = ort.NewEmptyTensor[float32](inShape); err != nil {
			c.destroyAll()
			releaseEnv()
			return nil, fmt.Errorf("create input tensor: %w", err)
		}
		if s.output, err = ort.NewEmptyTensor[float32](outShape); err != nil {
			s.destroy()
			c.destroyAll()
			releaseEnv()
			return nil, fmt.Errorf("create output tensor: %w", err)
		}
		inputs, outputs := s.bindings()
		s.session, err = ort.NewAdvancedSession(path,
			[]string{inName}, []string{outName},
			inputs, outputs, so)
		if err != nil {
			s.destroy()
			c.destroyAll()
			releaseEnv()
			return nil, fmt.Errorf("create onnx session: %w", err)
		}
		c.sessions = append(c.sessions, s)
		c.pool <- s
	}
	return c, nil
}

// resolveONNXNames returns the configured graph endpoints or the first input
// and output of the graph, checking the output width when it is static.
func resolveONNXNames(path string, opts Options) (string, string, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return "", "", fmt.Errorf("read onnx graph info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return "", "", errors.New("onnx graph has no inputs or outputs")
	}
	inName, outName := opts.InputName, opts.OutputName
	if inName == "" {
		inName = inputs[0].Name
	}
	if outName == "" {
		outName = outputs[0].Name
	}
	for _, o := range outputs {
		if o.Name != outName {
			continue
		}
		dims := o.Dimensions
		if n := len(dims); n > 0 && dims[n-1] > 0 && int(dims[n-1]) != opts.NumClasses {
			return "", "", fmt.Errorf("model output %q has %d classes, class table has %d", outName, dims[n-1], opts.NumClasses)
		}
	}
	return inName, outName, nil
}

func (c *onnxClassifier) Predict(ctx context.Context, in pipeline.Tensor) ([]float32, error) {
	if err := checkInput(in, c.inputLen); err != nil {
		return nil, err
	}
	var s *onnxSession
	select {
	case s = <-c.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { c.pool <- s }()

	copy(s.input.GetData(), in.Data)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	out := make([]float32, c.numClasses)
	copy(out, s.output.GetData())
	return out, nil
}

// Close destroys all sessions. It must not be called while Predict calls are
// in flight.
func (c *onnxClassifier) Close() error {
	c.closeOnce.Do(func() {
		c.destroyAll()
		releaseEnv()
	})
	return nil
}

func (c *onnxClassifier) destroyAll() {
	for _, s := range c.sessions {
		s.destroy()
	}
	c.sessions = nil
}
