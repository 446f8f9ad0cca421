package inference

import (
	"context"
	"os"
	"testing"

	"classifyd/internal/pipeline"
	"classifyd/pkg/types"
)

func TestOptionsDefaults(t *testing.T) {
	t.Setenv("ONNXRUNTIME_LIB", "/opt/ort/libonnxruntime.so")
	o := Options{}.withDefaults()
	if o.ImageSize != pipeline.DefaultImageSize {
		t.Fatalf("image size=%d", o.ImageSize)
	}
	if o.Sessions < 1 || o.Sessions > 4 {
		t.Fatalf("sessions=%d", o.Sessions)
	}
	if o.Threads != 1 {
		t.Fatalf("threads=%d", o.Threads)
	}
	if o.LibraryPath != "/opt/ort/libonnxruntime.so" {
		t.Fatalf("library path=%q", o.LibraryPath)
	}
	if o.inputLen() != 128*128*3 {
		t.Fatalf("input len=%d", o.inputLen())
	}
}

func TestOpen_RequiresClassCount(t *testing.T) {
	_, err := Open(types.Model{Runtime: types.RuntimeONNX, Path: "x.onnx"}, Options{})
	if err == nil {
		t.Fatalf("expected error without class count")
	}
}

func TestOpen_UnknownRuntime(t *testing.T) {
	_, err := Open(types.Model{Runtime: "pickle", Path: "x.pkl"}, Options{NumClasses: 2})
	if err == nil {
		t.Fatalf("expected unsupported runtime error")
	}
	if IsDependencyUnavailable(err) {
		t.Fatalf("unknown runtime is not a missing dependency: %v", err)
	}
}

func TestCheckInput(t *testing.T) {
	if err := checkInput(pipeline.Tensor{Data: make([]float32, 12)}, 12); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := checkInput(pipeline.Tensor{Data: make([]float32, 11)}, 12); err == nil {
		t.Fatalf("expected size mismatch")
	}
}

// TestONNXModel runs a real model when one is provided:
//
//	CLASSIFYD_TEST_ONNX_MODEL=/models/brain_tumor_model.onnx \
//	CLASSIFYD_TEST_ONNX_CLASSES=4 go test ./internal/inference/
func TestONNXModel(t *testing.T) {
	path := os.Getenv("CLASSIFYD_TEST_ONNX_MODEL")
	if path == "" {
		t.Skip("CLASSIFYD_TEST_ONNX_MODEL not set")
	}
	clf, err := Open(types.Model{Runtime: types.RuntimeONNX, Path: path}, Options{NumClasses: 4, Sessions: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer clf.Close()
	in := pipeline.Tensor{Shape: [4]int{1, 128, 128, 3}, Data: make([]float32, 128*128*3)}
	scores, err := clf.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(scores) != 4 {
		t.Fatalf("scores=%v", scores)
	}
}
