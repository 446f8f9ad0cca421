package inference

import (
	"testing"

	ort "github.com/yalue/onnxruntime_go"
)

var _ ort.ArbitraryTensor = (*ort.Tensor[float32])(nil)

func TestONNXSessionBindings(t *testing.T) {
	s := &onnxSession{input: &ort.Tensor[float32]{}, output: &ort.Tensor[float32]{}}
	inputs, outputs := s.bindings()
	if len(inputs) != 1 || len(outputs) != 1 {
		t.Fatalf("inputs=%d outputs=%d", len(inputs), len(outputs))
	}
	if in, ok := inputs[0].(*ort.Tensor[float32]); !ok || in != s.input {
		t.Fatalf("input binding=%v", inputs[0])
	}
	if out, ok := outputs[0].(*ort.Tensor[float32]); !ok || out != s.output {
		t.Fatalf("output binding=%v", outputs[0])
	}
}
