package types

// Model describes the classifier loaded by the service.
type Model struct {
	// Stable identifier for the model (file name).
	// example: brain_tumor_model.onnx
	ID string `json:"id" example:"brain_tumor_model.onnx"`
	// Human-friendly name.
	// example: brain_tumor_model
	Name string `json:"name" example:"brain_tumor_model"`
	// Absolute path to the model file on disk.
	// example: /srv/models/brain_tumor_model.onnx
	Path string `json:"path" example:"/srv/models/brain_tumor_model.onnx"`
	// Runtime used to execute the model (onnx or tflite).
	// example: onnx
	Runtime string `json:"runtime" example:"onnx"`
}

// Supported model runtimes.
const (
	RuntimeONNX   = "onnx"
	RuntimeTFLite = "tflite"
)
