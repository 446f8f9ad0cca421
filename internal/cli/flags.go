package cli

import (
	"github.com/spf13/cobra"

	"classifyd/internal/config"
)

// addPipelineFlags registers the flags shared by serve and predict.
func addPipelineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("model-path", "", "Model file (.onnx or .tflite); defaults MODEL_PATH")
	f.String("class-names", "", "Class name list (.json, .yaml or .txt); defaults CLASS_NAMES_PATH")
	f.Float64("confidence-threshold", 0, "Minimum top score reported under its own label (default 0.60)")
	f.Int("image-size", 0, "Side of the square model input (default 128)")
	f.Int64("max-file-size", 0, "Maximum upload size in bytes (default 10 MiB)")
	f.StringSlice("allowed-extensions", nil, "Accepted file extensions (default jpg,jpeg,png)")
	f.Int("sessions", 0, "Concurrent runtime sessions (default min(NumCPU,4))")
	f.Int("threads", 0, "Intra-op threads per session")
	f.String("onnxruntime-lib", "", "Path to the onnxruntime shared library")
}

// addServeFlags registers the HTTP-only flags.
func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("addr", "", "HTTP listen address (default :8000)")
	f.Int64("predict-timeout", 0, "Per-request predict timeout in seconds (0 disables)")
	f.Int64("shutdown-timeout", 0, "Graceful shutdown timeout in seconds (default 5)")
	f.Int64("max-body-bytes", 0, "Maximum request body in bytes")
	f.Int("max-inflight", 0, "Concurrent predictions before answering 429 (default 64)")
	f.Bool("cors", true, "Enable CORS")
	f.StringSlice("cors-origins", nil, "Allowed CORS origins (default *)")
}

// flagOverrides collects the flags the user actually set on cmd.
func flagOverrides(cmd *cobra.Command) config.Config {
	var over config.Config
	f := cmd.Flags()
	changed := func(name string) bool {
		fl := f.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("model-path") {
		over.ModelPath, _ = f.GetString("model-path")
	}
	if changed("class-names") {
		over.ClassNamesPath, _ = f.GetString("class-names")
	}
	if changed("confidence-threshold") {
		over.ConfidenceThreshold, _ = f.GetFloat64("confidence-threshold")
	}
	if changed("image-size") {
		over.ImageSize, _ = f.GetInt("image-size")
	}
	if changed("max-file-size") {
		over.MaxFileSize, _ = f.GetInt64("max-file-size")
	}
	if changed("allowed-extensions") {
		over.AllowedExtensions, _ = f.GetStringSlice("allowed-extensions")
	}
	if changed("sessions") {
		over.Sessions, _ = f.GetInt("sessions")
	}
	if changed("threads") {
		over.Threads, _ = f.GetInt("threads")
	}
	if changed("onnxruntime-lib") {
		over.LibraryPath, _ = f.GetString("onnxruntime-lib")
	}
	if changed("addr") {
		over.Addr, _ = f.GetString("addr")
	}
	if changed("predict-timeout") {
		over.PredictTimeoutSeconds, _ = f.GetInt64("predict-timeout")
	}
	if changed("shutdown-timeout") {
		over.ShutdownTimeoutSeconds, _ = f.GetInt64("shutdown-timeout")
	}
	if changed("max-body-bytes") {
		over.MaxBodyBytes, _ = f.GetInt64("max-body-bytes")
	}
	if changed("max-inflight") {
		over.MaxInFlight, _ = f.GetInt("max-inflight")
	}
	if changed("cors") {
		v, _ := f.GetBool("cors")
		over.CORSEnabled = &v
	}
	if changed("cors-origins") {
		over.CORSAllowedOrigins, _ = f.GetStringSlice("cors-origins")
	}
	return over
}
