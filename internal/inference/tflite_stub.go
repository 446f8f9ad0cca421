//go:build !tflite

package inference

// openTFLite is compiled when the 'tflite' build tag is NOT set, keeping
// default builds free of the TensorFlow Lite C library.
func openTFLite(path string, opts Options) (Classifier, error) {
	return nil, ErrDependencyUnavailable("tflite runtime not compiled in; rebuild with -tags=tflite")
}
