// Package pipeline turns an uploaded image into a classification decision.
// It is structured into small files by concern:
//
//   - config.go: Config and package defaults.
//   - classes.go: ClassTable, the immutable ordered list of class names.
//   - errors.go: error types and helpers (IsValidation, IsProcessing, IsInference).
//   - validate.go: Validator, upload checks that run before any decoding.
//   - preprocess.go: Preprocessor, image bytes to a normalized NHWC tensor.
//   - classifier.go: Classifier, the narrow interface a model runtime satisfies.
//   - decision.go: DecisionPolicy, argmax plus the low-confidence gate.
//   - response.go: ResponseAssembler, the final payload and its guarantees.
//   - metrics.go: Prometheus collectors for every stage.
//   - pipeline.go: Pipeline, the glue that runs the stages in order.
//
// Everything except the Classifier is pure Go and runs without a model, so
// the stages can be tested against literal inputs.
package pipeline
