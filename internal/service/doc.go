// Package service wires the classification pipeline to a loaded model and
// exposes it to transports. It is structured into small files by concern:
//
//   - service.go: Service type, Open/New constructors, Predict and getters.
//   - admission.go: in-flight cap in front of the pipeline.
//   - errors.go: error types and helpers (IsTooBusy, IsDraining).
//   - options.go: Options and package defaults.
//
// Transports should depend on the httpapi.Service interface rather than this
// package directly.
package service
