package pipeline

import (
	"fmt"
	"math"

	"classifyd/pkg/types"
)

// ResponseAssembler builds the caller-visible payload and enforces its
// guarantees: confidence in [0,1], one probability per known class, and a
// label that is either a class name or LowConfidenceLabel.
type ResponseAssembler struct {
	classes ClassTable
}

// NewResponseAssembler returns an assembler for classes.
func NewResponseAssembler(classes ClassTable) ResponseAssembler {
	return ResponseAssembler{classes: classes}
}

// Assemble converts d into a PredictionResponse. Any broken guarantee is an
// inference error and no partial payload is returned.
func (a ResponseAssembler) Assemble(d Decision) (types.PredictionResponse, error) {
	if !inUnitRange(d.Confidence) {
		return types.PredictionResponse{}, inferenceError{cause: fmt.Errorf("confidence %v outside [0,1]", d.Confidence)}
	}
	if d.Label != LowConfidenceLabel && !a.classes.Contains(d.Label) {
		return types.PredictionResponse{}, inferenceError{cause: fmt.Errorf("unknown label %q", d.Label)}
	}
	if len(d.Probabilities) != a.classes.Len() {
		return types.PredictionResponse{}, inferenceError{cause: fmt.Errorf("%d probabilities for %d classes", len(d.Probabilities), a.classes.Len())}
	}
	probs := make(map[string]float64, a.classes.Len())
	for i := 0; i < a.classes.Len(); i++ {
		name := a.classes.Name(i)
		v, ok := d.Probabilities[name]
		if !ok {
			return types.PredictionResponse{}, inferenceError{cause: fmt.Errorf("missing probability for %q", name)}
		}
		if !inUnitRange(v) {
			return types.PredictionResponse{}, inferenceError{cause: fmt.Errorf("probability %v for %q outside [0,1]", v, name)}
		}
		probs[name] = v
	}
	return types.PredictionResponse{
		Prediction:       d.Label,
		Confidence:       round4(d.Confidence),
		AllProbabilities: probs,
	}, nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
