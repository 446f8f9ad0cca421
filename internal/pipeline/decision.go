package pipeline

import (
	"fmt"
	"strconv"
)

// Decision is the outcome of applying a DecisionPolicy to one score vector.
type Decision struct {
	// Index of the top score; the lowest index wins ties.
	Index int
	// Class name at Index, or LowConfidenceLabel when gated.
	Label string
	// Unrounded top score.
	Confidence float64
	// Every class name mapped to its score rounded to 4 decimals.
	Probabilities map[string]float64
	// LowConfidence is set when Confidence fell below the threshold.
	LowConfidence bool
}

// DecisionPolicy labels a score vector and applies the confidence gate.
type DecisionPolicy struct {
	classes   ClassTable
	threshold float64
}

// NewDecisionPolicy returns a policy over classes that gates scores strictly
// below threshold.
func NewDecisionPolicy(classes ClassTable, threshold float64) DecisionPolicy {
	return DecisionPolicy{classes: classes, threshold: threshold}
}

// Decide picks the top class of scores. A score vector that does not have
// exactly one entry per class is an inference error.
func (p DecisionPolicy) Decide(scores []float32) (Decision, error) {
	if len(scores) == 0 {
		return Decision{}, inferenceError{cause: fmt.Errorf("classifier returned no scores")}
	}
	if len(scores) != p.classes.Len() {
		return Decision{}, inferenceError{cause: fmt.Errorf("classifier returned %d scores for %d classes", len(scores), p.classes.Len())}
	}
	idx := argmax(scores)
	conf := float64(scores[idx])
	probs := make(map[string]float64, len(scores))
	for i, s := range scores {
		probs[p.classes.Name(i)] = round4(float64(s))
	}
	d := Decision{
		Index:         idx,
		Label:         p.classes.Name(idx),
		Confidence:    conf,
		Probabilities: probs,
	}
	if conf < p.threshold {
		d.Label = LowConfidenceLabel
		d.LowConfidence = true
	}
	return d, nil
}

// argmax returns the index of the largest score. Ties and NaNs never displace
// an earlier index.
func argmax(scores []float32) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// round4 rounds v to 4 decimal places, rounding the exact binary value the
// way Python's round(v, 4) does.
func round4(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	if err != nil {
		return v
	}
	return r
}
