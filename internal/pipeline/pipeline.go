package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"classifyd/pkg/types"
)

// Pipeline runs validation, preprocessing, inference, the decision policy and
// response assembly for one upload at a time. It holds no per-request state
// and is safe for concurrent use when its Classifier is.
type Pipeline struct {
	cfg        Config
	classes    ClassTable
	classifier Classifier
	validator  Validator
	pre        Preprocessor
	policy     DecisionPolicy
	assembler  ResponseAssembler
	log        zerolog.Logger
}

// New wires a Pipeline from cfg (defaults applied), the class table and a
// ready classifier.
func New(cfg Config, classes ClassTable, clf Classifier, log zerolog.Logger) (*Pipeline, error) {
	if classes.Len() == 0 {
		return nil, errors.New("pipeline: class table is empty")
	}
	if clf == nil {
		return nil, errors.New("pipeline: classifier is nil")
	}
	cfg = cfg.WithDefaults()
	return &Pipeline{
		cfg:        cfg,
		classes:    classes,
		classifier: clf,
		validator:  NewValidator(cfg.AllowedExtensions, cfg.MaxFileSize),
		pre:        NewPreprocessor(cfg.ImageSize),
		policy:     NewDecisionPolicy(classes, cfg.ConfidenceThreshold),
		assembler:  NewResponseAssembler(classes),
		log:        log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Classes returns the class table.
func (p *Pipeline) Classes() ClassTable { return p.classes }

// CheckHeader validates filename and content type only. Transports call it
// before reading the upload body.
func (p *Pipeline) CheckHeader(filename, contentType string) error {
	if err := p.validator.CheckHeader(filename, contentType); err != nil {
		rejectionsTotal.WithLabelValues(ValidationRule(err)).Inc()
		return err
	}
	return nil
}

// Validate runs every upload rule without decoding the image.
func (p *Pipeline) Validate(u Upload) error {
	if err := p.validator.Validate(u); err != nil {
		rejectionsTotal.WithLabelValues(ValidationRule(err)).Inc()
		p.log.Debug().Str("filename", u.Filename).Str("rule", ValidationRule(err)).Msg(err.Error())
		return err
	}
	return nil
}

// Predict classifies one upload. It returns either a complete response or a
// validation, processing or inference error; it never retries.
func (p *Pipeline) Predict(ctx context.Context, u Upload) (types.PredictionResponse, error) {
	start := time.Now()
	if err := p.Validate(u); err != nil {
		return types.PredictionResponse{}, err
	}
	observeStage("validate", start)

	preprocessTotal.Inc()
	t0 := time.Now()
	tensor, err := p.pre.Preprocess(u.Data)
	observeStage("preprocess", t0)
	if err != nil {
		failuresTotal.WithLabelValues(KindProcessing).Inc()
		p.log.Error().Err(Cause(err)).Str("filename", u.Filename).Int("bytes", len(u.Data)).Msg("preprocessing error")
		return types.PredictionResponse{}, err
	}

	t0 = time.Now()
	scores, err := p.classifier.Predict(ctx, tensor)
	observeStage("inference", t0)
	if err != nil {
		failuresTotal.WithLabelValues(KindInference).Inc()
		p.log.Error().Err(err).Msg("inference error")
		return types.PredictionResponse{}, inferenceError{cause: err}
	}

	t0 = time.Now()
	d, err := p.policy.Decide(scores)
	var resp types.PredictionResponse
	if err == nil {
		resp, err = p.assembler.Assemble(d)
	}
	observeStage("decide", t0)
	if err != nil {
		failuresTotal.WithLabelValues(KindInference).Inc()
		p.log.Error().Err(Cause(err)).Msg("invalid classifier output")
		return types.PredictionResponse{}, err
	}

	predictionsTotal.WithLabelValues(resp.Prediction).Inc()
	if d.LowConfidence {
		lowConfidenceTotal.Inc()
	}
	p.log.Info().
		Str("prediction", resp.Prediction).
		Float64("confidence_pct", d.Confidence*100).
		Dur("dur", time.Since(start)).
		Msg("prediction")
	return resp, nil
}

func observeStage(stage string, since time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(since).Seconds())
}
