package service

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"classifyd/internal/config"
	"classifyd/internal/inference"
	"classifyd/internal/pipeline"
	"classifyd/internal/registry"
	"classifyd/pkg/types"
)

// Opener loads a classifier for a model descriptor. inference.Open is the
// production implementation.
type Opener func(m types.Model, opts inference.Options) (inference.Classifier, error)

// Service serves predictions for one loaded model.
type Service struct {
	p     *pipeline.Pipeline
	model types.Model
	clf   io.Closer
	log   zerolog.Logger

	slotCh   chan struct{}
	draining atomic.Bool
	// closeErr is written once before done is closed.
	done     chan struct{}
	closeErr error
}

// Open loads class names and the model named by cfg and returns a ready
// Service. A nil opener selects inference.Open.
func Open(cfg config.Config, log zerolog.Logger, opener Opener) (*Service, error) {
	if opener == nil {
		opener = inference.Open
	}
	names, err := registry.LoadClassNames(cfg.ClassNamesPath)
	if err != nil {
		return nil, err
	}
	classes, err := pipeline.NewClassTable(names)
	if err != nil {
		return nil, fmt.Errorf("class names: %w", err)
	}
	model, err := registry.Describe(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	pcfg := cfg.Pipeline().WithDefaults()
	clf, err := opener(model, inference.Options{
		ImageSize:   pcfg.ImageSize,
		NumClasses:  classes.Len(),
		Sessions:    cfg.Sessions,
		Threads:     cfg.Threads,
		InputName:   cfg.InputName,
		OutputName:  cfg.OutputName,
		LibraryPath: cfg.LibraryPath,
	})
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", model.Path, err)
	}
	p, err := pipeline.New(pcfg, classes, clf, log)
	if err != nil {
		_ = clf.Close()
		return nil, err
	}
	s := New(p, model, clf, Options{MaxInFlight: cfg.MaxInFlight}, log)
	s.log.Info().
		Str("model", model.ID).
		Str("runtime", model.Runtime).
		Str("path", model.Path).
		Strs("classes", classes.Names()).
		Msg("model loaded")
	return s, nil
}

// New wraps an existing pipeline. closer, if non-nil, is closed by Close.
func New(p *pipeline.Pipeline, model types.Model, closer io.Closer, opts Options, log zerolog.Logger) *Service {
	opts = opts.withDefaults()
	return &Service{
		p:      p,
		model:  model,
		clf:    closer,
		log:    log.With().Str("component", "service").Logger(),
		slotCh: make(chan struct{}, opts.MaxInFlight),
		done:   make(chan struct{}),
	}
}

// CheckHeader validates the declared filename and content type.
func (s *Service) CheckHeader(filename, contentType string) error {
	return s.p.CheckHeader(filename, contentType)
}

// Predict validates u, takes an admission slot and runs the pipeline.
// Invalid uploads are rejected before admission.
func (s *Service) Predict(ctx context.Context, u pipeline.Upload) (types.PredictionResponse, error) {
	if err := s.p.Validate(u); err != nil {
		return types.PredictionResponse{}, err
	}
	release, err := s.admit(ctx)
	if err != nil {
		switch {
		case IsTooBusy(err):
			admissionRejections.WithLabelValues("busy").Inc()
			s.log.Warn().Int("max_inflight", cap(s.slotCh)).Msg("admission rejected")
		case IsDraining(err):
			admissionRejections.WithLabelValues("draining").Inc()
		default:
			admissionRejections.WithLabelValues("canceled").Inc()
		}
		return types.PredictionResponse{}, err
	}
	defer release()
	return s.p.Predict(ctx, u)
}

// Model describes the loaded model and the effective pipeline parameters.
func (s *Service) Model() types.ModelResponse {
	cfg := s.p.Config()
	return types.ModelResponse{
		Model:               s.model,
		Classes:             s.p.Classes().Names(),
		ImageSize:           cfg.ImageSize,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaxFileSize:         cfg.MaxFileSize,
		AllowedExtensions:   append([]string(nil), cfg.AllowedExtensions...),
	}
}

// Ready reports whether the service accepts predictions.
func (s *Service) Ready() bool { return !s.draining.Load() }

// Shutdown stops admitting predictions, waits until running ones finish and
// releases the classifier. New requests fail with a draining error. If ctx
// ends first the classifier is left open, since predictions may still be
// using it.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.draining.CompareAndSwap(false, true) {
		select {
		case <-s.done:
			return s.closeErr
		case <-ctx.Done():
			return fmt.Errorf("await shutdown: %w", ctx.Err())
		}
	}
	defer close(s.done)
	for held := 0; held < cap(s.slotCh); held++ {
		select {
		case s.slotCh <- struct{}{}:
		case <-ctx.Done():
			s.closeErr = fmt.Errorf("drain predictions: %w", ctx.Err())
			return s.closeErr
		}
	}
	if s.clf != nil {
		s.closeErr = s.clf.Close()
	}
	s.log.Info().Msg("service closed")
	return s.closeErr
}

// Close is Shutdown without a deadline.
func (s *Service) Close() error { return s.Shutdown(context.Background()) }
