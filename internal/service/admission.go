package service

import "context"

// admit takes an in-flight slot without waiting. The returned release func
// must be called once the prediction finishes.
func (s *Service) admit(ctx context.Context) (func(), error) {
	if s.draining.Load() {
		return nil, drainingError{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case s.slotCh <- struct{}{}:
	default:
		return nil, tooBusyError{}
	}
	// Shutdown may have started between the check and the send.
	if s.draining.Load() {
		<-s.slotCh
		return nil, drainingError{}
	}
	inflight.Inc()
	return func() {
		inflight.Dec()
		<-s.slotCh
	}, nil
}
