package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classifyd/internal/pipeline"
	"classifyd/pkg/types"
)

type blockingService struct {
	mockService
}

func (b *blockingService) Predict(ctx context.Context, _ pipeline.Upload) (types.PredictionResponse, error) {
	<-ctx.Done()
	return types.PredictionResponse{}, ctx.Err()
}

func mockResponse() types.PredictionResponse {
	return types.PredictionResponse{
		Prediction:       "a",
		Confidence:       0.9,
		AllProbabilities: map[string]float64{"a": 0.9, "b": 0.1},
	}
}

func TestJoinContexts(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	b := context.Background()
	ctx, cancel := joinContexts(a, b)
	defer cancel()
	cancelA()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("joined context not canceled")
	}
}

func TestPredictTimeoutMaps500(t *testing.T) {
	SetPredictTimeoutSeconds(1)
	defer SetPredictTimeoutSeconds(0)

	body, ct := multipartBody(t, "file", "scan.png", "image/png", []byte("x"))
	w := postPredict(t, NewMux(&blockingService{}), body, ct)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on timeout, got %d", w.Code)
	}
}

func TestPredictShutdownWritesNothing(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)
	cancel()

	body, ct := multipartBody(t, "file", "scan.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	NewMux(&blockingService{}).ServeHTTP(w, req)
	if w.Body.Len() != 0 {
		t.Fatalf("expected no body during shutdown, got %q", w.Body.String())
	}
}

func TestSetMaxBodyBytesResets(t *testing.T) {
	SetMaxBodyBytes(10)
	if maxBodyBytes != 10 {
		t.Fatalf("maxBodyBytes=%d", maxBodyBytes)
	}
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 21<<20 {
		t.Fatalf("expected default after reset, got %d", maxBodyBytes)
	}
}
