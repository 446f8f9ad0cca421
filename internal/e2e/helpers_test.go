package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"classifyd/internal/config"
	"classifyd/internal/httpapi"
	"classifyd/internal/inference"
	"classifyd/internal/pipeline"
	"classifyd/internal/service"
	"classifyd/pkg/types"
)

var classNames = `["glioma", "meningioma", "notumor", "pituitary"]`

// scriptedClassifier returns scores from fn, so tests can inspect the tensor
// the pipeline produced.
type scriptedClassifier struct {
	fn func(ctx context.Context, in pipeline.Tensor) ([]float32, error)
}

func (c scriptedClassifier) Predict(ctx context.Context, in pipeline.Tensor) ([]float32, error) {
	return c.fn(ctx, in)
}
func (scriptedClassifier) Close() error { return nil }

func fixedScores(scores ...float32) scriptedClassifier {
	return scriptedClassifier{fn: func(context.Context, pipeline.Tensor) ([]float32, error) { return scores, nil }}
}

// newServer writes a model and class list to a temp dir and serves them
// through the full service and HTTP stack.
func newServer(t *testing.T, clf inference.Classifier, mutate func(*config.Config)) (*httptest.Server, *service.Service) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ModelPath = filepath.Join(dir, "brain_tumor_model.onnx")
	cfg.ClassNamesPath = filepath.Join(dir, "class_names.json")
	if err := os.WriteFile(cfg.ModelPath, []byte("onnx"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if err := os.WriteFile(cfg.ClassNamesPath, []byte(classNames), 0o644); err != nil {
		t.Fatalf("write classes: %v", err)
	}
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := service.Open(cfg, zerolog.Nop(), func(types.Model, inference.Options) (inference.Classifier, error) {
		return clf, nil
	})
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	httpapi.SetLogger(zerolog.Nop())
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Close()
	})
	return srv, svc
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// upload posts data as the "file" field of a multipart form.
func upload(t *testing.T, url, filename, contentType string, data []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url+"/predict", &buf)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
