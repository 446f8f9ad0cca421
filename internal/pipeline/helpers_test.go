package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync/atomic"
	"testing"
)

var testClasses = []string{"glioma", "meningioma", "notumor", "pituitary"}

func mustClasses(t *testing.T, names ...string) ClassTable {
	t.Helper()
	if len(names) == 0 {
		names = testClasses
	}
	ct, err := NewClassTable(names)
	if err != nil {
		t.Fatalf("class table: %v", err)
	}
	return ct
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// gradient returns a w x h NRGBA image with position-dependent colors.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / max(w-1, 1)), G: uint8(y * 255 / max(h-1, 1)), B: uint8((x + y) % 256), A: 0xff})
		}
	}
	return img
}

// countingClassifier returns fixed scores and counts its calls.
type countingClassifier struct {
	scores []float32
	err    error
	calls  atomic.Int64
	shape  atomic.Value
}

func (c *countingClassifier) Predict(_ context.Context, in Tensor) ([]float32, error) {
	c.calls.Add(1)
	c.shape.Store(in.Shape)
	if c.err != nil {
		return nil, c.err
	}
	out := make([]float32, len(c.scores))
	copy(out, c.scores)
	return out, nil
}
