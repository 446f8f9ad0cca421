package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// maxDecodePixels bounds the decoded image area so a small compressed file
// cannot expand into gigabytes of pixels.
const maxDecodePixels = 2 * 89478485

// Preprocessor converts encoded image bytes into the tensor the classifier
// was trained on: RGB, resized to size x size with bicubic interpolation,
// scaled to [0,1], batch dimension of 1.
type Preprocessor struct {
	size int
}

// NewPreprocessor returns a Preprocessor producing size x size tensors.
func NewPreprocessor(size int) Preprocessor {
	return Preprocessor{size: size}
}

// Preprocess decodes data and returns a 1 x size x size x 3 tensor. Every
// failure is reported as a processing error; the underlying cause is
// available through Cause.
func (p Preprocessor) Preprocess(data []byte) (t Tensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			t = Tensor{}
			err = processingError{cause: fmt.Errorf("panic during preprocessing: %v", r)}
		}
	}()
	if p.size <= 0 {
		return Tensor{}, processingError{cause: fmt.Errorf("invalid target size %d", p.size)}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Tensor{}, processingError{cause: fmt.Errorf("decode config: %w", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Tensor{}, processingError{cause: fmt.Errorf("empty image %dx%d", cfg.Width, cfg.Height)}
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxDecodePixels {
		return Tensor{}, processingError{cause: fmt.Errorf("image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxDecodePixels)}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Tensor{}, processingError{cause: fmt.Errorf("decode: %w", err)}
	}
	rgb := toRGB(img)
	resized := resize.Resize(uint(p.size), uint(p.size), rgb, resize.Bicubic)
	if b := resized.Bounds(); b.Dx() != p.size || b.Dy() != p.size {
		return Tensor{}, processingError{cause: fmt.Errorf("resize %s image produced %dx%d", format, b.Dx(), b.Dy())}
	}
	t = toTensor(resized, p.size)
	if len(t.Data) != p.size*p.size*3 {
		return Tensor{}, processingError{cause: errors.New("tensor size mismatch")}
	}
	return t, nil
}

// toRGB copies img into an opaque NRGBA image anchored at the origin. Alpha is
// dropped without premultiplying, grayscale is replicated to all channels.
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[do+0] = src.Pix[so+0]
				dst.Pix[do+1] = src.Pix[so+1]
				dst.Pix[do+2] = src.Pix[so+2]
				dst.Pix[do+3] = 0xff
				so += 4
				do += 4
			}
		}
	case *image.NRGBA64:
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[do+0] = src.Pix[so+0]
				dst.Pix[do+1] = src.Pix[so+2]
				dst.Pix[do+2] = src.Pix[so+4]
				dst.Pix[do+3] = 0xff
				so += 8
				do += 4
			}
		}
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				v := src.Pix[so]
				dst.Pix[do+0] = v
				dst.Pix[do+1] = v
				dst.Pix[do+2] = v
				dst.Pix[do+3] = 0xff
				so++
				do += 4
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			do := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.Pix[do+0] = c.R
				dst.Pix[do+1] = c.G
				dst.Pix[do+2] = c.B
				dst.Pix[do+3] = 0xff
				do += 4
			}
		}
	}
	return dst
}

// toTensor flattens an opaque size x size image into NHWC float32 values in [0,1].
func toTensor(img image.Image, size int) Tensor {
	t := Tensor{Shape: [4]int{1, size, size, 3}, Data: make([]float32, size*size*3)}
	b := img.Bounds()
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var r, g, bl uint8
			switch src := img.(type) {
			case *image.RGBA:
				o := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl = src.Pix[o], src.Pix[o+1], src.Pix[o+2]
			case *image.NRGBA:
				o := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl = src.Pix[o], src.Pix[o+1], src.Pix[o+2]
			default:
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				r, g, bl = c.R, c.G, c.B
			}
			t.Data[i+0] = float32(r) / 255.0
			t.Data[i+1] = float32(g) / 255.0
			t.Data[i+2] = float32(bl) / 255.0
			i += 3
		}
	}
	return t
}
