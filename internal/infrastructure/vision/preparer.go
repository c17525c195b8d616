//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"screengpt/internal/domain/port"
)

// blankSamples число точек по каждой оси при проверке на пустой экран.
const blankSamples = 64

// Preparer проверяет и уменьшает снимок без OpenCV.
type Preparer struct {
	MaxSide int
}

// NewPreparer создаёт подготовщик с ограничением по длинной стороне.
func NewPreparer(maxSide int) *Preparer {
	return &Preparer{MaxSide: maxSide}
}

// Prepare декодирует снимок, отбрасывает пустые и приводит к MaxSide.
func (p *Preparer) Prepare(data []byte) (*port.PreparedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("empty image")
	}
	if isBlank(img) {
		return nil, errors.New("captured screen is blank")
	}

	w, h := bounds.Dx(), bounds.Dy()
	resize := p.MaxSide > 0 && (w > p.MaxSide || h > p.MaxSide)

	if !resize && format == "png" {
		return &port.PreparedImage{Data: data, MIMEType: "image/png", Width: w, Height: h}, nil
	}

	if resize {
		scale := float64(p.MaxSide) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &port.PreparedImage{Data: buf.Bytes(), MIMEType: "image/png", Width: w, Height: h}, nil
}

// isBlank проверяет по сетке точек, что изображение однотонное.
func isBlank(img image.Image) bool {
	b := img.Bounds()
	stepX := max(1, b.Dx()/blankSamples)
	stepY := max(1, b.Dy()/blankSamples)

	first := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y))
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			if color.RGBAModel.Convert(img.At(x, y)) != first {
				return false
			}
		}
	}
	return true
}
