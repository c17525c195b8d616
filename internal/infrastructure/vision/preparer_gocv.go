//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"screengpt/internal/domain/port"
)

// Preparer проверяет и уменьшает снимок средствами OpenCV.
type Preparer struct {
	MaxSide int
	// MinContrast минимальная разница яркостей, ниже которой снимок считается пустым.
	MinContrast float32
}

// NewPreparer создаёт подготовщик с ограничением по длинной стороне.
func NewPreparer(maxSide int) *Preparer {
	return &Preparer{
		MaxSide:     maxSide,
		MinContrast: 1,
	}
}

// Prepare декодирует снимок, отбрасывает пустые и приводит к MaxSide.
func (p *Preparer) Prepare(data []byte) (*port.PreparedImage, error) {
	mat, err := decodeToMat(data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if err := p.checkBlank(mat); err != nil {
		return nil, err
	}

	// Приводим изображение к стандартному размеру, чтобы не отправлять лишние мегабайты.
	if p.MaxSide > 0 && (mat.Cols() > p.MaxSide || mat.Rows() > p.MaxSide) {
		scale := float64(p.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		newW := max(1, int(float64(mat.Cols())*scale))
		newH := max(1, int(float64(mat.Rows())*scale))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	return &port.PreparedImage{
		Data:     bytes.Clone(buf.GetBytes()),
		MIMEType: "image/png",
		Width:    mat.Cols(),
		Height:   mat.Rows(),
	}, nil
}

// checkBlank отбрасывает однотонные снимки (экран заблокирован или погашен).
func (p *Preparer) checkBlank(mat gocv.Mat) error {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	minVal, maxVal, _, _ := gocv.MinMaxLoc(gray)
	if maxVal-minVal < p.MinContrast {
		return errors.New("captured screen is blank")
	}
	return nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(data []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}
