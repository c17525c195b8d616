package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/port"
	"screengpt/internal/platform/clock"
	apperrors "screengpt/internal/platform/errors"
	"screengpt/internal/platform/logging"
)

// ErrNoMonitors нет ни одного активного дисплея.
var ErrNoMonitors = errors.New("no monitors found")

// GrabFunc снимает изображение экрана.
type GrabFunc func() (*image.RGBA, error)

// ScreenCapturer сохраняет снимки основного экрана во временный каталог.
type ScreenCapturer struct {
	dir    string
	clock  clock.Clock
	grab   GrabFunc
	logger *slog.Logger
}

// Option настраивает ScreenCapturer.
type Option func(*ScreenCapturer)

// WithGrabber подменяет источник изображения.
func WithGrabber(grab GrabFunc) Option {
	return func(c *ScreenCapturer) { c.grab = grab }
}

// WithClock подменяет часы, по которым формируется имя файла.
func WithClock(clk clock.Clock) Option {
	return func(c *ScreenCapturer) { c.clock = clk }
}

// NewScreenCapturer создаёт каталог dir, если его нет.
func NewScreenCapturer(dir string, logger *slog.Logger, opts ...Option) (*ScreenCapturer, error) {
	if dir == "" {
		return nil, errors.New("screenshot directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve screenshot directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot directory: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	c := &ScreenCapturer{
		dir:    abs,
		clock:  clock.System{},
		grab:   grabPrimary,
		logger: logger.With("component", "capture"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dir абсолютный путь временного каталога.
func (c *ScreenCapturer) Dir() string { return c.dir }

// Capture снимает основной экран и пишет PNG.
func (c *ScreenCapturer) Capture(ctx context.Context) (entity.CaptureArtifact, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.KindCapture, "capture", "capture cancelled", err)
	}

	img, err := c.grab()
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindCapture, "grab", "grab primary display", err)
	}
	if img == nil || img.Bounds().Empty() {
		return "", apperrors.New(apperrors.KindCapture, "grab", "empty screen image")
	}

	path := filepath.Join(c.dir, fileName(c.clock))
	if err := writePNG(path, img); err != nil {
		return "", apperrors.Wrap(apperrors.KindCapture, "write", "save screenshot", err)
	}

	c.logger.Debug("screenshot saved", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return entity.CaptureArtifact(path), nil
}

// fileName имя вида cs_20260102_150405_000123.png
func fileName(clk clock.Clock) string {
	now := clk.Now()
	return fmt.Sprintf("cs_%s_%06d.png", now.Format("20060102_150405"), now.Nanosecond()/1000)
}

func writePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// grabPrimary снимает первый активный дисплей.
func grabPrimary() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, ErrNoMonitors
	}
	return screenshot.CaptureRect(screenshot.GetDisplayBounds(0))
}

var _ port.ScreenCapturer = (*ScreenCapturer)(nil)
