package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/port"
	"screengpt/internal/platform/logging"
)

// Format формат записей журнала.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSONL    Format = "jsonl"
)

const entryDelimiter = "---"

// FileLogger журнал результатов в файле, только дозапись.
type FileLogger struct {
	path         string
	transientDir string
	format       Format
	logger       *slog.Logger
	mu           sync.Mutex
}

// jsonEntry строка журнала в формате jsonl.
type jsonEntry struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Source    string    `json:"source,omitempty"`
	Model     string    `json:"model,omitempty"`
	Capture   string    `json:"capture,omitempty"`
	Text      string    `json:"text"`
}

// NewFileLogger создаёт журнал в path. Снимки в transientDir удаляются при Cleanup.
func NewFileLogger(path, transientDir string, format Format, logger *slog.Logger) (*FileLogger, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatJSONL {
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
	if err := CheckSeparate(path, transientDir); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	return &FileLogger{
		path:         path,
		transientDir: transientDir,
		format:       format,
		logger:       logger.With("component", "result_log"),
	}, nil
}

// Path путь к файлу журнала.
func (l *FileLogger) Path() string { return l.path }

// Append дописывает одну запись одним вызовом Write.
func (l *FileLogger) Append(text string, meta entity.EntryMeta) error {
	entry, err := l.render(text, meta)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	if _, err := f.Write(entry); err != nil {
		f.Close()
		return fmt.Errorf("write log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}

	l.logger.Debug("entry appended", "path", l.path, "run_id", meta.RunID, "bytes", len(entry))
	return nil
}

// Cleanup удаляет временные снимки.
func (l *FileLogger) Cleanup() {
	sweepDir(l.transientDir, l.logger)
}

func (l *FileLogger) render(text string, meta entity.EntryMeta) ([]byte, error) {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	if l.format == FormatJSONL {
		line, err := sonic.Marshal(jsonEntry{
			Timestamp: ts,
			RunID:     meta.RunID,
			Source:    string(meta.Source),
			Model:     meta.Model,
			Capture:   meta.Capture.Path(),
			Text:      text,
		})
		if err != nil {
			return nil, fmt.Errorf("encode log entry: %w", err)
		}
		return append(line, '\n'), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Analysis %s\n\n", ts.Format("2006-01-02 15:04:05"))

	details := make([]string, 0, 4)
	if meta.RunID != "" {
		details = append(details, "run "+meta.RunID)
	}
	if meta.Source != "" {
		details = append(details, "source "+string(meta.Source))
	}
	if meta.Model != "" {
		details = append(details, "model "+meta.Model)
	}
	if meta.Capture != "" {
		details = append(details, "capture "+filepath.Base(meta.Capture.Path()))
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(details, " · "))
	}

	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n" + entryDelimiter + "\n\n")
	return []byte(b.String()), nil
}

var _ port.ResultLogger = (*FileLogger)(nil)
