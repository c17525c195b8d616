package storage

import (
	"log/slog"
	"sync"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/port"
	"screengpt/internal/platform/logging"
)

// Entry запись журнала в памяти
type Entry struct {
	Text string
	Meta entity.EntryMeta
}

// MemoryLogger in-memory журнал результатов
type MemoryLogger struct {
	mu           sync.RWMutex
	entries      []Entry
	transientDir string
	logger       *slog.Logger
}

// NewMemoryLogger создаёт новый in-memory журнал
func NewMemoryLogger(transientDir string, logger *slog.Logger) *MemoryLogger {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MemoryLogger{
		transientDir: transientDir,
		logger:       logger.With("component", "memory_log"),
	}
}

// Append сохраняет запись
func (r *MemoryLogger) Append(text string, meta entity.EntryMeta) error {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Text: text, Meta: meta})
	r.mu.Unlock()

	return nil
}

// Entries возвращает копию записей в порядке добавления
func (r *MemoryLogger) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Cleanup удаляет временные снимки
func (r *MemoryLogger) Cleanup() {
	sweepDir(r.transientDir, r.logger)
}

// Проверка реализации интерфейса
var _ port.ResultLogger = (*MemoryLogger)(nil)
