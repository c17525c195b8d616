package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrLogInTransientDir журнал лежит в каталоге, который очищается после каждого запуска.
var ErrLogInTransientDir = errors.New("log file must not be inside the screenshot directory")

// CheckSeparate проверяет, что logPath не лежит в transientDir или его подкаталоге.
func CheckSeparate(logPath, transientDir string) error {
	if logPath == "" || transientDir == "" {
		return nil
	}

	logAbs, err := filepath.Abs(logPath)
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	dirAbs, err := filepath.Abs(transientDir)
	if err != nil {
		return fmt.Errorf("resolve screenshot directory: %w", err)
	}

	rel, err := filepath.Rel(dirAbs, filepath.Dir(logAbs))
	if err != nil {
		// разные тома
		return nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("%w: %s is under %s", ErrLogInTransientDir, logPath, transientDir)
}

// sweepDir удаляет все обычные файлы в dir и возвращает число удалённых.
// Ошибки удаления отдельных файлов логируются и пропускаются.
func sweepDir(dir string, logger *slog.Logger) int {
	if dir == "" {
		return 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cannot list transient directory", "dir", dir, "error", err)
		}
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("cannot remove transient file", "path", path, "error", err)
			}
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Debug("transient files removed", "dir", dir, "count", removed)
	}
	return removed
}
