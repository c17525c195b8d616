package trigger

import (
	"context"
	"errors"
	"time"
)

// RunTicker вызывает fire каждые interval до отмены ctx.
// fire не должен блокироваться: запуск уходит в фон.
func RunTicker(ctx context.Context, interval time.Duration, fire func()) error {
	if interval <= 0 {
		return errors.New("ticker interval must be positive")
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fire()
		}
	}
}
