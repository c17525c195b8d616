package port

import "screengpt/internal/domain/entity"

// ResultLogger интерфейс журнала результатов
type ResultLogger interface {
	// Append дописывает запись в конец журнала
	Append(text string, meta entity.EntryMeta) error

	// Cleanup удаляет временные снимки. Ошибки только логируются.
	Cleanup()
}
