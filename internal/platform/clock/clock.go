package clock

import "time"

// Clock интерфейс, чтобы время можно было подменять в тестах.
type Clock interface {
	Now() time.Time
}

// System реализация по умолчанию, использует time.Now().
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed всегда возвращает одно и то же время.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
