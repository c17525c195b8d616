// Package event шина событий запусков конвейера.
package event

import (
	evbus "github.com/asaskevich/EventBus"
)

// Топики событий. Обработчики принимают один аргумент entity.RunEvent.
const (
	TopicStage    = "run:stage"
	TopicSkipped  = "run:skipped"
	TopicFinished = "run:finished"
)

// Bus синхронная шина событий.
type Bus struct {
	bus evbus.Bus
}

// New создаёт шину.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish вызывает подписчиков топика в текущей горутине.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

// Subscribe подписывает fn на топик.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// Unsubscribe отписывает fn от топика.
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

// HasCallback проверяет, есть ли подписчики.
func (b *Bus) HasCallback(topic string) bool {
	return b.bus.HasCallback(topic)
}
