package port

// EventPublisher публикует события запусков
type EventPublisher interface {
	Publish(topic string, args ...interface{})
}
