package entity

// SubscriberState состояние чата относительно рассылки результатов
type SubscriberState string

const (
	StateSubscribed   SubscriberState = "subscribed"   // Получает результаты
	StateUnsubscribed SubscriberState = "unsubscribed" // Рассылка отключена командой /stop
)

// Subscriber чат Telegram, которому отправляются результаты анализа
type Subscriber struct {
	UserID int64           // Telegram User ID
	ChatID int64           // Telegram Chat ID
	State  SubscriberState // Текущее состояние
}

// NewSubscriber создаёт подписанный чат
func NewSubscriber(userID, chatID int64) *Subscriber {
	return &Subscriber{
		UserID: userID,
		ChatID: chatID,
		State:  StateSubscribed,
	}
}

func (s *Subscriber) SetState(state SubscriberState) {
	s.State = state
}

// Active сообщает, нужно ли слать результаты в этот чат
func (s *Subscriber) Active() bool {
	return s.State == StateSubscribed
}
