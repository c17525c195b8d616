package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	app "screengpt/internal/application"
	"screengpt/internal/domain/entity"
	"screengpt/internal/infrastructure/storage"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.mu.Lock()
	f.sent = append(f.sent, sentMessage{chatID: msg.ChatID, text: msg.Text})
	f.mu.Unlock()
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeRunner struct {
	sources []entity.TriggerSource
	busy    bool
}

func (f *fakeRunner) TriggerFrom(source entity.TriggerSource) { f.sources = append(f.sources, source) }
func (f *fakeRunner) Busy() bool                             { return f.busy }

func command(chatID int64, text string) *tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i > 0 {
		cmdLen = i
	}
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: 1},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func newTestBot(allowed int64) (*Bot, *fakeSender, *fakeRunner, *app.SubscriberService) {
	s := &fakeSender{}
	r := &fakeRunner{}
	subs := app.NewSubscriberService(storage.NewMemorySubscriberRepository())
	return newBot(s, subs, r, allowed, nil), s, r, subs
}

func TestBot_ShotTriggersRunAndSubscribes(t *testing.T) {
	bot, sender, runner, subs := newTestBot(0)

	bot.handleMessage(context.Background(), command(10, "/shot"))

	require.Equal(t, []entity.TriggerSource{entity.SourceTelegram}, runner.sources)
	require.Equal(t, []sentMessage{{chatID: 10, text: msgShotAccepted}}, sender.messages())

	chats, err := subs.ActiveChats(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{10}, chats)
}

func TestBot_Status(t *testing.T) {
	bot, sender, runner, _ := newTestBot(0)

	bot.handleMessage(context.Background(), command(10, "/status"))
	runner.busy = true
	bot.handleMessage(context.Background(), command(10, "/status"))

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	require.Equal(t, msgIdle, msgs[0].text)
	require.Equal(t, msgBusy, msgs[1].text)
}

func TestBot_StopUnsubscribes(t *testing.T) {
	bot, _, _, subs := newTestBot(0)
	ctx := context.Background()

	bot.handleMessage(ctx, command(10, "/start"))
	bot.handleMessage(ctx, command(10, "/stop"))

	chats, err := subs.ActiveChats(ctx)
	require.NoError(t, err)
	require.Empty(t, chats)
}

func TestBot_ForeignChatIgnored(t *testing.T) {
	bot, sender, runner, _ := newTestBot(42)

	bot.handleMessage(context.Background(), command(10, "/shot"))

	require.Empty(t, runner.sources)
	require.Empty(t, sender.messages())
}

func TestBot_UnknownCommandAndPlainText(t *testing.T) {
	bot, sender, _, _ := newTestBot(0)
	ctx := context.Background()

	bot.handleMessage(ctx, command(10, "/dance"))
	bot.handleMessage(ctx, &tgbotapi.Message{Text: "привет", Chat: &tgbotapi.Chat{ID: 10}})

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	require.Equal(t, msgUnknownCommand, msgs[0].text)
	require.Equal(t, msgSendCommand, msgs[1].text)
}

func TestBot_OnFinishedBroadcastsToActiveChats(t *testing.T) {
	bot, sender, _, subs := newTestBot(0)
	ctx := context.Background()

	_, err := subs.Subscribe(ctx, 1, 10)
	require.NoError(t, err)
	_, err = subs.Unsubscribe(ctx, 2, 20)
	require.NoError(t, err)

	bot.OnFinished(entity.RunEvent{
		Text:   "Problem: Two Sum.",
		Report: &entity.RunReport{Outcome: entity.OutcomeCompleted},
	})

	require.Equal(t, []sentMessage{{chatID: 10, text: "Problem: Two Sum."}}, sender.messages())
}

func TestBot_OnFinishedVariants(t *testing.T) {
	bot, sender, _, subs := newTestBot(0)
	_, err := subs.Subscribe(context.Background(), 1, 10)
	require.NoError(t, err)

	bot.OnFinished(entity.RunEvent{Report: &entity.RunReport{Outcome: entity.OutcomeEmpty}})
	bot.OnFinished(entity.RunEvent{Text: "ответ", Err: errors.New("disk full"), Report: &entity.RunReport{Outcome: entity.OutcomeFailed}})
	bot.OnFinished(entity.RunEvent{Report: &entity.RunReport{Outcome: entity.OutcomeSkipped}})

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	require.Equal(t, msgNoOutput, msgs[0].text)
	require.Equal(t, msgSaveFailed+"\n\nответ", msgs[1].text)
}

func TestBot_OnSkippedOnlyForTelegram(t *testing.T) {
	bot, sender, _, subs := newTestBot(0)
	ctx := context.Background()
	_, err := subs.Subscribe(ctx, 1, 10)
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, 2, 20)
	require.NoError(t, err)
	_, err = subs.Unsubscribe(ctx, 3, 30)
	require.NoError(t, err)

	bot.OnSkipped(entity.RunEvent{Source: entity.SourceHotkey})
	require.Empty(t, sender.messages())

	// уведомление получают все подписанные чаты, а не только отправивший /shot
	bot.OnSkipped(entity.RunEvent{Source: entity.SourceTelegram})
	require.Equal(t, []sentMessage{{chatID: 10, text: msgBusy}, {chatID: 20, text: msgBusy}}, sender.messages())
}

func TestSplitMessage(t *testing.T) {
	require.Nil(t, splitMessage("", 10))
	require.Equal(t, []string{"короткий"}, splitMessage("короткий", 10))

	parts := splitMessage(strings.Repeat("я", 25), 10)
	require.Equal(t, []string{strings.Repeat("я", 10), strings.Repeat("я", 10), strings.Repeat("я", 5)}, parts)

	parts = splitMessage("aaaaaaa\nbbbbbbb\nccc", 10)
	require.Equal(t, []string{"aaaaaaa", "bbbbbbb", "ccc"}, parts)
}

func TestSplitMessage_RespectsLimit(t *testing.T) {
	text := strings.Repeat("строка ответа\n", 600)
	for _, part := range splitMessage(text, MaxMessageRunes) {
		require.LessOrEqual(t, utf8.RuneCountInString(part), MaxMessageRunes)
	}
}
