package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "screengpt/internal/application"
	"screengpt/internal/domain/entity"
	"screengpt/internal/platform/logging"
)

// MaxMessageRunes ограничение Telegram 4096 символов, с запасом.
const MaxMessageRunes = 4000

const (
	msgStart = `👋 Привет! Я присылаю сюда результаты анализа экрана.

📸 Нажмите горячую клавишу на компьютере или отправьте /shot.

📋 Команды:
/shot — сделать снимок экрана и проанализировать
/status — идёт ли сейчас анализ
/stop — не присылать результаты
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Откройте на экране задачу
2️⃣ Отправьте /shot или нажмите горячую клавишу
3️⃣ Результат придёт сюда и запишется в журнал

📋 Команды:
/shot — снимок и анализ
/status — состояние
/start — снова получать результаты
/stop — отключить рассылку`

	msgShotAccepted   = "📸 Делаю снимок экрана..."
	msgBusy           = "⏳ Анализ уже выполняется, дождитесь результата."
	msgIdle           = "✅ Готов к новому снимку."
	msgStopped        = "🔕 Рассылка отключена. Отправьте /start, чтобы включить снова."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgSendCommand    = "📋 Отправьте /shot, чтобы проанализировать экран."
	msgNoOutput       = "🤷 Модель не вернула ответ."
	msgSaveFailed     = "⚠️ Результат не удалось записать в журнал."
)

// Runner запускает конвейер анализа.
type Runner interface {
	TriggerFrom(source entity.TriggerSource)
	Busy() bool
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	sender      sender
	subs        *app.SubscriberService
	runner      Runner
	allowedChat int64
	logger      *slog.Logger
}

// NewBot создаёт нового бота. allowedChat = 0 разрешает любой чат.
func NewBot(token string, subs *app.SubscriberService, runner Runner, allowedChat int64, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	b := newBot(api, subs, runner, allowedChat, logger)
	b.api = api
	b.logger.Info("telegram authorized", "account", api.Self.UserName)
	return b, nil
}

func newBot(s sender, subs *app.SubscriberService, runner Runner, allowedChat int64, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bot{
		sender:      s,
		subs:        subs,
		runner:      runner,
		allowedChat: allowedChat,
		logger:      logger.With("component", "telegram"),
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	if b.allowedChat != 0 {
		if _, err := b.subs.Subscribe(ctx, 0, b.allowedChat); err != nil {
			return err
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if b.allowedChat != 0 && msg.Chat.ID != b.allowedChat {
		b.logger.Warn("message from foreign chat ignored", "chat_id", msg.Chat.ID)
		return
	}

	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, msgSendCommand)
		return
	}

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	switch msg.Command() {
	case "start":
		if _, err := b.subs.Subscribe(ctx, userID, msg.Chat.ID); err != nil {
			b.logger.Error("subscribe failed", "chat_id", msg.Chat.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "shot":
		if _, err := b.subs.Subscribe(ctx, userID, msg.Chat.ID); err != nil {
			b.logger.Error("subscribe failed", "chat_id", msg.Chat.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgShotAccepted)
		b.runner.TriggerFrom(entity.SourceTelegram)

	case "status":
		if b.runner.Busy() {
			b.sendMessage(msg.Chat.ID, msgBusy)
		} else {
			b.sendMessage(msg.Chat.ID, msgIdle)
		}

	case "stop":
		if _, err := b.subs.Unsubscribe(ctx, userID, msg.Chat.ID); err != nil {
			b.logger.Error("unsubscribe failed", "chat_id", msg.Chat.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgStopped)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// OnFinished рассылает результат запуска подписанным чатам.
func (b *Bot) OnFinished(ev entity.RunEvent) {
	var text string
	switch {
	case ev.Report != nil && ev.Report.Outcome == entity.OutcomeSkipped:
		return
	case ev.Err != nil:
		text = msgSaveFailed + "\n\n" + ev.Text
	case ev.Text == "":
		text = msgNoOutput
	default:
		text = ev.Text
	}

	b.broadcast(strings.TrimSpace(text))
}

// OnSkipped рассылает всем подписанным чатам уведомление о пропуске,
// если пропущенный запрос пришёл из Telegram.
func (b *Bot) OnSkipped(ev entity.RunEvent) {
	if ev.Source != entity.SourceTelegram {
		return
	}
	b.broadcast(msgBusy)
}

func (b *Bot) broadcast(text string) {
	chats, err := b.subs.ActiveChats(context.Background())
	if err != nil {
		b.logger.Error("list subscribers failed", "error", err)
		return
	}

	for _, chatID := range chats {
		for _, part := range splitMessage(text, MaxMessageRunes) {
			b.sendMessage(chatID, part)
		}
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("send message failed", "chat_id", chatID, "error", err)
	}
}

// splitMessage режет текст на части не длиннее limit символов,
// по возможности по переводу строки.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
