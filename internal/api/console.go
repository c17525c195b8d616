package telegram

import (
	"fmt"
	"io"
	"sync"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/event"
)

// Console печатает состояние запусков для человека за терминалом.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	// logPath показывается в сообщении об успешной записи
	logPath string
}

func NewConsole(out io.Writer, logPath string) *Console {
	return &Console{out: out, logPath: logPath}
}

// Attach подписывает консоль на события конвейера.
func (c *Console) Attach(bus *event.Bus) error {
	if err := bus.Subscribe(event.TopicStage, c.OnStage); err != nil {
		return err
	}
	if err := bus.Subscribe(event.TopicSkipped, c.OnSkipped); err != nil {
		return err
	}
	return bus.Subscribe(event.TopicFinished, c.OnFinished)
}

func (c *Console) OnStage(ev entity.RunEvent) {
	if ev.Err != nil {
		switch ev.Stage {
		case entity.StageCapturing:
			c.printf("❌ Не удалось сделать снимок: %v\n", ev.Err)
		case entity.StageAnalyzing:
			c.printf("❌ Ошибка анализа: %v\n", ev.Err)
		}
		return
	}

	switch ev.Stage {
	case entity.StageCapturing:
		c.printf("📸 [%s] Снимок экрана...\n", ev.Source)
	case entity.StageAnalyzing:
		if ev.Text != "" {
			c.printf("🔍 Анализирую %s...\n", ev.Text)
			return
		}
		c.printf("🔍 Анализирую изображение...\n")
	case entity.StageLogging:
		c.printf("📝 Записываю результат...\n")
	}
}

func (c *Console) OnSkipped(ev entity.RunEvent) {
	c.printf("⏳ Анализ уже выполняется, запрос от %s пропущен.\n", ev.Source)
}

func (c *Console) OnFinished(ev entity.RunEvent) {
	r := ev.Report
	if r == nil {
		return
	}

	switch r.Outcome {
	case entity.OutcomeCompleted:
		c.printf("✅ Сохранено в %s\n%s\n", c.logPath, r.Preview)
	case entity.OutcomeEmpty:
		c.printf("🤷 %s\n", entity.NoOutputText)
	case entity.OutcomeFailed:
		c.printf("⚠️ Не удалось записать журнал: %v\n", ev.Err)
	}
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
