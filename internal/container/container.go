package container

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"screengpt/config"
	telegram "screengpt/internal/api"
	app "screengpt/internal/application"
	"screengpt/internal/domain/event"
	"screengpt/internal/domain/port"
	"screengpt/internal/infrastructure/capture"
	"screengpt/internal/infrastructure/storage"
	"screengpt/internal/infrastructure/vision"
	apperrors "screengpt/internal/platform/errors"
	"screengpt/internal/platform/logging"
)

// Options переопределения для тестов и режима -dry-run.
type Options struct {
	// DryRun пишет результаты в память вместо файла журнала
	DryRun   bool
	Context  context.Context
	Output   io.Writer
	Capturer port.ScreenCapturer
	Analyzer port.ImageAnalyzer
}

type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Events      *event.Bus
	Pipeline    *app.Pipeline
	Subscribers *app.SubscriberService
	Console     *telegram.Console
	Results     port.ResultLogger
	// LogPath куда пишутся результаты, пусто в режиме -dry-run
	LogPath string
}

func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Container, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if logger == nil {
		logger = logging.Discard()
	}

	capturer := opts.Capturer
	if capturer == nil {
		c, err := capture.NewScreenCapturer(cfg.Capture.Dir, logger)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindConfig, "container", "screen capturer", err)
		}
		capturer = c
	}

	model := cfg.Vision.Model
	analyzer := opts.Analyzer
	if analyzer == nil {
		prompt, err := vision.Prompt(cfg.Vision.Prompt)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindConfig, "container", "prompt", err)
		}
		a, err := vision.NewOpenAIAnalyzer(vision.Config{
			APIKey:      cfg.Vision.APIKey,
			BaseURL:     cfg.Vision.BaseURL,
			Model:       cfg.Vision.Model,
			Temperature: cfg.Vision.Temperature,
			MaxTokens:   cfg.Vision.MaxTokens,
			Prompt:      prompt,
		}, vision.NewPreparer(cfg.Vision.MaxImageSide), logger)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindConfig, "container", "vision analyzer", err)
		}
		analyzer = a
		model = a.Model()
	}

	var (
		results port.ResultLogger
		logPath string
	)
	if opts.DryRun {
		results = storage.NewMemoryLogger(cfg.Capture.Dir, logger)
		logPath = "memory"
	} else {
		fl, err := storage.NewFileLogger(cfg.Log.File, cfg.Capture.Dir, storage.Format(strings.ToLower(cfg.Log.Format)), logger)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindConfig, "container", "result log", err)
		}
		results = fl
		logPath = fl.Path()
	}

	bus := event.New()
	console := telegram.NewConsole(opts.Output, logPath)
	if err := console.Attach(bus); err != nil {
		return nil, err
	}

	pipeline := app.NewPipeline(capturer, analyzer, results, app.PipelineOptions{
		Events:       bus,
		Logger:       logger,
		Model:        model,
		PreviewLimit: cfg.Log.PreviewLimit,
		Context:      opts.Context,
	})

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Events:      bus,
		Pipeline:    pipeline,
		Subscribers: app.NewSubscriberService(storage.NewMemorySubscriberRepository()),
		Console:     console,
		Results:     results,
		LogPath:     logPath,
	}, nil
}

// AttachBot подписывает Telegram-бота на результаты запусков.
func (c *Container) AttachBot(bot *telegram.Bot) error {
	if err := c.Events.Subscribe(event.TopicFinished, bot.OnFinished); err != nil {
		return err
	}
	return c.Events.Subscribe(event.TopicSkipped, bot.OnSkipped)
}
