package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.design/x/hotkey/mainthread"
	"golang.org/x/sync/errgroup"

	"screengpt/config"
	telegram "screengpt/internal/api"
	"screengpt/internal/container"
	"screengpt/internal/domain/entity"
	"screengpt/internal/infrastructure/hotkey"
	"screengpt/internal/platform/logging"
	"screengpt/internal/trigger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $CONFIG_PATH)")
	once := flag.Bool("once", false, "capture and analyze once, then exit")
	dryRun := flag.Bool("dry-run", false, "keep results in memory instead of the log file")
	analyzeDir := flag.String("analyze-dir", "", "analyze every image in the directory, then exit")
	flag.Parse()

	// Горячие клавиши на macOS регистрируются только из главного потока
	mainthread.Init(func() {
		if err := run(*configPath, *analyzeDir, *once, *dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "screengpt: %v\n", err)
			os.Exit(1)
		}
	})
}

func run(configPath, analyzeDir string, once, dryRun bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Verbose: cfg.Log.Verbose})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Запуски не привязаны к ctx: начатый анализ дописывается в журнал при остановке
	c, err := container.New(cfg, logger, container.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	if analyzeDir != "" {
		reports, err := c.Pipeline.AnalyzeDir(ctx, analyzeDir)
		logger.Info("batch analysis finished", "dir", analyzeDir, "files", len(reports))
		return err
	}

	if once {
		_, err := c.Pipeline.Run(ctx, entity.SourceCLI)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	sources := 0

	if cfg.Trigger.HotkeyEnabled() {
		combo, err := trigger.ParseCombo(cfg.Trigger.Hotkey)
		if err != nil {
			return err
		}
		listener, err := hotkey.NewListener(combo, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return listener.Run(gctx, func() { c.Pipeline.TriggerFrom(entity.SourceHotkey) })
		})
		sources++
		fmt.Fprintf(os.Stdout, "⌨️  Нажмите %s, чтобы проанализировать экран. Ctrl+C для выхода.\n", combo)
	}

	if cfg.Trigger.AutoInterval > 0 {
		g.Go(func() error {
			return trigger.RunTicker(gctx, cfg.Trigger.AutoInterval, func() { c.Pipeline.TriggerFrom(entity.SourceTimer) })
		})
		sources++
		logger.Info("auto capture enabled", "interval", cfg.Trigger.AutoInterval)
	}

	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(cfg.Telegram.Token, c.Subscribers, c.Pipeline, cfg.Telegram.ChatID, logger)
		if err != nil {
			return err
		}
		if err := c.AttachBot(bot); err != nil {
			return err
		}
		g.Go(func() error { return bot.Run(gctx) })
		sources++
	}

	if sources == 0 {
		return fmt.Errorf("no trigger configured: set HOTKEY, AUTO_INTERVAL or TELEGRAM_TOKEN, or use -once")
	}

	err = g.Wait()
	stop()

	if c.Pipeline.Busy() {
		logger.Info("waiting for the running analysis to finish")
	}
	c.Pipeline.Wait()
	return err
}
