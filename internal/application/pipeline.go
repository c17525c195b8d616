package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/event"
	"screengpt/internal/domain/port"
	"screengpt/internal/platform/clock"
	apperrors "screengpt/internal/platform/errors"
	"screengpt/internal/platform/logging"
)

// DefaultPreviewLimit длина превью результата по умолчанию.
const DefaultPreviewLimit = 500

// PipelineOptions необязательные зависимости конвейера.
type PipelineOptions struct {
	Events       port.EventPublisher
	Clock        clock.Clock
	Logger       *slog.Logger
	Model        string
	PreviewLimit int
	// Context передаётся запускам, начатым через Trigger.
	Context context.Context
}

// Pipeline выполняет захват и анализ экрана, не больше одного запуска за раз.
type Pipeline struct {
	capturer port.ScreenCapturer
	analyzer port.ImageAnalyzer
	results  port.ResultLogger
	events   port.EventPublisher
	clock    clock.Clock
	logger   *slog.Logger

	model        string
	previewLimit int
	baseCtx      context.Context

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewPipeline создаёт конвейер.
func NewPipeline(capturer port.ScreenCapturer, analyzer port.ImageAnalyzer, results port.ResultLogger, opts PipelineOptions) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	return &Pipeline{
		capturer:     capturer,
		analyzer:     analyzer,
		results:      results,
		events:       opts.Events,
		clock:        opts.Clock,
		logger:       opts.Logger.With("component", "pipeline"),
		model:        opts.Model,
		previewLimit: opts.PreviewLimit,
		baseCtx:      opts.Context,
	}
}

// Trigger запускает анализ в фоне и сразу возвращается.
func (p *Pipeline) Trigger() {
	p.TriggerFrom(entity.SourceManual)
}

// TriggerFrom то же, что Trigger, с указанием источника.
func (p *Pipeline) TriggerFrom(source entity.TriggerSource) {
	p.logger.Info("trigger received", "source", source)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("run panicked", "source", source, "panic", r)
			}
		}()

		if _, err := p.Run(p.baseCtx, source); err != nil {
			p.logger.Error("run failed", "source", source, "error", err)
		}
	}()
}

// Wait ждёт завершения запусков, начатых через Trigger.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Busy сообщает, идёт ли сейчас запуск.
func (p *Pipeline) Busy() bool {
	return p.running.Load()
}

// Run выполняет один запуск: захват, анализ, запись в журнал.
// Ошибки захвата и анализа попадают в отчёт и в журнал, наружу возвращается
// только ошибка записи журнала.
func (p *Pipeline) Run(ctx context.Context, source entity.TriggerSource) (report *entity.RunReport, err error) {
	report = &entity.RunReport{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: p.clock.Now(),
	}
	log := p.logger.With("run_id", report.ID, "source", source)

	if !p.running.CompareAndSwap(false, true) {
		report.Outcome = entity.OutcomeSkipped
		report.Visit(entity.StageSkipped)
		report.FinishedAt = p.clock.Now()
		log.Warn("analysis already in progress, skipping")
		p.publish(event.TopicSkipped, entity.RunEvent{RunID: report.ID, Source: source, Stage: entity.StageSkipped, Report: report})
		return report, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.KindLogging, "run", fmt.Sprintf("panic: %v", r))
			report.Outcome = entity.OutcomeFailed
		}

		// флаг снимается только после очистки каталога снимков
		p.cleanup(log)
		p.running.Store(false)

		report.Visit(entity.StageIdle)
		report.FinishedAt = p.clock.Now()
		log.Debug("run finished", "outcome", report.Outcome, "duration", report.FinishedAt.Sub(report.StartedAt))
		p.publish(event.TopicFinished, entity.RunEvent{
			RunID:  report.ID,
			Source: source,
			Stage:  entity.StageIdle,
			Text:   report.Text,
			Err:    err,
			Report: report,
		})
	}()

	report.Text = p.captureAndAnalyze(ctx, report, log)
	err = p.record(report, log)
	return report, err
}

// record дописывает текст отчёта в журнал. Пустой текст не записывается.
func (p *Pipeline) record(report *entity.RunReport, log *slog.Logger) error {
	report.Visit(entity.StageLogging)
	p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageLogging, Text: report.Text})

	if report.Text == "" {
		report.Outcome = entity.OutcomeEmpty
		log.Warn("no analysis output received")
		return nil
	}

	meta := entity.EntryMeta{
		RunID:     report.ID,
		Timestamp: p.clock.Now(),
		Source:    report.Source,
		Model:     p.model,
		Capture:   report.Capture,
	}
	if err := p.results.Append(report.Text, meta); err != nil {
		report.Outcome = entity.OutcomeFailed
		return apperrors.Wrap(apperrors.KindLogging, "append", "write analysis log", err)
	}

	report.Outcome = entity.OutcomeCompleted
	report.Preview = entity.Preview(report.Text, p.previewLimit)
	log.Info("analysis saved", "chars", len(report.Text))
	return nil
}

// captureAndAnalyze возвращает текст для журнала: ответ модели или описание ошибки.
func (p *Pipeline) captureAndAnalyze(ctx context.Context, report *entity.RunReport, log *slog.Logger) string {
	report.Visit(entity.StageCapturing)
	p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageCapturing})

	artifact, err := p.capture(ctx)
	if err != nil {
		report.CaptureErr = err
		log.Error("screen capture failed", "error", err)
		p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageCapturing, Err: err})
		return failureText("Error capturing screen", err)
	}
	report.Capture = artifact
	log.Debug("screen captured", "path", artifact)

	report.Visit(entity.StageAnalyzing)
	p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageAnalyzing})

	output, err := p.analyze(ctx, artifact)
	if err != nil {
		report.AnalysisErr = err
		log.Error("image analysis failed", "path", artifact, "error", err)
		p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageAnalyzing, Err: err})
		return failureText("Error analyzing image", err)
	}

	return output.DisplayText()
}

func (p *Pipeline) capture(ctx context.Context) (artifact entity.CaptureArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.KindCapture, "capture", fmt.Sprintf("panic: %v", r))
		}
	}()

	artifact, err = p.capturer.Capture(ctx)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindCapture, "capture", "screen capture failed", err)
	}
	if artifact == "" {
		return "", apperrors.New(apperrors.KindCapture, "capture", "capture returned no file")
	}
	return artifact, nil
}

func (p *Pipeline) analyze(ctx context.Context, artifact entity.CaptureArtifact) (output entity.AnalysisOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.KindAnalysis, "analyze", fmt.Sprintf("panic: %v", r))
		}
	}()

	output, err = p.analyzer.Analyze(ctx, artifact)
	if err != nil {
		return entity.NoOutput(), apperrors.Wrap(apperrors.KindAnalysis, "analyze", "image analysis failed", err)
	}
	return output, nil
}

func (p *Pipeline) cleanup(log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("cleanup panicked", "panic", r)
		}
	}()
	p.results.Cleanup()
}

func (p *Pipeline) publish(topic string, ev entity.RunEvent) {
	if p.events == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event handler panicked", "topic", topic, "panic", r)
		}
	}()
	p.events.Publish(topic, ev)
}

// failureText описание ошибки для журнала, без служебного префикса типа.
func failureText(prefix string, err error) string {
	var typed *apperrors.Error
	if errors.As(err, &typed) {
		if typed.Cause != nil {
			return fmt.Sprintf("%s: %v", prefix, typed.Cause)
		}
		return fmt.Sprintf("%s: %s", prefix, typed.Message)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
