package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/event"
	apperrors "screengpt/internal/platform/errors"
)

var batchExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// AnalyzeDir прогоняет через модель все изображения каталога dir в порядке имён
// и пишет по записи на файл. Файлы каталога не удаляются.
// Если идёт другой запуск, возвращает ошибку и ничего не делает.
func (p *Pipeline) AnalyzeDir(ctx context.Context, dir string) ([]*entity.RunReport, error) {
	files, err := listImages(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfig, "analyze_dir", "list images", err)
	}

	if !p.running.CompareAndSwap(false, true) {
		return nil, apperrors.New(apperrors.KindAnalysis, "analyze_dir", "analysis already in progress")
	}
	defer p.running.Store(false)

	p.logger.Info("batch analysis started", "dir", dir, "files", len(files))

	reports := make([]*entity.RunReport, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := p.analyzeFile(ctx, path)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (p *Pipeline) analyzeFile(ctx context.Context, path string) (report *entity.RunReport, err error) {
	report = &entity.RunReport{
		ID:        uuid.NewString(),
		Source:    entity.SourceBatch,
		Capture:   entity.CaptureArtifact(path),
		StartedAt: p.clock.Now(),
	}
	log := p.logger.With("run_id", report.ID, "source", report.Source, "path", path)

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.KindLogging, "analyze_file", fmt.Sprintf("panic: %v", r))
			report.Outcome = entity.OutcomeFailed
		}

		report.Visit(entity.StageIdle)
		report.FinishedAt = p.clock.Now()
		p.publish(event.TopicFinished, entity.RunEvent{
			RunID:  report.ID,
			Source: report.Source,
			Stage:  entity.StageIdle,
			Text:   report.Text,
			Err:    err,
			Report: report,
		})
	}()

	report.Visit(entity.StageAnalyzing)
	p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageAnalyzing, Text: filepath.Base(path)})

	output, aerr := p.analyze(ctx, report.Capture)
	if aerr != nil {
		report.AnalysisErr = aerr
		log.Error("image analysis failed", "error", aerr)
		p.publish(event.TopicStage, entity.RunEvent{RunID: report.ID, Source: report.Source, Stage: entity.StageAnalyzing, Err: aerr})
		report.Text = failureText("Error analyzing image", aerr)
	} else {
		report.Text = output.DisplayText()
	}

	err = p.record(report, log)
	return report, err
}

// listImages возвращает пути изображений каталога, отсортированные по имени.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if batchExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
