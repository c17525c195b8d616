package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"screengpt/internal/domain/entity"
	"screengpt/internal/infrastructure/storage"
	apperrors "screengpt/internal/platform/errors"
)

func TestPipeline_AnalyzeDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.webp", "notes.txt"} {
		writeShot(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	var (
		mu   sync.Mutex
		seen []string
	)
	analyzer := &fakeAnalyzer{fn: func(_ context.Context, path entity.CaptureArtifact) (entity.AnalysisOutput, error) {
		mu.Lock()
		seen = append(seen, filepath.Base(path.Path()))
		mu.Unlock()
		if filepath.Base(path.Path()) == "b.png" {
			return entity.NoOutput(), errors.New("deadline exceeded")
		}
		return entity.TextOutput("about " + filepath.Base(path.Path())), nil
	}}
	results := storage.NewMemoryLogger(dir, nil)
	capturer := &fakeCapturer{fn: func(context.Context) (entity.CaptureArtifact, error) { return "", nil }}
	p := NewPipeline(capturer, analyzer, results, PipelineOptions{})

	reports, err := p.AnalyzeDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	require.Equal(t, []string{"a.JPG", "b.png", "c.webp"}, seen)
	require.Zero(t, capturer.calls.Load())

	entries := results.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "about a.JPG", entries[0].Text)
	require.Equal(t, "Error analyzing image: deadline exceeded", entries[1].Text)
	require.Equal(t, entity.SourceBatch, entries[2].Meta.Source)
	require.Equal(t, filepath.Join(dir, "c.webp"), entries[2].Meta.Capture.Path())
	require.True(t, apperrors.IsKind(reports[1].AnalysisErr, apperrors.KindAnalysis))

	// исходные файлы остаются на месте
	require.FileExists(t, filepath.Join(dir, "a.JPG"))
	require.FileExists(t, filepath.Join(dir, "b.png"))
	require.False(t, p.Busy())
}

func TestPipeline_AnalyzeDir_EmptyOutputNotLogged(t *testing.T) {
	dir := t.TempDir()
	writeShot(t, dir, "shot.png")
	results := storage.NewMemoryLogger("", nil)
	p := NewPipeline(nil, okAnalyzer(""), results, PipelineOptions{})

	reports, err := p.AnalyzeDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeEmpty, reports[0].Outcome)
	require.Empty(t, results.Entries())
}

func TestPipeline_AnalyzeDir_StopsOnLogFailure(t *testing.T) {
	dir := t.TempDir()
	writeShot(t, dir, "a.png")
	writeShot(t, dir, "b.png")
	analyzer := okAnalyzer("x")
	p := NewPipeline(nil, analyzer, &failingLogger{err: errors.New("disk full")}, PipelineOptions{})

	reports, err := p.AnalyzeDir(context.Background(), dir)
	require.True(t, apperrors.IsKind(err, apperrors.KindLogging))
	require.Len(t, reports, 1)
	require.Equal(t, int32(1), analyzer.calls.Load())
	require.False(t, p.Busy())
}

func TestPipeline_AnalyzeDir_Errors(t *testing.T) {
	p := NewPipeline(nil, okAnalyzer("x"), storage.NewMemoryLogger("", nil), PipelineOptions{})

	_, err := p.AnalyzeDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))

	dir := t.TempDir()
	writeShot(t, dir, "a.png")
	p.running.Store(true)
	_, err = p.AnalyzeDir(context.Background(), dir)
	require.Error(t, err)
	p.running.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := p.AnalyzeDir(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, reports)
}
