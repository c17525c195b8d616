package entity

import "time"

// RunStage стадия запуска конвейера.
type RunStage string

const (
	StageIdle      RunStage = "idle"
	StageCapturing RunStage = "capturing"
	StageAnalyzing RunStage = "analyzing"
	StageLogging   RunStage = "logging"
	StageSkipped   RunStage = "skipped"
)

// RunOutcome итог запуска.
type RunOutcome string

const (
	OutcomeCompleted RunOutcome = "completed" // запись добавлена в журнал
	OutcomeEmpty     RunOutcome = "empty"     // анализ вернул пустую строку
	OutcomeSkipped   RunOutcome = "skipped"   // другой запуск уже идёт
	OutcomeFailed    RunOutcome = "failed"    // не удалось записать журнал
)

// TriggerSource откуда пришёл запрос на запуск.
type TriggerSource string

const (
	SourceManual   TriggerSource = "manual"
	SourceHotkey   TriggerSource = "hotkey"
	SourceCLI      TriggerSource = "cli"
	SourceTimer    TriggerSource = "timer"
	SourceTelegram TriggerSource = "telegram"
	SourceBatch    TriggerSource = "batch" // файл из каталога, -analyze-dir
)

// EntryMeta метаданные записи журнала.
type EntryMeta struct {
	RunID     string
	Timestamp time.Time
	Source    TriggerSource
	Model     string
	Capture   CaptureArtifact
}

// RunReport сводка одного запуска.
type RunReport struct {
	ID          string
	Source      TriggerSource
	Outcome     RunOutcome
	Stages      []RunStage
	Capture     CaptureArtifact
	Text        string
	Preview     string
	CaptureErr  error
	AnalysisErr error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Visit отмечает переход в стадию.
func (r *RunReport) Visit(stage RunStage) {
	r.Stages = append(r.Stages, stage)
}

// Failed сообщает, упала ли стадия захвата или анализа.
func (r *RunReport) Failed() bool {
	return r.CaptureErr != nil || r.AnalysisErr != nil
}

// RunEvent уведомление о переходе запуска между стадиями.
type RunEvent struct {
	RunID  string
	Source TriggerSource
	Stage  RunStage
	Text   string
	Err    error
	Report *RunReport
}
