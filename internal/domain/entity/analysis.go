package entity

import (
	"fmt"
	"unicode/utf8"
)

// NoOutputText подставляется, когда анализ не вернул никакого результата.
const NoOutputText = "Error: no output received."

// CaptureArtifact абсолютный путь к снимку экрана, живущему в пределах одного запуска.
type CaptureArtifact string

// Path возвращает путь как строку.
func (a CaptureArtifact) Path() string { return string(a) }

// OutputKind вариант результата стадии анализа.
type OutputKind int

const (
	OutputAbsent  OutputKind = iota // результата нет
	OutputText                      // обычный текст
	OutputWrapped                   // обёртка с сырым текстом
	OutputOther                     // произвольное значение
)

// TokenUsage расход токенов модели.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AgentResult обёртка над ответом модели.
type AgentResult struct {
	Raw          string
	Model        string
	FinishReason string
	Usage        TokenUsage
}

func (r *AgentResult) String() string {
	if r == nil {
		return ""
	}
	return r.Raw
}

// AnalysisOutput то, что вернула стадия анализа.
type AnalysisOutput struct {
	Kind    OutputKind
	Text    string
	Wrapped *AgentResult
	Value   any
}

// NoOutput результат без содержимого.
func NoOutput() AnalysisOutput { return AnalysisOutput{Kind: OutputAbsent} }

// TextOutput результат в виде строки.
func TextOutput(text string) AnalysisOutput {
	return AnalysisOutput{Kind: OutputText, Text: text}
}

// WrappedOutput результат в виде обёртки.
func WrappedOutput(r *AgentResult) AnalysisOutput {
	return AnalysisOutput{Kind: OutputWrapped, Wrapped: r}
}

// OtherOutput результат произвольной формы.
func OtherOutput(v any) AnalysisOutput {
	return AnalysisOutput{Kind: OutputOther, Value: v}
}

// DisplayText приводит результат к обычному тексту.
func (o AnalysisOutput) DisplayText() string {
	switch o.Kind {
	case OutputText:
		return o.Text
	case OutputWrapped:
		if o.Wrapped == nil {
			return NoOutputText
		}
		return o.Wrapped.Raw
	case OutputOther:
		if o.Value == nil {
			return NoOutputText
		}
		return fmt.Sprint(o.Value)
	default:
		return NoOutputText
	}
}

// Preview возвращает первые limit символов текста.
func Preview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
