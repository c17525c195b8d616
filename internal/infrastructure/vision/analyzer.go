package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/port"
	"screengpt/internal/platform/logging"
)

const (
	// DefaultBaseURL OpenAI-совместимый endpoint Gemini.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"
	defaultTimeout = 90 * time.Second
)

// Config параметры модели.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Prompt      string
	Timeout     time.Duration
}

// OpenAIAnalyzer анализирует снимки через OpenAI-совместимый chat completions API.
type OpenAIAnalyzer struct {
	client   *openai.Client
	cfg      Config
	preparer port.ImagePreparer
	logger   *slog.Logger
}

// NewOpenAIAnalyzer создаёт анализатор. Без ключа API работать не может.
func NewOpenAIAnalyzer(cfg Config, preparer port.ImagePreparer, logger *slog.Logger) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vision API key is required")
	}
	if preparer == nil {
		return nil, errors.New("image preparer is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Prompt == "" {
		cfg.Prompt = leetCodePrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIAnalyzer{
		client:   openai.NewClientWithConfig(clientConfig),
		cfg:      cfg,
		preparer: preparer,
		logger:   logger.With("component", "vision", "model", cfg.Model),
	}, nil
}

// Model имя модели.
func (a *OpenAIAnalyzer) Model() string { return a.cfg.Model }

// Analyze отправляет снимок вместе с подсказкой и возвращает ответ модели.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, artifact entity.CaptureArtifact) (entity.AnalysisOutput, error) {
	path := strings.TrimSpace(artifact.Path())
	if path == "" {
		return entity.NoOutput(), errors.New("file path must be a non-empty string")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entity.NoOutput(), fmt.Errorf("image file not found at path: %s", path)
		}
		return entity.NoOutput(), fmt.Errorf("read image: %w", err)
	}

	prepared, err := a.preparer.Prepare(data)
	if err != nil {
		return entity.NoOutput(), fmt.Errorf("prepare image %s: %w", path, err)
	}

	a.logger.Debug("invoke vision API", "path", path, "bytes", len(prepared.Data), "width", prepared.Width, "height", prepared.Height)

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, a.buildRequest(prepared))
	if err != nil {
		return entity.NoOutput(), fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		a.logger.Warn("vision API returned no choices")
		return entity.NoOutput(), nil
	}

	choice := resp.Choices[0]
	a.logger.Info("image analyzed", "path", path, "latency", time.Since(start), "tokens", resp.Usage.TotalTokens)

	model := resp.Model
	if model == "" {
		model = a.cfg.Model
	}
	return entity.WrappedOutput(&entity.AgentResult{
		Raw:          choice.Message.Content,
		Model:        model,
		FinishReason: string(choice.FinishReason),
		Usage: entity.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}), nil
}

func (a *OpenAIAnalyzer) buildRequest(img *port.PreparedImage) openai.ChatCompletionRequest {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))

	req := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: a.cfg.Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	reasoning := isReasoningModel(a.cfg.Model)
	if reasoning {
		// reasoning-модели принимают только температуру по умолчанию
		req.Temperature = 0
	}
	if a.cfg.MaxTokens > 0 {
		if reasoning {
			req.MaxCompletionTokens = a.cfg.MaxTokens
		} else {
			req.MaxTokens = a.cfg.MaxTokens
		}
	}
	return req
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

var _ port.ImageAnalyzer = (*OpenAIAnalyzer)(nil)
