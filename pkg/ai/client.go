package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"storytime-server/internal/model"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// MaxSpeechInputChars - жесткий лимит длины текста для синтеза речи
const MaxSpeechInputChars = 4000

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storytime_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"type", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storytime_ai_request_duration_seconds",
			Help:    "Duration of AI API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

// Client предоставляет интерфейс для работы с API нейросети
type Client struct {
	client      *openai.Client
	model       string
	speechModel string
	timeout     time.Duration
	temperature float32
	maxTokens   int
}

// Config содержит конфигурацию для клиента нейросети
type Config struct {
	APIKey      string
	Model       string
	SpeechModel string
	BaseURL     string
	Timeout     int
	Temperature float32
	MaxTokens   int
}

// New создает новый экземпляр клиента нейросети
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для OpenAI")
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.8
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		speechModel: cfg.SpeechModel,
		timeout:     time.Duration(cfg.Timeout) * time.Second,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// GenerateStory генерирует детскую историю по валидированному запросу.
// Ответ модели запрашивается в формате JSON и разбирается защитно:
// отсутствие title или content - ошибка генерации, отсутствие pages - пустой список.
func (c *Client) GenerateStory(ctx context.Context, req model.GenerateStoryRequest) (model.GeneratedStory, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	systemPrompt := BuildSystemPrompt(req)
	userPrompt := BuildUserPrompt(req)

	// Оцениваем количество токенов промпта (только для логов и метрик)
	if tke, err := tiktoken.EncodingForModel(c.model); err == nil {
		promptTokens := len(tke.Encode(systemPrompt, nil, nil)) + len(tke.Encode(userPrompt, nil, nil))
		log.Debug().Int("promptTokens", promptTokens).Str("model", c.model).Msg("Отправка запроса на генерацию истории")
	}

	startTime := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: c.temperature, // Повышенная температура для разнообразия сюжетов
		MaxTokens:   c.maxTokens,
	})
	aiRequestDuration.With(prometheus.Labels{"type": "story"}).Observe(time.Since(startTime).Seconds())

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"type": "story", "status": "error"}).Inc()
		log.Error().Err(err).Str("model", c.model).Msg("Ошибка при вызове CreateChatCompletion")
		if isAuthError(err) {
			return model.GeneratedStory{}, model.ErrInvalidAPIKey
		}
		return model.GeneratedStory{}, fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"type": "story", "status": "empty"}).Inc()
		return model.GeneratedStory{}, fmt.Errorf("%w: пустой ответ от API", model.ErrGenerationFailed)
	}

	story, err := ParseGeneratedStory(resp.Choices[0].Message.Content)
	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"type": "story", "status": "parse_error"}).Inc()
		return model.GeneratedStory{}, err
	}
	aiRequestsTotal.With(prometheus.Labels{"type": "story", "status": "success"}).Inc()

	// Длина вне ожидаемого диапазона - предупреждение, но не отказ
	if min, max, ok := ExpectedWordRange(req.AgeGroup); ok {
		wordCount := len(strings.Fields(story.Content))
		if wordCount < min || wordCount > max {
			log.Warn().
				Int("wordCount", wordCount).
				Int("min", min).
				Int("max", max).
				Str("ageGroup", req.AgeGroup).
				Msg("Длина истории вне ожидаемого диапазона")
		}
	}

	return story, nil
}

// GenerateSpeech синтезирует речь для произвольного текста и возвращает
// сырые байты аудио. Текст обрезается до MaxSpeechInputChars символов.
func (c *Client) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(c.speechModel),
		Input: TruncateForSpeech(text),
		Voice: openai.VoiceAlloy,
		Speed: 0.9, // Немного медленнее для детей
	})
	aiRequestDuration.With(prometheus.Labels{"type": "speech"}).Observe(time.Since(startTime).Seconds())

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"type": "speech", "status": "error"}).Inc()
		log.Error().Err(err).Str("model", c.speechModel).Msg("Ошибка при вызове CreateSpeech")
		if isAuthError(err) {
			return nil, model.ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("%w: %v", model.ErrAudioFailed, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"type": "speech", "status": "error"}).Inc()
		return nil, fmt.Errorf("%w: %v", model.ErrAudioFailed, err)
	}

	aiRequestsTotal.With(prometheus.Labels{"type": "speech", "status": "success"}).Inc()
	return audio, nil
}

// BrowserSpeechURL возвращает маркер, указывающий клиенту использовать
// браузерный синтез речи. Это штатный режим работы, а не ошибка:
// настоящий TTS-бэкенд для хранения аудио файлов не подключен.
func BrowserSpeechURL(language string) string {
	return "browser-tts://" + language
}

// TruncateForSpeech обрезает текст до лимита синтеза речи
func TruncateForSpeech(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxSpeechInputChars {
		return text
	}
	return string(runes[:MaxSpeechInputChars])
}

// ParseGeneratedStory разбирает структурированный ответ модели.
// Модели иногда оборачивают JSON в markdown-блок, поэтому сначала снимаем обертку.
func ParseGeneratedStory(raw string) (model.GeneratedStory, error) {
	cleaned := stripMarkdownFences(raw)

	var parsed struct {
		Title   string                `json:"title"`
		Content string                `json:"content"`
		Pages   []model.GeneratedPage `json:"pages"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		log.Warn().Err(err).Msg("Ответ AI не является валидным JSON")
		return model.GeneratedStory{}, fmt.Errorf("%w: invalid JSON in response", model.ErrGenerationFailed)
	}

	if parsed.Title == "" || parsed.Content == "" {
		return model.GeneratedStory{}, fmt.Errorf("%w: response missing title or content", model.ErrGenerationFailed)
	}

	pages := parsed.Pages
	if pages == nil {
		pages = []model.GeneratedPage{}
	}

	return model.GeneratedStory{
		Title:   parsed.Title,
		Content: parsed.Content,
		Pages:   pages,
	}, nil
}

// stripMarkdownFences снимает обертку ```json ... ``` с ответа модели
func stripMarkdownFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// isAuthError определяет, является ли ошибка провайдера ошибкой учетных данных
func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 401
	}
	return false
}
