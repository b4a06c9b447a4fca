// Package genai provides chat completions for the free-chat mode using OpenAI API.
package genai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.6
	DefaultTimeout     = 30 * time.Second
)

var (
	// ErrNoChoicesReturned модель ответила без вариантов
	ErrNoChoicesReturned = errors.New("no choices returned")
	// ErrDisabled ключ API не задан
	ErrDisabled = errors.New("openai api key not set")
)

// chatService минимальный интерфейс chat completions, подменяется в тестах
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client оборачивает OpenAI chat completions
type Client struct {
	chat        chatService
	model       string
	temperature float64
	keyType     string
}

type settings struct {
	apiKey       string
	project      string
	organization string
	model        string
	timeout      time.Duration
}

type Option func(*settings)

func WithAPIKey(key string) Option {
	return func(s *settings) { s.apiKey = key }
}

func WithProject(project string) Option {
	return func(s *settings) { s.project = project }
}

func WithOrganization(org string) Option {
	return func(s *settings) { s.organization = org }
}

func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewClient создаёт клиента. Без ключа возвращает ErrDisabled.
func NewClient(opts ...Option) (*Client, error) {
	s := settings{model: DefaultModel, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.apiKey == "" {
		return nil, ErrDisabled
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(s.apiKey),
		option.WithRequestTimeout(s.timeout),
	}
	if s.project != "" {
		reqOpts = append(reqOpts, option.WithProject(s.project))
	}
	if s.organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(s.organization))
	}

	cli := openai.NewClient(reqOpts...)
	return &Client{
		chat:        &cli.Chat.Completions,
		model:       s.model,
		temperature: DefaultTemperature,
		keyType:     KeyType(s.apiKey),
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// KeyType описывает вид ключа для логов, сам ключ не раскрывается
func (c *Client) KeyType() string {
	return c.keyType
}

// Complete отправляет системный и пользовательский промпт и возвращает текст ответа
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Probe делает короткий пробный запрос к модели
func (c *Client) Probe(ctx context.Context) error {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxTokens: openai.Int(5),
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return ErrNoChoicesReturned
	}
	return nil
}

// KeyType: "project" для sk-proj-, "user" для прочих sk-, иначе "unknown"
func KeyType(key string) string {
	switch {
	case strings.HasPrefix(key, "sk-proj-"):
		return "project"
	case strings.HasPrefix(key, "sk-"):
		return "user"
	case key == "":
		return "none"
	}
	return "unknown"
}

// NeedsProject сообщает, что для проектного ключа не задан OPENAI_PROJECT
func NeedsProject(key, project string) bool {
	return KeyType(key) == "project" && project == ""
}
