package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ivanoskov/villa_bot/internal/app"
	"github.com/ivanoskov/villa_bot/internal/bot"
	"github.com/ivanoskov/villa_bot/internal/config"
	"github.com/ivanoskov/villa_bot/internal/logger"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Приложение собирается один раз на экземпляр функции; анкеты живут,
// пока экземпляр тёплый
var (
	mu       sync.Mutex
	instance *app.App
	log      = slog.Default()
)

func getApp(ctx context.Context) (*app.App, error) {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return instance, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log = logger.New(cfg.Env)

	a, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		return nil, err
	}
	instance = a
	return a, nil
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	a, err := getApp(ctx)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}

	// Обработка webhook-обновления
	if err := a.Bot.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		if errors.Is(err, bot.ErrBadUpdate) {
			return errorResponse(http.StatusBadRequest, err)
		}
		// ошибки отправки не повод для повторной доставки обновления
		log.Error("error handling update", "error", err)
	}
	// уведомление менеджерам должно уйти до заморозки экземпляра
	a.FanOut.Wait()

	return &Response{
		StatusCode: http.StatusOK,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(status int, err error) (*Response, error) {
	return &Response{
		StatusCode: status,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
