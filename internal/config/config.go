package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var (
	ErrMissingToken   = errors.New("ENV TELEGRAM_TOKEN is required")
	ErrInvalidBaseURL = errors.New("ENV WEBHOOK_BASE must be an http(s) URL like https://xxx.onrender.com")
)

const (
	StoreSheets   = "sheets"
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"

	ModeWebhook = "webhook"
	ModePolling = "polling"
)

type Config struct {
	Env           string
	TelegramToken string `validate:"required"`
	WebhookBase   string `validate:"required,http_url"`
	Port          int    `validate:"min=1,max=65535"`
	BotMode       string `validate:"oneof=webhook polling"`

	// NotifyTarget == nil: уведомления в группу отключены
	NotifyTarget *ChatTarget
	AdminIDs     map[int64]struct{}

	LeadsStore          string `validate:"oneof=sheets supabase sqlite"`
	GoogleSheetID       string
	GoogleWorksheetName string
	GoogleCredsJSON     string
	SupabaseURL         string
	SupabaseKey         string
	SupabaseTable       string
	SQLiteDSN           string

	OpenAIKey     string
	OpenAIProject string
	OpenAIOrg     string
	OpenAIModel   string
}

// LoadConfig читает окружение (и .env, если он есть) и проверяет обязательные параметры
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config.LoadConfig: .env not loaded", "error", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	// GROUP_CHAT_ID старое имя переменной, оставлено для совместимости
	target, err := ParseChatTarget(firstNonEmpty(getEnv("GROUP_CHAT_TARGET", ""), getEnv("GROUP_CHAT_ID", "")))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "production"),
		TelegramToken:       getEnv("TELEGRAM_TOKEN", ""),
		WebhookBase:         getEnv("WEBHOOK_BASE", ""),
		Port:                port,
		BotMode:             strings.ToLower(getEnv("BOT_MODE", ModeWebhook)),
		NotifyTarget:        target,
		AdminIDs:            ParseAdminIDs(getEnv("ADMIN_CHAT_IDS", "")),
		LeadsStore:          strings.ToLower(getEnv("LEADS_STORE", StoreSheets)),
		GoogleSheetID:       getEnv("GOOGLE_SHEET_ID", ""),
		GoogleWorksheetName: getEnv("GOOGLE_WORKSHEET_NAME", "Leads"),
		GoogleCredsJSON:     getEnv("GOOGLE_CREDS_JSON", ""),
		SupabaseURL:         getEnv("SUPABASE_URL", ""),
		SupabaseKey:         getEnv("SUPABASE_KEY", ""),
		SupabaseTable:       getEnv("SUPABASE_TABLE", "leads"),
		SQLiteDSN:           getEnv("LEADS_SQLITE_DSN", "leads.db"),
		OpenAIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIProject:       getEnv("OPENAI_PROJECT", ""),
		OpenAIOrg:           getEnv("OPENAI_ORG", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию; ошибки токена и адреса возвращаются как ErrMissingToken / ErrInvalidBaseURL
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "TelegramToken":
			return ErrMissingToken
		case "WebhookBase":
			return ErrInvalidBaseURL
		}
	}
	return fmt.Errorf("invalid config: %w", err)
}

// WebhookURL полный адрес вебхука: WEBHOOK_BASE + /webhook/<token>
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.WebhookBase, "/") + "/webhook/" + c.TelegramToken
}

// Addr адрес для HTTP-сервера
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// SheetsEnabled заданы ли ID таблицы и ключ сервисного аккаунта
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSheetID != "" && c.GoogleCredsJSON != ""
}

// OpenAIEnabled задан ли ключ OpenAI
func (c *Config) OpenAIEnabled() bool {
	return c.OpenAIKey != ""
}

// IsAdmin проверяет, может ли пользователь смотреть статистику
func (c *Config) IsAdmin(userID int64) bool {
	_, ok := c.AdminIDs[userID]
	return ok
}

// ParseAdminIDs разбирает список ID через запятую, некорректные значения пропускаются
func ParseAdminIDs(raw string) map[int64]struct{} {
	ids := map[int64]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
