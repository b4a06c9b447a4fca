package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ChatTarget определяет, куда отправлять уведомления о заявках:
// числовой chat_id (личка или группа) либо @username публичного канала/группы
type ChatTarget struct {
	ID       int64
	Username string
}

func (t ChatTarget) String() string {
	if t.Username != "" {
		return t.Username
	}
	return strconv.FormatInt(t.ID, 10)
}

// ParseChatTarget разбирает значение GROUP_CHAT_TARGET. Пустая строка: nil без ошибки.
func ParseChatTarget(raw string) (*ChatTarget, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	if isNumericID(v) {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid GROUP_CHAT_TARGET %q: %w", v, err)
		}
		return &ChatTarget{ID: id}, nil
	}
	if !strings.HasPrefix(v, "@") {
		v = "@" + v
	}
	return &ChatTarget{Username: v}, nil
}

func isNumericID(v string) bool {
	digits := strings.TrimPrefix(v, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
