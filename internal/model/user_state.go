package model

import "time"

// UserState представляет текущее состояние пользователя
type UserState struct {
	State        State
	Lead         Lead
	LinksShownAt time.Time
	UpdatedAt    time.Time
}
