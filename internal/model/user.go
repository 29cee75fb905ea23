package model

import (
	"time"

	"github.com/google/uuid"
)

// User представляет модель пользователя в системе
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"` // Не возвращаем пароль в JSON
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CreateUserRequest содержит данные для создания пользователя
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserSettings представляет настройки пользователя, одна запись на пользователя
type UserSettings struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	PreferredLanguage string    `json:"preferredLanguage" db:"preferred_language"`
	ContentFiltering  bool      `json:"contentFiltering" db:"content_filtering"`
	TimeLimit         *int      `json:"timeLimit,omitempty" db:"time_limit"`
	BedtimeMode       bool      `json:"bedtimeMode" db:"bedtime_mode"`
}

// UpsertSettingsRequest содержит данные для сохранения настроек пользователя
type UpsertSettingsRequest struct {
	PreferredLanguage string `json:"preferredLanguage"`
	ContentFiltering  *bool  `json:"contentFiltering,omitempty"`
	TimeLimit         *int   `json:"timeLimit,omitempty"`
	BedtimeMode       bool   `json:"bedtimeMode"`
}
