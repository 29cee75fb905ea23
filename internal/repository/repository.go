package repository

import (
	"context"

	"github.com/google/uuid"

	"storytime-server/internal/model"
)

// StoryRepository определяет методы для взаимодействия с хранилищем историй.
type StoryRepository interface {
	// CreateStory создает новую запись истории и возвращает её с заполненным ID.
	CreateStory(ctx context.Context, story model.Story) (model.Story, error)
	// GetStory возвращает историю по ID. Возвращает model.ErrStoryNotFound, если запись отсутствует.
	GetStory(ctx context.Context, id uuid.UUID) (model.Story, error)
	// ListStoriesByUser возвращает истории пользователя, самые новые первыми.
	ListStoriesByUser(ctx context.Context, userID uuid.UUID) ([]model.Story, error)
	// ListPublicStories возвращает публичные истории, самые новые первыми, не более limit.
	ListPublicStories(ctx context.Context, limit int) ([]model.Story, error)
	// UpdateStoryAudioURL сохраняет ссылку на аудио для истории.
	UpdateStoryAudioURL(ctx context.Context, id uuid.UUID, audioURL string) error

	// CreateStoryPages сохраняет страницы истории одним батчем.
	CreateStoryPages(ctx context.Context, pages []model.StoryPage) ([]model.StoryPage, error)
	// GetStoryPages возвращает страницы истории, упорядоченные по номеру страницы.
	GetStoryPages(ctx context.Context, storyID uuid.UUID) ([]model.StoryPage, error)
}

// UserRepository определяет методы для взаимодействия с хранилищем пользователей.
type UserRepository interface {
	// CreateUser создает пользователя. Возвращает model.ErrUserAlreadyExists при дубликате username.
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	// GetUser возвращает пользователя по ID. Возвращает model.ErrUserNotFound, если запись отсутствует.
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	// GetUserByUsername возвращает пользователя по имени.
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// SettingsRepository определяет методы для работы с настройками пользователя.
type SettingsRepository interface {
	// GetUserSettings возвращает настройки пользователя или model.ErrUserNotFound при их отсутствии.
	GetUserSettings(ctx context.Context, userID uuid.UUID) (model.UserSettings, error)
	// UpsertUserSettings обновляет настройки, если они есть, иначе создает новую запись.
	UpsertUserSettings(ctx context.Context, settings model.UserSettings) (model.UserSettings, error)
}
