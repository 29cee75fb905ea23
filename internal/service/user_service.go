package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storytime-server/internal/model"
	"storytime-server/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

// UserService реализует регистрацию пользователей и работу с настройками
type UserService struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
}

// NewUserService создает новый экземпляр сервиса пользователей
func NewUserService(users repository.UserRepository, settings repository.SettingsRepository) *UserService {
	return &UserService{
		users:    users,
		settings: settings,
	}
}

// Register создает нового пользователя. Пароль хранится только как bcrypt-хеш.
func (s *UserService) Register(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	var bad []string
	if len(req.Username) < minUsernameLength || len(req.Username) > maxUsernameLength {
		bad = append(bad, "username")
	}
	if len(req.Password) < minPasswordLength {
		bad = append(bad, "password")
	}
	if len(bad) > 0 {
		return model.User{}, &model.ValidationError{Fields: bad}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.CreateUser(ctx, model.User{
		Username: req.Username,
		Password: string(hash),
	})
}

// GetSettings возвращает настройки пользователя
func (s *UserService) GetSettings(ctx context.Context, userID uuid.UUID) (model.UserSettings, error) {
	return s.settings.GetUserSettings(ctx, userID)
}

// SaveSettings сохраняет настройки пользователя (upsert по userID)
func (s *UserService) SaveSettings(ctx context.Context, userID uuid.UUID, req model.UpsertSettingsRequest) (model.UserSettings, error) {
	settings := model.UserSettings{
		UserID:            userID,
		PreferredLanguage: req.PreferredLanguage,
		ContentFiltering:  true,
		TimeLimit:         req.TimeLimit,
		BedtimeMode:       req.BedtimeMode,
	}
	if settings.PreferredLanguage == "" {
		settings.PreferredLanguage = model.LanguageEnglish
	}
	if req.ContentFiltering != nil {
		settings.ContentFiltering = *req.ContentFiltering
	}

	return s.settings.UpsertUserSettings(ctx, settings)
}
