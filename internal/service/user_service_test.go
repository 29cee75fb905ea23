package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storytime-server/internal/model"
	"storytime-server/internal/repository"
	"storytime-server/internal/service"
)

func newUserService() (*service.UserService, *repository.MemoryUserRepository, *repository.MemorySettingsRepository) {
	users := repository.NewMemoryUserRepository()
	settings := repository.NewMemorySettingsRepository()
	return service.NewUserService(users, settings), users, settings
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores bcrypt hash", func(t *testing.T) {
		svc, users, _ := newUserService()

		created, err := svc.Register(ctx, model.CreateUserRequest{
			Username: "storyteller",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "storyteller", created.Username)

		stored, err := users.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret-pass", stored.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-pass")))
	})

	t.Run("short username rejected", func(t *testing.T) {
		svc, _, _ := newUserService()
		_, err := svc.Register(ctx, model.CreateUserRequest{Username: "ab", Password: "longenough"})
		var valErr *model.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Contains(t, valErr.Fields, "username")
	})

	t.Run("short password rejected", func(t *testing.T) {
		svc, _, _ := newUserService()
		_, err := svc.Register(ctx, model.CreateUserRequest{Username: "storyteller", Password: "12345"})
		var valErr *model.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Contains(t, valErr.Fields, "password")
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _, _ := newUserService()
		req := model.CreateUserRequest{Username: "storyteller", Password: "s3cret-pass"}

		_, err := svc.Register(ctx, req)
		require.NoError(t, err)

		_, err = svc.Register(ctx, req)
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})
}

func TestUserService_Settings(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing settings", func(t *testing.T) {
		svc, _, _ := newUserService()
		_, err := svc.GetSettings(ctx, userID)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("defaults applied on save", func(t *testing.T) {
		svc, _, _ := newUserService()

		saved, err := svc.SaveSettings(ctx, userID, model.UpsertSettingsRequest{})
		require.NoError(t, err)
		assert.Equal(t, model.LanguageEnglish, saved.PreferredLanguage)
		assert.True(t, saved.ContentFiltering)
		assert.Nil(t, saved.TimeLimit)
		assert.False(t, saved.BedtimeMode)
	})

	t.Run("upsert is idempotent per user", func(t *testing.T) {
		svc, _, _ := newUserService()
		filtering := false
		limit := 30

		first, err := svc.SaveSettings(ctx, userID, model.UpsertSettingsRequest{
			PreferredLanguage: model.LanguageHindi,
			ContentFiltering:  &filtering,
			TimeLimit:         &limit,
			BedtimeMode:       true,
		})
		require.NoError(t, err)

		second, err := svc.SaveSettings(ctx, userID, model.UpsertSettingsRequest{
			PreferredLanguage: model.LanguageEnglish,
		})
		require.NoError(t, err)

		// Запись одна и та же, значения перезаписаны
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, model.LanguageEnglish, second.PreferredLanguage)
		assert.True(t, second.ContentFiltering)
		assert.Nil(t, second.TimeLimit)

		got, err := svc.GetSettings(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})
}
