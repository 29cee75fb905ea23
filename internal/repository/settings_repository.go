package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storytime-server/internal/model"
)

// Compile-time check to ensure pgSettingsRepository implements SettingsRepository
var _ SettingsRepository = (*pgSettingsRepository)(nil)

type pgSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewPgSettingsRepository создает новый репозиторий настроек поверх PostgreSQL
func NewPgSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &pgSettingsRepository{pool: pool}
}

// GetUserSettings возвращает настройки пользователя
func (r *pgSettingsRepository) GetUserSettings(ctx context.Context, userID uuid.UUID) (model.UserSettings, error) {
	query := `
		SELECT id, user_id, preferred_language, content_filtering, time_limit, bedtime_mode
		FROM user_settings
		WHERE user_id = $1`

	var s model.UserSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.PreferredLanguage, &s.ContentFiltering, &s.TimeLimit, &s.BedtimeMode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserSettings{}, model.ErrUserNotFound
		}
		return model.UserSettings{}, fmt.Errorf("failed to get user settings: %w", err)
	}
	return s, nil
}

// UpsertUserSettings обновляет настройки, если они есть, иначе создает новую запись.
// Ключом служит user_id: у пользователя всегда не более одной записи настроек.
func (r *pgSettingsRepository) UpsertUserSettings(ctx context.Context, settings model.UserSettings) (model.UserSettings, error) {
	existing, err := r.GetUserSettings(ctx, settings.UserID)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return model.UserSettings{}, err
	}

	if err == nil {
		query := `
			UPDATE user_settings
			SET preferred_language = $2, content_filtering = $3, time_limit = $4, bedtime_mode = $5
			WHERE user_id = $1
			RETURNING id, user_id, preferred_language, content_filtering, time_limit, bedtime_mode`

		var updated model.UserSettings
		err := r.pool.QueryRow(ctx, query,
			existing.UserID, settings.PreferredLanguage, settings.ContentFiltering, settings.TimeLimit, settings.BedtimeMode,
		).Scan(&updated.ID, &updated.UserID, &updated.PreferredLanguage, &updated.ContentFiltering, &updated.TimeLimit, &updated.BedtimeMode)
		if err != nil {
			return model.UserSettings{}, fmt.Errorf("failed to update user settings: %w", err)
		}
		return updated, nil
	}

	query := `
		INSERT INTO user_settings (id, user_id, preferred_language, content_filtering, time_limit, bedtime_mode)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, preferred_language, content_filtering, time_limit, bedtime_mode`

	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}

	var created model.UserSettings
	err = r.pool.QueryRow(ctx, query,
		settings.ID, settings.UserID, settings.PreferredLanguage, settings.ContentFiltering, settings.TimeLimit, settings.BedtimeMode,
	).Scan(&created.ID, &created.UserID, &created.PreferredLanguage, &created.ContentFiltering, &created.TimeLimit, &created.BedtimeMode)
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("failed to insert user settings: %w", err)
	}
	return created, nil
}
