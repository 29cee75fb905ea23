package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"storytime-server/internal/model"
)

// Compile-time check to ensure pgStoryRepository implements StoryRepository
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	pool *pgxpool.Pool
}

// NewPgStoryRepository создает новый репозиторий историй поверх PostgreSQL
func NewPgStoryRepository(pool *pgxpool.Pool) StoryRepository {
	return &pgStoryRepository{pool: pool}
}

const storyColumns = `id, title, content, age_group, theme, characters, language, user_id, is_public, reading_time, audio_url, created_at`

// CreateStory создает новую запись истории
func (r *pgStoryRepository) CreateStory(ctx context.Context, story model.Story) (model.Story, error) {
	query := `
		INSERT INTO stories (id, title, content, age_group, theme, characters, language, user_id, is_public, reading_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + storyColumns

	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}

	row := r.pool.QueryRow(ctx, query,
		story.ID,
		story.Title,
		story.Content,
		story.AgeGroup,
		story.Theme,
		story.Characters,
		story.Language,
		story.UserID,
		story.IsPublic,
		story.ReadingTime,
		story.CreatedAt,
	)

	created, err := scanStory(row)
	if err != nil {
		return model.Story{}, fmt.Errorf("failed to create story: %w", err)
	}
	return created, nil
}

// GetStory возвращает историю по ID
func (r *pgStoryRepository) GetStory(ctx context.Context, id uuid.UUID) (model.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	story, err := scanStory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Story{}, model.ErrStoryNotFound
		}
		return model.Story{}, fmt.Errorf("failed to get story: %w", err)
	}
	return story, nil
}

// ListStoriesByUser возвращает истории пользователя, самые новые первыми
func (r *pgStoryRepository) ListStoriesByUser(ctx context.Context, userID uuid.UUID) ([]model.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE user_id = $1 ORDER BY created_at DESC`

	var stories []model.Story
	if err := pgxscan.Select(ctx, r.pool, &stories, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user stories: %w", err)
	}
	return stories, nil
}

// ListPublicStories возвращает публичные истории, самые новые первыми
func (r *pgStoryRepository) ListPublicStories(ctx context.Context, limit int) ([]model.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE is_public = TRUE ORDER BY created_at DESC LIMIT $1`

	var stories []model.Story
	if err := pgxscan.Select(ctx, r.pool, &stories, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list public stories: %w", err)
	}
	return stories, nil
}

// UpdateStoryAudioURL сохраняет ссылку на аудио для истории
func (r *pgStoryRepository) UpdateStoryAudioURL(ctx context.Context, id uuid.UUID, audioURL string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE stories SET audio_url = $2 WHERE id = $1`, id, audioURL)
	if err != nil {
		return fmt.Errorf("failed to update story audio url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStoryNotFound
	}
	return nil
}

// CreateStoryPages сохраняет страницы истории одним батчем
func (r *pgStoryRepository) CreateStoryPages(ctx context.Context, pages []model.StoryPage) ([]model.StoryPage, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO story_pages (id, story_id, page_number, content, illustration)
		VALUES ($1, $2, $3, $4, $5)`

	batch := &pgx.Batch{}
	created := make([]model.StoryPage, 0, len(pages))
	for _, page := range pages {
		if page.ID == uuid.Nil {
			page.ID = uuid.New()
		}
		batch.Queue(query, page.ID, page.StoryID, page.PageNumber, page.Content, page.Illustration)
		created = append(created, page)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range created {
		if _, err := results.Exec(); err != nil {
			return nil, fmt.Errorf("failed to create story pages: %w", err)
		}
	}

	log.Debug().Int("pages", len(created)).Str("storyID", created[0].StoryID.String()).Msg("story pages saved")
	return created, nil
}

// GetStoryPages возвращает страницы истории, упорядоченные по номеру страницы
func (r *pgStoryRepository) GetStoryPages(ctx context.Context, storyID uuid.UUID) ([]model.StoryPage, error) {
	query := `
		SELECT id, story_id, page_number, content, illustration
		FROM story_pages
		WHERE story_id = $1
		ORDER BY page_number ASC`

	var pages []model.StoryPage
	if err := pgxscan.Select(ctx, r.pool, &pages, query, storyID); err != nil {
		return nil, fmt.Errorf("failed to get story pages: %w", err)
	}
	return pages, nil
}

// scanStory читает одну строку истории
func scanStory(row pgx.Row) (model.Story, error) {
	var story model.Story
	err := row.Scan(
		&story.ID,
		&story.Title,
		&story.Content,
		&story.AgeGroup,
		&story.Theme,
		&story.Characters,
		&story.Language,
		&story.UserID,
		&story.IsPublic,
		&story.ReadingTime,
		&story.AudioURL,
		&story.CreatedAt,
	)
	return story, err
}
