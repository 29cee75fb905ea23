package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storytime-server/internal/model"
)

// In-memory реализации репозиториев. Используются в тестах вместо PostgreSQL.

var (
	_ StoryRepository    = (*MemoryStoryRepository)(nil)
	_ UserRepository     = (*MemoryUserRepository)(nil)
	_ SettingsRepository = (*MemorySettingsRepository)(nil)
)

// MemoryStoryRepository хранит истории и страницы в памяти
type MemoryStoryRepository struct {
	mu      sync.RWMutex
	stories map[uuid.UUID]model.Story
	pages   map[uuid.UUID][]model.StoryPage
}

// NewMemoryStoryRepository создает пустой in-memory репозиторий историй
func NewMemoryStoryRepository() *MemoryStoryRepository {
	return &MemoryStoryRepository{
		stories: make(map[uuid.UUID]model.Story),
		pages:   make(map[uuid.UUID][]model.StoryPage),
	}
}

func (r *MemoryStoryRepository) CreateStory(_ context.Context, story model.Story) (model.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	r.stories[story.ID] = story
	return story, nil
}

func (r *MemoryStoryRepository) GetStory(_ context.Context, id uuid.UUID) (model.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	story, ok := r.stories[id]
	if !ok {
		return model.Story{}, model.ErrStoryNotFound
	}
	return story, nil
}

func (r *MemoryStoryRepository) ListStoriesByUser(_ context.Context, userID uuid.UUID) ([]model.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stories []model.Story
	for _, s := range r.stories {
		if s.UserID != nil && *s.UserID == userID {
			stories = append(stories, s)
		}
	}
	sortStoriesNewestFirst(stories)
	return stories, nil
}

func (r *MemoryStoryRepository) ListPublicStories(_ context.Context, limit int) ([]model.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stories []model.Story
	for _, s := range r.stories {
		if s.IsPublic {
			stories = append(stories, s)
		}
	}
	sortStoriesNewestFirst(stories)
	if len(stories) > limit {
		stories = stories[:limit]
	}
	return stories, nil
}

func (r *MemoryStoryRepository) UpdateStoryAudioURL(_ context.Context, id uuid.UUID, audioURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	story, ok := r.stories[id]
	if !ok {
		return model.ErrStoryNotFound
	}
	story.AudioURL = &audioURL
	r.stories[id] = story
	return nil
}

func (r *MemoryStoryRepository) CreateStoryPages(_ context.Context, pages []model.StoryPage) ([]model.StoryPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := make([]model.StoryPage, 0, len(pages))
	for _, page := range pages {
		if page.ID == uuid.Nil {
			page.ID = uuid.New()
		}
		r.pages[page.StoryID] = append(r.pages[page.StoryID], page)
		created = append(created, page)
	}
	return created, nil
}

func (r *MemoryStoryRepository) GetStoryPages(_ context.Context, storyID uuid.UUID) ([]model.StoryPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pages := make([]model.StoryPage, len(r.pages[storyID]))
	copy(pages, r.pages[storyID])
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
	return pages, nil
}

func sortStoriesNewestFirst(stories []model.Story) {
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})
}

// MemoryUserRepository хранит пользователей в памяти
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

// NewMemoryUserRepository создает пустой in-memory репозиторий пользователей
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]model.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) GetUser(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

// MemorySettingsRepository хранит настройки пользователей в памяти
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings map[uuid.UUID]model.UserSettings // ключ - userID
}

// NewMemorySettingsRepository создает пустой in-memory репозиторий настроек
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{settings: make(map[uuid.UUID]model.UserSettings)}
}

func (r *MemorySettingsRepository) GetUserSettings(_ context.Context, userID uuid.UUID) (model.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[userID]
	if !ok {
		return model.UserSettings{}, model.ErrUserNotFound
	}
	return s, nil
}

func (r *MemorySettingsRepository) UpsertUserSettings(_ context.Context, settings model.UserSettings) (model.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.settings[settings.UserID]; ok {
		settings.ID = existing.ID
	} else if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	r.settings[settings.UserID] = settings
	return settings, nil
}
