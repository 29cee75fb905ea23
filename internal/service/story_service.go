package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"storytime-server/internal/model"
	"storytime-server/internal/repository"
	"storytime-server/pkg/ai"
)

// publicFeedLimit - максимум историй в публичной ленте
const publicFeedLimit = 20

// StoryGenerator определяет интерфейс генерации историй и речи.
// Продакшен-реализация - ai.Client.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req model.GenerateStoryRequest) (model.GeneratedStory, error)
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// StoryService реализует сценарии работы с историями
type StoryService struct {
	repo      repository.StoryRepository
	generator StoryGenerator
}

// NewStoryService создает новый экземпляр сервиса историй
func NewStoryService(repo repository.StoryRepository, generator StoryGenerator) *StoryService {
	return &StoryService{
		repo:      repo,
		generator: generator,
	}
}

// GenerateStory проводит полный цикл: валидация запроса, генерация через AI,
// сохранение истории и её страниц. Никаких внешних вызовов до успешной валидации.
func (s *StoryService) GenerateStory(ctx context.Context, req model.GenerateStoryRequest) (model.StoryWithPages, error) {
	if err := req.Validate(); err != nil {
		return model.StoryWithPages{}, err
	}

	var userID *uuid.UUID
	if req.UserID != "" {
		// userId - опциональная непрозрачная строка; не-UUID трактуем как гостя
		if id, err := uuid.Parse(req.UserID); err == nil {
			userID = &id
		}
	}

	generated, err := s.generator.GenerateStory(ctx, req)
	if err != nil {
		return model.StoryWithPages{}, err
	}

	story := model.Story{
		Title:       generated.Title,
		Content:     generated.Content,
		AgeGroup:    req.AgeGroup,
		Theme:       req.Theme,
		Characters:  req.Characters,
		Language:    req.Language,
		UserID:      userID,
		ReadingTime: EstimateReadingTime(generated.Content),
	}

	created, err := s.repo.CreateStory(ctx, story)
	if err != nil {
		return model.StoryWithPages{}, fmt.Errorf("failed to persist story: %w", err)
	}

	result := model.StoryWithPages{Story: created, Pages: []model.StoryPage{}}

	if len(generated.Pages) > 0 {
		pages := make([]model.StoryPage, 0, len(generated.Pages))
		for i, p := range generated.Pages {
			page := model.StoryPage{
				StoryID:    created.ID,
				PageNumber: i + 1,
				Content:    p.Content,
			}
			if p.Illustration != "" {
				illustration := p.Illustration
				page.Illustration = &illustration
			}
			pages = append(pages, page)
		}

		createdPages, err := s.repo.CreateStoryPages(ctx, pages)
		if err != nil {
			// История уже сохранена; компенсирующей транзакции нет
			log.Error().Err(err).Str("storyID", created.ID.String()).Msg("failed to persist story pages")
			return model.StoryWithPages{}, fmt.Errorf("failed to persist story pages: %w", err)
		}
		result.Pages = createdPages
	}

	log.Info().
		Str("storyID", created.ID.String()).
		Str("ageGroup", created.AgeGroup).
		Str("theme", created.Theme).
		Int("pages", len(result.Pages)).
		Msg("story generated")

	return result, nil
}

// GetStoryWithPages возвращает историю вместе со страницами
func (s *StoryService) GetStoryWithPages(ctx context.Context, id uuid.UUID) (model.StoryWithPages, error) {
	story, err := s.repo.GetStory(ctx, id)
	if err != nil {
		return model.StoryWithPages{}, err
	}

	pages, err := s.repo.GetStoryPages(ctx, id)
	if err != nil {
		return model.StoryWithPages{}, err
	}
	if pages == nil {
		pages = []model.StoryPage{}
	}

	return model.StoryWithPages{Story: story, Pages: pages}, nil
}

// ListPublicStories возвращает публичную ленту историй со страницами
func (s *StoryService) ListPublicStories(ctx context.Context) ([]model.StoryWithPages, error) {
	stories, err := s.repo.ListPublicStories(ctx, publicFeedLimit)
	if err != nil {
		return nil, err
	}

	result := make([]model.StoryWithPages, 0, len(stories))
	for _, story := range stories {
		pages, err := s.repo.GetStoryPages(ctx, story.ID)
		if err != nil {
			return nil, err
		}
		if pages == nil {
			pages = []model.StoryPage{}
		}
		result = append(result, model.StoryWithPages{Story: story, Pages: pages})
	}
	return result, nil
}

// ListUserStories возвращает истории пользователя, самые новые первыми
func (s *StoryService) ListUserStories(ctx context.Context, userID uuid.UUID) ([]model.Story, error) {
	return s.repo.ListStoriesByUser(ctx, userID)
}

// SynthesizeAudio синтезирует аудио для произвольного текста.
// Текст проверяется до обращения к провайдеру.
func (s *StoryService) SynthesizeAudio(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, &model.ValidationError{Fields: []string{"text"}}
	}
	if utf8.RuneCountInString(text) > ai.MaxSpeechInputChars {
		return nil, &model.ValidationError{Fields: []string{"text"}}
	}
	return s.generator.GenerateSpeech(ctx, text)
}

// GenerateStoryAudio сохраняет для истории ссылку на аудио.
// Настоящий TTS-бэкенд с хранением файлов не подключен, поэтому клиенту
// возвращается маркер браузерного синтеза речи.
func (s *StoryService) GenerateStoryAudio(ctx context.Context, id uuid.UUID) (string, error) {
	story, err := s.repo.GetStory(ctx, id)
	if err != nil {
		return "", err
	}

	audioURL := ai.BrowserSpeechURL(story.Language)
	if err := s.repo.UpdateStoryAudioURL(ctx, story.ID, audioURL); err != nil {
		return "", err
	}
	return audioURL, nil
}

// EstimateReadingTime оценивает время чтения в минутах по длине текста.
// Всегда возвращает положительное число.
func EstimateReadingTime(content string) int {
	chars := utf8.RuneCountInString(content)
	minutes := (chars + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
