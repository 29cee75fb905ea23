package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storytime-server/internal/mocks"
	"storytime-server/internal/model"
	"storytime-server/internal/repository"
	"storytime-server/internal/service"
	"storytime-server/pkg/ai"
)

func validRequest() model.GenerateStoryRequest {
	return model.GenerateStoryRequest{
		AgeGroup:   model.AgeGroupKids,
		Theme:      model.ThemeAdventure,
		Characters: []string{"Maya", "a brave fox"},
		Language:   model.LanguageEnglish,
	}
}

func TestStoryService_GenerateStory(t *testing.T) {
	ctx := context.Background()

	t.Run("success with pages", func(t *testing.T) {
		repo := repository.NewMemoryStoryRepository()
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repo, gen)

		generated := model.GeneratedStory{
			Title:   "The Fox and the Map",
			Content: "Once upon a time, Maya found a map...",
			Pages: []model.GeneratedPage{
				{Content: "Page one", Illustration: "a fox with a map"},
				{Content: "Page two"},
			},
		}
		gen.On("GenerateStory", mock.Anything, mock.AnythingOfType("model.GenerateStoryRequest")).
			Return(generated, nil).Once()

		result, err := svc.GenerateStory(ctx, validRequest())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, result.ID)
		assert.Equal(t, "The Fox and the Map", result.Title)
		assert.Equal(t, generated.Content, result.Content)
		assert.Positive(t, result.ReadingTime)
		require.Len(t, result.Pages, 2)
		assert.Equal(t, 1, result.Pages[0].PageNumber)
		assert.Equal(t, 2, result.Pages[1].PageNumber)
		require.NotNil(t, result.Pages[0].Illustration)
		assert.Equal(t, "a fox with a map", *result.Pages[0].Illustration)
		assert.Nil(t, result.Pages[1].Illustration)

		// История действительно сохранена
		stored, err := repo.GetStory(ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Title, stored.Title)

		gen.AssertExpectations(t)
	})

	t.Run("invalid request never reaches the generator", func(t *testing.T) {
		repo := repository.NewMemoryStoryRepository()
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repo, gen)

		req := validRequest()
		req.AgeGroup = "adults"

		_, err := svc.GenerateStory(ctx, req)
		require.Error(t, err)
		var valErr *model.ValidationError
		assert.ErrorAs(t, err, &valErr)
		gen.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything)
	})

	t.Run("non-uuid userId treated as guest", func(t *testing.T) {
		repo := repository.NewMemoryStoryRepository()
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repo, gen)

		gen.On("GenerateStory", mock.Anything, mock.Anything).
			Return(model.GeneratedStory{Title: "T", Content: "C"}, nil).Once()

		req := validRequest()
		req.UserID = "guest-session-42"

		result, err := svc.GenerateStory(ctx, req)
		require.NoError(t, err)
		assert.Nil(t, result.UserID)
	})

	t.Run("generator failure is propagated", func(t *testing.T) {
		repo := repository.NewMemoryStoryRepository()
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repo, gen)

		gen.On("GenerateStory", mock.Anything, mock.Anything).
			Return(model.GeneratedStory{}, model.ErrGenerationFailed).Once()

		_, err := svc.GenerateStory(ctx, validRequest())
		assert.ErrorIs(t, err, model.ErrGenerationFailed)
	})
}

func TestStoryService_GetStoryWithPages(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStoryRepository()
	gen := mocks.NewMockStoryGenerator(t)
	svc := service.NewStoryService(repo, gen)

	t.Run("unknown story", func(t *testing.T) {
		_, err := svc.GetStoryWithPages(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrStoryNotFound)
	})

	t.Run("story without pages gets empty slice", func(t *testing.T) {
		created, err := repo.CreateStory(ctx, model.Story{Title: "Solo", Content: "text"})
		require.NoError(t, err)

		result, err := svc.GetStoryWithPages(ctx, created.ID)
		require.NoError(t, err)
		assert.NotNil(t, result.Pages)
		assert.Empty(t, result.Pages)
	})
}

func TestStoryService_SynthesizeAudio(t *testing.T) {
	ctx := context.Background()

	t.Run("empty text rejected", func(t *testing.T) {
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repository.NewMemoryStoryRepository(), gen)

		_, err := svc.SynthesizeAudio(ctx, "")
		var valErr *model.ValidationError
		assert.ErrorAs(t, err, &valErr)
		gen.AssertNotCalled(t, "GenerateSpeech", mock.Anything, mock.Anything)
	})

	t.Run("text at the limit accepted", func(t *testing.T) {
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repository.NewMemoryStoryRepository(), gen)

		text := strings.Repeat("a", ai.MaxSpeechInputChars)
		gen.On("GenerateSpeech", mock.Anything, text).Return([]byte("mp3"), nil).Once()

		audio, err := svc.SynthesizeAudio(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3"), audio)
	})

	t.Run("text over the limit rejected before the provider", func(t *testing.T) {
		gen := mocks.NewMockStoryGenerator(t)
		svc := service.NewStoryService(repository.NewMemoryStoryRepository(), gen)

		text := strings.Repeat("a", ai.MaxSpeechInputChars+1)
		_, err := svc.SynthesizeAudio(ctx, text)
		var valErr *model.ValidationError
		assert.ErrorAs(t, err, &valErr)
		gen.AssertNotCalled(t, "GenerateSpeech", mock.Anything, mock.Anything)
	})
}

func TestStoryService_GenerateStoryAudio(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStoryRepository()
	gen := mocks.NewMockStoryGenerator(t)
	svc := service.NewStoryService(repo, gen)

	t.Run("unknown story", func(t *testing.T) {
		_, err := svc.GenerateStoryAudio(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrStoryNotFound)
	})

	t.Run("audio url persisted", func(t *testing.T) {
		created, err := repo.CreateStory(ctx, model.Story{
			Title:    "Hindi Tale",
			Content:  "कहानी",
			Language: model.LanguageHindi,
		})
		require.NoError(t, err)

		url, err := svc.GenerateStoryAudio(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "browser-tts://hindi", url)

		stored, err := repo.GetStory(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AudioURL)
		assert.Equal(t, url, *stored.AudioURL)
	})
}

func TestEstimateReadingTime(t *testing.T) {
	assert.Equal(t, 1, service.EstimateReadingTime(""))
	assert.Equal(t, 1, service.EstimateReadingTime("short"))
	assert.Equal(t, 1, service.EstimateReadingTime(strings.Repeat("a", 200)))
	assert.Equal(t, 2, service.EstimateReadingTime(strings.Repeat("a", 201)))
	assert.Equal(t, 3, service.EstimateReadingTime(strings.Repeat("a", 500)))
}
