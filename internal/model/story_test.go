package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storytime-server/internal/model"
)

func TestGenerateStoryRequest_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		req       model.GenerateStoryRequest
		wantErr   bool
		badFields []string
	}{
		{
			name: "valid request",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupKids,
				Theme:      model.ThemeAdventure,
				Characters: []string{"Maya", "a brave fox"},
				Language:   model.LanguageEnglish,
			},
		},
		{
			name: "empty language defaults to english",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupToddlers,
				Theme:      model.ThemeAnimals,
				Characters: []string{"Bunny"},
			},
		},
		{
			name: "unknown age group",
			req: model.GenerateStoryRequest{
				AgeGroup:   "teens",
				Theme:      model.ThemeFairyTale,
				Characters: []string{"Princess"},
			},
			wantErr:   true,
			badFields: []string{"ageGroup"},
		},
		{
			name: "unknown theme",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupKids,
				Theme:      "horror",
				Characters: []string{"Ghost"},
			},
			wantErr:   true,
			badFields: []string{"theme"},
		},
		{
			name: "no characters",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupKids,
				Theme:      model.ThemeMoral,
				Characters: []string{},
			},
			wantErr:   true,
			badFields: []string{"characters"},
		},
		{
			name: "only blank characters",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupKids,
				Theme:      model.ThemeMoral,
				Characters: []string{"  ", "", "\t"},
			},
			wantErr:   true,
			badFields: []string{"characters"},
		},
		{
			name: "too many characters",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupTweens,
				Theme:      model.ThemeAdventure,
				Characters: []string{"a", "b", "c", "d", "e", "f"},
			},
			wantErr:   true,
			badFields: []string{"characters"},
		},
		{
			name: "unsupported language",
			req: model.GenerateStoryRequest{
				AgeGroup:   model.AgeGroupKids,
				Theme:      model.ThemeAnimals,
				Characters: []string{"Tiger"},
				Language:   "klingon",
			},
			wantErr:   true,
			badFields: []string{"language"},
		},
		{
			name:      "everything wrong at once",
			req:       model.GenerateStoryRequest{Language: "xx"},
			wantErr:   true,
			badFields: []string{"ageGroup", "theme", "characters", "language"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if !tc.wantErr {
				require.NoError(t, err)
				assert.NotEmpty(t, tc.req.Language)
				return
			}
			require.Error(t, err)
			var valErr *model.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.ElementsMatch(t, tc.badFields, valErr.Fields)
		})
	}
}

func TestGenerateStoryRequest_Validate_TrimsCharacters(t *testing.T) {
	req := model.GenerateStoryRequest{
		AgeGroup:   model.AgeGroupKids,
		Theme:      model.ThemeFairyTale,
		Characters: []string{" Maya ", "", "a dragon"},
	}

	require.NoError(t, req.Validate())
	assert.Equal(t, model.CharacterList{"Maya", "a dragon"}, req.Characters)
	assert.Equal(t, model.LanguageEnglish, req.Language)
}

func TestCharacterList_UnmarshalJSON(t *testing.T) {
	t.Run("array form", func(t *testing.T) {
		var req model.GenerateStoryRequest
		require.NoError(t, json.Unmarshal([]byte(`{"characters":["Maya","Leo"]}`), &req))
		assert.Equal(t, model.CharacterList{"Maya", "Leo"}, req.Characters)
	})

	t.Run("comma-separated string form", func(t *testing.T) {
		var req model.GenerateStoryRequest
		require.NoError(t, json.Unmarshal([]byte(`{"characters":" Maya , Leo ,"}`), &req))
		assert.Equal(t, model.CharacterList{"Maya", "Leo"}, req.Characters)
	})

	t.Run("empty string yields empty list", func(t *testing.T) {
		var req model.GenerateStoryRequest
		require.NoError(t, json.Unmarshal([]byte(`{"characters":""}`), &req))
		assert.Empty(t, req.Characters)
	})

	t.Run("invalid shape is an error", func(t *testing.T) {
		var req model.GenerateStoryRequest
		assert.Error(t, json.Unmarshal([]byte(`{"characters":42}`), &req))
	})
}

func TestParseCharacters(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{"simple list", "Maya, Leo", []string{"Maya", "Leo"}},
		{"extra whitespace", "  Maya ,,  Leo  ", []string{"Maya", "Leo"}},
		{"single name", "Maya", []string{"Maya"}},
		{"empty string", "", []string{}},
		{"only commas", ",,,", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, model.ParseCharacters(tc.raw))
		})
	}
}
