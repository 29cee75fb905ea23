package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Возрастные группы читателей
const (
	AgeGroupToddlers = "toddlers"
	AgeGroupKids     = "kids"
	AgeGroupTweens   = "tweens"
)

// Темы историй
const (
	ThemeFairyTale = "fairy-tale"
	ThemeAdventure = "adventure"
	ThemeAnimals   = "animals"
	ThemeMoral     = "moral"
)

// Языки историй
const (
	LanguageEnglish = "english"
	LanguageHindi   = "hindi"
)

// MaxCharacters - максимальное количество персонажей в одной истории
const MaxCharacters = 5

// Story представляет сгенерированную детскую историю
type Story struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	AgeGroup    string     `json:"ageGroup" db:"age_group"`
	Theme       string     `json:"theme" db:"theme"`
	Characters  []string   `json:"characters" db:"characters"`
	Language    string     `json:"language" db:"language"`
	UserID      *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	IsPublic    bool       `json:"isPublic" db:"is_public"`
	ReadingTime int        `json:"readingTime" db:"reading_time"`
	AudioURL    *string    `json:"audioUrl,omitempty" db:"audio_url"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// StoryPage представляет одну страницу истории
type StoryPage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	StoryID      uuid.UUID `json:"storyId" db:"story_id"`
	PageNumber   int       `json:"pageNumber" db:"page_number"`
	Content      string    `json:"content" db:"content"`
	Illustration *string   `json:"illustration,omitempty" db:"illustration"`
}

// StoryWithPages - история вместе с её страницами для отдачи клиенту
type StoryWithPages struct {
	Story
	Pages []StoryPage `json:"pages"`
}

// GenerateStoryRequest содержит параметры запроса на генерацию истории
type GenerateStoryRequest struct {
	AgeGroup   string        `json:"ageGroup"`
	Theme      string        `json:"theme"`
	Characters CharacterList `json:"characters"`
	Language   string        `json:"language"`
	UserID     string        `json:"userId,omitempty"`
}

// CharacterList - список персонажей. Клиенты присылают его либо
// JSON-массивом, либо одной строкой с именами через запятую.
type CharacterList []string

func (c *CharacterList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*c = ParseCharacters(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// GeneratedStory - результат генерации от AI до сохранения в базу
type GeneratedStory struct {
	Title   string
	Content string
	Pages   []GeneratedPage
}

// GeneratedPage - одна страница из структурированного ответа AI
type GeneratedPage struct {
	Content      string `json:"content"`
	Illustration string `json:"illustration,omitempty"`
}

// ValidationError описывает ошибку валидации с указанием полей
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Validate проверяет запрос на генерацию и нормализует его.
// Язык по умолчанию - английский.
func (r *GenerateStoryRequest) Validate() error {
	var bad []string

	switch r.AgeGroup {
	case AgeGroupToddlers, AgeGroupKids, AgeGroupTweens:
	default:
		bad = append(bad, "ageGroup")
	}

	switch r.Theme {
	case ThemeFairyTale, ThemeAdventure, ThemeAnimals, ThemeMoral:
	default:
		bad = append(bad, "theme")
	}

	// Пустые строки среди персонажей отбрасываем до проверки длины
	characters := make([]string, 0, len(r.Characters))
	for _, c := range r.Characters {
		c = strings.TrimSpace(c)
		if c != "" {
			characters = append(characters, c)
		}
	}
	r.Characters = characters
	if len(r.Characters) < 1 || len(r.Characters) > MaxCharacters {
		bad = append(bad, "characters")
	}

	switch r.Language {
	case "":
		r.Language = LanguageEnglish
	case LanguageEnglish, LanguageHindi:
	default:
		bad = append(bad, "language")
	}

	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// ParseCharacters разбирает строку с именами персонажей через запятую
func ParseCharacters(raw string) []string {
	parts := strings.Split(raw, ",")
	characters := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			characters = append(characters, p)
		}
	}
	return characters
}
