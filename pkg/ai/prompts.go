package ai

import (
	"fmt"
	"strings"

	"storytime-server/internal/model"
)

// Директивы сложности текста по возрастным группам
var agePrompts = map[string]string{
	model.AgeGroupToddlers: "very simple words, short sentences, basic concepts, repetitive patterns",
	model.AgeGroupKids:     "simple vocabulary, clear moral lessons, engaging adventures, easy to understand",
	model.AgeGroupTweens:   "richer vocabulary, complex characters, deeper moral lessons, exciting plots",
}

// Директивы содержания по темам
var themePrompts = map[string]string{
	model.ThemeFairyTale: "magical kingdoms, princes and princesses, happy endings, wonder and magic",
	model.ThemeAdventure: "exciting journeys, brave heroes, overcoming challenges, discovery",
	model.ThemeAnimals:   "friendly animal characters, forest adventures, animal friendships, nature lessons",
	model.ThemeMoral:     "important life lessons, kindness and sharing, being brave and honest, helping others",
}

// Целевой объем истории в словах, который сообщается модели
var wordCountTargets = map[string][2]int{
	model.AgeGroupToddlers: {100, 200},
	model.AgeGroupKids:     {200, 400},
	model.AgeGroupTweens:   {400, 600},
}

// Допустимый диапазон слов при пост-проверке готовой истории.
// Шире целевого: выход за границы логируется, но не отклоняется.
var expectedWordRanges = map[string][2]int{
	model.AgeGroupToddlers: {50, 250},
	model.AgeGroupKids:     {150, 500},
	model.AgeGroupTweens:   {300, 700},
}

const safetyGuidelines = `IMPORTANT SAFETY GUIDELINES:
- Only positive, uplifting, and educational content
- No violence, scary elements, or frightening situations
- No inappropriate themes or adult content
- Characters should be kind, helpful, and demonstrate good values
- Story should teach positive life lessons
- Use encouraging and supportive language
- Ensure all content is completely safe for children`

// languageInstruction возвращает директиву языка истории
func languageInstruction(language string) string {
	if language == model.LanguageHindi {
		return "Write the story in Hindi using Devanagari script. Use simple Hindi vocabulary appropriate for children."
	}
	return "Write the story in English using simple, child-friendly vocabulary."
}

// BuildSystemPrompt собирает системную инструкцию для модели:
// роль, правила безопасности, директивы возраста/темы/языка,
// целевой объем и требуемую форму ответа.
func BuildSystemPrompt(req model.GenerateStoryRequest) string {
	target := wordCountTargets[req.AgeGroup]

	var b strings.Builder
	b.WriteString("You are a professional children's story writer who creates safe, educational, and entertaining stories for kids.\n\n")
	b.WriteString(safetyGuidelines)
	b.WriteString("\n\nCreate stories that are:\n")
	fmt.Fprintf(&b, "- Age-appropriate for %s\n", req.AgeGroup)
	fmt.Fprintf(&b, "- Themed around %s\n", req.Theme)
	fmt.Fprintf(&b, "- Featuring characters: %s\n", strings.Join(req.Characters, ", "))
	fmt.Fprintf(&b, "- Using %s\n", agePrompts[req.AgeGroup])
	fmt.Fprintf(&b, "- Following %s\n", themePrompts[req.Theme])
	fmt.Fprintf(&b, "- %s\n", languageInstruction(req.Language))
	fmt.Fprintf(&b, "\nThe story should be %d-%d words long.\n", target[0], target[1])
	b.WriteString(`
Format your response as JSON with this structure:
{
  "title": "Story title",
  "content": "Full story text",
  "pages": [
    {
      "content": "Content for page 1",
      "illustration": "Description of illustration for this page"
    }
  ]
}

Break longer stories into 3-5 pages for better reading experience.`)
	return b.String()
}

// BuildUserPrompt собирает пользовательскую часть запроса
func BuildUserPrompt(req model.GenerateStoryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s story for %s featuring these characters: %s.\n\n",
		req.Theme, req.AgeGroup, strings.Join(req.Characters, ", "))
	b.WriteString(`The story should:
- Be completely safe and appropriate for children
- Teach a positive moral lesson
- Be engaging and fun to read
- Include the characters as heroes of the story
- Have a happy, uplifting ending
`)
	fmt.Fprintf(&b, "- Be written in %s", req.Language)
	return b.String()
}

// ExpectedWordRange возвращает допустимый диапазон слов для возрастной группы
func ExpectedWordRange(ageGroup string) (min, max int, ok bool) {
	r, ok := expectedWordRanges[ageGroup]
	return r[0], r[1], ok
}
