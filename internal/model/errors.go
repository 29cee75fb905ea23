package model

import "errors"

// Сентинельные ошибки доменного слоя. Обработчики сопоставляют их
// с HTTP статусами через errors.Is.
var (
	ErrStoryNotFound     = errors.New("story not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("username already exists")

	// ErrInvalidAPIKey - провайдер отклонил учетные данные; сообщение должно
	// быть отличимо от общей ошибки генерации
	ErrInvalidAPIKey = errors.New("invalid OpenAI API key, please check your API key is correct and has credits available")

	ErrGenerationFailed = errors.New("failed to generate story, please try again")
	ErrAudioFailed      = errors.New("failed to generate audio, please try again")
)
