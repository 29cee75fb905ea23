package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"storytime-server/internal/model"
	"storytime-server/internal/service"
)

// Handler представляет HTTP обработчик
type Handler struct {
	storyService *service.StoryService
	userService  *service.UserService
	showDetails  bool // В production детали внутренних ошибок не отдаются
}

// New создает новый экземпляр обработчика
func New(storyService *service.StoryService, userService *service.UserService, showDetails bool) *Handler {
	return &Handler{
		storyService: storyService,
		userService:  userService,
		showDetails:  showDetails,
	}
}

// RegisterRoutes регистрирует маршруты API (относительно /api).
// После методных маршрутов каждый путь получает catch-all на 405:
// mux сбрасывает ErrMethodMismatch, если следующий маршрут не совпал
// по пути, поэтому MethodNotAllowedHandler срабатывает не для всех путей.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/stories/generate", h.GenerateStory).Methods("POST")
	router.HandleFunc("/stories/generate", h.MethodNotAllowed)
	router.HandleFunc("/stories/audio", h.SynthesizeAudio).Methods("POST")
	router.HandleFunc("/stories/audio", h.MethodNotAllowed)
	router.HandleFunc("/stories", h.ListPublicStories).Methods("GET")
	router.HandleFunc("/stories", h.MethodNotAllowed)
	router.HandleFunc("/stories/{id}/audio", h.GenerateStoryAudio).Methods("POST")
	router.HandleFunc("/stories/{id}/audio", h.MethodNotAllowed)
	router.HandleFunc("/stories/{id}", h.GetStory).Methods("GET")
	router.HandleFunc("/stories/{id}", h.MethodNotAllowed)

	router.HandleFunc("/users", h.CreateUser).Methods("POST")
	router.HandleFunc("/users", h.MethodNotAllowed)
	router.HandleFunc("/users/{userId}/stories", h.ListUserStories).Methods("GET")
	router.HandleFunc("/users/{userId}/stories", h.MethodNotAllowed)
	router.HandleFunc("/users/{userId}/settings", h.GetUserSettings).Methods("GET")
	router.HandleFunc("/users/{userId}/settings", h.SaveUserSettings).Methods("PUT")
	router.HandleFunc("/users/{userId}/settings", h.MethodNotAllowed)

	router.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)
}

// MethodNotAllowed отвечает 405 в стандартном JSON-формате
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// GenerateStory генерирует новую историю и сохраняет её вместе со страницами
func (h *Handler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	story, err := h.storyService.GenerateStory(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "Failed to generate story")
		return
	}

	RespondWithJSON(w, http.StatusCreated, story)
}

// GetStory возвращает историю по ID вместе со страницами
func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid story ID", err)
		return
	}

	story, err := h.storyService.GetStoryWithPages(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch story")
		return
	}

	RespondWithJSON(w, http.StatusOK, story)
}

// ListPublicStories возвращает публичную ленту историй
func (h *Handler) ListPublicStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storyService.ListPublicStories(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch stories")
		return
	}

	RespondWithJSON(w, http.StatusOK, stories)
}

// ListUserStories возвращает истории пользователя
func (h *Handler) ListUserStories(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	stories, err := h.storyService.ListUserStories(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch stories")
		return
	}
	if stories == nil {
		stories = []model.Story{}
	}

	RespondWithJSON(w, http.StatusOK, stories)
}

// audioRequest содержит текст для синтеза речи
type audioRequest struct {
	Text string `json:"text"`
}

// SynthesizeAudio синтезирует аудио для произвольного текста
func (h *Handler) SynthesizeAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Text == "" {
		h.respondError(w, http.StatusBadRequest, "Text is required", nil)
		return
	}

	audio, err := h.storyService.SynthesizeAudio(r.Context(), req.Text)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			h.respondError(w, http.StatusBadRequest, "Text too long. Maximum 4000 characters allowed.", nil)
			return
		}
		h.handleServiceError(w, err, "Failed to generate audio")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// GenerateStoryAudio сохраняет ссылку на аудио для существующей истории
func (h *Handler) GenerateStoryAudio(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid story ID", err)
		return
	}

	audioURL, err := h.storyService.GenerateStoryAudio(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to generate audio")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"audioUrl": audioURL})
}

// CreateUser регистрирует нового пользователя
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "Failed to create user")
		return
	}

	RespondWithJSON(w, http.StatusCreated, user)
}

// GetUserSettings возвращает настройки пользователя
func (h *Handler) GetUserSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	settings, err := h.userService.GetSettings(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to fetch settings")
		return
	}

	RespondWithJSON(w, http.StatusOK, settings)
}

// SaveUserSettings сохраняет настройки пользователя (upsert)
func (h *Handler) SaveUserSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	var req model.UpsertSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings, err := h.userService.SaveSettings(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, err, "Failed to save settings")
		return
	}

	RespondWithJSON(w, http.StatusOK, settings)
}

// handleServiceError сопоставляет доменные ошибки с HTTP статусами
func (h *Handler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *model.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.respondError(w, http.StatusBadRequest, validationErr.Error(), nil)
	case errors.Is(err, model.ErrStoryNotFound):
		h.respondError(w, http.StatusNotFound, "Story not found", nil)
	case errors.Is(err, model.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, model.ErrUserAlreadyExists):
		h.respondError(w, http.StatusConflict, "Username already exists", nil)
	case errors.Is(err, model.ErrInvalidAPIKey):
		log.Error().Err(err).Msg("provider rejected credentials")
		h.respondError(w, http.StatusInternalServerError, model.ErrInvalidAPIKey.Error(), nil)
	case errors.Is(err, model.ErrGenerationFailed):
		log.Error().Err(err).Msg("story generation failed")
		h.respondError(w, http.StatusInternalServerError, model.ErrGenerationFailed.Error(), err)
	case errors.Is(err, model.ErrAudioFailed):
		log.Error().Err(err).Msg("audio generation failed")
		h.respondError(w, http.StatusInternalServerError, model.ErrAudioFailed.Error(), err)
	default:
		log.Error().Err(err).Msg("unhandled internal error")
		h.respondError(w, http.StatusInternalServerError, fallback, err)
	}
}

// ErrorResponse - стандартная структура ответа об ошибке
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// respondError отправляет ошибку в формате JSON.
// Детали внутренней ошибки включаются только вне production.
func (h *Handler) respondError(w http.ResponseWriter, code int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil && h.showDetails {
		resp.Error = err.Error()
	}
	RespondWithJSON(w, code, resp)
}

// RespondWithJSON отправляет ответ в формате JSON
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
