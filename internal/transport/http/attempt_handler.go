package http

import (
	"encoding/json"
	"net/http"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/quiz"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AttemptHandler serves the REST attempt endpoints.
type AttemptHandler struct {
	service *app.AttemptService
}

func NewAttemptHandler(service *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: service}
}

type answerPayload struct {
	QuestionID        string   `json:"questionId" validate:"required"`
	SelectedOptionIDs []string `json:"selectedOptionIds,omitempty"`
	TextAnswer        *string  `json:"textAnswer,omitempty"`
}

type submitPayload struct {
	AttemptID string          `json:"attemptId" validate:"required"`
	UserID    string          `json:"userId,omitempty"`
	Answers   []answerPayload `json:"answers" validate:"dive"`
}

func (p submitPayload) answers() []quiz.Answer {
	out := make([]quiz.Answer, len(p.Answers))
	for i, a := range p.Answers {
		out[i] = quiz.Answer{
			QuestionID:        a.QuestionID,
			SelectedOptionIDs: a.SelectedOptionIDs,
			TextAnswer:        a.TextAnswer,
		}
	}
	return out
}

func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if !decodeAndValidate(w, r, &profile) {
		return
	}
	result, err := h.service.Start(r.Context(), app.StartRequest{
		CourseRef: chi.URLParam(r, "courseRef"),
		TestID:    chi.URLParam(r, "testID"),
		Profile:   profile,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	result, err := h.service.Submit(r.Context(), app.SubmitRequest{
		CourseRef: chi.URLParam(r, "courseRef"),
		TestID:    chi.URLParam(r, "testID"),
		AttemptID: payload.AttemptID,
		UserID:    payload.UserID,
		Answers:   payload.answers(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AttemptHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(),
		chi.URLParam(r, "courseRef"),
		chi.URLParam(r, "testID"),
		chi.URLParam(r, "attemptID"),
		r.URL.Query().Get("userId"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AttemptHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: kindInvalidRequest, Message: "userId query parameter is required"})
		return
	}
	attempts, err := h.service.ListAttempts(r.Context(), chi.URLParam(r, "courseRef"), chi.URLParam(r, "testID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: kindInvalidRequest, Message: "invalid JSON body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
