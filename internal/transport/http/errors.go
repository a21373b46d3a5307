package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"course-quiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	kindNotFound          = "not_found"
	kindAccessDenied      = "access_denied"
	kindInvalidRequest    = "invalid_request"
	kindAttemptInProgress = "attempt_in_progress"
	kindInternal          = "internal"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// classify maps an error to its status code and response body.
func classify(err error) (int, errorBody) {
	var (
		denied     *domain.AccessDeniedError
		validation validator.ValidationErrors
	)
	switch {
	case errors.As(err, &denied):
		return http.StatusBadRequest, errorBody{Error: kindAccessDenied, Message: denied.Error(), Reason: string(denied.Reason)}
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorBody{Error: kindInvalidRequest, Message: validationMessage(validation)}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: kindNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrAttemptInProgress):
		return http.StatusConflict, errorBody{Error: kindAttemptInProgress, Message: err.Error()}
	default:
		log.Printf("request failed: %v", err)
		return http.StatusInternalServerError, errorBody{Error: kindInternal, Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	respondJSON(w, status, body)
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
