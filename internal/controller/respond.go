package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/library_service/internal/errs"
	"go.uber.org/zap"
)

// Response единый конверт ответа: {success, message, data}
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (c *Controller) respondData(w http.ResponseWriter, status int, data any) {
	c.writeJSON(w, status, Response{Success: true, Data: data})
}

func (c *Controller) respondMessage(w http.ResponseWriter, status int, message string, data any) {
	c.writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// StatusFromError переводит доменную ошибку в HTTP-статус
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrOutOfStock),
		errors.Is(err, errs.ErrInsufficientCredits):
		return http.StatusConflict
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) respondError(w http.ResponseWriter, err error) {
	status := StatusFromError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Внутренности не показываем, подробности в логе
		c.logger.Error("Handler failed", zap.Error(err))
		message = "internal error"
	}

	c.writeJSON(w, status, Response{Success: false, Message: message})
}

func (c *Controller) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		c.writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "invalid JSON body"})
		return false
	}
	return true
}
