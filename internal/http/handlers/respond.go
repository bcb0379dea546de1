package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondError writes the shared error body. The top level message is what
// clients show to people; the nested error is for machines.
func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"message": message,
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: middlewares.RequestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondStoreError maps a store error onto a status. The raw error is
// logged and attached to the gin context, never echoed to the client.
func RespondStoreError(ctx *gin.Context, log *slog.Logger, op string, err error) {
	var verr *user.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondBadRequest(ctx, verr.Error(), gin.H{"field": verr.Field})

	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")

	case errors.Is(err, user.ErrStoreUnavailable):
		_ = ctx.Error(err)
		log.ErrorContext(ctx.Request.Context(), "store unavailable", "op", op, "err", err)
		RespondError(ctx, http.StatusInternalServerError, "store_unavailable", "Server error", nil)

	default:
		_ = ctx.Error(err)
		log.ErrorContext(ctx.Request.Context(), "store operation failed", "op", op, "err", err)
		RespondInternal(ctx, "Server error")
	}
}
