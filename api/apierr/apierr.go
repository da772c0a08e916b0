// Package apierr maps service errors to HTTP responses.
package apierr

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/infrastruture/token"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidToken = "invalid or expired token"
	msgInternal     = "internal server error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Status returns the HTTP status for err and the message safe to show the client.
// Token failures collapse into one message so callers cannot tell why a token was refused.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, token.ErrTokenInvalid):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, dmn.ErrNotAdmin), errors.Is(err, dmn.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, dmn.ErrUserNotFound), errors.Is(err, dmn.ErrPostNotFound), errors.Is(err, dmn.ErrDraftNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, dmn.ErrUsernameConflict),
		errors.Is(err, dmn.ErrIncorrectPassword),
		errors.Is(err, dmn.ErrWeakPassword),
		errors.Is(err, dmn.ErrInvalidUsername),
		errors.Is(err, dmn.ErrEmptyContent),
		errors.Is(err, dmn.ErrInvalidStatusTransition):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// Abort writes err to the client and stops the handler chain. Unexpected
// errors are attached to the gin context for the request logger.
func Abort(ctx *gin.Context, err error) {
	status, msg := Status(err)
	if status == http.StatusInternalServerError {
		_ = ctx.Error(err)
	}
	ctx.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// BadRequest replies 400 with msg.
func BadRequest(ctx *gin.Context, msg string) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// Unauthorized replies 401 with the generic token message.
func Unauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msgInvalidToken})
}
