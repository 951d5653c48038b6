package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shakibbs/Event-Backend/internal/repository"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// serviceErrorCases is shared by every handler. Token failures all read the
// same so clients cannot tell an expired token from a revoked one.
var serviceErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
	{Err: usecase.ErrInvalidToken, Status: http.StatusUnauthorized, Message: "invalid or expired token"},
	{Err: usecase.ErrTokenSubjectMismatch, Status: http.StatusUnauthorized, Message: "invalid or expired token"},
	{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
	{Err: usecase.ErrInsufficientPermission, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Message: "account is not active"},
	{Err: usecase.ErrConflict, Status: http.StatusConflict, Message: "resource already exists"},
	{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "resource already exists"},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "resource not found"},
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondServiceError maps usecase errors. Validation errors carry their own
// client-safe detail; unmapped errors are recorded on the gin context and hidden behind a 500.
func respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrValidation) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}
	if !isMapped(err, serviceErrorCases) {
		// Picked up by the access log middleware.
		_ = c.Error(err)
	}
	RespondWithMappedError(c, err, serviceErrorCases, http.StatusInternalServerError, "internal server error")
}

func isMapped(err error, cases []ErrorCase) bool {
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			return true
		}
	}
	return false
}

// pathID parses a positive integer path parameter, writing a 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid "+name))
		return 0, false
	}
	return id, true
}
