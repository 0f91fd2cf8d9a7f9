package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dto.ErrCaseNotFound), errors.Is(err, dto.ErrPaymentNotFound), errors.Is(err, dto.ErrNoImages):
		return http.StatusNotFound
	case errors.Is(err, dto.ErrInvalidInput), errors.Is(err, dto.ErrNoFiles), errors.Is(err, dto.ErrUnsupportedFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

// sendError sends a structured error response. Server errors are logged
// and their detail withheld from the client.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		if statusCode >= http.StatusInternalServerError {
			slog.Error(message, "path", c.FullPath(), "error", err)
		} else {
			errorMsg = err.Error()
		}
	}

	c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{
		Error:   errorCode(statusCode),
		Message: errorMsg,
		Code:    statusCode,
	})
}

// sendServiceError picks the status from err.
func sendServiceError(c *gin.Context, message string, err error) {
	sendError(c, statusFor(err), message, err)
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		sendError(c, http.StatusBadRequest, "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
