package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/response"
)

const MessageInvalidBody = "invalid request body"

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.MessageResponse{Message: message})
}

// SendUnauthorized answers 401 with a plain text body.
func SendUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.String(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
}

func SendBadRequestError(c *gin.Context, message string) {
	SendMessage(c, http.StatusBadRequest, message)
}

func SendInternalError(c *gin.Context, message string) {
	SendMessage(c, http.StatusInternalServerError, message)
}

func SendNotFoundError(c *gin.Context, message string) {
	SendMessage(c, http.StatusNotFound, message)
}

// StatusFor maps a domain error to its HTTP status. Validation failures
// share 500 with storage faults.
func StatusFor(err error) int {
	code, ok := domain.CodeOf(err)

	if !ok {
		return http.StatusInternalServerError
	}

	switch code {
	case domain.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SendDomainError writes err with the status StatusFor assigns it.
func SendDomainError(c *gin.Context, err error) {
	status := StatusFor(err)

	if status == http.StatusUnauthorized {
		SendUnauthorized(c)
		return
	}

	SendMessage(c, status, messageFor(err))
}

func messageFor(err error) string {
	var dErr *domain.Error

	if !errors.As(err, &dErr) {
		return "internal server error"
	}

	return dErr.Message
}
