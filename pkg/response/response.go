package response

import (
	"errors"
	"net/http"
	"time"

	"digital-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the per-request correlation ID.
const RequestIDKey = "request_id"

// unknownErrorCode is reported for errors that are not *apperror.AppError.
const unknownErrorCode = "SYS_000"

// SuccessResponse wraps every 2xx body.
type SuccessResponse struct {
	Data      any    `json:"data"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every 4xx/5xx reply. Wrapped causes never leave the process.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func OK(c *gin.Context, data any) {
	success(c, http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	success(c, http.StatusCreated, data)
}

// Error renders err. An *apperror.AppError anywhere in the chain picks the
// status and code; anything else becomes a bare 500.
func Error(c *gin.Context, err error) {
	status, body := http.StatusInternalServerError, ErrorResponse{
		ErrorCode: unknownErrorCode,
		Message:   "Internal server error",
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus
		body.ErrorCode, body.Message = appErr.Code, appErr.Message
	}

	body.RequestID, body.Timestamp = requestID(c), now()
	c.JSON(status, body)
}

// Abort writes an error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Data: data, RequestID: requestID(c), Timestamp: now()})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// requestID falls back to a fresh UUID when the RequestID middleware did not run.
func requestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.NewString()
}
