package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	xerrors "service-admin/internal/pkg/errors"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// FromError maps application errors to HTTP status codes and sends the
// standard error envelope.
func FromError(c *gin.Context, err error, message string) {
	Error(c, statusOf(err), message, err)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrConflict),
		errors.Is(err, xerrors.ErrDuplicateSubscription),
		errors.Is(err, xerrors.ErrTransitionNotAllowed),
		errors.Is(err, xerrors.ErrPlanChangeNotAllowed),
		errors.Is(err, xerrors.ErrLastPriceOption):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrUnsupportedBillingCycle),
		errors.Is(err, xerrors.ErrCycleUnavailable),
		errors.Is(err, xerrors.ErrPlanMismatch),
		errors.Is(err, xerrors.ErrRefundExceedsBalance),
		errors.Is(err, xerrors.ErrNothingToRefund),
		errors.Is(err, xerrors.ErrPaymentNotRefunded):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
