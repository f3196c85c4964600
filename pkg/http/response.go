package http

import (
	"errors"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
)

func envelope(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

// SuccessResponse writes a 200 envelope around data.
func SuccessResponse(c echo.Context, data interface{}) error {
	return envelope(c, http.StatusOK, data)
}

// NoContentResponse writes 204.
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequestResponse writes a 400 envelope, typically around []ValidationError.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return envelope(c, http.StatusBadRequest, data)
}

// TooManyRequestsResponse writes a throttling error.
func TooManyRequestsResponse(c echo.Context) error {
	return envelope(c, http.StatusTooManyRequests, []*AppError{
		NewAppError("ERR_RATE_LIMITED", "", "rate limit exceeded", http.StatusTooManyRequests),
	})
}

// AttachmentResponse sends body as a download named name.
func AttachmentResponse(c echo.Context, name, contentType string, body []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return c.Blob(http.StatusOK, contentType, body)
}

// AppErrorResponse writes err's status and code. Non-AppErrors become a bare 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return envelope(c, appErr.Status, []*AppError{appErr})
	}
	return envelope(c, http.StatusInternalServerError, []*AppError{InternalError("something went wrong")})
}
