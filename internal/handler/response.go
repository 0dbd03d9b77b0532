package handler

import (
	"net/http"
	"strconv"
	"time"

	"order-service/pkg/i18n"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/message"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool              `json:"success"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// printer returns the message printer for the caller's Accept-Language
func printer(c echo.Context) *message.Printer {
	return i18n.Printer(c.Request().Header.Get("Accept-Language"))
}

func success(c echo.Context, status int, key string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success:   true,
		Message:   i18n.Translate(printer(c), key),
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func ok(c echo.Context, data interface{}) error {
	return success(c, http.StatusOK, i18n.KeySuccess, data)
}

// requestError reports a body or path parameter that could not be decoded
type requestError struct {
	key  string
	args []interface{}
}

func (e *requestError) Error() string { return e.key }

// bind decodes the request body into req
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &requestError{key: i18n.KeyInvalidBody}
	}
	return nil
}

// pathID parses the :id path parameter
func pathID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &requestError{key: i18n.KeyInvalidID, args: []interface{}{raw}}
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter, falling back to def when absent
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &requestError{key: i18n.KeyInvalidQuery, args: []interface{}{name}}
	}
	return v, nil
}
