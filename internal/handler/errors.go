package handler

import (
	"net/http"
	"strings"
	"time"

	"order-service/internal/apperr"
	"order-service/pkg/i18n"
	"order-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Response codes that do not come from an apperr.Kind
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindDuplicate:         http.StatusConflict,
	apperr.KindBusinessRule:      http.StatusBadRequest,
	apperr.KindProductInactive:   http.StatusBadRequest,
	apperr.KindInsufficientStock: http.StatusBadRequest,
	apperr.KindInvalidOrderState: http.StatusBadRequest,
	apperr.KindUnauthorized:      http.StatusUnauthorized,
}

// ErrorHandler renders every error returned by a handler or middleware into the
// response envelope with a localized message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := logger.FromEcho(c)
	p := printer(c)
	resp := APIResponse{Timestamp: time.Now().UTC()}
	status := http.StatusInternalServerError

	var (
		appErr  apperr.Error
		valErr  *ValidationError
		reqErr  *requestError
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		resp.Code = CodeValidation
		resp.Message = i18n.Translate(p, i18n.KeyValidation)
		resp.Errors = valErr.Fields(p)
		log.Warn("Request validation failed", zap.Error(err))

	case errors.As(err, &reqErr):
		status = http.StatusBadRequest
		resp.Code = CodeInvalidRequest
		resp.Message = i18n.Translate(p, reqErr.key, reqErr.args...)
		log.Warn("Malformed request", zap.Error(err))

	case errors.As(err, &appErr):
		if s, ok := kindStatus[appErr.Kind()]; ok {
			status = s
			resp.Code = appErr.Kind().String()
			resp.Message = i18n.Translate(p, appErr.MessageKey(), appErr.MessageArgs()...)
			log.Warn("Request rejected",
				zap.String("code", resp.Code),
				zap.Error(err))
			break
		}
		resp.Code = apperr.KindInternal.String()
		resp.Message = i18n.Translate(p, i18n.KeyUnexpected)
		log.Error("Unclassified application error", zap.Error(err))

	case errors.As(err, &httpErr):
		status = httpErr.Code
		resp.Code = strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		switch status {
		case http.StatusNotFound:
			resp.Code = apperr.KindNotFound.String()
			resp.Message = i18n.Translate(p, i18n.KeyRouteNotFound)
		default:
			resp.Message = i18n.Translate(p, i18n.KeyRequestRejected, httpErr.Message)
		}
		log.Warn("HTTP error", zap.Int("status", status), zap.Error(err))

	default:
		resp.Code = apperr.KindInternal.String()
		resp.Message = i18n.Translate(p, i18n.KeyUnexpected)
		log.Error("Unexpected error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}
