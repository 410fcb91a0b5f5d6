package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/pagination"
)

// Envelope is the body of every response.
type Envelope struct {
	StatusCode int              `json:"status_code"`
	Message    string           `json:"message"`
	Data       any              `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{StatusCode: status, Message: message, Data: data})
}

func respondPage(c echo.Context, message string, data any, meta pagination.Meta) error {
	return c.JSON(http.StatusOK, Envelope{StatusCode: http.StatusOK, Message: message, Data: data, Pagination: &meta})
}

// ErrorHandler renders every error through the envelope. Validation
// errors carry their field list in data; internal causes are logged and
// never sent to the client.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		env := errorEnvelope(err)
		if env.StatusCode >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("request failed")
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(env.StatusCode)
		} else {
			werr = c.JSON(env.StatusCode, env)
		}
		if werr != nil {
			log.WithError(werr).Warn("write error response")
		}
	}
}

func errorEnvelope(err error) Envelope {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return Envelope{StatusCode: he.Code, Message: msg}
	}
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		return Envelope{StatusCode: http.StatusInternalServerError, Message: "Internal Server Error"}
	}
	env := Envelope{StatusCode: apperror.StatusOf(ae), Message: ae.Message}
	if ae.Kind == apperror.KindValidation && len(ae.Fields) > 0 {
		env.Data = ae.Fields
	}
	return env
}
