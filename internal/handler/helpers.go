package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/middleware"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/service"
)

// getActor returns the identity resolved by the JWT middleware.
func getActor(c echo.Context) (model.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return model.Actor{}, apperror.Unauthorized("Access denied, no token provided or incorrect format")
	}
	return a, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("Validation Error", []apperror.FieldError{
			{Path: name, Message: name + " must be a positive integer"},
		})
	}
	return id, nil
}

// bind decodes the request body into v. Malformed bodies are reported as
// validation errors so they share the envelope.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return apperror.Validation("Invalid request body", nil)
	}
	return nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// formString returns a pointer to a form value, nil when the key is absent.
func formString(c echo.Context, key string) *string {
	if !isMultipart(c) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func formInt64(c echo.Context, key string) (*int64, error) {
	s := formString(c, key)
	if s == nil {
		return nil, nil
	}
	n, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return nil, apperror.Validation("Validation Error", []apperror.FieldError{{Path: key, Message: key + " must be a number"}})
	}
	return &n, nil
}

// formUpload opens an optional uploaded file. The returned closer is always
// safe to call.
func formUpload(c echo.Context, field string) (*service.Upload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, apperror.Validation("Invalid upload", []apperror.FieldError{{Path: field, Message: err.Error()}})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperror.Internal("failed to read upload", err)
	}
	return &service.Upload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}
