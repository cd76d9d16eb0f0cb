package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"letrystudio/composer"
	"letrystudio/config"
	"letrystudio/models"
	"letrystudio/services"

	"github.com/labstack/echo/v4"
)

const (
	maxUploadSize  = "64M"
	maxImageBytes  = 20 << 20
	warningField   = "warning"
	errorField     = "error"
	internalErrMsg = "Something went wrong, please try again"
)

// respond writes body and attaches a warning when the change could not be
// persisted. Persistence failures never fail a request.
func respond(c echo.Context, status int, body echo.Map, warn error) error {
	if warn != nil && models.IsPersistenceFailure(warn) {
		body[warningField] = warn.Error()
	}
	return c.JSON(status, body)
}

func errorResponse(c echo.Context, err error) error {
	var resolution *models.NameResolutionFailure
	switch {
	case errors.Is(err, models.ErrBusy), errors.Is(err, composer.ErrDiscarded):
		return c.JSON(http.StatusConflict, map[string]string{errorField: err.Error()})
	case errors.Is(err, models.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{errorField: err.Error()})
	case models.IsValidation(err):
		return c.JSON(http.StatusBadRequest, map[string]string{errorField: err.Error()})
	case errors.As(err, &resolution):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{errorField: err.Error()})
	case models.IsCapabilityFailure(err):
		return c.JSON(http.StatusBadGateway, map[string]string{errorField: err.Error()})
	}
	services.ReportError(err, map[string]string{"component": "http", "path": c.Path()})
	return c.JSON(http.StatusInternalServerError, map[string]string{errorField: internalErrMsg})
}

// readImage loads one uploaded file and normalizes it into an ImageRef.
func readImage(fh *multipart.FileHeader, cfg config.ImagesConfig) (models.ImageRef, error) {
	if fh.Size > maxImageBytes {
		return models.ImageRef{}, models.NewValidationError("%s is too large, the limit is %d MB", fh.Filename, maxImageBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(raw) > maxImageBytes {
		return models.ImageRef{}, models.NewValidationError("%s is too large, the limit is %d MB", fh.Filename, maxImageBytes>>20)
	}
	payload, mimeType, err := services.NormalizeImage(raw, cfg)
	if err != nil {
		var validation *models.ValidationError
		if errors.As(err, &validation) {
			return models.ImageRef{}, models.NewValidationError("%s: %s", fh.Filename, validation.Message)
		}
		return models.ImageRef{}, err
	}
	return models.NewImageRef(fh.Filename, mimeType, payload), nil
}
