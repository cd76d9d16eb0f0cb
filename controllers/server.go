package controllers

import (
	"net/http"

	"letrystudio/composer"
	"letrystudio/config"
	"letrystudio/models"
	"letrystudio/services"
	"letrystudio/wardrobe"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Dependencies is everything the HTTP layer talks to. Exporter may be nil
// when no bucket is configured.
type Dependencies struct {
	Studio   *wardrobe.Studio
	Pipeline *wardrobe.Pipeline
	Composer *composer.Composer
	Exporter services.Exporter
	Images   config.ImagesConfig
	Security config.SecurityConfig
	Log      zerolog.Logger
}

func SetupServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	v := validator.New()
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("season", models.ValidateSeason)
	e.Validator = &CustomValidator{validator: v}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit(maxUploadSize))

	api := e.Group("")
	if guard := SessionGuard(deps.Security); guard != nil {
		api.Use(guard)
	}

	avatarController := AvatarController{Studio: deps.Studio, Images: deps.Images, Log: deps.Log}
	avatarController.AvatarRoutes(api.Group("/avatar"))

	wardrobeController := WardrobeController{
		Studio:   deps.Studio,
		Pipeline: deps.Pipeline,
		Composer: deps.Composer,
		Images:   deps.Images,
		Log:      deps.Log,
	}
	wardrobeController.WardrobeRoutes(api.Group("/wardrobe"))

	studioController := StudioController{
		Studio:   deps.Studio,
		Composer: deps.Composer,
		Exporter: deps.Exporter,
		Log:      deps.Log,
	}
	api.GET("/moods", studioController.ListMoods)
	studioController.StudioRoutes(api.Group("/studio"))

	return e
}
