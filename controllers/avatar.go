package controllers

import (
	"net/http"

	"letrystudio/config"
	"letrystudio/wardrobe"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AvatarController struct {
	Studio *wardrobe.Studio
	Images config.ImagesConfig
	Log    zerolog.Logger
}

func (controller *AvatarController) AvatarRoutes(g *echo.Group) {
	g.GET("", controller.GetAvatar)
	g.GET("/image", controller.GetAvatarImage)
	g.PUT("", controller.SetAvatar)
}

func (controller *AvatarController) GetAvatar(c echo.Context) error {
	avatar := controller.Studio.Avatar()
	if avatar == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No avatar uploaded yet"})
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar": avatar})
}

func (controller *AvatarController) GetAvatarImage(c echo.Context) error {
	avatar := controller.Studio.Avatar()
	if avatar == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No avatar uploaded yet"})
	}
	return c.Blob(http.StatusOK, avatar.MIMEType, avatar.Payload)
}

func (controller *AvatarController) SetAvatar(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please attach an image"})
	}
	ref, err := readImage(fh, controller.Images)
	if err != nil {
		return errorResponse(c, err)
	}
	warn := controller.Studio.SetAvatar(c.Request().Context(), ref)
	controller.Log.Info().Str("avatar_id", ref.ID).Str("mime_type", ref.MIMEType).Msg("[Avatar] avatar replaced")
	return respond(c, http.StatusOK, echo.Map{"avatar": ref}, warn)
}
