package controllers

import (
	"errors"
	"net/http"

	"letrystudio/composer"
	"letrystudio/config"
	"letrystudio/models"
	"letrystudio/wardrobe"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type WardrobeListResponse struct {
	Items []models.WardrobeItem `json:"items"`
	Total int                   `json:"total"`
}

type WardrobeController struct {
	Studio   *wardrobe.Studio
	Pipeline *wardrobe.Pipeline
	Composer *composer.Composer
	Images   config.ImagesConfig
	Log      zerolog.Logger
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.GET("", controller.ListWardrobe)
	g.POST("", controller.UploadClothing)
	g.GET("/:id/image", controller.GetItemImage)
	g.DELETE("/:id", controller.RemoveItem)
}

func (controller *WardrobeController) ListWardrobe(c echo.Context) error {
	var criteria wardrobe.Criteria
	if err := c.Bind(&criteria); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid filter"})
	}
	if err := c.Validate(criteria); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	items := controller.Studio.Items()
	return c.JSON(http.StatusOK, WardrobeListResponse{
		Items: wardrobe.Filter(items, criteria),
		Total: len(items),
	})
}

// UploadClothing accepts every file of the "images" field at once. Nothing is
// added when any file is rejected.
func (controller *WardrobeController) UploadClothing(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please attach at least one image"})
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please attach at least one image"})
	}

	refs := make([]models.ImageRef, 0, len(files))
	for _, fh := range files {
		ref, err := readImage(fh, controller.Images)
		if err != nil {
			return errorResponse(c, err)
		}
		refs = append(refs, ref)
	}

	items, warn := controller.Pipeline.Accept(c.Request().Context(), refs...)
	controller.Log.Info().Int("count", len(items)).Msg("[Wardrobe] uploads accepted for enrichment")
	return respond(c, http.StatusAccepted, echo.Map{"items": items}, warn)
}

func (controller *WardrobeController) GetItemImage(c echo.Context) error {
	item, ok := controller.Studio.Item(c.Param("id"))
	if !ok {
		return errorResponse(c, models.ErrItemNotFound)
	}
	return c.Blob(http.StatusOK, item.MIMEType, item.Payload)
}

func (controller *WardrobeController) RemoveItem(c echo.Context) error {
	id := c.Param("id")
	warn := controller.Studio.Remove(c.Request().Context(), id)
	if errors.Is(warn, models.ErrItemNotFound) {
		return errorResponse(c, warn)
	}
	controller.Composer.RemoveFromOutfit(id)
	return respond(c, http.StatusOK, echo.Map{"message": "Item removed"}, warn)
}
