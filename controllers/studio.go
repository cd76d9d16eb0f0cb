package controllers

import (
	"net/http"

	"letrystudio/composer"
	"letrystudio/models"
	"letrystudio/services"
	"letrystudio/wardrobe"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AddToOutfitIn struct {
	ItemID string `json:"item_id" validate:"required"`
}

type GenerateIn struct {
	Mood     string `json:"mood" validate:"max=300"`
	Steering string `json:"steering" validate:"max=1000"`
}

type RefineIn struct {
	Steering string `json:"steering" validate:"required,max=1000"`
}

type CycleIn struct {
	Direction int `json:"direction" validate:"oneof=-1 1"`
}

type StylistIn struct {
	Occasion         string   `json:"occasion" validate:"required,max=500"`
	StyleNotes       string   `json:"style_notes" validate:"max=1000"`
	PreferredItemIDs []string `json:"preferred_item_ids" validate:"max=20"`
	Mood             string   `json:"mood" validate:"max=300"`
}

type StylistResponse struct {
	Selection *models.OutfitSelection `json:"selection"`
	Studio    composer.Snapshot       `json:"studio"`
}

type ExportResponse struct {
	URL string `json:"url"`
}

type StudioController struct {
	Studio   *wardrobe.Studio
	Composer *composer.Composer
	Exporter services.Exporter
	Log      zerolog.Logger
}

func (controller *StudioController) StudioRoutes(g *echo.Group) {
	g.GET("", controller.GetStudio)
	g.POST("/outfit", controller.AddToOutfit)
	g.DELETE("/outfit/:id", controller.RemoveFromOutfit)
	g.POST("/generate", controller.Generate)
	g.POST("/refine", controller.Refine)
	g.POST("/cycle", controller.Cycle)
	g.GET("/result/image", controller.GetResultImage)
	g.POST("/stylist", controller.Stylist)
	g.POST("/start-over", controller.StartOver)
	g.POST("/export", controller.Export)
}

func (controller *StudioController) ListMoods(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"moods": services.MoodOptions()})
}

func (controller *StudioController) GetStudio(c echo.Context) error {
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) AddToOutfit(c echo.Context) error {
	var req AddToOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if controller.Studio.Avatar() == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please upload an avatar first."})
	}
	item, ok := controller.Studio.Item(req.ItemID)
	if !ok {
		return errorResponse(c, models.ErrItemNotFound)
	}
	controller.Composer.AddToOutfit(item)
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) RemoveFromOutfit(c echo.Context) error {
	controller.Composer.RemoveFromOutfit(c.Param("id"))
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) Generate(c echo.Context) error {
	var req GenerateIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := controller.Composer.Generate(c.Request().Context(), req.Mood, req.Steering); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) Refine(c echo.Context) error {
	var req RefineIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := controller.Composer.Refine(c.Request().Context(), req.Steering); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) Cycle(c echo.Context) error {
	var req CycleIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	controller.Composer.CycleResult(req.Direction)
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) GetResultImage(c echo.Context) error {
	frame, ok := controller.Composer.Current()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Nothing has been generated yet"})
	}
	return c.Blob(http.StatusOK, frame.MIMEType, frame.Data)
}

func (controller *StudioController) Stylist(c echo.Context) error {
	var req StylistIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	selection, err := controller.Composer.SelectOutfitForOccasion(c.Request().Context(), req.Occasion, req.StyleNotes, req.PreferredItemIDs, req.Mood)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, StylistResponse{Selection: selection, Studio: controller.Composer.Snapshot()})
}

func (controller *StudioController) StartOver(c echo.Context) error {
	controller.Composer.StartOver()
	return c.JSON(http.StatusOK, controller.Composer.Snapshot())
}

func (controller *StudioController) Export(c echo.Context) error {
	if controller.Exporter == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Export is not configured"})
	}
	frame, ok := controller.Composer.Current()
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nothing has been generated yet"})
	}
	url, err := controller.Exporter.Export(c.Request().Context(), frame)
	if err != nil {
		controller.Log.Error().Err(err).Msg("[Export] upload failed")
		services.ReportError(err, map[string]string{"component": "export"})
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Could not export the look, please try again"})
	}
	return c.JSON(http.StatusOK, ExportResponse{URL: url})
}
