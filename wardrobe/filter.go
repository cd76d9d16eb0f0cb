package wardrobe

import (
	"strings"

	"letrystudio/models"

	"golang.org/x/text/cases"
)

// Criteria narrows the wardrobe view. Empty or "All" fields match everything.
type Criteria struct {
	Category string `query:"category" validate:"category"`
	Season   string `query:"season" validate:"season"`
	Color    string `query:"color"`
}

func active(value string) bool {
	return value != "" && value != models.FilterAll
}

// Filter returns the items matching c, keeping wardrobe order. Items still
// being enriched are always included.
func Filter(items []models.WardrobeItem, c Criteria) []models.WardrobeItem {
	var category models.Category
	var season models.Season
	if active(c.Category) {
		parsed, ok := models.ParseCategory(c.Category)
		if !ok {
			parsed = models.Category(c.Category)
		}
		category = parsed
	}
	if active(c.Season) {
		parsed, ok := models.ParseSeason(c.Season)
		if !ok {
			parsed = models.Season(c.Season)
		}
		season = parsed
	}

	fold := cases.Fold()
	var color string
	if active(c.Color) {
		color = fold.String(strings.TrimSpace(c.Color))
	}

	out := make([]models.WardrobeItem, 0, len(items))
	for _, item := range items {
		if item.Enriching || item.Metadata == nil {
			out = append(out, item)
			continue
		}
		if category != "" && item.Metadata.Category != category {
			continue
		}
		if season != "" && item.Metadata.Season != season {
			continue
		}
		if color != "" && !strings.Contains(fold.String(item.Metadata.Color), color) {
			continue
		}
		out = append(out, item)
	}
	return out
}
