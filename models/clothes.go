package models

import (
	"strings"

	"github.com/go-playground/validator"
)

type Category string

const (
	CategoryTop       Category = "Top"
	CategoryBottom    Category = "Bottom"
	CategoryOuterwear Category = "Outerwear"
	CategoryShoes     Category = "Shoes"
	CategoryAccessory Category = "Accessory"
	CategoryDress     Category = "Dress"
	CategoryUnknown   Category = "Unknown"
)

var Categories = []Category{
	CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes,
	CategoryAccessory, CategoryDress, CategoryUnknown,
}

type Season string

const (
	SeasonWinter    Season = "Winter"
	SeasonSpring    Season = "Spring"
	SeasonSummer    Season = "Summer"
	SeasonAutumn    Season = "Autumn"
	SeasonAllSeason Season = "All-Season"
)

var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn, SeasonAllSeason}

type Style string

const (
	StyleCasual   Style = "Casual"
	StyleFormal   Style = "Formal"
	StyleSporty   Style = "Sporty"
	StyleBusiness Style = "Business"
	StyleEvening  Style = "Evening"
	StyleUnknown  Style = "Unknown"
)

var Styles = []Style{StyleCasual, StyleFormal, StyleSporty, StyleBusiness, StyleEvening, StyleUnknown}

// FilterAll is accepted by every filter criterion and imposes no constraint.
const FilterAll = "All"

const UnknownColor = "Unknown"

// ClothingMetadata is produced only by the enrichment pipeline.
type ClothingMetadata struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Season   Season   `json:"season"`
	Style    Style    `json:"style"`
}

// DefaultMetadata is attached to an item whose classification failed.
func DefaultMetadata() ClothingMetadata {
	return ClothingMetadata{
		Category: CategoryUnknown,
		Color:    UnknownColor,
		Season:   SeasonAllSeason,
		Style:    StyleUnknown,
	}
}

func ParseCategory(value string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(value)) {
			return c, true
		}
	}
	return "", false
}

func ParseSeason(value string) (Season, bool) {
	v := strings.TrimSpace(value)
	// "All Season" and "AllSeason" show up in model output
	if strings.EqualFold(strings.ReplaceAll(strings.ReplaceAll(v, " ", ""), "-", ""), "allseason") {
		return SeasonAllSeason, true
	}
	for _, s := range Seasons {
		if strings.EqualFold(string(s), v) {
			return s, true
		}
	}
	return "", false
}

func ParseStyle(value string) (Style, bool) {
	for _, s := range Styles {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, true
		}
	}
	return "", false
}

// Normalize canonicalises enum spelling and reports whether the metadata is usable.
func (m ClothingMetadata) Normalize() (ClothingMetadata, bool) {
	category, ok := ParseCategory(string(m.Category))
	if !ok {
		return ClothingMetadata{}, false
	}
	season, ok := ParseSeason(string(m.Season))
	if !ok {
		return ClothingMetadata{}, false
	}
	style, ok := ParseStyle(string(m.Style))
	if !ok {
		return ClothingMetadata{}, false
	}
	color := strings.TrimSpace(m.Color)
	if color == "" {
		color = UnknownColor
	}
	return ClothingMetadata{Category: category, Color: color, Season: season, Style: style}, true
}

func ValidateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || value == FilterAll {
		return true
	}
	_, ok := ParseCategory(value)
	return ok
}

func ValidateSeason(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || value == FilterAll {
		return true
	}
	_, ok := ParseSeason(value)
	return ok
}
