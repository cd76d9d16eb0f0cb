package services

import (
	_ "embed"
	"fmt"

	"letrystudio/models"

	"gopkg.in/yaml.v3"
)

//go:embed moods.yaml
var moodsYAML []byte

var moodOptions []models.MoodOption

func init() {
	var err error
	moodOptions, err = parseMoods(moodsYAML)
	if err != nil {
		panic(err)
	}
}

func parseMoods(data []byte) ([]models.MoodOption, error) {
	var moods []models.MoodOption
	if err := yaml.Unmarshal(data, &moods); err != nil {
		return nil, fmt.Errorf("parse mood presets: %w", err)
	}
	if len(moods) == 0 {
		return nil, fmt.Errorf("no mood presets defined")
	}
	return moods, nil
}

// MoodOptions returns the scene presets in display order.
func MoodOptions() []models.MoodOption {
	out := make([]models.MoodOption, len(moodOptions))
	copy(out, moodOptions)
	return out
}

func DefaultMood() string {
	return moodOptions[0].Value
}
