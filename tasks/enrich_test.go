package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"letrystudio/logger"
	"letrystudio/models"
	"letrystudio/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnrichClothingTask(t *testing.T) {
	item := models.ImageRef{ID: "item-1", Name: "red-shirt.png", MIMEType: "image/png", Payload: []byte{1, 2, 3}}

	task, err := NewEnrichClothingTask(item)
	require.NoError(t, err)
	assert.Equal(t, TypeEnrichClothing, task.Type())

	var payload EnrichClothingPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "item-1", payload.ItemID)
	assert.Equal(t, "red-shirt.png", payload.Name)
	assert.Equal(t, "image/png", payload.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, payload.Image)
}

func TestHandleEnrichClothingTask(t *testing.T) {
	classifier := test.NewClassifierMock()
	classifier.Results["red-shirt.png"] = models.ClothingMetadata{
		Category: models.CategoryTop, Color: "Red", Season: models.SeasonSummer, Style: models.StyleCasual,
	}

	task, err := NewEnrichClothingTask(models.ImageRef{ID: "item-1", Name: "red-shirt.png", MIMEType: "image/png"})
	require.NoError(t, err)

	// tasks built outside a server carry no result writer
	require.NoError(t, HandleEnrichClothingTask(context.Background(), task, classifier, logger.Discard()))
	assert.Equal(t, []string{"red-shirt.png"}, classifier.Calls())
}

func TestClassifyPayloadResult(t *testing.T) {
	classifier := test.NewClassifierMock()
	classifier.Results["boots.jpg"] = models.ClothingMetadata{
		Category: models.CategoryShoes, Color: "Brown", Season: models.SeasonWinter, Style: models.StyleCasual,
	}
	task, err := NewEnrichClothingTask(models.ImageRef{ID: "item-2", Name: "boots.jpg", MIMEType: "image/jpeg"})
	require.NoError(t, err)

	raw, err := classifyPayload(context.Background(), task.Payload(), classifier, logger.Discard())
	require.NoError(t, err)

	var metadata models.ClothingMetadata
	require.NoError(t, json.Unmarshal(raw, &metadata))
	assert.Equal(t, models.CategoryShoes, metadata.Category)
	assert.Equal(t, "Brown", metadata.Color)
}

func TestClassifyPayloadMalformedSkipsRetry(t *testing.T) {
	_, err := classifyPayload(context.Background(), []byte("{not json"), test.NewClassifierMock(), logger.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestClassifyPayloadClassifierErrorSkipsRetry(t *testing.T) {
	classifier := test.NewClassifierMock()
	classifier.Failures["coat.png"] = errors.New("model overloaded")
	task, err := NewEnrichClothingTask(models.ImageRef{ID: "item-3", Name: "coat.png"})
	require.NoError(t, err)

	_, err = classifyPayload(context.Background(), task.Payload(), classifier, logger.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, []string{"coat.png"}, classifier.Calls())
}

func TestHandleEnrichClothingTaskFailureIsNotRetried(t *testing.T) {
	classifier := test.NewClassifierMock()
	classifier.Failures["coat.png"] = errors.New("model overloaded")
	task, err := NewEnrichClothingTask(models.ImageRef{ID: "item-4", Name: "coat.png"})
	require.NoError(t, err)

	err = HandleEnrichClothingTask(context.Background(), task, classifier, logger.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
