package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"letrystudio/models"
	"letrystudio/services"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const TypeEnrichClothing = "enrich:classify_clothing"

type EnrichClothingPayload struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Image    []byte `json:"image"`
}

func NewEnrichClothingTask(item models.ImageRef) (*asynq.Task, error) {
	payload, err := json.Marshal(EnrichClothingPayload{
		ItemID:   item.ID,
		Name:     item.Name,
		MIMEType: item.MIMEType,
		Image:    item.Payload,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEnrichClothing, payload), nil
}

// HandleEnrichClothingTask classifies the image carried by the task and
// stores the metadata as the task result. The worker keeps no state.
func HandleEnrichClothingTask(ctx context.Context, t *asynq.Task, classifier services.Classifier, log zerolog.Logger) error {
	result, err := classifyPayload(ctx, t.Payload(), classifier, log)
	if err != nil {
		return err
	}
	if w := t.ResultWriter(); w != nil {
		if _, err := w.Write(result); err != nil {
			return fmt.Errorf("write enrichment result: %w", err)
		}
	}
	return nil
}

func classifyPayload(ctx context.Context, raw []byte, classifier services.Classifier, log zerolog.Logger) ([]byte, error) {
	var payload EnrichClothingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode enrichment payload: %v: %w", err, asynq.SkipRetry)
	}
	log.Info().Str("item_id", payload.ItemID).Str("name", payload.Name).Msg("[Enrich] classifying")

	metadata, err := classifier.Classify(ctx, models.ImageRef{
		ID:       payload.ItemID,
		Name:     payload.Name,
		MIMEType: payload.MIMEType,
		Payload:  payload.Image,
	})
	if err != nil {
		log.Warn().Err(err).Str("item_id", payload.ItemID).Msg("[Enrich] classification failed")
		services.ReportError(err, map[string]string{"component": "worker", "item_id": payload.ItemID})
		// a failed item resolves to default metadata, it is never classified twice
		return nil, fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return json.Marshal(metadata)
}
