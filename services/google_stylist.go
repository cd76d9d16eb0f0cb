package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"letrystudio/config"
	"letrystudio/models"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the stylist calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GoogleStylist backs every external capability with Gemini models.
type GoogleStylist struct {
	models          contentGenerator
	classifierModel string
	stylistModel    string
	imageModel      string
	log             zerolog.Logger
}

func NewGoogleStylist(ctx context.Context, cfg config.GoogleConfig, log zerolog.Logger) (*GoogleStylist, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGoogleStylist(client.Models, cfg, log), nil
}

func newGoogleStylist(gen contentGenerator, cfg config.GoogleConfig, log zerolog.Logger) *GoogleStylist {
	return &GoogleStylist{
		models:          gen,
		classifierModel: cfg.ClassifierModel,
		stylistModel:    cfg.StylistModel,
		imageModel:      cfg.ImageModel,
		log:             log,
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func imagePart(mimeType string, data []byte) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func logUsage(log zerolog.Logger, operation string, result *genai.GenerateContentResponse) {
	if result == nil || result.UsageMetadata == nil {
		return
	}
	log.Debug().
		Str("operation", operation).
		Int32("input_tokens", result.UsageMetadata.PromptTokenCount).
		Int32("output_tokens", result.UsageMetadata.CandidatesTokenCount).
		Int32("total_tokens", result.UsageMetadata.TotalTokenCount).
		Msg("[Gemini] usage")
}

// blockedReason reports prompt-level blocking and candidate safety blocks.
func blockedReason(result *genai.GenerateContentResponse) string {
	if result.PromptFeedback != nil && (result.PromptFeedback.BlockReason != "" || result.PromptFeedback.BlockReasonMessage != "") {
		if result.PromptFeedback.BlockReasonMessage != "" {
			return result.PromptFeedback.BlockReasonMessage
		}
		return string(result.PromptFeedback.BlockReason)
	}
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating != nil && rating.Blocked {
				return fmt.Sprintf("content blocked by safety setting: %s", rating.Category)
			}
		}
	}
	return ""
}

// GetAllInlineImages collects image parts of every candidate.
func GetAllInlineImages(result *genai.GenerateContentResponse) []models.RenderedImage {
	var images []models.RenderedImage
	for _, cand := range result.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if strings.HasPrefix(part.InlineData.MIMEType, "image/") && len(part.InlineData.Data) > 0 {
				images = append(images, models.RenderedImage{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data})
			}
		}
	}
	return images
}

// firstCandidateText is the concatenated non-thought text of the first candidate.
func firstCandidateText(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 || result.Candidates[0] == nil || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

func (gs *GoogleStylist) Classify(ctx context.Context, image models.ImageRef) (models.ClothingMetadata, error) {
	parts := []*genai.Part{
		imagePart(image.MIMEType, image.Payload),
		{Text: "Classify this clothing item."},
	}
	result, err := gs.models.GenerateContent(ctx, gs.classifierModel, []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, &genai.GenerateContentConfig{
		CandidateCount:   1,
		Temperature:      floatPointer(0.2),
		MaxOutputTokens:  1024,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: classifySystemPrompt}},
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {Type: genai.TypeString, Enum: enumValues(models.Categories)},
				"color":    {Type: genai.TypeString},
				"season":   {Type: genai.TypeString, Enum: enumValues(models.Seasons)},
				"style":    {Type: genai.TypeString, Enum: enumValues(models.Styles)},
			},
			Required: []string{"category", "color", "season", "style"},
		},
	})
	if err != nil {
		return models.ClothingMetadata{}, &models.CapabilityFailure{Operation: "classify clothing", Err: err}
	}
	logUsage(gs.log, "classify", result)
	if reason := blockedReason(result); reason != "" {
		return models.ClothingMetadata{}, &models.CapabilityFailure{Operation: "classify clothing", Reason: reason}
	}

	var metadata models.ClothingMetadata
	if err := json.Unmarshal([]byte(result.Text()), &metadata); err != nil {
		return models.ClothingMetadata{}, &models.CapabilityFailure{Operation: "classify clothing", Err: fmt.Errorf("decode metadata: %w", err)}
	}
	normalized, ok := metadata.Normalize()
	if !ok {
		return models.ClothingMetadata{}, &models.CapabilityFailure{
			Operation: "classify clothing",
			Reason:    fmt.Sprintf("unusable metadata %+v", metadata),
		}
	}
	return normalized, nil
}

func (gs *GoogleStylist) SelectOutfit(ctx context.Context, req models.OutfitSelectionRequest) (*models.OutfitSelection, error) {
	result, err := gs.models.GenerateContent(ctx, gs.stylistModel, []*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: selectionPrompt(req)}}}}, &genai.GenerateContentConfig{
		CandidateCount:   1,
		Temperature:      floatPointer(1),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"selection": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "An array of strings containing the exact names of the chosen clothing items.",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Your friendly, encouraging, and conversational explanation for why this outfit is perfect for the event.",
				},
				"affirmation": {
					Type:        genai.TypeString,
					Description: "One short upbeat sentence.",
				},
			},
			Required: []string{"selection", "reasoning"},
		},
	})
	if err != nil {
		return nil, &models.CapabilityFailure{Operation: "select an outfit", Err: err}
	}
	logUsage(gs.log, "select_outfit", result)
	if reason := blockedReason(result); reason != "" {
		return nil, &models.CapabilityFailure{Operation: "select an outfit", Reason: reason}
	}

	var selection models.OutfitSelection
	if err := json.Unmarshal([]byte(strings.TrimSpace(result.Text())), &selection); err != nil {
		return nil, &models.CapabilityFailure{Operation: "select an outfit", Err: fmt.Errorf("decode selection: %w", err)}
	}
	if len(selection.Selection) > models.MaxOutfitSelection {
		gs.log.Warn().Int("selected", len(selection.Selection)).Msg("[Stylist] selection over limit, truncating")
		selection.Selection = selection.Selection[:models.MaxOutfitSelection]
	}
	return &selection, nil
}

func (gs *GoogleStylist) RenderOutfit(ctx context.Context, req models.RenderRequest) ([]models.RenderedImage, error) {
	parts := []*genai.Part{imagePart(req.Avatar.MIMEType, req.Avatar.Payload)}
	for _, item := range req.Clothing {
		parts = append(parts, imagePart(item.MIMEType, item.Payload))
	}
	parts = append(parts, &genai.Part{Text: renderPrompt(req.Mood, req.Steering)})
	return gs.generateImages(ctx, "generate image", parts)
}

func (gs *GoogleStylist) RefineImage(ctx context.Context, base models.RenderedImage, instruction string) ([]models.RenderedImage, error) {
	parts := []*genai.Part{
		imagePart(base.MIMEType, base.Data),
		{Text: refinePrompt(instruction)},
	}
	return gs.generateImages(ctx, "refine image", parts)
}

func (gs *GoogleStylist) generateImages(ctx context.Context, operation string, parts []*genai.Part) ([]models.RenderedImage, error) {
	result, err := gs.models.GenerateContent(ctx, gs.imageModel, []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, &models.CapabilityFailure{Operation: operation, Err: err}
	}
	logUsage(gs.log, operation, result)

	if reason := blockedReason(result); reason != "" {
		return nil, &models.CapabilityFailure{Operation: operation, Reason: reason, Refused: true}
	}
	if len(result.Candidates) == 0 {
		return nil, &models.CapabilityFailure{
			Operation: operation,
			Reason:    "AI did not return a valid response. The request may have been blocked.",
		}
	}

	images := GetAllInlineImages(result)
	if len(images) == 0 {
		reason := firstCandidateText(result)
		if reason == "" {
			reason = "No reason provided."
		}
		return nil, &models.CapabilityFailure{Operation: operation, Reason: reason, Refused: true}
	}
	gs.log.Debug().Str("operation", operation).Int("images", len(images)).Msg("[Gemini] images extracted")
	return images, nil
}
