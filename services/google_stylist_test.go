package services

import (
	"context"
	"errors"
	"testing"

	"letrystudio/config"
	"letrystudio/logger"
	"letrystudio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	response *genai.GenerateContentResponse
	err      error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.response, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
	}
}

func newTestStylist(gen *fakeGenerator) *GoogleStylist {
	return newGoogleStylist(gen, config.GoogleConfig{
		ClassifierModel: "classifier",
		StylistModel:    "stylist",
		ImageModel:      "image",
	}, logger.Discard())
}

var testAvatar = models.ImageRef{ID: "av1", Name: "me.png", MIMEType: "image/png", Payload: []byte("avatar")}

func TestClassifyParsesAndNormalizes(t *testing.T) {
	gen := &fakeGenerator{response: textResponse(`{"category":"top","color":" Navy ","season":"All Season","style":"Casual"}`)}
	gs := newTestStylist(gen)

	metadata, err := gs.Classify(context.Background(), models.ImageRef{Name: "shirt", MIMEType: "image/jpeg", Payload: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, models.ClothingMetadata{
		Category: models.CategoryTop,
		Color:    "Navy",
		Season:   models.SeasonAllSeason,
		Style:    models.StyleCasual,
	}, metadata)
	assert.Equal(t, "classifier", gen.model)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	assert.Contains(t, gen.config.ResponseSchema.Properties["category"].Enum, "Outerwear")
	assert.Equal(t, []byte("x"), gen.contents[0].Parts[0].InlineData.Data)
}

func TestClassifyRejectsUnusableOutput(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{response: textResponse(`{"category":"Hat","color":"Red","season":"Summer","style":"Casual"}`)})

	_, err := gs.Classify(context.Background(), models.ImageRef{MIMEType: "image/png"})
	require.Error(t, err)
	assert.True(t, models.IsCapabilityFailure(err))
}

func TestClassifyRejectsMalformedJSON(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{response: textResponse(`not json`)})

	_, err := gs.Classify(context.Background(), models.ImageRef{MIMEType: "image/png"})
	require.Error(t, err)
	assert.True(t, models.IsCapabilityFailure(err))
}

func TestSelectOutfitTruncatesToLimit(t *testing.T) {
	gen := &fakeGenerator{response: textResponse(`{"selection":["a","b","c","d","e"],"reasoning":"trust me","affirmation":"You look great"}`)}
	gs := newTestStylist(gen)

	selection, err := gs.SelectOutfit(context.Background(), models.OutfitSelectionRequest{
		Occasion:       "concert",
		CandidateNames: []string{"a", "b", "c", "d", "e"},
		StyleNotes:     "comfy",
		PreferredNames: []string{"a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, selection.Selection)
	assert.Equal(t, "trust me", selection.Reasoning)
	assert.Equal(t, "You look great", selection.Affirmation)

	prompt := gen.contents[0].Parts[0].Text
	assert.Contains(t, prompt, `"a", "b", "c", "d", "e"`)
	assert.Contains(t, prompt, `"concert"`)
	assert.Contains(t, prompt, "comfy")
	assert.Contains(t, prompt, "Must-Haves")
}

func TestSelectOutfitTransportError(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{err: errors.New("quota exceeded")})

	_, err := gs.SelectOutfit(context.Background(), models.OutfitSelectionRequest{Occasion: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRenderOutfitReturnsAllImages(t *testing.T) {
	gen := &fakeGenerator{response: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("one")}},
			{Text: "here you go"},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("two")}},
		}}}},
	}}
	gs := newTestStylist(gen)

	images, err := gs.RenderOutfit(context.Background(), models.RenderRequest{
		Avatar:   testAvatar,
		Clothing: []models.ImageRef{{MIMEType: "image/jpeg", Payload: []byte("shirt")}},
		Mood:     "a professional office setting",
		Steering: "make it bold",
	})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, []byte("one"), images[0].Data)
	assert.Equal(t, []byte("two"), images[1].Data)

	parts := gen.contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, []byte("avatar"), parts[0].InlineData.Data)
	assert.Equal(t, []byte("shirt"), parts[1].InlineData.Data)
	assert.Contains(t, parts[2].Text, "a professional office setting")
	assert.Contains(t, parts[2].Text, "make it bold")
	assert.Equal(t, []string{"IMAGE", "TEXT"}, gen.config.ResponseModalities)
	assert.Equal(t, "image", gen.model)
}

func TestRenderOutfitRefusal(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{response: textResponse("I can't help with that.")})

	_, err := gs.RenderOutfit(context.Background(), models.RenderRequest{Avatar: testAvatar})
	require.Error(t, err)
	var failure *models.CapabilityFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.Refused)
	assert.Equal(t, "AI did not return an image. It might have refused the request. Reason: I can't help with that.", err.Error())
}

func TestRenderOutfitRefusalWithoutText(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{response: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	}})

	_, err := gs.RenderOutfit(context.Background(), models.RenderRequest{Avatar: testAvatar})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No reason provided.")
}

func TestRenderOutfitBlockedPrompt(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{response: &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"},
	}})

	_, err := gs.RenderOutfit(context.Background(), models.RenderRequest{Avatar: testAvatar})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestRefineImageSendsSingleFrame(t *testing.T) {
	gen := &fakeGenerator{response: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("refined")}},
		}}}},
	}}
	gs := newTestStylist(gen)

	images, err := gs.RefineImage(context.Background(), models.RenderedImage{MIMEType: "image/png", Data: []byte("base")}, "add sunglasses")
	require.NoError(t, err)
	require.Len(t, images, 1)

	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, []byte("base"), parts[0].InlineData.Data)
	assert.Contains(t, parts[1].Text, `"add sunglasses"`)
}

func TestRefineImageTransportError(t *testing.T) {
	gs := newTestStylist(&fakeGenerator{err: errors.New("deadline exceeded")})

	_, err := gs.RefineImage(context.Background(), models.RenderedImage{}, "x")
	require.Error(t, err)
	assert.Equal(t, "Failed to refine image. Details: deadline exceeded", err.Error())
}
