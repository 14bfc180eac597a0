package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"roomviz/internal/config"
)

const defaultGeminiModel = "gemini-3-pro-image-preview"

const geminiPartialNote = "Free tier may have limited image generation. Try OpenAI instead."

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig describes how to reach the Gemini image model.
type GeminiConfig struct {
	APIKey     config.Secret
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiGenerator renders rooms from a text prompt only; the room photo is
// not sent to the model.
type GeminiGenerator struct {
	apiKey  config.Secret
	model   string
	timeout time.Duration
	connect func(ctx context.Context, apiKey string) (contentGenerator, error)
}

// NewGeminiGenerator constructs the Gemini adapter.
func NewGeminiGenerator(cfg GeminiConfig) *GeminiGenerator {
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := cfg.HTTPClient
	baseURL := strings.TrimSpace(cfg.BaseURL)

	return &GeminiGenerator{
		apiKey:  cfg.APIKey,
		model:   model,
		timeout: timeout,
		connect: func(ctx context.Context, apiKey string) (contentGenerator, error) {
			clientCfg := &genai.ClientConfig{
				APIKey:     apiKey,
				Backend:    genai.BackendGeminiAPI,
				HTTPClient: httpClient,
			}
			if baseURL != "" {
				clientCfg.HTTPOptions.BaseURL = baseURL
			}
			client, err := genai.NewClient(ctx, clientCfg)
			if err != nil {
				return nil, err
			}
			return client.Models, nil
		},
	}
}

// Model returns the model name sent to Gemini.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerationRequest) (Image, error) {
	apiKey := g.apiKey.Value()
	if apiKey == "" {
		return Image{}, configError("Gemini API key not configured")
	}
	if req.RoomImage.Empty() {
		return Image{}, validationError("Room image is required")
	}

	log := zerolog.Ctx(ctx).With().Str("provider", string(ProviderGemini)).Str("model", g.model).Logger()

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	models, err := g.connect(childCtx, apiKey)
	if err != nil {
		return Image{}, upstreamError("Failed to generate design with Gemini", fmt.Errorf("create genai client: %w", err))
	}

	prompt := BuildPrompt(req.RoomType, req.DesignStyle, req.FurnitureNames())
	genCfg := &genai.GenerateContentConfig{}
	genCfg.ResponseModalities = append(genCfg.ResponseModalities, "TEXT", "IMAGE")

	log.Info().Int("furniture", len(req.FurnitureItems)).Msg("generating image")
	resp, err := models.GenerateContent(childCtx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		log.Error().Err(err).Msg("gemini generation failed")
		return Image{}, geminiError(err)
	}

	return g.extractImage(resp)
}

func (g *GeminiGenerator) extractImage(resp *genai.GenerateContentResponse) (Image, error) {
	var text []string
	if content := firstContent(resp); content != nil {
		for _, part := range content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := strings.TrimSpace(part.InlineData.MIMEType)
				if mime == "" {
					mime = "image/png"
				}
				return Image{Data: part.InlineData.Data, MIME: mime, Model: g.model}, nil
			}
			if part.FileData != nil && strings.TrimSpace(part.FileData.FileURI) != "" {
				return Image{
					URL:   strings.TrimSpace(part.FileData.FileURI),
					MIME:  strings.TrimSpace(part.FileData.MIMEType),
					Model: g.model,
				}, nil
			}
			if trimmed := strings.TrimSpace(part.Text); trimmed != "" {
				text = append(text, trimmed)
			}
		}
	}

	if len(text) == 0 {
		e := upstreamError("Gemini returned no image", nil)
		e.Suggestion = geminiPartialNote
		return Image{}, e
	}
	return Image{}, &Error{
		Kind:       KindPartial,
		Message:    "Gemini did not generate an image",
		Details:    strings.Join(text, "\n\n"),
		Suggestion: geminiPartialNote,
	}
}

// firstContent returns the content of the first candidate that has parts.
func firstContent(resp *genai.GenerateContentResponse) *genai.Content {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate != nil && candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			return candidate.Content
		}
	}
	return nil
}

func geminiError(err error) *Error {
	e := upstreamError("Failed to generate design with Gemini", err)
	e.Suggestion = "Free tier limits may apply. Try using OpenAI instead."

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		e.Status = apiErr.Code
		e.Code = apiErr.Status
		e.Details = apiErr.Message
	}
	return e
}
