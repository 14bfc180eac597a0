package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"roomviz/internal/config"
)

const defaultDecor8BaseURL = "https://api.decor8.ai"

// Decor8Config describes how to reach the Decor8 room design API.
type Decor8Config struct {
	APIKey     config.Secret
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Decor8Generator forwards the room and furniture URLs to Decor8, which
// fetches the images itself.
type Decor8Generator struct {
	apiKey  config.Secret
	baseURL string
	client  *http.Client
}

// NewDecor8Generator constructs the Decor8 adapter.
func NewDecor8Generator(cfg Decor8Config) *Decor8Generator {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultDecor8BaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Decor8Generator{apiKey: cfg.APIKey, baseURL: baseURL, client: client}
}

type decor8Item struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type decor8Request struct {
	InputImageURL string       `json:"input_image_url"`
	RoomType      RoomType     `json:"room_type"`
	DesignStyle   DesignStyle  `json:"design_style"`
	NumImages     int          `json:"num_images"`
	DecorItems    []decor8Item `json:"decor_items"`
}

type decor8Response struct {
	GeneratedImageURL string `json:"generated_image_url"`
	ImageURL          string `json:"image_url"`
	Images            []struct {
		URL string `json:"url"`
	} `json:"images"`
}

type imageURLExtractor struct {
	name string
	fn   func(decor8Response) string
}

// Decor8 has shipped each of these shapes; the first non-empty one wins.
var decor8Extractors = []imageURLExtractor{
	{name: "generated_image_url", fn: func(r decor8Response) string { return r.GeneratedImageURL }},
	{name: "image_url", fn: func(r decor8Response) string { return r.ImageURL }},
	{name: "images[0].url", fn: func(r decor8Response) string {
		if len(r.Images) == 0 {
			return ""
		}
		return r.Images[0].URL
	}},
}

// Generate implements Generator.
func (d *Decor8Generator) Generate(ctx context.Context, req GenerationRequest) (Image, error) {
	apiKey := d.apiKey.Value()
	if apiKey == "" {
		return Image{}, configError("API key not configured")
	}
	if req.RoomImage.Empty() {
		return Image{}, validationError("Room image is required")
	}

	log := zerolog.Ctx(ctx).With().Str("provider", string(ProviderDecor8)).Logger()

	payload := decor8Request{
		InputImageURL: req.RoomImage.Locator(),
		RoomType:      req.RoomType,
		DesignStyle:   req.DesignStyle,
		NumImages:     1,
		DecorItems: lo.Map(req.FurnitureItems, func(item FurnitureReference, _ int) decor8Item {
			return decor8Item{URL: item.ImageLocator(), Name: item.Name}
		}),
	}
	if payload.RoomType == "" {
		payload.RoomType = RoomLivingRoom
	}
	if payload.DesignStyle == "" {
		payload.DesignStyle = StyleModern
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/generate_designs_for_room", bytes.NewReader(body))
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("new request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	log.Info().Int("furniture", len(payload.DecorItems)).Msg("requesting room design")
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("perform request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Msg("decor8 request failed")
		return Image{}, &Error{
			Kind:       KindUpstream,
			Message:    fmt.Sprintf("Decor8 API error: %d", resp.StatusCode),
			Status:     resp.StatusCode,
			Details:    string(raw),
			Suggestion: suggestTryAnother,
		}
	}

	var out decor8Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("decode response: %w", err))
	}
	for _, extract := range decor8Extractors {
		if url := strings.TrimSpace(extract.fn(out)); url != "" {
			log.Debug().Str("field", extract.name).Msg("decor8 image located")
			return Image{URL: url}, nil
		}
	}

	e := upstreamError("No image URL in response", nil)
	e.Details = string(raw)
	return Image{}, e
}
