package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roomviz/internal/catalog"
	"roomviz/internal/lookup"
	"roomviz/internal/vision"
)

var providerEndpoints = map[vision.Provider]string{
	vision.ProviderOpenAI: "/api/generate/openai",
	vision.ProviderGemini: "/api/generate/gemini",
	vision.ProviderDecor8: "/api/generate/room",
}

// maxReplyBytes fits a reply carrying an inline image at MaxImageBytes twice,
// once in imageUrl and once in generated_image_url.
const maxReplyBytes = 2*(vision.MaxImageBytes*4/3) + 1<<20

// DefaultProvider is used when a request names no provider.
const DefaultProvider = vision.ProviderOpenAI

// Client calls the generation service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL. A nil httpClient gets a timeout long enough
// for the slowest provider.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 200 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type generateBody struct {
	RoomImageURL      string                      `json:"roomImageUrl,omitempty"`
	RoomImageBase64   string                      `json:"roomImageBase64,omitempty"`
	RoomImageMimeType string                      `json:"roomImageMimeType,omitempty"`
	FurnitureItems    []vision.FurnitureReference `json:"furnitureItems"`
	RoomType          vision.RoomType             `json:"roomType"`
	DesignStyle       vision.DesignStyle          `json:"designStyle"`
}

type generateReply struct {
	Success           bool   `json:"success"`
	ImageURL          string `json:"imageUrl"`
	GeneratedImageURL string `json:"generated_image_url"`
	Error             string `json:"error"`
	Suggestion        string `json:"suggestion"`
	Note              string `json:"note"`
}

// Generate sends req to the provider's endpoint. Every outcome, including
// transport failures, comes back as a vision.Response.
func (c *Client) Generate(ctx context.Context, req vision.GenerationRequest) vision.Response {
	provider := vision.ParseProvider(string(req.Provider))
	if provider == "" {
		provider = DefaultProvider
	}
	fail := func(message string) vision.Response {
		return vision.Response{Success: false, Error: message, Provider: provider}
	}

	path, ok := providerEndpoints[provider]
	if !ok {
		return fail(fmt.Sprintf("Unknown provider %q", provider))
	}
	if req.RoomImage.Empty() {
		return fail("Room image is required")
	}

	items := req.FurnitureItems
	if items == nil {
		items = []vision.FurnitureReference{}
	}
	payload, err := json.Marshal(generateBody{
		RoomImageURL:      req.RoomImage.URL,
		RoomImageBase64:   req.RoomImage.Base64,
		RoomImageMimeType: req.RoomImage.MIMEType,
		FurnitureItems:    items,
		RoomType:          req.RoomType,
		DesignStyle:       req.DesignStyle,
	})
	if err != nil {
		return fail(err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fail(err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fail(err.Error())
	}
	defer resp.Body.Close()

	var reply generateReply
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(&reply)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && reply.Error != "" {
			out := fail(reply.Error)
			out.Suggestion = reply.Suggestion
			return out
		}
		return fail(fmt.Sprintf("API error: %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return fail(fmt.Sprintf("decode response: %v", decodeErr))
	}

	imageURL := reply.GeneratedImageURL
	if imageURL == "" {
		imageURL = reply.ImageURL
	}
	if imageURL != "" {
		return vision.Response{Success: true, ImageURL: imageURL, Provider: provider}
	}

	message := reply.Error
	if message == "" {
		message = "No image URL in response"
	}
	out := fail(message)
	out.Suggestion = reply.Note
	return out
}

// Catalog lists catalog items, optionally restricted to category.
func (c *Client) Catalog(ctx context.Context, category string) ([]catalog.Item, error) {
	target := "/api/catalog"
	if category != "" {
		target += "?" + url.Values{"category": {category}}.Encode()
	}
	var out struct {
		Items []catalog.Item `json:"items"`
	}
	if err := c.getJSON(ctx, target, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Item fetches a single catalog item.
func (c *Client) Item(ctx context.Context, id string) (catalog.Item, error) {
	var out struct {
		Item catalog.Item `json:"item"`
	}
	if err := c.getJSON(ctx, "/api/catalog/"+url.PathEscape(id), &out); err != nil {
		return catalog.Item{}, err
	}
	return out.Item, nil
}

// Lookup resolves a product by article number or product page URL.
func (c *Client) Lookup(ctx context.Context, articleNumber, productURL string) (lookup.Product, error) {
	params := url.Values{}
	if articleNumber != "" {
		params.Set("articleNumber", articleNumber)
	}
	if productURL != "" {
		params.Set("url", productURL)
	}
	var out struct {
		Product lookup.Product `json:"product"`
	}
	if err := c.getJSON(ctx, "/api/scrape/ikea?"+params.Encode(), &out); err != nil {
		return lookup.Product{}, err
	}
	return out.Product, nil
}

func (c *Client) getJSON(ctx context.Context, target string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error != "" {
			return fmt.Errorf("%s: %d", failure.Error, resp.StatusCode)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
