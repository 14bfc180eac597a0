package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// RoomType identifies the kind of room in the uploaded photo.
type RoomType string

const (
	RoomLivingRoom RoomType = "livingroom"
	RoomBedroom    RoomType = "bedroom"
	RoomDiningRoom RoomType = "diningroom"
	RoomOffice     RoomType = "office"
	RoomKitchen    RoomType = "kitchen"
)

// RoomTypes lists the supported room types in display order.
var RoomTypes = []RoomType{RoomLivingRoom, RoomBedroom, RoomDiningRoom, RoomOffice, RoomKitchen}

var roomTypeLabels = map[RoomType]string{
	RoomLivingRoom: "Living Room",
	RoomBedroom:    "Bedroom",
	RoomDiningRoom: "Dining Room",
	RoomOffice:     "Office",
	RoomKitchen:    "Kitchen",
}

// Label returns the display name, or the raw code for unknown values.
func (r RoomType) Label() string {
	if label, ok := roomTypeLabels[r]; ok {
		return label
	}
	return string(r)
}

// Valid reports whether r is one of RoomTypes.
func (r RoomType) Valid() bool {
	_, ok := roomTypeLabels[r]
	return ok
}

// DesignStyle identifies the interior style applied to the render.
type DesignStyle string

const (
	StyleModern       DesignStyle = "modern"
	StyleMinimalist   DesignStyle = "minimalist"
	StyleScandinavian DesignStyle = "scandinavian"
	StyleIndustrial   DesignStyle = "industrial"
	StyleTraditional  DesignStyle = "traditional"
	StyleBohemian     DesignStyle = "bohemian"
)

// DesignStyles lists the supported styles in display order.
var DesignStyles = []DesignStyle{StyleModern, StyleMinimalist, StyleScandinavian, StyleIndustrial, StyleTraditional, StyleBohemian}

var designStyleLabels = map[DesignStyle]string{
	StyleModern:       "Modern",
	StyleMinimalist:   "Minimalist",
	StyleScandinavian: "Scandinavian",
	StyleIndustrial:   "Industrial",
	StyleTraditional:  "Traditional",
	StyleBohemian:     "Bohemian",
}

// Label returns the display name, or the raw code for unknown values.
func (s DesignStyle) Label() string {
	if label, ok := designStyleLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is one of DesignStyles.
func (s DesignStyle) Valid() bool {
	_, ok := designStyleLabels[s]
	return ok
}

// Provider names an image generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderDecor8 Provider = "decor8"
)

// Providers lists every provider the gateway knows about.
var Providers = []Provider{ProviderOpenAI, ProviderGemini, ProviderDecor8}

// ProviderInfo is the user-facing description of a provider.
type ProviderInfo struct {
	Name        string `json:"name"`
	Cost        string `json:"cost"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended,omitempty"`
}

var providerInfo = map[Provider]ProviderInfo{
	ProviderOpenAI: {
		Name:        "OpenAI GPT Image 1.5",
		Cost:        "~$0.07/image",
		Description: "Recommended - best quality and reliability",
		Recommended: true,
	},
	ProviderGemini: {
		Name:        "Nano Banana Pro (Gemini)",
		Cost:        "~$0.15/image",
		Description: "Requires paid Gemini plan (not free tier)",
	},
	ProviderDecor8: {
		Name:        "Decor8 AI",
		Cost:        "~$0.20/image",
		Description: "Purpose-built for furniture visualization",
	},
}

// Info returns the display metadata for p.
func (p Provider) Info() (ProviderInfo, bool) {
	info, ok := providerInfo[p]
	return info, ok
}

// ParseProvider normalizes free-form input. The empty string is returned
// unchanged so callers can apply their own default.
func ParseProvider(raw string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(raw)))
}

// RoomImage references the user's room photo either by URL or inline payload.
type RoomImage struct {
	URL      string `json:"roomImageUrl,omitempty"`
	Base64   string `json:"roomImageBase64,omitempty"`
	MIMEType string `json:"roomImageMimeType,omitempty"`
}

// Empty reports whether neither a URL nor a payload was supplied.
func (r RoomImage) Empty() bool {
	return strings.TrimSpace(r.URL) == "" && strings.TrimSpace(r.Base64) == ""
}

// Locator returns something a remote provider can dereference: the URL when
// present, otherwise the payload as a data URL.
func (r RoomImage) Locator() string {
	if url := strings.TrimSpace(r.URL); url != "" {
		return url
	}
	payload := strings.TrimSpace(r.Base64)
	if payload == "" || strings.HasPrefix(payload, "data:") {
		return payload
	}
	mime := strings.TrimSpace(r.MIMEType)
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, payload)
}

// FurnitureReference is a selected furniture item as sent by the client. The
// generation endpoints historically disagree on the image key, so both "url"
// and "imageUrl" are accepted.
type FurnitureReference struct {
	URL         string `json:"url,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ImageLocator returns the reference image URL.
func (f FurnitureReference) ImageLocator() string {
	if url := strings.TrimSpace(f.ImageURL); url != "" {
		return url
	}
	return strings.TrimSpace(f.URL)
}

// GenerationRequest is the normalized input every provider adapter accepts.
type GenerationRequest struct {
	RoomImage
	FurnitureItems []FurnitureReference `json:"furnitureItems"`
	RoomType       RoomType             `json:"roomType"`
	DesignStyle    DesignStyle          `json:"designStyle"`
	Provider       Provider             `json:"provider,omitempty"`
}

// FurnitureNames returns the non-empty item names in order.
func (r GenerationRequest) FurnitureNames() []string {
	names := make([]string, 0, len(r.FurnitureItems))
	for _, item := range r.FurnitureItems {
		if name := strings.TrimSpace(item.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Image is a generated picture, either hosted remotely or returned inline.
type Image struct {
	URL   string
	Data  []byte
	MIME  string
	Model string
}

// Reference renders the image as a URL the browser can display directly.
func (i Image) Reference() string {
	if i.URL != "" {
		return i.URL
	}
	if len(i.Data) == 0 {
		return ""
	}
	mime := i.MIME
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(i.Data))
}

// Generator is implemented by every provider adapter. Returned errors are
// always *Error values.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (Image, error)
}

// Result is the outcome of a dispatched request. Exactly one of Image and Err
// is set.
type Result struct {
	Provider Provider
	Image    *Image
	Err      *Error
}

// OK reports whether the result carries an image.
func (r Result) OK() bool {
	return r.Image != nil && r.Err == nil
}

// Response is the provider-independent JSON contract returned to the UI.
type Response struct {
	Success    bool     `json:"success"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Error      string   `json:"error,omitempty"`
	Provider   Provider `json:"provider"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Response normalizes the result for transport.
func (r Result) Response() Response {
	if r.OK() {
		return Response{
			Success:  true,
			ImageURL: r.Image.Reference(),
			Provider: r.Provider,
		}
	}
	resp := Response{Provider: r.Provider, Error: "Failed to generate design"}
	if r.Err != nil {
		resp.Error = r.Err.Message
		resp.Suggestion = r.Err.Suggestion
	}
	return resp
}
