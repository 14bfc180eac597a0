package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"roomviz/internal/config"
)

const (
	defaultOpenAIModel   = "gpt-image-1.5"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	// MaxReferenceImages caps the furniture photos attached to one edit.
	MaxReferenceImages = 4

	editSize    = "1536x1024"
	editQuality = "high"
)

// OpenAIConfig describes how to reach the OpenAI image edit endpoint.
type OpenAIConfig struct {
	APIKey     config.Secret
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Fetcher    ImageFetcher
}

// OpenAIEditor sends the room photo plus furniture reference photos to the
// image edit endpoint.
type OpenAIEditor struct {
	apiKey  config.Secret
	model   string
	baseURL string
	client  *http.Client
	fetcher ImageFetcher
}

// NewOpenAIEditor constructs the OpenAI adapter.
func NewOpenAIEditor(cfg OpenAIConfig) *OpenAIEditor {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil)
	}
	return &OpenAIEditor{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
		fetcher: fetcher,
	}
}

// Model returns the model name sent to OpenAI.
func (o *OpenAIEditor) Model() string {
	return o.model
}

type referenceImage struct {
	item FurnitureReference
	data []byte
	mime string
}

type editImage struct {
	name string
	data []byte
	mime string
}

// Generate implements Generator.
func (o *OpenAIEditor) Generate(ctx context.Context, req GenerationRequest) (Image, error) {
	apiKey := o.apiKey.Value()
	if apiKey == "" {
		return Image{}, configError("OpenAI API key not configured")
	}
	if req.RoomImage.Empty() {
		return Image{}, validationError("Room image is required")
	}

	log := zerolog.Ctx(ctx).With().Str("provider", string(ProviderOpenAI)).Str("model", o.model).Logger()

	room, err := o.roomImage(ctx, req.RoomImage)
	if err != nil {
		return Image{}, err
	}

	attached, unattached := o.fetchReferences(ctx, req.FurnitureItems)
	prompt := BuildEditPrompt(req.RoomType, req.DesignStyle, itemsOf(attached), unattached)

	images := make([]editImage, 0, len(attached)+1)
	images = append(images, room)
	for i, ref := range attached {
		images = append(images, editImage{
			name: fmt.Sprintf("furniture-%d%s", i+1, extensionFor(ref.mime)),
			data: ref.data,
			mime: ref.mime,
		})
	}

	body, contentType, err := o.encodeForm(prompt, images)
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("encode edit form: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/images/edits", body)
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("new request: %w", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	log.Info().Int("references", len(attached)).Int("described_only", len(unattached)).Msg("requesting image edit")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("perform request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		e := openAIStatusError(resp)
		log.Error().Int("status", e.Status).Str("code", e.Code).Msg(e.Message)
		return Image{}, e
	}

	var out struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Image{}, upstreamError("Failed to generate design", fmt.Errorf("decode response: %w", err))
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return Image{}, upstreamError("No image generated", nil)
	}

	data, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return Image{}, upstreamError("No image generated", fmt.Errorf("decode image: %w", err))
	}
	return Image{Data: data, MIME: "image/png", Model: o.model}, nil
}

func (o *OpenAIEditor) roomImage(ctx context.Context, room RoomImage) (editImage, error) {
	if strings.TrimSpace(room.Base64) != "" {
		data, mime, err := decodeImagePayload(room.Base64, room.MIMEType)
		if err != nil {
			return editImage{}, &Error{Kind: KindValidation, Message: "Room image could not be decoded", Err: err, Details: err.Error()}
		}
		return editImage{name: "room" + extensionFor(mime), data: data, mime: mime}, nil
	}

	if strings.HasPrefix(strings.TrimSpace(room.URL), "data:") {
		data, mime, err := decodeImagePayload(room.URL, room.MIMEType)
		if err != nil {
			return editImage{}, &Error{Kind: KindValidation, Message: "Room image could not be decoded", Err: err, Details: err.Error()}
		}
		return editImage{name: "room" + extensionFor(mime), data: data, mime: mime}, nil
	}

	data, mime, err := o.fetcher.Fetch(ctx, room.URL)
	if err != nil {
		return editImage{}, upstreamError("Failed to fetch room image", err)
	}
	return editImage{name: "room" + extensionFor(mime), data: data, mime: mime}, nil
}

// fetchReferences downloads at most MaxReferenceImages furniture photos in
// parallel. A failed download only drops that photo; the item is still named
// in the prompt.
func (o *OpenAIEditor) fetchReferences(ctx context.Context, items []FurnitureReference) ([]referenceImage, []FurnitureReference) {
	log := zerolog.Ctx(ctx)

	var candidates []int
	for i, item := range items {
		if len(candidates) == MaxReferenceImages {
			break
		}
		if item.ImageLocator() != "" {
			candidates = append(candidates, i)
		}
	}

	type slot struct {
		data []byte
		mime string
		err  error
	}
	slots := make([]slot, len(candidates))

	var g errgroup.Group
	g.SetLimit(MaxReferenceImages)
	for n, idx := range candidates {
		g.Go(func() error {
			data, mime, err := o.fetcher.Fetch(ctx, items[idx].ImageLocator())
			slots[n] = slot{data: data, mime: mime, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		failures *multierror.Error
		attached []referenceImage
		used     = make(map[int]bool, len(candidates))
	)
	for n, idx := range candidates {
		if err := slots[n].err; err != nil {
			failures = multierror.Append(failures, &Error{
				Kind:    KindFetch,
				Message: fmt.Sprintf("reference image for %q", items[idx].Name),
				Err:     err,
			})
			continue
		}
		used[idx] = true
		attached = append(attached, referenceImage{item: items[idx], data: slots[n].data, mime: slots[n].mime})
	}
	if err := failures.ErrorOrNil(); err != nil {
		log.Warn().Err(err).Int("skipped", failures.Len()).Msg("skipping furniture reference images")
	}

	var unattached []FurnitureReference
	for i, item := range items {
		if !used[i] {
			unattached = append(unattached, item)
		}
	}
	return attached, unattached
}

func (o *OpenAIEditor) encodeForm(prompt string, images []editImage) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"model", o.model},
		{"prompt", prompt},
		{"n", "1"},
		{"size", editSize},
		{"quality", editQuality},
	}
	for _, field := range fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}

	for _, img := range images {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image[]"; filename="%s"`, img.name))
		header.Set("Content-Type", img.mime)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func openAIStatusError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var failure struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &failure)

	message := strings.TrimSpace(failure.Error.Message)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &Error{
		Kind:       KindUpstream,
		Message:    "OpenAI API error: " + message,
		Status:     resp.StatusCode,
		Code:       failure.Error.Code,
		Details:    string(raw),
		Suggestion: suggestTryAnother,
	}
}

func itemsOf(refs []referenceImage) []FurnitureReference {
	items := make([]FurnitureReference, len(refs))
	for i, ref := range refs {
		items[i] = ref.item
	}
	return items
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
