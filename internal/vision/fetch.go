package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxImageBytes bounds every image read from a client payload or remote host.
const MaxImageBytes = 20 * 1024 * 1024

// ErrBlobURL is returned for browser-local object URLs.
var ErrBlobURL = errors.New("blob URLs cannot be fetched server-side, upload the image or send it as base64")

// ImageFetcher downloads reference images.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// HTTPFetcher implements ImageFetcher over plain HTTP GETs.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher. A nil client gets a 30 second timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{client: client}
}

// Fetch downloads url and returns its bytes and MIME type.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, "", errors.New("empty image URL")
	}
	if strings.HasPrefix(url, "blob:") {
		return nil, "", ErrBlobURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("failed to fetch image: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}

	return data, detectMime(data, resp.Header.Get("Content-Type")), nil
}

// decodeImagePayload accepts either a data URL or a bare base64 string.
func decodeImagePayload(raw, declaredMime string) ([]byte, string, error) {
	payload := strings.TrimSpace(raw)
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, "", errors.New("invalid data URL")
		}
		if declaredMime == "" {
			declaredMime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the padding.
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr != nil {
			return nil, "", fmt.Errorf("decode base64 image: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return data, detectMime(data, declaredMime), nil
}

func detectMime(data []byte, provided string) string {
	mime := strings.TrimSpace(provided)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}
