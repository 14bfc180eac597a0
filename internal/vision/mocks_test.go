package vision

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

type stubFetcher struct {
	calls atomic.Int32

	mu     sync.Mutex
	failOn map[string]bool
	seen   []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, url)
	fail := f.failOn[url]
	f.mu.Unlock()

	if fail {
		return nil, "", errors.New("failed to fetch image: 404")
	}
	if strings.HasSuffix(url, ".png") {
		return pngHeader, "image/png", nil
	}
	return []byte("\xff\xd8\xff\xe0jpeg"), "image/jpeg", nil
}

type stubGenerator struct {
	calls atomic.Int32
	img   Image
	err   error
	last  GenerationRequest
}

func (g *stubGenerator) Generate(_ context.Context, req GenerationRequest) (Image, error) {
	g.calls.Add(1)
	g.last = req
	return g.img, g.err
}
