package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomviz/internal/config"
)

func newDecor8Server(t *testing.T, calls *atomic.Int32, received *decor8Request, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/generate_designs_for_room", r.URL.Path)
		assert.Equal(t, "Bearer decor8-key", r.Header.Get("Authorization"))
		if received != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(received))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDecor8(baseURL, key string) *Decor8Generator {
	return NewDecor8Generator(Decor8Config{APIKey: config.StaticSecret(key), BaseURL: baseURL})
}

func decor8Sample() GenerationRequest {
	return GenerationRequest{
		RoomImage:      RoomImage{URL: "https://x/room.jpg"},
		FurnitureItems: []FurnitureReference{{URL: "https://x/sofa.jpg", Name: "Blue Sofa"}},
		RoomType:       RoomLivingRoom,
		DesignStyle:    StyleScandinavian,
		Provider:       ProviderDecor8,
	}
}

func TestDecor8Generate(t *testing.T) {
	var calls atomic.Int32
	var received decor8Request
	srv := newDecor8Server(t, &calls, &received, http.StatusOK, `{"generated_image_url":"https://x/out.png"}`)

	img, err := newTestDecor8(srv.URL, "decor8-key").Generate(context.Background(), decor8Sample())
	require.NoError(t, err)

	assert.Equal(t, "https://x/out.png", img.Reference())
	assert.Equal(t, "https://x/room.jpg", received.InputImageURL)
	assert.Equal(t, RoomLivingRoom, received.RoomType)
	assert.Equal(t, StyleScandinavian, received.DesignStyle)
	assert.Equal(t, 1, received.NumImages)
	assert.Equal(t, []decor8Item{{URL: "https://x/sofa.jpg", Name: "Blue Sofa"}}, received.DecorItems)
}

func TestDecor8Defaults(t *testing.T) {
	var calls atomic.Int32
	var received decor8Request
	srv := newDecor8Server(t, &calls, &received, http.StatusOK, `{"image_url":"https://x/out.png"}`)

	req := GenerationRequest{RoomImage: RoomImage{Base64: "aGVsbG8=", MIMEType: "image/png"}}
	_, err := newTestDecor8(srv.URL, "decor8-key").Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, RoomLivingRoom, received.RoomType)
	assert.Equal(t, StyleModern, received.DesignStyle)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", received.InputImageURL)
	assert.Empty(t, received.DecorItems)
}

func TestDecor8ExtractorOrder(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "generated_image_url_wins", body: `{"generated_image_url":"a","image_url":"b","images":[{"url":"c"}]}`, want: "a"},
		{name: "image_url", body: `{"image_url":"b","images":[{"url":"c"}]}`, want: "b"},
		{name: "images_array", body: `{"images":[{"url":"c"},{"url":"d"}]}`, want: "c"},
		{name: "blank_skipped", body: `{"generated_image_url":"  ","image_url":"b"}`, want: "b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := newDecor8Server(t, &calls, nil, http.StatusOK, tc.body)

			img, err := newTestDecor8(srv.URL, "decor8-key").Generate(context.Background(), decor8Sample())
			require.NoError(t, err)
			assert.Equal(t, tc.want, img.URL)
		})
	}
}

func TestDecor8NoImageURL(t *testing.T) {
	var calls atomic.Int32
	srv := newDecor8Server(t, &calls, nil, http.StatusOK, `{"status":"queued","images":[]}`)

	_, err := newTestDecor8(srv.URL, "decor8-key").Generate(context.Background(), decor8Sample())
	e := AsError(err)
	require.NotNil(t, e)
	assert.Equal(t, "No image URL in response", e.Message)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
}

func TestDecor8UpstreamStatus(t *testing.T) {
	var calls atomic.Int32
	srv := newDecor8Server(t, &calls, nil, http.StatusTooManyRequests, `{"detail":"rate limited"}`)

	_, err := newTestDecor8(srv.URL, "decor8-key").Generate(context.Background(), decor8Sample())
	e := AsError(err)
	require.NotNil(t, e)

	assert.Equal(t, KindUpstream, e.Kind)
	assert.Contains(t, e.Message, "429")
	assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatus())
	assert.Equal(t, `{"detail":"rate limited"}`, e.Details)
}

func TestDecor8Preconditions(t *testing.T) {
	var calls atomic.Int32
	srv := newDecor8Server(t, &calls, nil, http.StatusOK, `{"generated_image_url":"https://x/out.png"}`)

	_, err := newTestDecor8(srv.URL, "").Generate(context.Background(), decor8Sample())
	e := AsError(err)
	require.NotNil(t, e)
	assert.Equal(t, KindConfig, e.Kind)
	assert.Equal(t, "API key not configured", e.Message)

	req := decor8Sample()
	req.RoomImage = RoomImage{}
	_, err = newTestDecor8(srv.URL, "decor8-key").Generate(context.Background(), req)
	e = AsError(err)
	require.NotNil(t, e)
	assert.Equal(t, KindValidation, e.Kind)

	assert.Zero(t, calls.Load())
}
