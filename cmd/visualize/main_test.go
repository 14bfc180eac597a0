package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomviz/internal/client"
	"roomviz/internal/session"
)

func newFakeService(t *testing.T) *httptest.Server {
	t.Helper()
	color.NoColor = true

	mux := http.NewServeMux()
	mux.HandleFunc("/api/catalog", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"items":[{"id":"ikea-1","name":"KIVIK Sofa","category":"Sofas","price":899,"currency":"USD"}]}`))
	})
	mux.HandleFunc("/api/catalog/ikea-1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"item":{"id":"ikea-1","name":"KIVIK Sofa","imageUrl":"https://x/sofa.jpg"}}`))
	})
	mux.HandleFunc("/api/generate/room", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://x/room.jpg", body["roomImageUrl"])
		_, _ = w.Write([]byte(`{"success":true,"imageUrl":"https://x/out.png"}`))
	})
	mux.HandleFunc("/api/generate/gemini", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Gemini API key not configured","suggestion":"Try a different provider."}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunGeneratesVisualization(t *testing.T) {
	srv := newFakeService(t)
	var out bytes.Buffer

	err := run(context.Background(), client.New(srv.URL, srv.Client()), options{
		room:        "https://x/room.jpg",
		items:       "ikea-1",
		roomType:    "bedroom",
		designStyle: "minimalist",
		provider:    "decor8",
	}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Generating with decor8: 1 item(s), Bedroom, Minimalist")
	assert.Contains(t, out.String(), "https://x/out.png")
}

func TestRunReportsProviderFailure(t *testing.T) {
	srv := newFakeService(t)
	var out bytes.Buffer

	err := run(context.Background(), client.New(srv.URL, srv.Client()), options{
		room:     "https://x/room.jpg",
		items:    "ikea-1",
		provider: "gemini",
	}, &out)

	assert.EqualError(t, err, "Gemini API key not configured")
	assert.Contains(t, out.String(), "Try a different provider.")
}

func TestRunRequiresRoomAndItems(t *testing.T) {
	srv := newFakeService(t)

	err := run(context.Background(), client.New(srv.URL, srv.Client()), options{items: "ikea-1"}, &bytes.Buffer{})
	assert.EqualError(t, err, session.NotReadyMessage)
}

func TestRunListsCatalog(t *testing.T) {
	srv := newFakeService(t)
	var out bytes.Buffer

	err := run(context.Background(), client.New(srv.URL, srv.Client()), options{listOnly: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "KIVIK Sofa")
	assert.Contains(t, out.String(), "899.00 USD")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Empty(t, splitList(""))
}
