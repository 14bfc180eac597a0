package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler bundles dependencies for catalog endpoints.
type Handler struct {
	Store Store
}

type listResponse struct {
	Success    bool     `json:"success"`
	Items      []Item   `json:"items"`
	Categories []string `json:"categories"`
}

type itemResponse struct {
	Success bool `json:"success"`
	Item    Item `json:"item"`
}

// List handles GET /api/catalog.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := h.Store.List(r.Context(), Filter{
		Category: query.Get("category"),
		Query:    query.Get("q"),
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list catalog")
		writeError(w, http.StatusInternalServerError, "Failed to load catalog")
		return
	}

	all, err := h.Store.List(r.Context(), Filter{})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list catalog categories")
		writeError(w, http.StatusInternalServerError, "Failed to load catalog")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Success: true, Items: items, Categories: Categories(all)})
}

// Get handles GET /api/catalog/{id}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("get catalog item")
		writeError(w, http.StatusInternalServerError, "Failed to load catalog")
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Success: true, Item: item})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
