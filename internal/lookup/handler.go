package lookup

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler exposes the product lookup stub.
type Handler struct {
	Provider Provider
}

type productResponse struct {
	Success bool    `json:"success"`
	Product Product `json:"product"`
	Note    string  `json:"note"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Scrape handles GET /api/scrape/ikea?articleNumber=...|url=...
func (h Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	query := r.URL.Query()
	product, err := h.Provider.Fetch(r.Context(), Query{
		ArticleNumber: query.Get("articleNumber"),
		URL:           query.Get("url"),
	})
	if err != nil {
		if errors.Is(err, ErrMissingQuery) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Article number or URL is required"})
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("product lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch product data", Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, productResponse{Success: true, Product: product, Note: MockNote})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
