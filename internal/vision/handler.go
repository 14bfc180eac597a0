package vision

import (
	"encoding/json"
	"net/http"
)

// maxRequestBytes leaves room for a base64 room photo at MaxImageBytes.
const maxRequestBytes = MaxImageBytes*4/3 + 1<<20

// Handler exposes the generation endpoints.
type Handler struct {
	Gateway *Gateway
}

type providerSuccess struct {
	Success           bool     `json:"success"`
	ImageURL          string   `json:"imageUrl"`
	GeneratedImageURL string   `json:"generated_image_url"`
	Provider          Provider `json:"provider,omitempty"`
	Model             string   `json:"model,omitempty"`
}

type providerFailure struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type partialFailure struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	TextResponse string `json:"textResponse"`
	Model        string `json:"model,omitempty"`
	Note         string `json:"note"`
}

// PostOnly accepts POST, acknowledges OPTIONS with an empty 200 and rejects
// every other method with 405.
func PostOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			next(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			writeJSON(w, MethodNotAllowed.HTTPStatus(), providerFailure{Error: MethodNotAllowed.Message})
		}
	}
}

// Gemini handles POST /api/generate/gemini.
func (h Handler) Gemini(w http.ResponseWriter, r *http.Request) {
	h.serveProvider(w, r, ProviderGemini, true)
}

// OpenAI handles POST /api/generate/openai.
func (h Handler) OpenAI(w http.ResponseWriter, r *http.Request) {
	h.serveProvider(w, r, ProviderOpenAI, true)
}

// Room handles POST /api/generate/room, served by Decor8.
func (h Handler) Room(w http.ResponseWriter, r *http.Request) {
	h.serveProvider(w, r, ProviderDecor8, false)
}

// Generate handles POST /api/generate and returns the provider-independent
// response.
func (h Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeJSON(w, err.HTTPStatus(), Result{Provider: req.Provider, Err: err}.Response())
		return
	}

	result := h.Gateway.Dispatch(r.Context(), req)
	status := http.StatusOK
	if result.Err != nil {
		status = result.Err.HTTPStatus()
	}
	writeJSON(w, status, result.Response())
}

func (h Handler) serveProvider(w http.ResponseWriter, r *http.Request, provider Provider, labelled bool) {
	adapter, ok := h.Gateway.Adapter(provider)
	if !ok {
		e := configError("Provider not configured")
		writeJSON(w, e.HTTPStatus(), providerFailure{Error: e.Message})
		return
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		writeJSON(w, err.HTTPStatus(), providerFailure{Error: err.Message, Details: err.Details})
		return
	}
	req.Provider = provider

	img, genErr := adapter.Generate(r.Context(), req)
	if genErr != nil {
		e := AsError(genErr)
		if e.Kind == KindPartial {
			writeJSON(w, e.HTTPStatus(), partialFailure{
				Error:        e.Message,
				TextResponse: e.Details,
				Model:        modelOf(adapter),
				Note:         e.Suggestion,
			})
			return
		}
		writeJSON(w, e.HTTPStatus(), providerFailure{
			Error:      e.Message,
			Details:    e.Details,
			Code:       e.Code,
			Suggestion: e.Suggestion,
		})
		return
	}

	body := providerSuccess{
		Success:           true,
		ImageURL:          img.Reference(),
		GeneratedImageURL: img.Reference(),
	}
	if labelled {
		body.Provider = provider
		body.Model = img.Model
	}
	writeJSON(w, http.StatusOK, body)
}

func modelOf(g Generator) string {
	if m, ok := g.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (GenerationRequest, *Error) {
	var req GenerationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, &Error{Kind: KindValidation, Message: "Invalid request body", Details: err.Error(), Err: err}
	}
	req.Provider = ParseProvider(string(req.Provider))
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
