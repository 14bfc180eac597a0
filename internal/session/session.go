// Package session models the visualization workflow on the client side: the
// uploaded room, the selected furniture, the generation options and the
// outcome of the last generation. Every transition is a method returning a new
// State; the receiver is never modified. Ids and timestamps are supplied by
// the caller, so the same inputs always produce the same state.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/samber/lo"

	"roomviz/internal/catalog"
	"roomviz/internal/vision"
)

// ErrNotReady is returned when a generation starts without a room photo or
// without furniture.
var ErrNotReady = errors.New("room photo and furniture selection required")

// NotReadyMessage is the user-facing text for ErrNotReady.
const NotReadyMessage = "Please upload a room photo and select furniture"

// Status is the generation lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusGenerating Status = "generating"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Room is the uploaded room photo.
type Room struct {
	ID     string           `json:"id"`
	Source string           `json:"source"`
	Image  vision.RoomImage `json:"image"`
}

// Visualization is a completed generation.
type Visualization struct {
	ID                string             `json:"id"`
	OriginalRoomURL   string             `json:"originalRoomUrl"`
	GeneratedImageURL string             `json:"generatedImageUrl"`
	FurnitureItems    []catalog.Item     `json:"furnitureItems"`
	RoomType          vision.RoomType    `json:"roomType"`
	DesignStyle       vision.DesignStyle `json:"designStyle"`
	Provider          vision.Provider    `json:"provider"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// State is the whole client-side session.
type State struct {
	Room          *Room              `json:"room,omitempty"`
	RoomType      vision.RoomType    `json:"roomType"`
	DesignStyle   vision.DesignStyle `json:"designStyle"`
	Provider      vision.Provider    `json:"provider"`
	SelectedItems []catalog.Item     `json:"selectedItems"`
	Status        Status             `json:"status"`
	Result        *Visualization     `json:"result,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// New returns the initial state.
func New() State {
	return State{
		RoomType:      vision.RoomLivingRoom,
		DesignStyle:   vision.StyleModern,
		Provider:      vision.ProviderOpenAI,
		SelectedItems: []catalog.Item{},
		Status:        StatusIdle,
	}
}

// AddItem selects item unless an item with the same id is already selected.
func (s State) AddItem(item catalog.Item) State {
	if s.IsSelected(item.ID) {
		return s
	}
	s.SelectedItems = append(slices.Clip(s.SelectedItems), item)
	return s
}

// RemoveItem deselects the item with id.
func (s State) RemoveItem(id string) State {
	s.SelectedItems = lo.Reject(s.SelectedItems, func(item catalog.Item, _ int) bool {
		return item.ID == id
	})
	return s
}

// ClearItems deselects everything.
func (s State) ClearItems() State {
	s.SelectedItems = []catalog.Item{}
	return s
}

// IsSelected reports whether an item with id is selected.
func (s State) IsSelected(id string) bool {
	return lo.ContainsBy(s.SelectedItems, func(item catalog.Item) bool {
		return item.ID == id
	})
}

// SetRoomImage records the room photo under id. source is what the user
// picked, a file path or a URL.
func (s State) SetRoomImage(id string, img vision.RoomImage, source string) State {
	if img.Empty() {
		s.Room = nil
		return s
	}
	s.Room = &Room{ID: id, Source: source, Image: img}
	return s
}

// SetRoomType selects the room type.
func (s State) SetRoomType(t vision.RoomType) State {
	s.RoomType = t
	return s
}

// SetDesignStyle selects the design style.
func (s State) SetDesignStyle(style vision.DesignStyle) State {
	s.DesignStyle = style
	return s
}

// SetProvider selects the provider.
func (s State) SetProvider(p vision.Provider) State {
	s.Provider = p
	return s
}

// Ready reports whether a generation may start.
func (s State) Ready() bool {
	return s.Room != nil && len(s.SelectedItems) > 0
}

// Loading reports whether work is in flight.
func (s State) Loading() bool {
	return s.Status == StatusUploading || s.Status == StatusGenerating
}

// BeginUpload marks the room photo as being prepared for transmission.
func (s State) BeginUpload() State {
	s.Status = StatusUploading
	s.Error = ""
	return s
}

// BeginGeneration moves to generating. When the session is not Ready the
// returned state carries ErrNotReady as its error.
func (s State) BeginGeneration() (State, error) {
	if !s.Ready() {
		s.Status = StatusError
		s.Error = NotReadyMessage
		return s, ErrNotReady
	}
	s.Status = StatusGenerating
	s.Error = ""
	return s, nil
}

// Request builds the generation request for the current selections.
func (s State) Request() vision.GenerationRequest {
	req := vision.GenerationRequest{
		FurnitureItems: lo.Map(s.SelectedItems, func(item catalog.Item, _ int) vision.FurnitureReference {
			return vision.FurnitureReference{
				URL:         item.ImageURL,
				ImageURL:    item.ImageURL,
				Name:        item.Name,
				Description: item.Description,
			}
		}),
		RoomType:    s.RoomType,
		DesignStyle: s.DesignStyle,
		Provider:    s.Provider,
	}
	if s.Room != nil {
		req.RoomImage = s.Room.Image
	}
	return req
}

// ApplyResponse records the outcome of a generation. A successful outcome is
// stored as a Visualization with the given id and creation time.
func (s State) ApplyResponse(resp vision.Response, id string, now time.Time) State {
	if !resp.Success || resp.ImageURL == "" {
		s.Status = StatusError
		s.Error = resp.Error
		if s.Error == "" {
			s.Error = "Failed to generate design"
		}
		return s
	}

	original := ""
	if s.Room != nil {
		original = s.Room.Image.URL
		if original == "" {
			original = s.Room.Source
		}
	}
	provider := resp.Provider
	if provider == "" {
		provider = s.Provider
	}

	s.Result = &Visualization{
		ID:                id,
		OriginalRoomURL:   original,
		GeneratedImageURL: resp.ImageURL,
		FurnitureItems:    slices.Clone(s.SelectedItems),
		RoomType:          s.RoomType,
		DesignStyle:       s.DesignStyle,
		Provider:          provider,
		CreatedAt:         now.UTC(),
	}
	s.Status = StatusComplete
	s.Error = ""
	return s
}

// Reset clears the generation outcome, keeping the selections.
func (s State) Reset() State {
	s.Status = StatusIdle
	s.Result = nil
	s.Error = ""
	return s
}
