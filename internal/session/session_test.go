package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomviz/internal/catalog"
	"roomviz/internal/vision"
)

var (
	sofa = catalog.Item{ID: "ikea-1", Name: "KIVIK Sofa", Description: "three-seat", ImageURL: "https://x/sofa.jpg"}
	lamp = catalog.Item{ID: "ikea-2", Name: "HEKTAR Floor lamp", ImageURL: "https://x/lamp.jpg"}
	room = vision.RoomImage{Base64: "aGVsbG8=", MIMEType: "image/jpeg"}
)

func TestNewDefaults(t *testing.T) {
	s := New()
	assert.Equal(t, vision.RoomLivingRoom, s.RoomType)
	assert.Equal(t, vision.StyleModern, s.DesignStyle)
	assert.Equal(t, vision.ProviderOpenAI, s.Provider)
	assert.Equal(t, StatusIdle, s.Status)
	assert.False(t, s.Ready())
	assert.False(t, s.Loading())
}

func TestItemSelection(t *testing.T) {
	initial := New()
	s := initial.AddItem(sofa).AddItem(lamp).AddItem(sofa)

	require.Len(t, s.SelectedItems, 2)
	assert.True(t, s.IsSelected("ikea-1"))
	assert.Empty(t, initial.SelectedItems)

	removed := s.RemoveItem("ikea-1")
	assert.False(t, removed.IsSelected("ikea-1"))
	assert.True(t, removed.IsSelected("ikea-2"))
	assert.Len(t, s.SelectedItems, 2)

	cleared := s.ClearItems()
	assert.Empty(t, cleared.SelectedItems)
	assert.Len(t, s.SelectedItems, 2)
}

func TestAddItemDoesNotShareBacking(t *testing.T) {
	base := New().AddItem(sofa)
	a := base.AddItem(lamp)
	b := base.AddItem(catalog.Item{ID: "ikea-3", Name: "Rug"})

	assert.Equal(t, "ikea-2", a.SelectedItems[1].ID)
	assert.Equal(t, "ikea-3", b.SelectedItems[1].ID)
}

func TestOptionsSetters(t *testing.T) {
	s := New().
		SetRoomType(vision.RoomOffice).
		SetDesignStyle(vision.StyleIndustrial).
		SetProvider(vision.ProviderDecor8)

	assert.Equal(t, vision.RoomOffice, s.RoomType)
	assert.Equal(t, vision.StyleIndustrial, s.DesignStyle)
	assert.Equal(t, vision.ProviderDecor8, s.Provider)
}

func TestSetRoomImage(t *testing.T) {
	s := New().SetRoomImage("room-1", room, "living.jpg")
	require.NotNil(t, s.Room)
	assert.Equal(t, "room-1", s.Room.ID)
	assert.Equal(t, "living.jpg", s.Room.Source)

	assert.Nil(t, s.SetRoomImage("room-2", vision.RoomImage{}, "").Room)
}

func TestBeginGenerationRequiresRoomAndItems(t *testing.T) {
	cases := []struct {
		name  string
		state State
	}{
		{name: "empty", state: New()},
		{name: "no_items", state: New().SetRoomImage("room-1", room, "room.jpg")},
		{name: "no_room", state: New().AddItem(sofa)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := tc.state.BeginGeneration()
			assert.ErrorIs(t, err, ErrNotReady)
			assert.Equal(t, StatusError, next.Status)
			assert.Equal(t, NotReadyMessage, next.Error)
		})
	}

	ready := New().SetRoomImage("room-1", room, "room.jpg").AddItem(sofa)
	next, err := ready.BeginGeneration()
	require.NoError(t, err)
	assert.Equal(t, StatusGenerating, next.Status)
	assert.True(t, next.Loading())
	assert.Equal(t, StatusIdle, ready.Status)
}

func TestRequest(t *testing.T) {
	s := New().
		SetRoomImage("room-1", room, "room.jpg").
		AddItem(sofa).
		AddItem(lamp).
		SetDesignStyle(vision.StyleScandinavian).
		SetProvider(vision.ProviderGemini)

	req := s.Request()
	assert.Equal(t, room, req.RoomImage)
	assert.Equal(t, vision.StyleScandinavian, req.DesignStyle)
	assert.Equal(t, vision.ProviderGemini, req.Provider)
	require.Len(t, req.FurnitureItems, 2)
	assert.Equal(t, vision.FurnitureReference{
		URL:         "https://x/sofa.jpg",
		ImageURL:    "https://x/sofa.jpg",
		Name:        "KIVIK Sofa",
		Description: "three-seat",
	}, req.FurnitureItems[0])
}

func TestApplyResponseSuccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := New().SetRoomImage("room-1", room, "room.jpg").AddItem(sofa).SetProvider(vision.ProviderDecor8).BeginGeneration()
	require.NoError(t, err)

	done := s.ApplyResponse(vision.Response{Success: true, ImageURL: "https://x/out.png", Provider: vision.ProviderDecor8}, "viz-1", now)

	assert.Equal(t, StatusComplete, done.Status)
	assert.Empty(t, done.Error)
	require.NotNil(t, done.Result)
	assert.Equal(t, "viz-1", done.Result.ID)
	assert.Equal(t, "https://x/out.png", done.Result.GeneratedImageURL)
	assert.Equal(t, "room.jpg", done.Result.OriginalRoomURL)
	assert.Equal(t, vision.ProviderDecor8, done.Result.Provider)
	assert.Equal(t, now, done.Result.CreatedAt)
	assert.Equal(t, []catalog.Item{sofa}, done.Result.FurnitureItems)
	assert.Nil(t, s.Result)

	reset := done.Reset()
	assert.Equal(t, StatusIdle, reset.Status)
	assert.Nil(t, reset.Result)
	assert.True(t, reset.Ready())
}

func TestApplyResponseFailure(t *testing.T) {
	s, err := New().SetRoomImage("room-1", room, "room.jpg").AddItem(sofa).BeginGeneration()
	require.NoError(t, err)

	failed := s.ApplyResponse(vision.Response{Success: false, Error: "API error: 500"}, "viz-1", time.Now())
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, "API error: 500", failed.Error)
	assert.Nil(t, failed.Result)
	assert.False(t, failed.Loading())

	blank := s.ApplyResponse(vision.Response{Success: true}, "viz-2", time.Now())
	assert.Equal(t, StatusError, blank.Status)
	assert.Equal(t, "Failed to generate design", blank.Error)
}

func TestBeginUpload(t *testing.T) {
	s := New().BeginUpload()
	assert.Equal(t, StatusUploading, s.Status)
	assert.True(t, s.Loading())
}

func TestTransitionsAreDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	resp := vision.Response{Success: true, ImageURL: "https://x/out.png", Provider: vision.ProviderOpenAI}

	run := func() State {
		s, err := New().SetRoomImage("room-1", room, "room.jpg").AddItem(sofa).AddItem(lamp).BeginGeneration()
		require.NoError(t, err)
		return s.ApplyResponse(resp, "viz-1", now)
	}

	assert.Equal(t, run(), run())
}
