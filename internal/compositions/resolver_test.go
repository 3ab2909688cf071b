package compositions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

func TestResolveMediaLocation_TwoHop(t *testing.T) {
	cp := composition("CJ1", "RM1", models.CompositionStatusCompleted)
	api := &fakeAPI{
		compositions: []models.Composition{cp},
		redirects:    map[string]string{cp.MediaLink(): "https://signed.example/x"},
	}

	got, err := NewService(api, "", nil).ResolveMediaLocation(context.Background(), "CJ1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/x", got)
	assert.NotEqual(t, cp.MediaLink(), got)
	assert.Equal(t, []string{cp.MediaLink()}, api.redirectFetches)
}

func TestResolveMediaLocation_Errors(t *testing.T) {
	noLink := models.Composition{Sid: "CJ2", RoomSid: "RM1", Status: models.CompositionStatusProcessing}
	cp := composition("CJ1", "RM1", models.CompositionStatusCompleted)

	t.Run("missing sid", func(t *testing.T) {
		api := &fakeAPI{}
		_, err := NewService(api, "", nil).ResolveMediaLocation(context.Background(), "")
		require.ErrorIs(t, err, ErrSidRequired)
		assert.Empty(t, api.redirectFetches)
	})
	t.Run("composition not found is a platform error", func(t *testing.T) {
		_, err := NewService(&fakeAPI{}, "", nil).ResolveMediaLocation(context.Background(), "CJ404")
		require.True(t, platform.IsNotFound(err))
		assert.False(t, errors.Is(err, ErrMediaFetch))
	})
	t.Run("no media link", func(t *testing.T) {
		_, err := NewService(&fakeAPI{compositions: []models.Composition{noLink}}, "", nil).ResolveMediaLocation(context.Background(), "CJ2")
		require.ErrorIs(t, err, ErrNoMediaLink)
	})
	t.Run("second hop fails", func(t *testing.T) {
		denied := &platform.APIError{Status: 403, Code: 20403, Message: "Forbidden"}
		api := &fakeAPI{compositions: []models.Composition{cp}, redirectErr: denied}
		_, err := NewService(api, "", nil).ResolveMediaLocation(context.Background(), "CJ1")
		require.ErrorIs(t, err, ErrMediaFetch)
		assert.True(t, errors.Is(err, denied))
	})
	t.Run("invalid target", func(t *testing.T) {
		api := &fakeAPI{compositions: []models.Composition{cp}, redirects: map[string]string{cp.MediaLink(): "/relative"}}
		_, err := NewService(api, "", nil).ResolveMediaLocation(context.Background(), "CJ1")
		require.ErrorIs(t, err, ErrMediaFetch)
	})
}
