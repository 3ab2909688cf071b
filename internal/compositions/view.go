package compositions

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

// ViewRoomLimit is the fixed window of completed rooms considered by the view.
const ViewRoomLimit = 10

// ErrViewUnavailable wraps any list failure while building the view.
var ErrViewUnavailable = errors.New("room view unavailable")

// BuildVideoRoomView joins the most recent completed rooms that have at least one
// recording with their completed compositions. The three collections are listed
// concurrently; one failed list fails the whole view.
func (s *Service) BuildVideoRoomView(ctx context.Context) ([]models.VideoRoom, error) {
	var (
		rooms        []models.Room
		recordings   []models.Recording
		compositions []models.Composition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.api.ListRooms(gctx, platform.ListRoomsParams{
			Status: models.RoomStatusCompleted,
			Limit:  ViewRoomLimit,
		})
		if err != nil {
			return fmt.Errorf("list rooms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recordings, err = s.api.ListRecordings(gctx, platform.ListRecordingsParams{})
		if err != nil {
			return fmt.Errorf("list recordings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		compositions, err = s.api.ListCompositions(gctx, platform.ListCompositionsParams{
			Status: models.CompositionStatusCompleted,
		})
		if err != nil {
			return fmt.Errorf("list compositions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("build room view failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrViewUnavailable, err)
	}

	view := JoinVideoRooms(rooms, recordings, compositions)
	s.logger.Debug("room view built",
		zap.Int("rooms", len(rooms)),
		zap.Int("recordings", len(recordings)),
		zap.Int("compositions", len(compositions)),
		zap.Int("video_rooms", len(view)),
	)
	return view, nil
}

// JoinVideoRooms keeps completed rooms (at most ViewRoomLimit, in the given order)
// that some recording groups under, and attaches each room's completed compositions
// in composition order. A room without compositions gets an empty, non-nil slice.
func JoinVideoRooms(rooms []models.Room, recordings []models.Recording, compositions []models.Composition) []models.VideoRoom {
	recorded := make(map[string]struct{}, len(recordings))
	for _, rec := range recordings {
		if sid := rec.GroupingRoomSid(); sid != "" {
			recorded[sid] = struct{}{}
		}
	}

	byRoom := make(map[string][]models.Composition)
	for _, cp := range compositions {
		if cp.Status != models.CompositionStatusCompleted {
			continue
		}
		byRoom[cp.RoomSid] = append(byRoom[cp.RoomSid], cp)
	}

	if len(rooms) > ViewRoomLimit {
		rooms = rooms[:ViewRoomLimit]
	}
	view := make([]models.VideoRoom, 0, len(rooms))
	for _, room := range rooms {
		if !room.Completed() {
			continue
		}
		if _, ok := recorded[room.Sid]; !ok {
			continue
		}
		comps := byRoom[room.Sid]
		if comps == nil {
			comps = []models.Composition{}
		}
		view = append(view, models.VideoRoom{
			Sid:          room.Sid,
			Name:         room.UniqueName,
			Duration:     room.Duration,
			Compositions: comps,
		})
	}
	return view
}
