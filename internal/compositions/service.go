// Package compositions builds the room/composition view, creates and removes
// compositions, and resolves composition media into temporary download URLs.
package compositions

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

// DefaultFormat is the container of created compositions.
const DefaultFormat = "mp4"

var (
	ErrSidRequired     = errors.New("composition sid required")
	ErrRoomSidRequired = errors.New("room sid required")
)

// API is the part of the platform client this package uses.
type API interface {
	ListRooms(ctx context.Context, params platform.ListRoomsParams) ([]models.Room, error)
	ListRecordings(ctx context.Context, params platform.ListRecordingsParams) ([]models.Recording, error)
	ListCompositions(ctx context.Context, params platform.ListCompositionsParams) ([]models.Composition, error)
	FetchComposition(ctx context.Context, sid string) (*models.Composition, error)
	CreateComposition(ctx context.Context, params platform.CreateCompositionParams) (*models.Composition, error)
	DeleteComposition(ctx context.Context, sid string) error
	FetchRedirect(ctx context.Context, link string) (string, error)
}

// Service manages compositions.
type Service struct {
	api            API
	statusCallback string
	logger         *zap.Logger
}

// NewService creates a compositions service. statusCallback receives composition events; may be empty.
func NewService(api API, statusCallback string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, statusCallback: statusCallback, logger: logger}
}

// DefaultVideoLayout places every video source on a grid.
func DefaultVideoLayout() map[string]interface{} {
	return map[string]interface{}{
		"grid": map[string]interface{}{
			"video_sources": []string{"*"},
		},
	}
}

// Create starts a grid composition of all audio and video of a room.
// Whether the room has anything to compose is left to the platform.
func (s *Service) Create(ctx context.Context, roomSid string) (*models.Composition, error) {
	if strings.TrimSpace(roomSid) == "" {
		return nil, ErrRoomSidRequired
	}
	cp, err := s.api.CreateComposition(ctx, platform.CreateCompositionParams{
		RoomSid:        roomSid,
		AudioSources:   []string{"*"},
		VideoLayout:    DefaultVideoLayout(),
		StatusCallback: s.statusCallback,
		Format:         DefaultFormat,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("composition created",
		zap.String("composition_sid", cp.Sid),
		zap.String("room_sid", roomSid),
	)
	return cp, nil
}

// List returns compositions, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]models.Composition, error) {
	return s.api.ListCompositions(ctx, platform.ListCompositionsParams{Status: status})
}

// Get fetches one composition.
func (s *Service) Get(ctx context.Context, sid string) (*models.Composition, error) {
	if strings.TrimSpace(sid) == "" {
		return nil, ErrSidRequired
	}
	return s.api.FetchComposition(ctx, sid)
}

// Delete removes a composition.
func (s *Service) Delete(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrSidRequired
	}
	if err := s.api.DeleteComposition(ctx, sid); err != nil {
		return err
	}
	s.logger.Info("composition deleted", zap.String("composition_sid", sid))
	return nil
}
