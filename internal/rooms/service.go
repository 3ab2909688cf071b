// Package rooms keeps named rooms alive on the video platform and moves them to completed.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

const (
	// DefaultListLimit is the page size of GET /rooms when none is given.
	DefaultListLimit = 20
	// MaxListLimit caps GET /rooms.
	MaxListLimit = 100
)

var (
	ErrNameRequired = errors.New("room name required")
	ErrSidRequired  = errors.New("room sid required")
)

// RoomAPI is the part of the platform client the room manager uses.
type RoomAPI interface {
	ListRooms(ctx context.Context, params platform.ListRoomsParams) ([]models.Room, error)
	FetchRoom(ctx context.Context, sidOrName string) (*models.Room, error)
	CreateRoom(ctx context.Context, params platform.CreateRoomParams) (*models.Room, error)
	UpdateRoom(ctx context.Context, sid string, params platform.UpdateRoomParams) (*models.Room, error)
}

// Service manages room lifecycle.
type Service struct {
	api            RoomAPI
	statusCallback string
	logger         *zap.Logger
}

// NewService creates a room service. statusCallback may be empty.
func NewService(api RoomAPI, statusCallback string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, statusCallback: statusCallback, logger: logger}
}

// EnsureRoom returns the room with the given unique name, creating a group room
// when the platform reports it does not exist. Only not-found is recovered; every
// other fetch error is returned unchanged without a create.
//
// Two callers racing on a new name may both create; the platform decides which
// create wins.
func (s *Service) EnsureRoom(ctx context.Context, name string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	room, err := s.api.FetchRoom(ctx, name)
	if err == nil {
		return room, nil
	}
	if !platform.IsNotFound(err) {
		return nil, err
	}
	room, err = s.api.CreateRoom(ctx, platform.CreateRoomParams{
		UniqueName:     name,
		Type:           models.RoomTypeGroup,
		StatusCallback: s.statusCallback,
	})
	if err != nil {
		return nil, fmt.Errorf("create room %q: %w", name, err)
	}
	s.logger.Info("room created", zap.String("room_sid", room.Sid), zap.String("room_name", name))
	return room, nil
}

// CompleteRoom ends a room. Completing an already completed room is left to the platform.
func (s *Service) CompleteRoom(ctx context.Context, sid string) (*models.Room, error) {
	if strings.TrimSpace(sid) == "" {
		return nil, ErrSidRequired
	}
	room, err := s.api.UpdateRoom(ctx, sid, platform.UpdateRoomParams{Status: models.RoomStatusCompleted})
	if err != nil {
		return nil, err
	}
	s.logger.Info("room completed", zap.String("room_sid", room.Sid))
	return room, nil
}

// GetRoom fetches a room by sid or unique name.
func (s *Service) GetRoom(ctx context.Context, sidOrName string) (*models.Room, error) {
	if strings.TrimSpace(sidOrName) == "" {
		return nil, ErrSidRequired
	}
	return s.api.FetchRoom(ctx, sidOrName)
}

// ListRooms lists rooms, optionally by status. limit <= 0 uses DefaultListLimit.
func (s *Service) ListRooms(ctx context.Context, status string, limit int) ([]models.Room, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.api.ListRooms(ctx, platform.ListRoomsParams{Status: status, Limit: limit})
}
