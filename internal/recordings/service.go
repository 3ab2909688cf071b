// Package recordings turns on server-side capture for rooms and manages recording artifacts.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

var ErrRoomSidRequired = errors.New("room sid required")

// ErrSidRequired is returned when a recording sid is missing.
var ErrSidRequired = errors.New("recording sid required")

// RecordingAPI is the part of the platform client the recording controller uses.
type RecordingAPI interface {
	UpdateRecordingRules(ctx context.Context, roomSid string, rules []models.RecordingRule) (*models.RecordingRules, error)
	CreateRecording(ctx context.Context, roomSid string, params platform.CreateRecordingParams) (*models.Recording, error)
	ListRecordings(ctx context.Context, params platform.ListRecordingsParams) ([]models.Recording, error)
	FetchRecording(ctx context.Context, sid string) (*models.Recording, error)
	DeleteRecording(ctx context.Context, sid string) error
}

// DefaultProfile is the artifact requested when recording starts.
var DefaultProfile = platform.CreateRecordingParams{
	Type:            models.RecordingTypeAudio,
	ContainerFormat: models.RecordingContainerMP4,
	AudioChannels:   models.RecordingAudioChannelsMono,
	Codec:           models.RecordingCodecAAC,
}

// StartResult is the outcome of enabling recording. Both steps are always attempted;
// Err joins whatever failed.
type StartResult struct {
	RoomSid      string                 `json:"room_sid"`
	RulesApplied bool                   `json:"rules_applied"`
	Rules        []models.RecordingRule `json:"rules,omitempty"`
	Recording    *models.Recording      `json:"recording,omitempty"`
	RulesError   string                 `json:"rules_error,omitempty"`
	CreateError  string                 `json:"recording_error,omitempty"`
	Err          error                  `json:"-"`
}

// Started reports whether at least one step succeeded.
func (r StartResult) Started() bool {
	return r.RulesApplied || r.Recording != nil
}

// Service controls recording on rooms.
type Service struct {
	api    RecordingAPI
	logger *zap.Logger
}

// NewService creates a recording service.
func NewService(api RecordingAPI, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger}
}

// EnableRecording sets the room's rules to include everything, then requests a
// recording artifact with DefaultProfile. The second step runs even if the first
// failed. Failures are reported in the result, never panicked or dropped.
func (s *Service) EnableRecording(ctx context.Context, roomSid string) StartResult {
	res := StartResult{RoomSid: roomSid}
	if strings.TrimSpace(roomSid) == "" {
		res.Err = ErrRoomSidRequired
		return res
	}

	var rulesErr, createErr error
	rules, err := s.api.UpdateRecordingRules(ctx, roomSid, models.IncludeAllRules())
	if err != nil {
		rulesErr = fmt.Errorf("update recording rules: %w", err)
		res.RulesError = err.Error()
		s.logger.Warn("update recording rules failed", zap.Error(err), zap.String("room_sid", roomSid))
	} else {
		res.RulesApplied = true
		res.Rules = rules.Rules
	}

	rec, err := s.api.CreateRecording(ctx, roomSid, DefaultProfile)
	if err != nil {
		createErr = fmt.Errorf("create recording: %w", err)
		res.CreateError = err.Error()
		s.logger.Warn("create recording failed", zap.Error(err), zap.String("room_sid", roomSid))
	} else {
		res.Recording = rec
		s.logger.Info("recording requested", zap.String("room_sid", roomSid), zap.String("recording_sid", rec.Sid))
	}

	res.Err = errors.Join(rulesErr, createErr)
	return res
}

// List returns every recording.
func (s *Service) List(ctx context.Context) ([]models.Recording, error) {
	return s.api.ListRecordings(ctx, platform.ListRecordingsParams{})
}

// ListByRoom returns the recordings grouped under a room.
func (s *Service) ListByRoom(ctx context.Context, roomSid string) ([]models.Recording, error) {
	if strings.TrimSpace(roomSid) == "" {
		return nil, ErrRoomSidRequired
	}
	return s.api.ListRecordings(ctx, platform.ListRecordingsParams{GroupingSid: []string{roomSid}})
}

// Get fetches one recording.
func (s *Service) Get(ctx context.Context, sid string) (*models.Recording, error) {
	if strings.TrimSpace(sid) == "" {
		return nil, ErrSidRequired
	}
	return s.api.FetchRecording(ctx, sid)
}

// Delete removes a recording.
func (s *Service) Delete(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrSidRequired
	}
	if err := s.api.DeleteRecording(ctx, sid); err != nil {
		return err
	}
	s.logger.Info("recording deleted", zap.String("recording_sid", sid))
	return nil
}
