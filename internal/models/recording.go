package models

import "time"

// RecordingStatus represents the platform recording lifecycle.
const (
	RecordingStatusProcessing = "processing"
	RecordingStatusCompleted  = "completed"
	RecordingStatusDeleted    = "deleted"
	RecordingStatusFailed     = "failed"
)

// Recording profile requested when recording is enabled on a room: audio only, mono AAC in MP4.
const (
	RecordingTypeAudio         = "audio"
	RecordingContainerMP4      = "mp4"
	RecordingAudioChannelsMono = "mono"
	RecordingCodecAAC          = "aac"
)

// GroupingSids ties a recording to the room (and participant) it was captured from.
type GroupingSids struct {
	RoomSid        string `json:"room_sid"`
	ParticipantSid string `json:"participant_sid,omitempty"`
}

// Recording is a captured media track (platform view; read-only here).
type Recording struct {
	Sid             string            `json:"sid"`
	RoomSid         string            `json:"room_sid,omitempty"`
	Status          string            `json:"status"`
	Type            string            `json:"type,omitempty"`
	Codec           string            `json:"codec,omitempty"`
	ContainerFormat string            `json:"container_format,omitempty"`
	AudioChannels   string            `json:"audio_channels,omitempty"`
	TrackName       string            `json:"track_name,omitempty"`
	Duration        int               `json:"duration"`
	Size            int64             `json:"size"`
	GroupingSids    GroupingSids      `json:"grouping_sids"`
	Links           map[string]string `json:"links,omitempty"`
	DateCreated     *time.Time        `json:"date_created,omitempty"`
}

// GroupingRoomSid returns the room the recording belongs to.
func (r Recording) GroupingRoomSid() string {
	if r.GroupingSids.RoomSid != "" {
		return r.GroupingSids.RoomSid
	}
	return r.RoomSid
}

// RecordingRule controls which tracks of a room are captured.
type RecordingRule struct {
	Type      string `json:"type"`
	All       bool   `json:"all,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Track     string `json:"track,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// RecordingRules is the rule set attached to a room.
type RecordingRules struct {
	RoomSid     string          `json:"room_sid"`
	Rules       []RecordingRule `json:"rules"`
	DateCreated *time.Time      `json:"date_created,omitempty"`
	DateUpdated *time.Time      `json:"date_updated,omitempty"`
}

// IncludeAllRules is the default policy: capture every participant and track.
func IncludeAllRules() []RecordingRule {
	return []RecordingRule{{Type: "include", All: true}}
}
