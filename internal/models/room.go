package models

import "time"

// Room status and type values used by the video platform.
const (
	RoomStatusInProgress = "in-progress"
	RoomStatusCompleted  = "completed"
	RoomStatusFailed     = "failed"

	RoomTypeGroup = "group"
)

// Room is a video room as reported by the platform.
type Room struct {
	Sid             string            `json:"sid"`
	UniqueName      string            `json:"unique_name"`
	Status          string            `json:"status"`
	Type            string            `json:"type,omitempty"`
	Duration        int               `json:"duration"`
	MaxParticipants int               `json:"max_participants,omitempty"`
	StatusCallback  string            `json:"status_callback,omitempty"`
	URL             string            `json:"url,omitempty"`
	Links           map[string]string `json:"links,omitempty"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	DateCreated     *time.Time        `json:"date_created,omitempty"`
	DateUpdated     *time.Time        `json:"date_updated,omitempty"`
}

// Completed reports whether the room reached its terminal state.
func (r Room) Completed() bool { return r.Status == RoomStatusCompleted }
