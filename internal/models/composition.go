package models

import "time"

// Composition status values.
const (
	CompositionStatusEnqueued   = "enqueued"
	CompositionStatusProcessing = "processing"
	CompositionStatusCompleted  = "completed"
	CompositionStatusDeleted    = "deleted"
	CompositionStatusFailed     = "failed"
)

// CompositionLinkMedia is the links key of the (indirect) media resource.
const CompositionLinkMedia = "media"

// Composition is a merged media artifact rendered from one room's recordings.
type Composition struct {
	Sid           string            `json:"sid"`
	RoomSid       string            `json:"room_sid"`
	Status        string            `json:"status"`
	Format        string            `json:"format,omitempty"`
	Resolution    string            `json:"resolution,omitempty"`
	Duration      int               `json:"duration"`
	Size          int64             `json:"size"`
	Bitrate       int               `json:"bitrate,omitempty"`
	AudioSources  []string          `json:"audio_sources,omitempty"`
	VideoSources  []string          `json:"video_sources,omitempty"`
	URL           string            `json:"url,omitempty"`
	Links         map[string]string `json:"links,omitempty"`
	DateCreated   *time.Time        `json:"date_created,omitempty"`
	DateCompleted *time.Time        `json:"date_completed,omitempty"`
}

// MediaLink returns the platform link that resolves to the composition's media.
func (c Composition) MediaLink() string {
	return c.Links[CompositionLinkMedia]
}
