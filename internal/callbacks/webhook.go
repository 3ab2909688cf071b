package callbacks

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/pkg/response"
)

// Event is the subset of status callback fields relayed to subscribers.
type Event struct {
	StatusCallbackEvent string `form:"StatusCallbackEvent" json:"StatusCallbackEvent"`
	RoomSid             string `form:"RoomSid" json:"RoomSid,omitempty"`
	RoomName            string `form:"RoomName" json:"RoomName,omitempty"`
	RoomStatus          string `form:"RoomStatus" json:"RoomStatus,omitempty"`
	ParticipantIdentity string `form:"ParticipantIdentity" json:"ParticipantIdentity,omitempty"`
	RecordingSid        string `form:"RecordingSid" json:"RecordingSid,omitempty"`
	CompositionSid      string `form:"CompositionSid" json:"CompositionSid,omitempty"`
	Timestamp           string `form:"Timestamp" json:"Timestamp,omitempty"`
}

// Publisher fans events out to room subscribers.
type Publisher interface {
	Publish(roomSid, event string, payload interface{})
}

// WebhookHandler acknowledges platform status callbacks.
type WebhookHandler struct {
	pub    Publisher
	logger *zap.Logger
}

// NewWebhookHandler creates a callback handler. pub may be nil.
func NewWebhookHandler(pub Publisher, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{pub: pub, logger: logger}
}

// StatusCallback handles POST /callbacks.
func (h *WebhookHandler) StatusCallback(c *gin.Context) {
	var ev Event
	if err := c.ShouldBind(&ev); err != nil {
		response.BadRequest(c, "invalid callback: "+err.Error())
		return
	}
	if ev.StatusCallbackEvent == "" {
		response.BadRequest(c, "StatusCallbackEvent required")
		return
	}

	h.logger.Info("status callback",
		zap.String("event", ev.StatusCallbackEvent),
		zap.String("room_sid", ev.RoomSid),
		zap.String("room_name", ev.RoomName),
		zap.String("recording_sid", ev.RecordingSid),
		zap.String("composition_sid", ev.CompositionSid),
	)
	if h.pub != nil && ev.RoomSid != "" {
		h.pub.Publish(ev.RoomSid, ev.StatusCallbackEvent, ev)
	}
	response.OK(c, gin.H{"event": ev.StatusCallbackEvent})
}
