package recordings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/internal/platform"
	"github.com/roomcast/orchestrator/pkg/response"
)

// StartRequest is the body for POST /start-recording. roomName carries the room sid.
type StartRequest struct {
	RoomName string `json:"roomName"`
	RoomSid  string `json:"room_sid"`
}

// Handler handles recording HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a recordings handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// StartForRoom handles POST /rooms/:sid/recording.
func (h *Handler) StartForRoom(c *gin.Context) {
	h.start(c, c.Param("sid"))
}

// Start handles POST /start-recording {roomName}.
func (h *Handler) Start(c *gin.Context) {
	var req StartRequest
	_ = c.ShouldBindJSON(&req)
	sid := req.RoomSid
	if sid == "" {
		sid = req.RoomName
	}
	if sid == "" {
		response.BadRequest(c, "Must include roomName argument.")
		return
	}
	h.start(c, sid)
}

func (h *Handler) start(c *gin.Context, roomSid string) {
	res := h.svc.EnableRecording(c.Request.Context(), roomSid)
	switch {
	case errors.Is(res.Err, ErrRoomSidRequired):
		response.BadRequest(c, res.Err.Error())
	case res.Err == nil:
		response.OK(c, res)
	case res.Started():
		// one of the two steps went through; report it alongside the failure
		response.ErrorWithData(c, http.StatusMultiStatus, "recording partially started", res)
	default:
		response.ErrorWithData(c, http.StatusBadGateway, "recording could not start", res)
	}
}

// List handles GET /recordings.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list recordings failed", zap.Error(err))
		response.Error(c, platform.HTTPStatus(err), "failed to list recordings")
		return
	}
	response.OK(c, gin.H{"count": len(list), "recordings": list})
}

// ListByRoom handles GET /rooms/:sid/recordings.
func (h *Handler) ListByRoom(c *gin.Context) {
	list, err := h.svc.ListByRoom(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to list room recordings")
		return
	}
	response.OK(c, gin.H{"count": len(list), "recordings": list})
}

// Get handles GET /recordings/:sid.
func (h *Handler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to fetch recording")
		return
	}
	response.OK(c, rec)
}

// Delete handles DELETE /recordings/:sid.
func (h *Handler) Delete(c *gin.Context) {
	sid := c.Param("sid")
	if err := h.svc.Delete(c.Request.Context(), sid); err != nil {
		h.fail(c, err, "failed to delete recording")
		return
	}
	response.OK(c, gin.H{"sid": sid, "deleted": true})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrRoomSidRequired), errors.Is(err, ErrSidRequired):
		response.BadRequest(c, err.Error())
	case platform.IsNotFound(err):
		response.NotFound(c, "recording not found")
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("sid", c.Param("sid")))
		response.Error(c, platform.HTTPStatus(err), msg)
	}
}
