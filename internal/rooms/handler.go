package rooms

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/internal/platform"
	"github.com/roomcast/orchestrator/internal/token"
	"github.com/roomcast/orchestrator/pkg/response"
)

// TokenIssuer issues participant access tokens.
type TokenIssuer interface {
	Issue(room string) (*token.Grant, error)
}

// JoinRequest is the body for POST /join-room.
type JoinRequest struct {
	RoomName string `json:"roomName"`
}

// JoinResponse is returned by POST /join-room.
type JoinResponse struct {
	*token.Grant
	RoomReady bool   `json:"room_ready"`
	RoomSid   string `json:"room_sid,omitempty"`
}

// Handler handles room HTTP endpoints.
type Handler struct {
	svc    *Service
	tokens TokenIssuer
	logger *zap.Logger
}

// NewHandler creates a rooms handler.
func NewHandler(svc *Service, tokens TokenIssuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// Join handles POST /join-room. The room is ensured before the token is issued;
// a failure to ensure it is reported as room_ready=false and the token is still issued.
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Must include roomName argument.")
		return
	}
	// The ensured room and the token grant must name the same room.
	req.RoomName = strings.TrimSpace(req.RoomName)
	if req.RoomName == "" {
		response.BadRequest(c, "Must include roomName argument.")
		return
	}

	room, err := h.svc.EnsureRoom(c.Request.Context(), req.RoomName)
	if errors.Is(err, ErrNameRequired) {
		response.BadRequest(c, "Must include roomName argument.")
		return
	}
	if err != nil {
		h.logger.Warn("ensure room failed; issuing token anyway", zap.Error(err), zap.String("room_name", req.RoomName))
	}

	grant, err := h.tokens.Issue(req.RoomName)
	if err != nil {
		if errors.Is(err, token.ErrNotConfigured) {
			response.ServiceUnavailable(c, "access tokens not configured")
			return
		}
		h.logger.Error("issue access token failed", zap.Error(err), zap.String("room_name", req.RoomName))
		response.Internal(c, "failed to issue access token")
		return
	}

	out := JoinResponse{Grant: grant, RoomReady: room != nil}
	if room != nil {
		out.RoomSid = room.Sid
	}
	response.OK(c, out)
}

// List handles GET /rooms?status=&limit=.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.svc.ListRooms(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		h.logger.Error("list rooms failed", zap.Error(err))
		response.Error(c, platform.HTTPStatus(err), "failed to list rooms")
		return
	}
	response.OK(c, list)
}

// Get handles GET /rooms/:sid.
func (h *Handler) Get(c *gin.Context) {
	room, err := h.svc.GetRoom(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to fetch room")
		return
	}
	response.OK(c, room)
}

// Complete handles POST /rooms/:sid/complete.
func (h *Handler) Complete(c *gin.Context) {
	room, err := h.svc.CompleteRoom(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to complete room")
		return
	}
	response.OK(c, room)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrSidRequired), errors.Is(err, ErrNameRequired):
		response.BadRequest(c, err.Error())
	case platform.IsNotFound(err):
		response.NotFound(c, "room not found")
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("room_sid", c.Param("sid")))
		response.Error(c, platform.HTTPStatus(err), msg)
	}
}
