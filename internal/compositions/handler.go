package compositions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
	"github.com/roomcast/orchestrator/pkg/queue"
	"github.com/roomcast/orchestrator/pkg/response"
	"github.com/roomcast/orchestrator/pkg/storage"
)

// ArchiveQueue enqueues composition archive jobs.
type ArchiveQueue interface {
	EnqueueCompositionArchive(ctx context.Context, payload queue.CompositionArchivePayload) (string, error)
}

// ArchiveStore is the object storage holding archived composition media.
type ArchiveStore interface {
	CompositionsBucket() string
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	PresignExpire() time.Duration
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Handler handles composition HTTP endpoints.
type Handler struct {
	svc    *Service
	queue  ArchiveQueue // optional: archive to object storage
	store  ArchiveStore // optional
	logger *zap.Logger
}

// NewHandler creates a compositions handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// SetArchive enables the archive endpoints. Either argument may be nil.
func (h *Handler) SetArchive(q ArchiveQueue, store ArchiveStore) {
	h.queue = q
	h.store = store
}

// View handles GET /rooms/view: completed rooms with recordings and their compositions.
func (h *Handler) View(c *gin.Context) {
	rooms, err := h.svc.BuildVideoRoomView(c.Request.Context())
	if err != nil {
		response.Error(c, platform.HTTPStatus(err), "Unable to list rooms")
		return
	}
	response.OK(c, rooms)
}

// Create handles POST /rooms/:sid/compositions.
func (h *Handler) Create(c *gin.Context) {
	cp, err := h.svc.Create(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to create composition")
		return
	}
	response.Created(c, cp)
}

// List handles GET /compositions?status=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.logger.Error("list compositions failed", zap.Error(err))
		response.Error(c, platform.HTTPStatus(err), "failed to list compositions")
		return
	}
	response.OK(c, list)
}

// Get handles GET /compositions/:sid.
func (h *Handler) Get(c *gin.Context) {
	cp, err := h.svc.Get(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to fetch composition")
		return
	}
	response.OK(c, cp)
}

// Delete handles DELETE /compositions/:sid. An archived copy, if any, is removed best-effort.
func (h *Handler) Delete(c *gin.Context) {
	sid := c.Param("sid")
	var roomSid string
	if h.store != nil {
		if cp, err := h.svc.Get(c.Request.Context(), sid); err == nil {
			roomSid = cp.RoomSid
		}
	}
	if err := h.svc.Delete(c.Request.Context(), sid); err != nil {
		h.fail(c, err, "failed to delete composition")
		return
	}
	if h.store != nil && roomSid != "" {
		key := storage.CompositionKey(roomSid, sid)
		if err := h.store.DeleteObject(c.Request.Context(), h.store.CompositionsBucket(), key); err != nil {
			h.logger.Warn("delete archived composition failed", zap.Error(err), zap.String("key", key))
		}
	}
	response.OK(c, gin.H{"sid": sid, "deleted": true})
}

// Media handles GET /compositions/:sid/media. Returns {url}; with ?redirect=1 answers 302 to it.
func (h *Handler) Media(c *gin.Context) {
	sid := c.Param("sid")
	target, err := h.svc.ResolveMediaLocation(c.Request.Context(), sid)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoMediaLink):
			response.Conflict(c, "composition media not available")
		case errors.Is(err, ErrMediaFetch):
			h.logger.Error("resolve composition media failed", zap.Error(err), zap.String("composition_sid", sid))
			response.BadGateway(c, "Error fetching data")
		default:
			h.fail(c, err, "failed to fetch composition")
		}
		return
	}
	if v := c.Query("redirect"); v == "1" || v == "true" {
		c.Redirect(http.StatusFound, target)
		return
	}
	response.OK(c, gin.H{"url": target})
}

// Archive handles POST /compositions/:sid/archive: queue a copy of the media into object storage.
func (h *Handler) Archive(c *gin.Context) {
	if h.queue == nil || h.store == nil {
		response.ServiceUnavailable(c, "composition archive not configured")
		return
	}
	cp, err := h.svc.Get(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to fetch composition")
		return
	}
	if cp.Status != models.CompositionStatusCompleted {
		response.Conflict(c, "composition not completed")
		return
	}
	jobID, err := h.queue.EnqueueCompositionArchive(c.Request.Context(), queue.CompositionArchivePayload{
		CompositionSid: cp.Sid,
		RoomSid:        cp.RoomSid,
	})
	if err != nil {
		h.logger.Error("enqueue composition archive failed", zap.Error(err), zap.String("composition_sid", cp.Sid))
		response.Internal(c, "failed to enqueue archive")
		return
	}
	response.Accepted(c, gin.H{"job_id": jobID, "composition_sid": cp.Sid, "key": storage.CompositionKey(cp.RoomSid, cp.Sid)})
}

// ArchiveURL handles GET /compositions/:sid/archive-url: presigned URL of the archived copy.
func (h *Handler) ArchiveURL(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "composition archive not configured")
		return
	}
	cp, err := h.svc.Get(c.Request.Context(), c.Param("sid"))
	if err != nil {
		h.fail(c, err, "failed to fetch composition")
		return
	}
	bucket := h.store.CompositionsBucket()
	key := storage.CompositionKey(cp.RoomSid, cp.Sid)
	ok, err := h.store.ObjectExists(c.Request.Context(), bucket, key)
	if err != nil {
		h.logger.Error("check archived composition failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to check archive")
		return
	}
	if !ok {
		response.NotFound(c, "composition not archived")
		return
	}
	expire := h.store.PresignExpire()
	url, err := h.store.GeneratePresignedDownloadURL(c.Request.Context(), bucket, key, expire)
	if err != nil {
		h.logger.Error("presign composition download failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"download_url": url, "expires_in": int(expire.Seconds())})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrSidRequired), errors.Is(err, ErrRoomSidRequired):
		response.BadRequest(c, err.Error())
	case platform.IsNotFound(err):
		response.NotFound(c, "not found")
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("sid", c.Param("sid")))
		response.Error(c, platform.HTTPStatus(err), msg)
	}
}
