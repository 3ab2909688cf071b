package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/roomcast/orchestrator/pkg/queue"
	"github.com/roomcast/orchestrator/pkg/storage"
)

// MediaResolver turns a composition sid into a short-lived download URL.
type MediaResolver interface {
	ResolveMediaLocation(ctx context.Context, sid string) (string, error)
}

// ObjectStore is the subset of S3 used for archiving.
type ObjectStore interface {
	CompositionsBucket() string
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64, publicRead bool) (string, error)
}

// JobQueue supplies archive jobs and takes failed ones back.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ArchiveProcessor copies finished compositions from the platform into S3.
type ArchiveProcessor struct {
	resolver MediaResolver
	store    ObjectStore
	queue    JobQueue
	http     *http.Client
	backoff  time.Duration
	logger   *zap.Logger
}

// NewArchiveProcessor creates a composition archive processor.
func NewArchiveProcessor(resolver MediaResolver, store ObjectStore, q JobQueue, logger *zap.Logger) *ArchiveProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveProcessor{
		resolver: resolver,
		store:    store,
		queue:    q,
		http:     &http.Client{Timeout: 30 * time.Minute},
		backoff:  queue.RetryBackoff,
		logger:   logger,
	}
}

// Process executes one archive job.
func (p *ArchiveProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCompositionArchive {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CompositionArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.CompositionSid == "" {
		return fmt.Errorf("composition_sid missing")
	}

	bucket := p.store.CompositionsBucket()
	key := storage.CompositionKey(payload.RoomSid, payload.CompositionSid)
	exists, err := p.store.ObjectExists(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("head object: %w", err)
	}
	if exists {
		p.logger.Info("composition already archived", zap.String("composition_sid", payload.CompositionSid), zap.String("s3_key", key))
		return nil
	}

	// The resolved URL is short-lived, so resolve per attempt.
	mediaURL, err := p.resolver.ResolveMediaLocation(ctx, payload.CompositionSid)
	if err != nil {
		return fmt.Errorf("resolve media: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	// Stream upload to S3 (no full buffer)
	s3URL, err := p.store.Upload(ctx, bucket, key, contentType, resp.Body, resp.ContentLength, false)
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	p.logger.Info("composition archived",
		zap.String("composition_sid", payload.CompositionSid),
		zap.String("room_sid", payload.RoomSid),
		zap.String("s3_key", key),
		zap.String("location", s3URL),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ArchiveProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("archive worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ArchiveProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
