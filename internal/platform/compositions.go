package platform

import (
	"context"
	"fmt"

	video "github.com/twilio/twilio-go/rest/video/v1"

	"github.com/roomcast/orchestrator/internal/models"
)

// ListCompositionsParams filters the composition collection.
type ListCompositionsParams struct {
	Status  string
	RoomSid string
	Limit   int
}

// CreateCompositionParams describes a composition job.
type CreateCompositionParams struct {
	RoomSid        string
	AudioSources   []string
	VideoLayout    map[string]interface{}
	StatusCallback string
	Format         string
}

func checkComposition(cp *models.Composition) (*models.Composition, error) {
	if cp.Sid == "" {
		return nil, fmt.Errorf("%w: composition without sid", ErrMalformedResource)
	}
	return cp, nil
}

func toComposition(src *video.VideoV1Composition) (*models.Composition, error) {
	cp, err := decode[models.Composition](src)
	if err != nil {
		return nil, err
	}
	return checkComposition(cp)
}

// ListCompositions returns compositions, optionally filtered by status and room.
func (c *Client) ListCompositions(ctx context.Context, params ListCompositionsParams) ([]models.Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.ListCompositionParams{}
	if params.Status != "" {
		p.SetStatus(params.Status)
	}
	if params.RoomSid != "" {
		p.SetRoomSid(params.RoomSid)
	}
	if params.Limit > 0 {
		p.SetLimit(params.Limit)
	}
	list, err := c.video.ListComposition(p)
	if err != nil {
		return nil, translate(err)
	}
	comps, err := decodeList[models.Composition](list)
	if err != nil {
		return nil, err
	}
	for i := range comps {
		if _, err := checkComposition(&comps[i]); err != nil {
			return nil, err
		}
	}
	return comps, nil
}

// FetchComposition returns a composition by sid.
func (c *Client) FetchComposition(ctx context.Context, sid string) (*models.Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp, err := c.video.FetchComposition(sid)
	if err != nil {
		return nil, translate(err)
	}
	return toComposition(cp)
}

// CreateComposition starts an asynchronous composition job for a room.
func (c *Client) CreateComposition(ctx context.Context, params CreateCompositionParams) (*models.Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.CreateCompositionParams{}
	p.SetRoomSid(params.RoomSid)
	if len(params.AudioSources) > 0 {
		p.SetAudioSources(params.AudioSources)
	}
	if params.VideoLayout != nil {
		p.SetVideoLayout(params.VideoLayout)
	}
	if params.StatusCallback != "" {
		p.SetStatusCallback(params.StatusCallback)
	}
	if params.Format != "" {
		p.SetFormat(params.Format)
	}
	cp, err := c.video.CreateComposition(p)
	if err != nil {
		return nil, translate(err)
	}
	return toComposition(cp)
}

// DeleteComposition removes a composition.
func (c *Client) DeleteComposition(ctx context.Context, sid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(c.video.DeleteComposition(sid))
}
