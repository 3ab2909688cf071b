package platform

import (
	"context"
	"fmt"
	"net/url"

	video "github.com/twilio/twilio-go/rest/video/v1"

	"github.com/roomcast/orchestrator/internal/models"
)

// ListRecordingsParams filters the recording collection.
type ListRecordingsParams struct {
	GroupingSid []string
	Status      string
	Limit       int
}

// CreateRecordingParams is the media profile of a requested recording artifact.
type CreateRecordingParams struct {
	Type            string
	ContainerFormat string
	AudioChannels   string
	Codec           string
}

func checkRecording(r *models.Recording) (*models.Recording, error) {
	if r.Sid == "" {
		return nil, fmt.Errorf("%w: recording without sid", ErrMalformedResource)
	}
	return r, nil
}

// UpdateRecordingRules replaces a room's recording rule set.
func (c *Client) UpdateRecordingRules(ctx context.Context, roomSid string, rules []models.RecordingRule) (*models.RecordingRules, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.UpdateRoomRecordingRuleParams{}
	p.SetRules(rules)
	out, err := c.video.UpdateRoomRecordingRule(roomSid, p)
	if err != nil {
		return nil, translate(err)
	}
	return decode[models.RecordingRules](out)
}

// ListRecordings returns recordings, optionally filtered by grouping sid.
func (c *Client) ListRecordings(ctx context.Context, params ListRecordingsParams) ([]models.Recording, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.ListRecordingParams{}
	if len(params.GroupingSid) > 0 {
		p.SetGroupingSid(params.GroupingSid)
	}
	if params.Status != "" {
		p.SetStatus(params.Status)
	}
	if params.Limit > 0 {
		p.SetLimit(params.Limit)
	}
	list, err := c.video.ListRecording(p)
	if err != nil {
		return nil, translate(err)
	}
	recs, err := decodeList[models.Recording](list)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if _, err := checkRecording(&recs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// CreateRecording requests a recording artifact for a room. The SDK has no
// binding for this resource, so it goes through the SDK's request handler.
func (c *Client) CreateRecording(ctx context.Context, roomSid string, params CreateRecordingParams) (*models.Recording, error) {
	form := url.Values{}
	form.Set("Type", params.Type)
	form.Set("ContainerFormat", params.ContainerFormat)
	form.Set("AudioChannels", params.AudioChannels)
	form.Set("Codec", params.Codec)
	var rec models.Recording
	if err := c.post(ctx, "/v1/Rooms/"+url.PathEscape(roomSid)+"/Recordings", form, &rec); err != nil {
		return nil, err
	}
	return checkRecording(&rec)
}

// FetchRecording returns a recording by sid.
func (c *Client) FetchRecording(ctx context.Context, sid string) (*models.Recording, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := c.video.FetchRecording(sid)
	if err != nil {
		return nil, translate(err)
	}
	out, err := decode[models.Recording](rec)
	if err != nil {
		return nil, err
	}
	return checkRecording(out)
}

// DeleteRecording removes a recording.
func (c *Client) DeleteRecording(ctx context.Context, sid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(c.video.DeleteRecording(sid))
}
