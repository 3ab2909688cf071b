package platform

import (
	"context"
	"fmt"

	video "github.com/twilio/twilio-go/rest/video/v1"

	"github.com/roomcast/orchestrator/internal/models"
)

// ListRoomsParams filters the room collection.
type ListRoomsParams struct {
	Status     string
	UniqueName string
	Limit      int
}

// CreateRoomParams describes a new room.
type CreateRoomParams struct {
	UniqueName     string
	Type           string
	StatusCallback string
}

// UpdateRoomParams changes a room; only status is updatable.
type UpdateRoomParams struct {
	Status string
}

func checkRoom(r *models.Room) (*models.Room, error) {
	if r.Sid == "" {
		return nil, fmt.Errorf("%w: room without sid", ErrMalformedResource)
	}
	return r, nil
}

func toRoom(src *video.VideoV1Room) (*models.Room, error) {
	room, err := decode[models.Room](src)
	if err != nil {
		return nil, err
	}
	return checkRoom(room)
}

// ListRooms returns rooms, newest first, up to params.Limit (all when zero).
func (c *Client) ListRooms(ctx context.Context, params ListRoomsParams) ([]models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.ListRoomParams{}
	if params.Status != "" {
		p.SetStatus(params.Status)
	}
	if params.UniqueName != "" {
		p.SetUniqueName(params.UniqueName)
	}
	if params.Limit > 0 {
		p.SetLimit(params.Limit)
	}
	list, err := c.video.ListRoom(p)
	if err != nil {
		return nil, translate(err)
	}
	rooms, err := decodeList[models.Room](list)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if _, err := checkRoom(&rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// FetchRoom returns a room by sid or unique name.
func (c *Client) FetchRoom(ctx context.Context, sidOrName string) (*models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	room, err := c.video.FetchRoom(sidOrName)
	if err != nil {
		return nil, translate(err)
	}
	return toRoom(room)
}

// CreateRoom creates a room.
func (c *Client) CreateRoom(ctx context.Context, params CreateRoomParams) (*models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.CreateRoomParams{}
	if params.UniqueName != "" {
		p.SetUniqueName(params.UniqueName)
	}
	if params.Type != "" {
		p.SetType(params.Type)
	}
	if params.StatusCallback != "" {
		p.SetStatusCallback(params.StatusCallback)
	}
	room, err := c.video.CreateRoom(p)
	if err != nil {
		return nil, translate(err)
	}
	return toRoom(room)
}

// UpdateRoom updates a room's status.
func (c *Client) UpdateRoom(ctx context.Context, sid string, params UpdateRoomParams) (*models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &video.UpdateRoomParams{}
	p.SetStatus(params.Status)
	room, err := c.video.UpdateRoom(sid, p)
	if err != nil {
		return nil, translate(err)
	}
	return toRoom(room)
}
