package compositions

import (
	"context"
	"sync"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

// fakeAPI serves fixed collections and filters the way the platform does.
type fakeAPI struct {
	mu sync.Mutex

	rooms        []models.Room
	recordings   []models.Recording
	compositions []models.Composition
	redirects    map[string]string

	roomsErr, recordingsErr, compositionsErr, redirectErr, createErr error

	roomParams      []platform.ListRoomsParams
	recordingLists  int
	compParams      []platform.ListCompositionsParams
	created         []platform.CreateCompositionParams
	deleted         []string
	redirectFetches []string
}

func (f *fakeAPI) ListRooms(_ context.Context, params platform.ListRoomsParams) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomParams = append(f.roomParams, params)
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	var out []models.Room
	for _, r := range f.rooms {
		if params.Status != "" && r.Status != params.Status {
			continue
		}
		out = append(out, r)
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAPI) ListRecordings(_ context.Context, params platform.ListRecordingsParams) ([]models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordingLists++
	if f.recordingsErr != nil {
		return nil, f.recordingsErr
	}
	if len(params.GroupingSid) == 0 {
		return f.recordings, nil
	}
	var out []models.Recording
	for _, r := range f.recordings {
		for _, sid := range params.GroupingSid {
			if r.GroupingRoomSid() == sid {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeAPI) ListCompositions(_ context.Context, params platform.ListCompositionsParams) ([]models.Composition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compParams = append(f.compParams, params)
	if f.compositionsErr != nil {
		return nil, f.compositionsErr
	}
	var out []models.Composition
	for _, cp := range f.compositions {
		if params.Status != "" && cp.Status != params.Status {
			continue
		}
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeAPI) FetchComposition(_ context.Context, sid string) (*models.Composition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cp := range f.compositions {
		if cp.Sid == sid {
			cp := cp
			return &cp, nil
		}
	}
	return nil, &platform.APIError{Status: 404, Code: platform.CodeNotFound, Message: "not found"}
}

func (f *fakeAPI) CreateComposition(_ context.Context, params platform.CreateCompositionParams) (*models.Composition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Composition{Sid: "CJnew", RoomSid: params.RoomSid, Status: models.CompositionStatusEnqueued, Format: params.Format}, nil
}

func (f *fakeAPI) DeleteComposition(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, sid)
	return nil
}

func (f *fakeAPI) FetchRedirect(_ context.Context, link string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirectFetches = append(f.redirectFetches, link)
	if f.redirectErr != nil {
		return "", f.redirectErr
	}
	if target, ok := f.redirects[link]; ok {
		return target, nil
	}
	return "", platform.ErrNoRedirect
}

func room(sid, status string) models.Room {
	return models.Room{Sid: sid, UniqueName: "name-" + sid, Status: status, Duration: 42}
}

func recordingOf(sid, roomSid string) models.Recording {
	return models.Recording{Sid: sid, GroupingSids: models.GroupingSids{RoomSid: roomSid}}
}

func composition(sid, roomSid, status string) models.Composition {
	return models.Composition{
		Sid:     sid,
		RoomSid: roomSid,
		Status:  status,
		Links:   map[string]string{models.CompositionLinkMedia: "https://video.example/v1/Compositions/" + sid + "/Media"},
	}
}
