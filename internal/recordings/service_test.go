package recordings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/orchestrator/internal/models"
	"github.com/roomcast/orchestrator/internal/platform"
)

type fakeRecordingAPI struct {
	rulesErr  error
	createErr error

	rulesCalls  []string
	createCalls []platform.CreateRecordingParams
	listParams  []platform.ListRecordingsParams
	deleted     []string
	recordings  []models.Recording
}

func (f *fakeRecordingAPI) UpdateRecordingRules(_ context.Context, roomSid string, rules []models.RecordingRule) (*models.RecordingRules, error) {
	f.rulesCalls = append(f.rulesCalls, roomSid)
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	return &models.RecordingRules{RoomSid: roomSid, Rules: rules}, nil
}

func (f *fakeRecordingAPI) CreateRecording(_ context.Context, roomSid string, params platform.CreateRecordingParams) (*models.Recording, error) {
	f.createCalls = append(f.createCalls, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Recording{Sid: "RT1", RoomSid: roomSid, Type: params.Type, Codec: params.Codec}, nil
}

func (f *fakeRecordingAPI) ListRecordings(_ context.Context, params platform.ListRecordingsParams) ([]models.Recording, error) {
	f.listParams = append(f.listParams, params)
	return f.recordings, nil
}

func (f *fakeRecordingAPI) FetchRecording(_ context.Context, sid string) (*models.Recording, error) {
	for _, r := range f.recordings {
		if r.Sid == sid {
			r := r
			return &r, nil
		}
	}
	return nil, &platform.APIError{Status: 404, Code: platform.CodeNotFound}
}

func (f *fakeRecordingAPI) DeleteRecording(_ context.Context, sid string) error {
	f.deleted = append(f.deleted, sid)
	return nil
}

func TestEnableRecording_BothSteps(t *testing.T) {
	api := &fakeRecordingAPI{}
	res := NewService(api, nil).EnableRecording(context.Background(), "RM1")

	require.NoError(t, res.Err)
	assert.True(t, res.RulesApplied)
	assert.Equal(t, models.IncludeAllRules(), res.Rules)
	require.NotNil(t, res.Recording)
	assert.Equal(t, []string{"RM1"}, api.rulesCalls)
	require.Len(t, api.createCalls, 1)
	assert.Equal(t, DefaultProfile, api.createCalls[0])
	assert.Equal(t, "audio", api.createCalls[0].Type)
	assert.Equal(t, "mono", api.createCalls[0].AudioChannels)
	assert.Equal(t, "aac", api.createCalls[0].Codec)
	assert.Equal(t, "mp4", api.createCalls[0].ContainerFormat)
}

func TestEnableRecording_CreateRunsAfterRulesFailure(t *testing.T) {
	rulesErr := &platform.APIError{Status: 400, Code: 53120, Message: "invalid rules"}
	api := &fakeRecordingAPI{rulesErr: rulesErr}
	res := NewService(api, nil).EnableRecording(context.Background(), "RM1")

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, rulesErr))
	assert.False(t, res.RulesApplied)
	assert.NotEmpty(t, res.RulesError)
	assert.Len(t, api.createCalls, 1)
	assert.NotNil(t, res.Recording)
	assert.True(t, res.Started())
}

func TestEnableRecording_BothFail(t *testing.T) {
	api := &fakeRecordingAPI{rulesErr: errors.New("rules down"), createErr: errors.New("create down")}
	res := NewService(api, nil).EnableRecording(context.Background(), "RM1")

	require.Error(t, res.Err)
	assert.False(t, res.Started())
	assert.Contains(t, res.Err.Error(), "rules down")
	assert.Contains(t, res.Err.Error(), "create down")
}

func TestEnableRecording_RequiresSid(t *testing.T) {
	api := &fakeRecordingAPI{}
	res := NewService(api, nil).EnableRecording(context.Background(), "")
	require.ErrorIs(t, res.Err, ErrRoomSidRequired)
	assert.Empty(t, api.rulesCalls)
	assert.Empty(t, api.createCalls)
}

func TestListByRoom_FiltersByGroupingSid(t *testing.T) {
	api := &fakeRecordingAPI{}
	_, err := NewService(api, nil).ListByRoom(context.Background(), "RM9")
	require.NoError(t, err)
	require.Len(t, api.listParams, 1)
	assert.Equal(t, []string{"RM9"}, api.listParams[0].GroupingSid)
}

func newRouter(api RecordingAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(api, nil), nil)
	r := gin.New()
	r.POST("/rooms/:sid/recording", h.StartForRoom)
	r.GET("/recordings", h.List)
	r.GET("/recordings/:sid", h.Get)
	r.DELETE("/recordings/:sid", h.Delete)
	return r
}

func TestHandler_StartStatuses(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeRecordingAPI
		want int
	}{
		{"ok", &fakeRecordingAPI{}, http.StatusOK},
		{"partial", &fakeRecordingAPI{rulesErr: errors.New("x")}, http.StatusMultiStatus},
		{"failed", &fakeRecordingAPI{rulesErr: errors.New("x"), createErr: errors.New("y")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.api).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rooms/RM1/recording", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandler_ListCountsRecordings(t *testing.T) {
	api := &fakeRecordingAPI{recordings: []models.Recording{{Sid: "RT1"}, {Sid: "RT2"}}}
	w := httptest.NewRecorder()
	newRouter(api).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recordings", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Count)
}

func TestHandler_GetAndDelete(t *testing.T) {
	api := &fakeRecordingAPI{recordings: []models.Recording{{Sid: "RT1"}}}
	r := newRouter(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recordings/RTmissing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/recordings/RT1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"RT1"}, api.deleted)
}
