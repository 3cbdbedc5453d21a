package api

import (
	"bytes"
	"classroom-lab/mocks"
	"classroom-lab/repositories"
	"classroom-lab/runtime"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	server     *httptest.Server
	rooms      *runtime.RoomRegistry
	activities *mocks.MockIActivityRepository
	index      *mocks.MockINoteIndex
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	rooms := runtime.NewRoomRegistry()
	activities := mocks.NewMockIActivityRepository(ctrl)
	index := mocks.NewMockINoteIndex(ctrl)
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	server := httptest.NewServer(NewServer(log, rooms, activities, index, prometheus.NewRegistry(), ws).Routes())
	t.Cleanup(server.Close)
	return fixture{server: server, rooms: rooms, activities: activities, index: index}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	defer resp.Body.Close()
	var body T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestCreate_Then_List_Rooms(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// When a classroom is created
	resp, err := http.Post(f.server.URL+"/api/classrooms", "application/json",
		bytes.NewBufferString(`{"name":"Biology 101"}`))
	req.NoError(err)
	req.Equal(http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	req.NotEmpty(created["id"])
	req.Equal("Biology 101", created["name"])

	// Then it is listed with empty counters
	resp, err = http.Get(f.server.URL + "/api/classrooms")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	rooms := decode[[]map[string]any](t, resp)
	req.Len(rooms, 1)
	req.Equal(created["id"], rooms[0]["id"])
	req.Equal(0.0, rooms[0]["userCount"])
	req.Equal(0.0, rooms[0]["noteCount"])
	req.Equal(0.0, rooms[0]["pollCount"])
}

func TestCreate_Blank_Name(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/api/classrooms", "application/json", bytes.NewBufferString(`{"name":"  "}`))
	req.NoError(err)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	req.Equal("malformed-input", body["code"])
}

func TestGet_Room_Snapshot(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	room, err := f.rooms.Create("Biology 101")
	req.NoError(err)
	room.AddNote("Hi", "#fff", 10, 20, "c1", "Alice")

	resp, err := http.Get(f.server.URL + "/api/classrooms/" + string(room.ID))
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	state := decode[runtime.State](t, resp)
	req.Equal(room.ID, state.ID)
	req.Len(state.Notes, 1)
	req.Equal("Hi", state.Notes[0].Content)
	req.Empty(state.Polls)
}

func TestGet_Unknown_Room(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/api/classrooms/missing")
	req.NoError(err)
	req.Equal(http.StatusNotFound, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	req.Equal("room-not-found", body["code"])
}

func TestGet_Activity(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	room, err := f.rooms.Create("Biology 101")
	req.NoError(err)
	next := "cursor"
	activity := repositories.Activity{ID: uuid.New(), Room: string(room.ID), Event: "note-added", At: time.Now().UTC()}

	// Given a journal page with a cursor
	f.activities.EXPECT().GetActivity(string(room.ID), gomock.Nil()).
		Return([]repositories.Activity{activity}, &next, nil).Times(1)

	resp, err := http.Get(f.server.URL + "/api/classrooms/" + string(room.ID) + "/activity")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	body := decode[activityResponse](t, resp)
	req.Len(body.Activities, 1)
	req.Equal("note-added", body.Activities[0].Event)
	req.Equal(&next, body.NextCursor)
}

func TestSearch_Notes(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	room, err := f.rooms.Create("Biology 101")
	req.NoError(err)
	note := room.AddNote("Photosynthesis", "#fff", 0, 0, "c1", "Alice")

	// Given the index also returns a note deleted since
	f.index.EXPECT().Search(gomock.Any(), string(room.ID), "photo", defaultSearchLimit).
		Return([]string{"gone", string(note.ID)}, nil).Times(1)

	resp, err := http.Get(f.server.URL + "/api/classrooms/" + string(room.ID) + "/notes/search?q=photo")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)

	// Then only live notes are returned
	body := decode[searchResponse](t, resp)
	req.Len(body.Notes, 1)
	req.Equal(note.ID, body.Notes[0].ID)
}

func TestSearch_Without_Query(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	room, err := f.rooms.Create("Biology 101")
	req.NoError(err)

	resp, err := http.Get(f.server.URL + "/api/classrooms/" + string(room.ID) + "/notes/search")
	req.NoError(err)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz_And_Websocket_Mount(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/ws")
	req.NoError(err)
	req.Equal(http.StatusTeapot, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/metrics")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
}
