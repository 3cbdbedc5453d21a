// Package api serves the classroom directory over HTTP: listing, creation,
// snapshots, the activity journal and note search. It also mounts the
// websocket transport and the metrics endpoint.
package api

import (
	"classroom-lab/domain/classroom"
	"classroom-lab/errors"
	"classroom-lab/observability"
	"classroom-lab/repositories"
	"classroom-lab/runtime"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type RoomDirectory interface {
	Create(name string) (*classroom.Room, error)
	List() []classroom.Summary
	Snapshot(id classroom.RoomID) (runtime.State, error)
}

type Server struct {
	log        *slog.Logger
	rooms      RoomDirectory
	activities repositories.IActivityRepository
	index      repositories.INoteIndex
	gatherer   prometheus.Gatherer
	websocket  http.Handler
	metrics    *observability.Metrics
}

func NewServer(log *slog.Logger, rooms RoomDirectory, activities repositories.IActivityRepository,
	index repositories.INoteIndex, gatherer prometheus.Gatherer, websocket http.Handler) *Server {
	return &Server{
		log:        log,
		rooms:      rooms,
		activities: activities,
		index:      index,
		gatherer:   gatherer,
		websocket:  websocket,
	}
}

func (s *Server) WithMetrics(metrics *observability.Metrics) *Server {
	s.metrics = metrics
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Handle("/ws", s.websocket)

	r.Route("/api/classrooms", func(r chi.Router) {
		r.Get("/", s.listRooms)
		r.Post("/", s.createRoom)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRoom)
			r.Get("/activity", s.getActivity)
			r.Get("/notes/search", s.searchNotes)
		})
	})
	return r
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type createRoomResponse struct {
	ID   classroom.RoomID `json:"id"`
	Name string           `json:"name"`
}

type activityResponse struct {
	Activities []repositories.Activity `json:"activities"`
	NextCursor *string                 `json:"nextCursor"`
}

type searchResponse struct {
	Notes []classroom.Note `json:"notes"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (s *Server) listRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.List())
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrMalformedInput)
		return
	}
	room, err := s.rooms.Create(body.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.SetRooms(len(s.rooms.List()))
	s.log.Info("Classroom created", "room_id", room.ID, "name", room.Name)
	writeJSON(w, http.StatusCreated, createRoomResponse{ID: room.ID, Name: room.Name})
}

func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	state, err := s.rooms.Snapshot(roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	id := roomID(r)
	if _, err := s.rooms.Snapshot(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	activities, next, err := s.activities.GetActivity(string(id), cursor)
	switch {
	case errors.Is(err, errors.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.log.Error("Failed to read activity journal", "room_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, activityResponse{Activities: activities, NextCursor: next})
}

// searchNotes resolves index hits against the live room, notes deleted since indexing are skipped.
func (s *Server) searchNotes(w http.ResponseWriter, r *http.Request) {
	id := roomID(r)
	state, err := s.rooms.Snapshot(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	text := r.URL.Query().Get("q")
	if text == "" {
		writeError(w, http.StatusBadRequest, errors.ErrMalformedInput)
		return
	}
	limit := defaultSearchLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxSearchLimit)
	}

	ids, err := s.index.Search(r.Context(), string(id), text, limit)
	if err != nil {
		s.log.Error("Failed to search notes", "room_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	notes := lo.KeyBy(state.Notes, func(n classroom.Note) string { return string(n.ID) })
	found := lo.FilterMap(ids, func(noteID string, _ int) (classroom.Note, bool) {
		note, ok := notes[noteID]
		return note, ok
	})
	writeJSON(w, http.StatusOK, searchResponse{Notes: found})
}

func roomID(r *http.Request) classroom.RoomID {
	return classroom.RoomID(chi.URLParam(r, "id"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Message: err.Error(), Code: errors.Code(err)})
}
