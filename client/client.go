// Package client talks to a classroom server: the room directory over HTTP
// and a live session over websocket.
package client

import (
	"bytes"
	"classroom-lab/domain/classroom"
	"classroom-lab/protocol"
	"classroom-lab/repositories"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New expects the server address as host:port.
func New(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (c *Client) ListRooms(ctx context.Context) ([]classroom.Summary, error) {
	var rooms []classroom.Summary
	err := c.do(ctx, http.MethodGet, "/api/classrooms", nil, &rooms)
	return rooms, err
}

func (c *Client) CreateRoom(ctx context.Context, name string) (classroom.Summary, error) {
	var room classroom.Summary
	err := c.do(ctx, http.MethodPost, "/api/classrooms", map[string]string{"name": name}, &room)
	return room, err
}

// ActivityPage is one page of the journal of a room, newest first.
type ActivityPage struct {
	Activities []repositories.Activity `json:"activities"`
	NextCursor *string                 `json:"nextCursor"`
}

func (c *Client) Activity(ctx context.Context, roomID classroom.RoomID, cursor *string) (ActivityPage, error) {
	path := "/api/classrooms/" + url.PathEscape(string(roomID)) + "/activity"
	if cursor != nil {
		path += "?cursor=" + url.QueryEscape(*cursor)
	}
	var page ActivityPage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

func (c *Client) SearchNotes(ctx context.Context, roomID classroom.RoomID, text string) ([]classroom.Note, error) {
	path := "/api/classrooms/" + url.PathEscape(string(roomID)) + "/notes/search?q=" + url.QueryEscape(text)
	var result struct {
		Notes []classroom.Note `json:"notes"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &result)
	return result.Notes, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: %d %s (%s)", method, path, resp.StatusCode, apiErr.Message, apiErr.Code)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Session is a live websocket connection to the server.
type Session struct {
	conn *websocket.Conn
}

func (c *Client) Dial(ctx context.Context) (*Session, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Scheme = "ws"
	u.Path = "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return &Session{conn: conn}, nil
}

// Send writes one client event.
func (s *Session) Send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(protocol.Envelope{Event: event, Data: raw})
}

func (s *Session) Join(roomID classroom.RoomID, displayName string) error {
	return s.Send(classroom.JoinEvent, classroom.JoinCommand{RoomID: roomID, DisplayName: displayName})
}

// Next blocks until the next server event or the timeout.
func (s *Session) Next(timeout time.Duration) (protocol.Envelope, error) {
	var envelope protocol.Envelope
	if timeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	err := s.conn.ReadJSON(&envelope)
	return envelope, err
}

func (s *Session) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}
