// Package runtime resolves sessions, serializes classroom mutations and
// propagates their events. It orchestrates the system without containing
// the classroom rules themselves.
package runtime

import (
	"classroom-lab/contract"
	"classroom-lab/domain/classroom"
	"classroom-lab/domain/event"
	"classroom-lab/errors"
	"classroom-lab/moderation"
	"classroom-lab/observability"
	"classroom-lab/runtime/workers"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed censored/*
var censoredFolder embed.FS

var _ contract.IDispatcher = (*Dispatcher)(nil)

// Dispatcher is the broadcast protocol layer.
// Connection state: Connected (attached, no session) -> Joined -> Disconnected.
// Every mutation of a room and the broadcast of its result happen under the
// lane of that room, so members observe events in the order they were applied.
type Dispatcher struct {
	mu             sync.Mutex
	lanes          map[classroom.RoomID]*sync.Mutex
	log            *slog.Logger
	rooms          contract.IRoomRegistry
	sessions       contract.ISessionDirectory
	supervisor     contract.ISupervisor
	permanentSinks []contract.EventSink
	domainEvents   chan event.DomainEvent
	moderator      *moderation.Moderator
	colors         classroom.ColorGenerator
	metrics        *observability.Metrics
	tracer         trace.Tracer
	sinkTimeout    time.Duration
}

func NewDispatcher(log *slog.Logger, supervisor contract.ISupervisor,
	rooms contract.IRoomRegistry, sessions contract.ISessionDirectory,
	metrics *observability.Metrics, bufferSize int, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		lanes:        make(map[classroom.RoomID]*sync.Mutex),
		log:          log,
		rooms:        rooms,
		sessions:     sessions,
		supervisor:   supervisor,
		domainEvents: make(chan event.DomainEvent, bufferSize),
		colors:       classroom.RandomHue,
		metrics:      metrics,
		tracer:       otel.Tracer("classroom-lab/runtime"),
		sinkTimeout:  sinkTimeout,
	}
}

// WithModerator enables censoring and language tagging of user supplied text.
func (d *Dispatcher) WithModerator(moderator *moderation.Moderator) *Dispatcher {
	d.moderator = moderator
	return d
}

func (d *Dispatcher) WithColors(colors classroom.ColorGenerator) *Dispatcher {
	d.colors = colors
	return d
}

// Add registers sinks receiving every broadcast event, whatever the room.
// Must be called before Start.
func (d *Dispatcher) Add(sinks ...contract.EventSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permanentSinks = append(d.permanentSinks, sinks...)
}

// LoadModerator builds a moderator from the embedded censored dictionaries.
func LoadModerator(log *slog.Logger, charReplacement rune) (*moderation.Moderator, error) {
	data, err := NewCensoredLoader(censoredFolder).LoadAll("censored")
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))
	return moderation.NewModerator(data.Words, charReplacement)
}

// Start registers the fanout worker and runs the supervisor until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	fanout := workers.NewEventFanout(d.log, d.domainEvents, d.sinkTimeout).Add(d.permanentSinks...)
	d.supervisor.Add(fanout)
	d.mu.Unlock()

	d.log.Info("Starting dispatcher and all supervised workers")
	d.supervisor.Run(ctx)
	return nil
}

func (d *Dispatcher) Stop() {
	d.log.Info("Requesting dispatcher shutdown")
	d.supervisor.Stop()
}

// Connect attaches a new transport connection in the Connected state.
func (d *Dispatcher) Connect(connID classroom.ConnID, sink contract.EventSink) {
	d.sessions.Attach(connID, sink)
	d.refreshPresence()
	d.log.Debug("Connection attached", "conn_id", connID)
}

// Handle processes one inbound event of a connection.
// Events of one connection must be handed over sequentially.
func (d *Dispatcher) Handle(ctx context.Context, connID classroom.ConnID, cmd classroom.Command) {
	ctx, span := d.tracer.Start(ctx, "dispatch "+cmd.EventName(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("classroom.conn_id", string(connID))))
	defer span.End()

	d.metrics.IncrEvent(cmd.EventName())

	var err error
	switch c := cmd.(type) {
	case classroom.JoinCommand:
		err = d.join(ctx, connID, c)
	case classroom.LeaveCommand:
		d.leave(ctx, connID)
	default:
		err = d.mutate(ctx, connID, cmd)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.Reject(ctx, connID, err)
	}
}

// Reject reports an error to the originating connection only.
func (d *Dispatcher) Reject(ctx context.Context, connID classroom.ConnID, err error) {
	switch {
	case errors.Is(err, errors.ErrRoomNotFound):
		d.metrics.IncrDropped(observability.ReasonRoomNotFound)
	case errors.Is(err, errors.ErrMalformedInput), errors.Is(err, errors.ErrUnknownEvent):
		d.metrics.IncrDropped(observability.ReasonMalformed)
	}

	sink, ok := d.sessions.SinkFor(connID)
	if !ok {
		return
	}
	session, _ := d.sessions.Lookup(connID)
	evt := event.ErrorOccurred{Room: session.RoomID, Message: err.Error(), Code: errors.Code(err)}
	if err := sink.Consume(ctx, evt); err != nil {
		d.log.Warn("Failed to deliver error", "conn_id", connID, "error", err)
	}
}

// Disconnect is terminal: the session, if any, is closed and the connection forgotten.
// A second call for the same connection is a no-op.
func (d *Dispatcher) Disconnect(ctx context.Context, connID classroom.ConnID) {
	d.leave(ctx, connID)
	d.sessions.Detach(connID)
	d.refreshPresence()
	d.log.Debug("Connection detached", "conn_id", connID)
}

func (d *Dispatcher) join(ctx context.Context, connID classroom.ConnID, cmd classroom.JoinCommand) error {
	if err := classroom.Validate(cmd); err != nil {
		return err
	}
	room, ok := d.rooms.Get(cmd.RoomID)
	if !ok {
		return errors.ErrRoomNotFound
	}

	// At most one session per connection: leave the current room first.
	if _, joined := d.sessions.Lookup(connID); joined {
		d.leave(ctx, connID)
	}

	lane := d.lane(room.ID)
	lane.Lock()
	defer lane.Unlock()

	displayName := strings.TrimSpace(cmd.DisplayName)
	user := room.AddUser(connID, displayName, d.colors())
	d.sessions.Register(classroom.Session{ConnID: connID, RoomID: room.ID, DisplayName: displayName})

	d.broadcast(ctx, event.UserJoined{
		Room:        room.ID,
		ConnID:      connID,
		DisplayName: user.DisplayName,
		Color:       user.Color,
		UserCount:   room.UserCount(),
	})
	d.send(ctx, connID, event.ClassroomState{Room: room.ID, Snapshot: room.Snapshot()})

	d.refreshPresence()
	d.log.Info("Participant joined", "conn_id", connID, "room_id", room.ID, "display_name", displayName)
	return nil
}

func (d *Dispatcher) leave(ctx context.Context, connID classroom.ConnID) {
	session, ok := d.sessions.Lookup(connID)
	if !ok {
		return
	}
	room, ok := d.rooms.Get(session.RoomID)
	if !ok {
		d.sessions.Remove(connID)
		return
	}

	lane := d.lane(room.ID)
	lane.Lock()
	defer lane.Unlock()

	// Re-check under the lane: a concurrent disconnect may have won.
	if _, ok := d.sessions.Remove(connID); !ok {
		return
	}
	room.RemoveUser(connID)

	d.broadcast(ctx, event.UserLeft{
		Room:        room.ID,
		ConnID:      connID,
		DisplayName: session.DisplayName,
		UserCount:   room.UserCount(),
	})

	d.refreshPresence()
	d.log.Info("Participant left", "conn_id", connID, "room_id", room.ID)
}

// mutate applies a note or poll event on the room of the sender.
func (d *Dispatcher) mutate(ctx context.Context, connID classroom.ConnID, cmd classroom.Command) error {
	session, ok := d.sessions.Lookup(connID)
	if !ok {
		d.metrics.IncrDropped(observability.ReasonUnauthorized)
		d.log.Debug("Dropping event without session", "conn_id", connID, "event", cmd.EventName(),
			"error", errors.ErrUnauthorizedAction)
		return nil
	}
	if err := classroom.Validate(cmd); err != nil {
		return err
	}
	room, ok := d.rooms.Get(session.RoomID)
	if !ok {
		d.metrics.IncrDropped(observability.ReasonUnauthorized)
		return nil
	}

	lane := d.lane(room.ID)
	lane.Lock()
	defer lane.Unlock()

	evt, err := d.apply(room, session, cmd)
	switch {
	case errors.Is(err, errors.ErrNoteNotFound), errors.Is(err, errors.ErrPollNotFound):
		d.metrics.IncrDropped(observability.ReasonNotFound)
		d.log.Debug("Target already absent", "conn_id", connID, "event", cmd.EventName())
		return nil
	case err != nil:
		return err
	case evt == nil:
		return nil
	}

	d.broadcast(ctx, evt)
	return nil
}

// apply runs the aggregate operation matching cmd and builds the event to broadcast.
func (d *Dispatcher) apply(room *classroom.Room, session classroom.Session, cmd classroom.Command) (event.DomainEvent, error) {
	switch c := cmd.(type) {
	case classroom.AddNoteCommand:
		content, lang := d.sanitize(c.Content)
		note := room.AddNote(content, c.Color, c.X, c.Y, session.ConnID, session.DisplayName,
			classroom.WithLanguage(lang))
		return event.NoteAdded{Room: room.ID, Note: note}, nil

	case classroom.UpdateNoteCommand:
		update := classroom.NoteUpdate{Color: c.Color, X: c.X, Y: c.Y}
		if c.Content != nil {
			content, lang := d.sanitize(*c.Content)
			update.Content = lo.ToPtr(content)
			update.Language = lo.ToPtr(lang)
		}
		note, err := room.UpdateNote(c.NoteID, update)
		if err != nil {
			return nil, err
		}
		return event.NoteUpdated{Room: room.ID, Note: note}, nil

	case classroom.DeleteNoteCommand:
		if !room.DeleteNote(c.NoteID) {
			return nil, errors.ErrNoteNotFound
		}
		return event.NoteDeleted{Room: room.ID, NoteID: c.NoteID}, nil

	case classroom.CreatePollCommand:
		question, _ := d.sanitize(c.Question)
		options := lo.Map(c.Options, func(option string, _ int) string {
			censored, _ := d.sanitize(option)
			return censored
		})
		poll := room.CreatePoll(question, options, session.ConnID, session.DisplayName)
		return event.PollCreated{Room: room.ID, Poll: poll}, nil

	case classroom.VotePollCommand:
		poll, err := room.AddPollResponse(c.PollID, session.ConnID, *c.OptionIndex)
		if err != nil {
			return nil, err
		}
		return event.PollUpdated{Room: room.ID, Poll: poll}, nil

	case classroom.DeletePollCommand:
		if !room.DeletePoll(c.PollID) {
			return nil, errors.ErrPollNotFound
		}
		return event.PollDeleted{Room: room.ID, PollID: c.PollID}, nil

	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, cmd.EventName())
	}
}

// sanitize censors text and detects its language when moderation is enabled.
func (d *Dispatcher) sanitize(text string) (string, string) {
	if d.moderator == nil {
		return text, ""
	}
	censored, words := d.moderator.Censor(text)
	if len(words) > 0 {
		d.log.Debug("Censored words found", "count", len(words))
	}
	return censored, d.moderator.Language(text)
}

// broadcast delivers evt to every member of its room, then hands it to the permanent sinks.
// Must be called with the room lane held.
func (d *Dispatcher) broadcast(ctx context.Context, evt event.DomainEvent) {
	sinks := d.sessions.SinksForRoom(evt.RoomID())
	for _, sink := range sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			d.metrics.IncrDropped(dropReason(err))
			d.log.Warn("Failed to deliver event", "room_id", evt.RoomID(), "event", evt.Name(), "error", err)
		}
	}
	d.metrics.AddBroadcast(len(sinks))

	select {
	case d.domainEvents <- evt:
	default:
		d.log.Debug("Permanent sinks lagging, event lost", "event", evt.Name())
	}
}

// dropReason tells a slow connection apart from one already closed by its transport.
func dropReason(err error) string {
	if errors.Is(err, errors.ErrConnectionClosed) {
		return observability.ReasonConnectionClosed
	}
	return observability.ReasonSinkFull
}

// send delivers evt to a single connection.
func (d *Dispatcher) send(ctx context.Context, connID classroom.ConnID, evt event.DomainEvent) {
	sink, ok := d.sessions.SinkFor(connID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, evt); err != nil {
		d.log.Warn("Failed to deliver event", "conn_id", connID, "event", evt.Name(), "error", err)
	}
}

// lane returns the mutual exclusion scope of a room. Unrelated rooms never contend.
func (d *Dispatcher) lane(roomID classroom.RoomID) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lane, ok := d.lanes[roomID]
	if !ok {
		lane = &sync.Mutex{}
		d.lanes[roomID] = lane
	}
	return lane
}

func (d *Dispatcher) refreshPresence() {
	d.metrics.SetPresence(d.sessions.Counts())
	d.metrics.SetRooms(d.rooms.Len())
}
