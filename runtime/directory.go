package runtime

import (
	"classroom-lab/contract"
	"classroom-lab/domain/classroom"
	"sync"
)

var _ contract.ISessionDirectory = (*Directory)(nil)

type Set map[classroom.ConnID]struct{}

// Directory is the session directory of the process.
// It knows every attached connection, the session of every joined connection,
// and the members of every classroom broadcast group.
type Directory struct {
	mu          sync.RWMutex
	connections map[classroom.ConnID]contract.EventSink // map connection -> Sink
	sessions    map[classroom.ConnID]classroom.Session  // map connection -> Session
	roomMembers map[classroom.RoomID]Set                // map room to connections
}

func NewDirectory() *Directory {
	return &Directory{
		connections: make(map[classroom.ConnID]contract.EventSink),
		sessions:    make(map[classroom.ConnID]classroom.Session),
		roomMembers: make(map[classroom.RoomID]Set),
	}
}

// Attach records the outbound sink of a freshly opened connection.
func (d *Directory) Attach(connID classroom.ConnID, sink contract.EventSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connections[connID] = sink
}

// Detach forgets a connection. Its session, if any, must be removed first.
func (d *Directory) Detach(connID classroom.ConnID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.connections, connID)
}

func (d *Directory) SinkFor(connID classroom.ConnID) (contract.EventSink, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sink, ok := d.connections[connID]
	return sink, ok
}

// Register binds a connection to a classroom and adds it to the room group.
// A previous session of the same connection is replaced.
func (d *Directory) Register(session classroom.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if previous, ok := d.sessions[session.ConnID]; ok {
		d.leaveGroup(previous)
	}
	d.sessions[session.ConnID] = session

	if _, ok := d.roomMembers[session.RoomID]; !ok {
		d.roomMembers[session.RoomID] = make(Set)
	}
	d.roomMembers[session.RoomID][session.ConnID] = struct{}{}
}

func (d *Directory) Lookup(connID classroom.ConnID) (classroom.Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	session, ok := d.sessions[connID]
	return session, ok
}

// Remove unbinds a connection from its classroom.
// It returns the removed session, or false when the connection had none.
func (d *Directory) Remove(connID classroom.ConnID) (classroom.Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[connID]
	if !ok {
		return classroom.Session{}, false
	}
	delete(d.sessions, connID)
	d.leaveGroup(session)
	return session, true
}

// SinksForRoom resolves the members of a room group into their sinks.
// Returns nil if the room has no members.
func (d *Directory) SinksForRoom(roomID classroom.RoomID) []contract.EventSink {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members, ok := d.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connID := range members {
		if sink, exists := d.connections[connID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Counts returns the number of attached connections and of joined sessions.
func (d *Directory) Counts() (connections, sessions int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.connections), len(d.sessions)
}

// leaveGroup drops the connection from its room set, removing empty sets.
func (d *Directory) leaveGroup(session classroom.Session) {
	if members, ok := d.roomMembers[session.RoomID]; ok {
		delete(members, session.ConnID)
		if len(members) == 0 {
			delete(d.roomMembers, session.RoomID)
		}
	}
}
