// Package event defines the server-to-client events produced by the dispatcher.
// Each event knows the classroom it belongs to and its wire name.
package event

import (
	"classroom-lab/domain/classroom"
)

type Name string

const (
	ClassroomStateName Name = "classroom-state"
	NoteAddedName      Name = "note-added"
	NoteUpdatedName    Name = "note-updated"
	NoteDeletedName    Name = "note-deleted"
	PollCreatedName    Name = "poll-created"
	PollUpdatedName    Name = "poll-updated"
	PollDeletedName    Name = "poll-deleted"
	UserJoinedName     Name = "user-joined"
	UserLeftName       Name = "user-left"
	ErrorName          Name = "error"
)

type DomainEvent interface {
	RoomID() classroom.RoomID
	Name() Name
}

// ClassroomState is sent once, to the joiner only.
type ClassroomState struct {
	Room classroom.RoomID `json:"-"`
	classroom.Snapshot
}

type NoteAdded struct {
	Room classroom.RoomID `json:"-"`
	classroom.Note
}

type NoteUpdated struct {
	Room classroom.RoomID `json:"-"`
	classroom.Note
}

type NoteDeleted struct {
	Room   classroom.RoomID `json:"-"`
	NoteID classroom.NoteID `json:"noteId"`
}

type PollCreated struct {
	Room classroom.RoomID `json:"-"`
	classroom.Poll
}

type PollUpdated struct {
	Room classroom.RoomID `json:"-"`
	classroom.Poll
}

type PollDeleted struct {
	Room   classroom.RoomID `json:"-"`
	PollID classroom.PollID `json:"pollId"`
}

type UserJoined struct {
	Room        classroom.RoomID `json:"-"`
	ConnID      classroom.ConnID `json:"connId"`
	DisplayName string           `json:"displayName"`
	Color       string           `json:"color"`
	UserCount   int              `json:"userCount"`
}

type UserLeft struct {
	Room        classroom.RoomID `json:"-"`
	ConnID      classroom.ConnID `json:"connId"`
	DisplayName string           `json:"displayName"`
	UserCount   int              `json:"userCount"`
}

// ErrorOccurred is always addressed to the originating connection, never broadcast.
type ErrorOccurred struct {
	Room    classroom.RoomID `json:"-"`
	Message string           `json:"message"`
	Code    string           `json:"code"`
}

func (e ClassroomState) RoomID() classroom.RoomID { return e.Room }
func (e NoteAdded) RoomID() classroom.RoomID      { return e.Room }
func (e NoteUpdated) RoomID() classroom.RoomID    { return e.Room }
func (e NoteDeleted) RoomID() classroom.RoomID    { return e.Room }
func (e PollCreated) RoomID() classroom.RoomID    { return e.Room }
func (e PollUpdated) RoomID() classroom.RoomID    { return e.Room }
func (e PollDeleted) RoomID() classroom.RoomID    { return e.Room }
func (e UserJoined) RoomID() classroom.RoomID     { return e.Room }
func (e UserLeft) RoomID() classroom.RoomID       { return e.Room }
func (e ErrorOccurred) RoomID() classroom.RoomID  { return e.Room }

func (ClassroomState) Name() Name { return ClassroomStateName }
func (NoteAdded) Name() Name      { return NoteAddedName }
func (NoteUpdated) Name() Name    { return NoteUpdatedName }
func (NoteDeleted) Name() Name    { return NoteDeletedName }
func (PollCreated) Name() Name    { return PollCreatedName }
func (PollUpdated) Name() Name    { return PollUpdatedName }
func (PollDeleted) Name() Name    { return PollDeletedName }
func (UserJoined) Name() Name     { return UserJoinedName }
func (UserLeft) Name() Name       { return UserLeftName }
func (ErrorOccurred) Name() Name  { return ErrorName }
