package errors

import (
	goerrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrRoomNotFound       = fmt.Errorf("classroom not found")
	ErrUnauthorizedAction = fmt.Errorf("no session bound to connection")
	ErrNoteNotFound       = fmt.Errorf("note not found")
	ErrPollNotFound       = fmt.Errorf("poll not found")
	ErrMalformedInput     = fmt.Errorf("malformed input")
	ErrInvalidOption      = fmt.Errorf("%w: option index out of range", ErrMalformedInput)
	ErrUnknownEvent       = fmt.Errorf("unknown event")
	ErrConnectionClosed   = fmt.Errorf("connection closed")
	ErrSinkFull           = fmt.Errorf("sink buffer full")
	ErrInvalidCursor      = fmt.Errorf("invalid cursor")
)

// Wire codes carried by the error event.
const (
	CodeRoomNotFound   = "room-not-found"
	CodeMalformedInput = "malformed-input"
	CodeUnknownEvent   = "unknown-event"
	CodeInternal       = "internal"
)

func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// Code maps an error reported to a sender onto its wire code.
func Code(err error) string {
	switch {
	case goerrors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case goerrors.Is(err, ErrMalformedInput):
		return CodeMalformedInput
	case goerrors.Is(err, ErrUnknownEvent):
		return CodeUnknownEvent
	default:
		return CodeInternal
	}
}
