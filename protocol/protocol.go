// Package protocol maps websocket frames to classroom commands and domain events to frames.
// Every frame is a JSON envelope {"event": "<name>", "data": {...}}.
package protocol

import (
	"bytes"
	"classroom-lab/domain/classroom"
	"classroom-lab/domain/event"
	"classroom-lab/errors"
	"encoding/json"
	"fmt"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode parses one inbound frame. It never validates field contents,
// the dispatcher does that once the sender is resolved.
func Decode(frame []byte) (classroom.Command, error) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedInput, err)
	}

	switch envelope.Event {
	case classroom.JoinEvent:
		return decodeData[classroom.JoinCommand](envelope)
	case classroom.LeaveEvent:
		return classroom.LeaveCommand{}, nil
	case classroom.AddNoteEvent:
		return decodeData[classroom.AddNoteCommand](envelope)
	case classroom.UpdateNoteEvent:
		return decodeData[classroom.UpdateNoteCommand](envelope)
	case classroom.DeleteNoteEvent:
		return decodeData[classroom.DeleteNoteCommand](envelope)
	case classroom.CreatePollEvent:
		return decodeData[classroom.CreatePollCommand](envelope)
	case classroom.VotePollEvent:
		return decodeData[classroom.VotePollCommand](envelope)
	case classroom.DeletePollEvent:
		return decodeData[classroom.DeletePollCommand](envelope)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, envelope.Event)
	}
}

func decodeData[C classroom.Command](envelope Envelope) (classroom.Command, error) {
	var cmd C
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: %s: missing data", errors.ErrMalformedInput, envelope.Event)
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrMalformedInput, envelope.Event, err)
	}
	return cmd, nil
}

// Encode renders an outbound domain event as a frame.
func Encode(evt event.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: string(evt.Name()), Data: data})
}

// Payload returns the data part of an event as a generic map.
func Payload(evt event.DomainEvent) (map[string]any, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
