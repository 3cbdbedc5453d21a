package classroom

import (
	"classroom-lab/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Inbound client event names.
const (
	JoinEvent       = "join-classroom"
	LeaveEvent      = "leave-classroom"
	AddNoteEvent    = "add-note"
	UpdateNoteEvent = "update-note"
	DeleteNoteEvent = "delete-note"
	CreatePollEvent = "create-poll"
	VotePollEvent   = "vote-poll"
	DeletePollEvent = "delete-poll"
)

// Command is an inbound client intent, already decoded from the wire.
type Command interface {
	EventName() string
}

type JoinCommand struct {
	RoomID      RoomID `json:"roomId" validate:"required"`
	DisplayName string `json:"displayName" validate:"notblank,max=64"`
}

type LeaveCommand struct{}

type AddNoteCommand struct {
	Content string  `json:"content" validate:"notblank,max=2000"`
	Color   string  `json:"color" validate:"max=64"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type UpdateNoteCommand struct {
	NoteID  NoteID   `json:"noteId" validate:"required"`
	Content *string  `json:"content" validate:"omitnil,notblank,max=2000"`
	Color   *string  `json:"color" validate:"omitnil,max=64"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
}

type DeleteNoteCommand struct {
	NoteID NoteID `json:"noteId" validate:"required"`
}

type CreatePollCommand struct {
	Question string   `json:"question" validate:"notblank,max=500"`
	Options  []string `json:"options" validate:"min=2,max=20,dive,notblank,max=200"`
}

type VotePollCommand struct {
	PollID      PollID `json:"pollId" validate:"required"`
	OptionIndex *int   `json:"optionIndex" validate:"required,min=0"`
}

type DeletePollCommand struct {
	PollID PollID `json:"pollId" validate:"required"`
}

func (JoinCommand) EventName() string       { return JoinEvent }
func (LeaveCommand) EventName() string      { return LeaveEvent }
func (AddNoteCommand) EventName() string    { return AddNoteEvent }
func (UpdateNoteCommand) EventName() string { return UpdateNoteEvent }
func (DeleteNoteCommand) EventName() string { return DeleteNoteEvent }
func (CreatePollCommand) EventName() string { return CreatePollEvent }
func (VotePollCommand) EventName() string   { return VotePollEvent }
func (DeletePollCommand) EventName() string { return DeletePollEvent }

// Validate checks the command fields, wrapping any violation in ErrMalformedInput.
func Validate(cmd Command) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrMalformedInput, cmd.EventName(), err)
	}
	return nil
}
