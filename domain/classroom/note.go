package classroom

import "time"

type NoteID string

// Note is a positionable, colored annotation on the classroom board.
type Note struct {
	ID        NoteID    `json:"id"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	OwnerID   ConnID    `json:"ownerId"`
	OwnerName string    `json:"ownerName"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteOption decorates a note at creation time.
type NoteOption func(*Note)

func WithLanguage(lang string) NoteOption {
	return func(n *Note) { n.Language = lang }
}

// NoteUpdate carries the fields of an update-note event.
// A nil field keeps the current value.
type NoteUpdate struct {
	Content  *string
	Color    *string
	X        *float64
	Y        *float64
	Language *string
}

func (n *Note) apply(u NoteUpdate, at time.Time) {
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Color != nil {
		n.Color = *u.Color
	}
	if u.X != nil {
		n.X = *u.X
	}
	if u.Y != nil {
		n.Y = *u.Y
	}
	if u.Language != nil {
		n.Language = *u.Language
	}
	n.UpdatedAt = at
}
