package classroom

import "time"

type ConnID string

// User is a participant currently present in a classroom.
type User struct {
	ConnID      ConnID    `json:"connId"`
	DisplayName string    `json:"displayName"`
	Color       string    `json:"color"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Session binds a connection to the classroom it joined.
// It exists iff a User with the same ConnID is present in that room.
type Session struct {
	ConnID      ConnID
	RoomID      RoomID
	DisplayName string
}
