package storage

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser holds the fields accepted at registration
type NewUser struct {
	Username     string
	PasswordHash string
	Name         string
	Email        string
}

// Topic carries the number of rooms filed under it when it is read through Topics
type Topic struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	RoomCount int64  `json:"room_count"`
}

type Room struct {
	ID               int64     `json:"id"`
	HostID           int64     `json:"host_id"`
	HostUsername     string    `json:"host"`
	TopicID          int64     `json:"topic_id"`
	TopicName        string    `json:"topic"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ParticipantCount int64     `json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Message struct {
	ID             int64     `json:"id"`
	RoomID         int64     `json:"room_id"`
	RoomName       string    `json:"room"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author"`
	AuthorAvatar   string    `json:"-"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
