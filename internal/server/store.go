package server

import (
	"context"

	"studybud/internal/storage"
)

// Store is the set of storage.Store methods the handlers depend on
type Store interface {
	CreateUser(ctx context.Context, u storage.NewUser) (int64, error)
	UserByID(ctx context.Context, id int64) (storage.User, error)
	UserByUsername(ctx context.Context, username string) (storage.User, error)
	UpdateUser(ctx context.Context, u storage.User) error

	Topics(ctx context.Context, q string, limit int) ([]storage.Topic, error)

	CreateRoom(ctx context.Context, host int64, topicName, name, description string) (int64, error)
	UpdateRoom(ctx context.Context, id int64, topicName, name, description string) error
	DeleteRoom(ctx context.Context, id int64) error
	RoomByID(ctx context.Context, id int64) (storage.Room, error)
	SearchRooms(ctx context.Context, q string) ([]storage.Room, error)
	RoomsByHost(ctx context.Context, host int64) ([]storage.Room, error)
	Participants(ctx context.Context, room int64) ([]storage.User, error)

	CreateMessage(ctx context.Context, room, author int64, body string) (int64, error)
	MessageByID(ctx context.Context, id int64) (storage.Message, error)
	MessagesByRoom(ctx context.Context, room int64) ([]storage.Message, error)
	MessagesByAuthor(ctx context.Context, author int64) ([]storage.Message, error)
	MessagesByTopic(ctx context.Context, q string) ([]storage.Message, error)
	RecentMessages(ctx context.Context) ([]storage.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

var _ Store = (*storage.Store)(nil)
