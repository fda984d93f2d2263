package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
)

const selectMessages = `select messages.id,
							   messages.room_id,
							   rooms.name,
							   messages.author_id,
							   users.username,
							   users.avatar,
							   messages.body,
							   messages.created_at,
							   messages.updated_at
						  from messages
						  join rooms
							on rooms.id = messages.room_id
						  join users
							on users.id = messages.author_id`

const orderMessagesNewest = ` order by messages.created_at desc, messages.id desc`

func (s *Store) queryMessages(ctx context.Context, sql string, args ...interface{}) ([]Message, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		err = rows.Scan(&m.ID, &m.RoomID, &m.RoomName, &m.AuthorID, &m.AuthorUsername, &m.AuthorAvatar,
			&m.Body, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	s.logger.Debugf("Retrieved %d messages", len(messages))

	return messages, nil
}

// CreateMessage creates new message in room and adds author to room participants in one transaction.
// Adding a user who already participates is a no-op.
func (s *Store) CreateMessage(ctx context.Context, room, author int64, body string) (int64, error) {
	s.logger.Debugf("Creating message from user (id: %d) in room (id: %d)", author, room)

	var id int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		sql := "insert into messages (room_id, author_id, body) values ($1, $2, $3) returning id"
		if err := tx.QueryRow(ctx, sql, room, author, body).Scan(&id); err != nil {
			return err
		}

		sql = "insert into room_participants (room_id, user_id) values ($1, $2) on conflict do nothing"
		_, err := tx.Exec(ctx, sql, room, author)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			switch pgErr.ConstraintName {
			case "messages_room_id_fkey", "room_participants_room_id_fkey":
				return 0, ErrRoomNotExist
			case "messages_author_id_fkey", "room_participants_user_id_fkey":
				return 0, ErrUserNotExist
			}
		}
		return 0, err
	}

	return id, nil
}

// MessageByID returns message with provided id or ErrMessageNotExist
func (s *Store) MessageByID(ctx context.Context, id int64) (Message, error) {
	var m Message
	err := s.db.QueryRow(ctx, selectMessages+" where messages.id = $1", id).Scan(
		&m.ID, &m.RoomID, &m.RoomName, &m.AuthorID, &m.AuthorUsername, &m.AuthorAvatar,
		&m.Body, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, ErrMessageNotExist
		}
		return Message{}, err
	}
	return m, nil
}

// MessagesByRoom returns room messages sorted by creation time (from earliest to latest)
func (s *Store) MessagesByRoom(ctx context.Context, room int64) ([]Message, error) {
	s.logger.Debugf("Retrieving messages for room (id: %d)", room)

	return s.queryMessages(ctx, selectMessages+
		" where messages.room_id = $1 order by messages.created_at asc, messages.id asc", room)
}

// MessagesByAuthor returns messages written by provided user (from latest to earliest)
func (s *Store) MessagesByAuthor(ctx context.Context, author int64) ([]Message, error) {
	s.logger.Debugf("Retrieving messages by user (id: %d)", author)

	return s.queryMessages(ctx, selectMessages+" where messages.author_id = $1"+orderMessagesNewest, author)
}

// MessagesByTopic returns messages from rooms whose topic name contains q (case-insensitive)
func (s *Store) MessagesByTopic(ctx context.Context, q string) ([]Message, error) {
	s.logger.Debugf("Retrieving messages by topic (q: %q)", q)

	sql := selectMessages + `
		join topics
		  on topics.id = rooms.topic_id
	   where topics.name ilike $1` + orderMessagesNewest

	return s.queryMessages(ctx, sql, containsPattern(q))
}

// RecentMessages returns every message across all rooms (from latest to earliest)
func (s *Store) RecentMessages(ctx context.Context) ([]Message, error) {
	s.logger.Debug("Retrieving all messages")

	return s.queryMessages(ctx, selectMessages+orderMessagesNewest)
}

// DeleteMessage deletes message and, when it was the author's last message in its room,
// removes the author from room participants. Deleting a missing message is a no-op.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	s.logger.Debugf("Deleting message (id: %d)", id)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		var room, author int64
		sql := "delete from messages where id = $1 returning room_id, author_id"
		err := tx.QueryRow(ctx, sql, id).Scan(&room, &author)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		var left int64
		sql = "select count(*) from messages where room_id = $1 and author_id = $2"
		if err := tx.QueryRow(ctx, sql, room, author).Scan(&left); err != nil {
			return err
		}

		if left == 0 {
			s.logger.Debugf("Removing user (id: %d) from participants of room (id: %d)", author, room)

			sql = "delete from room_participants where room_id = $1 and user_id = $2"
			if _, err := tx.Exec(ctx, sql, room, author); err != nil {
				return err
			}
		}

		return nil
	})
}
