package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
)

const selectRooms = `select rooms.id,
							rooms.host_id,
							users.username,
							rooms.topic_id,
							topics.name,
							rooms.name,
							rooms.description,
							(select count(*) from room_participants p where p.room_id = rooms.id),
							rooms.created_at,
							rooms.updated_at
					   from rooms
					   join users
						 on users.id = rooms.host_id
					   join topics
						 on topics.id = rooms.topic_id`

const orderRooms = ` order by rooms.updated_at desc, rooms.created_at desc, rooms.id desc`

func scanRooms(rows pgx.Rows) ([]Room, error) {
	defer rows.Close()

	rooms := make([]Room, 0)
	for rows.Next() {
		var r Room
		err := rows.Scan(&r.ID, &r.HostID, &r.HostUsername, &r.TopicID, &r.TopicName,
			&r.Name, &r.Description, &r.ParticipantCount, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

// CreateRoom resolves (or creates) topic by name and creates room hosted by provided user in one transaction
func (s *Store) CreateRoom(ctx context.Context, host int64, topicName, name, description string) (int64, error) {
	topicName = strings.TrimSpace(topicName)
	if topicName == "" {
		return 0, ErrTopicBlankName
	}

	s.logger.Debugf("Creating room (%s) in topic (%s) hosted by user (id: %d)", name, topicName, host)

	var id int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		topic, err := getOrCreateTopic(ctx, tx, topicName)
		if err != nil {
			return err
		}

		sql := "insert into rooms (host_id, topic_id, name, description) values ($1, $2, $3, $4) returning id"
		err = tx.QueryRow(ctx, sql, host, topic.ID, name, description).Scan(&id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return ErrUserNotExist
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debugf("Created room (%s) with id %d", name, id)

	return id, nil
}

// UpdateRoom re-resolves topic by name and overwrites room name, topic and description
func (s *Store) UpdateRoom(ctx context.Context, id int64, topicName, name, description string) error {
	topicName = strings.TrimSpace(topicName)
	if topicName == "" {
		return ErrTopicBlankName
	}

	s.logger.Debugf("Updating room (id: %d)", id)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		topic, err := getOrCreateTopic(ctx, tx, topicName)
		if err != nil {
			return err
		}

		sql := `update rooms
				   set topic_id = $2,
					   name = $3,
					   description = $4,
					   updated_at = now()
				 where id = $1`
		tag, err := tx.Exec(ctx, sql, id, topic.ID, name, description)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrRoomNotExist
		}
		return nil
	})
}

// DeleteRoom deletes room together with its messages and participants.
// Deleting a room which is already gone is not an error.
func (s *Store) DeleteRoom(ctx context.Context, id int64) error {
	s.logger.Debugf("Deleting room (id: %d)", id)

	tag, err := s.db.Exec(ctx, "delete from rooms where id = $1", id)
	if err != nil {
		return err
	}

	s.logger.Debugf("Deleted %d rooms", tag.RowsAffected())

	return nil
}

// RoomByID returns room with provided id or ErrRoomNotExist
func (s *Store) RoomByID(ctx context.Context, id int64) (Room, error) {
	var r Room
	err := s.db.QueryRow(ctx, selectRooms+" where rooms.id = $1", id).Scan(
		&r.ID, &r.HostID, &r.HostUsername, &r.TopicID, &r.TopicName,
		&r.Name, &r.Description, &r.ParticipantCount, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrRoomNotExist
		}
		return Room{}, err
	}
	return r, nil
}

// SearchRooms returns rooms where q is a case-insensitive substring of the topic name,
// the room name or the room description. Blank q matches every room.
func (s *Store) SearchRooms(ctx context.Context, q string) ([]Room, error) {
	s.logger.Debugf("Searching rooms (q: %q)", q)

	sql := selectRooms + `
		where topics.name ilike $1
		   or rooms.name ilike $1
		   or rooms.description ilike $1` + orderRooms

	rows, err := s.db.Query(ctx, sql, containsPattern(q))
	if err != nil {
		return nil, err
	}

	rooms, err := scanRooms(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("Retrieved %d rooms", len(rooms))

	return rooms, nil
}

// RoomsByHost returns rooms hosted by provided user
func (s *Store) RoomsByHost(ctx context.Context, host int64) ([]Room, error) {
	s.logger.Debugf("Retrieving rooms hosted by user (id: %d)", host)

	rows, err := s.db.Query(ctx, selectRooms+" where rooms.host_id = $1"+orderRooms, host)
	if err != nil {
		return nil, err
	}

	return scanRooms(rows)
}

// Participants returns users who posted in the room ordered by username
func (s *Store) Participants(ctx context.Context, room int64) ([]User, error) {
	s.logger.Debugf("Retrieving participants of room (id: %d)", room)

	sql := `select users.id, users.username, users.password_hash, users.name, users.email, users.bio, users.avatar, users.created_at
			  from room_participants
			  join users
				on users.id = room_participants.user_id
			 where room_participants.room_id = $1
			 order by users.username`

	rows, err := s.db.Query(ctx, sql, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
