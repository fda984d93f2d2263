package storage

import (
	"context"
	"strings"
)

// getOrCreateTopic resolves topic by exact name, inserting it when absent.
// The no-op update makes "returning" yield the row in both cases, so concurrent
// callers with the same name serialize on the unique index instead of racing.
func getOrCreateTopic(ctx context.Context, q querier, name string) (Topic, error) {
	var t Topic
	sql := `insert into topics (name) values ($1)
			on conflict (name) do update set name = excluded.name
			returning id, name`
	err := q.QueryRow(ctx, sql, name).Scan(&t.ID, &t.Name)
	return t, err
}

// GetOrCreateTopic returns topic with provided name creating it if necessary
func (s *Store) GetOrCreateTopic(ctx context.Context, name string) (Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Topic{}, ErrTopicBlankName
	}

	return getOrCreateTopic(ctx, s.db, name)
}

// Topics returns topics whose name contains q (case-insensitive) annotated with their room count,
// ordered by room count (from largest) and then by name. limit <= 0 means no limit.
func (s *Store) Topics(ctx context.Context, q string, limit int) ([]Topic, error) {
	s.logger.Debugf("Retrieving topics (q: %q, limit: %d)", q, limit)

	var lim interface{}
	if limit > 0 {
		lim = int64(limit)
	}

	sql := `select topics.id,
				   topics.name,
				   count(rooms.id) as room_count
			  from topics
			  left join rooms
				on rooms.topic_id = topics.id
			 where topics.name ilike $1
			 group by topics.id, topics.name
			 order by room_count desc, topics.name asc
			 limit $2`

	rows, err := s.db.Query(ctx, sql, containsPattern(q), lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]Topic, 0)
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.RoomCount); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debugf("Retrieved %d topics", len(topics))

	return topics, nil
}
