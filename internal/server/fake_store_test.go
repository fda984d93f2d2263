package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"studybud/internal/storage"
)

// fakeStore keeps everything in memory and mirrors storage.Store semantics closely enough for handler tests
type fakeStore struct {
	mu           sync.Mutex
	seq          int64
	users        map[int64]storage.User
	topics       map[int64]storage.Topic
	rooms        map[int64]storage.Room
	messages     map[int64]storage.Message
	participants map[int64]map[int64]bool
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[int64]storage.User),
		topics:       make(map[int64]storage.Topic),
		rooms:        make(map[int64]storage.Room),
		messages:     make(map[int64]storage.Message),
		participants: make(map[int64]map[int64]bool),
	}
}

func (s *fakeStore) next() int64 {
	s.seq++
	return s.seq
}

// clock advances one millisecond per call so orderings by time are deterministic
func (s *fakeStore) clock() time.Time {
	return time.Unix(1600000000, 0).Add(time.Duration(s.seq) * time.Millisecond)
}

func contains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}

func (s *fakeStore) uniqueUser(u storage.User) error {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return storage.ErrUserExists
		}
		if u.Email != "" && other.Email == u.Email {
			return storage.ErrEmailExists
		}
	}
	return nil
}

func (s *fakeStore) CreateUser(_ context.Context, nu storage.NewUser) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := storage.User{
		Username:     strings.ToLower(nu.Username),
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		Email:        nu.Email,
		Avatar:       "avatar.svg",
	}
	if err := s.uniqueUser(u); err != nil {
		return 0, err
	}

	u.ID = s.next()
	u.CreatedAt = s.clock()
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *fakeStore) UserByID(_ context.Context, id int64) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.User{}, storage.ErrUserNotExist
	}
	return u, nil
}

func (s *fakeStore) UserByUsername(_ context.Context, username string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == strings.ToLower(username) {
			return u, nil
		}
	}
	return storage.User{}, storage.ErrUserNotExist
}

func (s *fakeStore) UpdateUser(_ context.Context, u storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[u.ID]
	if !ok {
		return storage.ErrUserNotExist
	}

	u.Username = strings.ToLower(u.Username)
	if u.Avatar == "" {
		u.Avatar = "avatar.svg"
	}
	if err := s.uniqueUser(u); err != nil {
		return err
	}

	u.PasswordHash = old.PasswordHash
	u.CreatedAt = old.CreatedAt
	s.users[u.ID] = u
	return nil
}

func (s *fakeStore) topic(name string) storage.Topic {
	for _, t := range s.topics {
		if t.Name == name {
			return t
		}
	}
	t := storage.Topic{ID: s.next(), Name: name}
	s.topics[t.ID] = t
	return t
}

func (s *fakeStore) Topics(_ context.Context, q string, limit int) ([]storage.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics := make([]storage.Topic, 0)
	for _, t := range s.topics {
		if !contains(t.Name, q) {
			continue
		}
		t.RoomCount = 0
		for _, r := range s.rooms {
			if r.TopicID == t.ID {
				t.RoomCount++
			}
		}
		topics = append(topics, t)
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].RoomCount != topics[j].RoomCount {
			return topics[i].RoomCount > topics[j].RoomCount
		}
		return topics[i].Name < topics[j].Name
	})

	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

func (s *fakeStore) CreateRoom(_ context.Context, host int64, topicName, name, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topicName = strings.TrimSpace(topicName)
	if topicName == "" {
		return 0, storage.ErrTopicBlankName
	}
	if _, ok := s.users[host]; !ok {
		return 0, storage.ErrUserNotExist
	}

	t := s.topic(topicName)
	r := storage.Room{
		ID:          s.next(),
		HostID:      host,
		TopicID:     t.ID,
		Name:        name,
		Description: description,
	}
	r.CreatedAt = s.clock()
	r.UpdatedAt = r.CreatedAt
	s.rooms[r.ID] = r
	return r.ID, nil
}

func (s *fakeStore) UpdateRoom(_ context.Context, id int64, topicName, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topicName = strings.TrimSpace(topicName)
	if topicName == "" {
		return storage.ErrTopicBlankName
	}

	r, ok := s.rooms[id]
	if !ok {
		return storage.ErrRoomNotExist
	}

	r.TopicID = s.topic(topicName).ID
	r.Name = name
	r.Description = description
	s.next()
	r.UpdatedAt = s.clock()
	s.rooms[id] = r
	return nil
}

func (s *fakeStore) DeleteRoom(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, id)
	delete(s.participants, id)
	for mid, m := range s.messages {
		if m.RoomID == id {
			delete(s.messages, mid)
		}
	}
	return nil
}

// fill resolves denormalized fields the way the SQL joins do
func (s *fakeStore) fill(r storage.Room) storage.Room {
	r.HostUsername = s.users[r.HostID].Username
	r.TopicName = s.topics[r.TopicID].Name
	r.ParticipantCount = int64(len(s.participants[r.ID]))
	return r
}

func (s *fakeStore) RoomByID(_ context.Context, id int64) (storage.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return storage.Room{}, storage.ErrRoomNotExist
	}
	return s.fill(r), nil
}

func (s *fakeStore) sortedRooms(keep func(storage.Room) bool) []storage.Room {
	rooms := make([]storage.Room, 0)
	for _, r := range s.rooms {
		r = s.fill(r)
		if keep(r) {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].UpdatedAt.Equal(rooms[j].UpdatedAt) {
			return rooms[i].UpdatedAt.After(rooms[j].UpdatedAt)
		}
		return rooms[i].ID > rooms[j].ID
	})
	return rooms
}

func (s *fakeStore) SearchRooms(_ context.Context, q string) ([]storage.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedRooms(func(r storage.Room) bool {
		return contains(r.TopicName, q) || contains(r.Name, q) || contains(r.Description, q)
	}), nil
}

func (s *fakeStore) RoomsByHost(_ context.Context, host int64) ([]storage.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedRooms(func(r storage.Room) bool { return r.HostID == host }), nil
}

func (s *fakeStore) Participants(_ context.Context, room int64) ([]storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]storage.User, 0)
	for id := range s.participants[room] {
		users = append(users, s.users[id])
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *fakeStore) CreateMessage(_ context.Context, room, author int64, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room]; !ok {
		return 0, storage.ErrRoomNotExist
	}
	if _, ok := s.users[author]; !ok {
		return 0, storage.ErrUserNotExist
	}

	m := storage.Message{ID: s.next(), RoomID: room, AuthorID: author, Body: body}
	m.CreatedAt = s.clock()
	m.UpdatedAt = m.CreatedAt
	s.messages[m.ID] = m

	if s.participants[room] == nil {
		s.participants[room] = make(map[int64]bool)
	}
	s.participants[room][author] = true

	return m.ID, nil
}

func (s *fakeStore) fillMessage(m storage.Message) storage.Message {
	m.RoomName = s.rooms[m.RoomID].Name
	m.AuthorUsername = s.users[m.AuthorID].Username
	m.AuthorAvatar = s.users[m.AuthorID].Avatar
	return m
}

func (s *fakeStore) MessageByID(_ context.Context, id int64) (storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return storage.Message{}, storage.ErrMessageNotExist
	}
	return s.fillMessage(m), nil
}

func (s *fakeStore) sortedMessages(keep func(storage.Message) bool, newest bool) []storage.Message {
	messages := make([]storage.Message, 0)
	for _, m := range s.messages {
		if keep(m) {
			messages = append(messages, s.fillMessage(m))
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if newest {
			return messages[i].ID > messages[j].ID
		}
		return messages[i].ID < messages[j].ID
	})
	return messages
}

func (s *fakeStore) MessagesByRoom(_ context.Context, room int64) ([]storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedMessages(func(m storage.Message) bool { return m.RoomID == room }, false), nil
}

func (s *fakeStore) MessagesByAuthor(_ context.Context, author int64) ([]storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedMessages(func(m storage.Message) bool { return m.AuthorID == author }, true), nil
}

func (s *fakeStore) MessagesByTopic(_ context.Context, q string) ([]storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedMessages(func(m storage.Message) bool {
		r := s.rooms[m.RoomID]
		return contains(s.topics[r.TopicID].Name, q)
	}, true), nil
}

func (s *fakeStore) RecentMessages(_ context.Context) ([]storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedMessages(func(storage.Message) bool { return true }, true), nil
}

func (s *fakeStore) DeleteMessage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil
	}
	delete(s.messages, id)

	for _, other := range s.messages {
		if other.RoomID == m.RoomID && other.AuthorID == m.AuthorID {
			return nil
		}
	}
	delete(s.participants[m.RoomID], m.AuthorID)
	return nil
}
