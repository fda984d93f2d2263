package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

func TestAPIRoutes(t *testing.T) {
	_, srv := bootstrapServer(t)

	resp := newClient(t, srv).get("/api")
	require.Equal(t, http.StatusOK, resp.code)

	var p fastjson.Parser
	v, err := p.Parse(resp.body)
	require.NoError(t, err)

	routes, err := v.Array()
	require.NoError(t, err)
	require.Len(t, routes, len(apiRouteIndex))
}

func TestAPIRooms(t *testing.T) {
	s, srv := bootstrapServer(t)
	c := newClient(t, srv)

	c.register("quinn")
	c.createRoom("Python", "Asyncio", "event loops")
	c.createRoom("Go", "Goroutines", "")

	resp := c.get("/api/rooms?q=python")
	require.Equal(t, http.StatusOK, resp.code)

	var p fastjson.Parser
	v, err := p.Parse(resp.body)
	require.NoError(t, err)

	rooms := v.GetArray()
	require.Len(t, rooms, 1)
	require.Equal(t, "Asyncio", string(rooms[0].GetStringBytes("name")))
	require.Equal(t, "Python", string(rooms[0].GetStringBytes("topic")))
	require.Equal(t, "quinn", string(rooms[0].GetStringBytes("host")))
	require.Equal(t, roomID(t, s, "Asyncio"), rooms[0].GetInt64("id"))
}

func TestAPIRoom(t *testing.T) {
	s, srv := bootstrapServer(t)

	c := newClient(t, srv)
	c.register("rita")
	c.createRoom("Go", "Slices", "")
	id := roomID(t, s, "Slices")

	u, err := s.UserByUsername(context.Background(), "rita")
	require.NoError(t, err)
	u.Email = "rita@example.com"
	require.NoError(t, s.UpdateUser(context.Background(), u))

	c.post(urlFor("/room/{id}", id), url.Values{"body": {"append grows"}})

	resp := c.get(urlFor("/api/rooms/{id}", id))
	require.Equal(t, http.StatusOK, resp.code)

	var p fastjson.Parser
	v, err := p.Parse(resp.body)
	require.NoError(t, err)

	require.Equal(t, "Slices", string(v.GetStringBytes("name")))
	require.Equal(t, int64(1), v.GetInt64("participant_count"))

	messages := v.GetArray("messages")
	require.Len(t, messages, 1)
	require.Equal(t, "append grows", string(messages[0].GetStringBytes("body")))
	require.Equal(t, "rita", string(messages[0].GetStringBytes("author")))

	participants := v.GetArray("participants")
	require.Len(t, participants, 1)
	require.False(t, participants[0].Exists("email"))
	require.False(t, participants[0].Exists("password_hash"))

	resp = c.get("/api/rooms/999")
	require.Equal(t, http.StatusNotFound, resp.code)
	require.Equal(t, "Room does not exist\n", resp.body)
}

func TestAPICreateMessage(t *testing.T) {
	s, srv := bootstrapServer(t)

	c := newClient(t, srv)
	c.register("sam")
	c.createRoom("Go", "Select", "")
	id := roomID(t, s, "Select")
	endpoint := urlFor("/api/rooms/{id}/messages", id)

	resp := newClient(t, srv).postJSON(endpoint, `{"body":"anonymous"}`)
	require.Equal(t, http.StatusUnauthorized, resp.code)

	resp = c.postJSON(endpoint, `{"body":"non-blocking with default"}`)
	require.Equal(t, http.StatusCreated, resp.code)

	var p fastjson.Parser
	v, err := p.Parse(resp.body)
	require.NoError(t, err)

	m, err := s.MessageByID(context.Background(), v.GetInt64("id"))
	require.NoError(t, err)
	require.Equal(t, "non-blocking with default", m.Body)
	require.Equal(t, []string{"sam"}, participantNames(t, s, id))

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing field", `{"text":"hi"}`, "Missing Field \"body\"\n"},
		{"not a string", `{"body":42}`, "Field \"body\" must be a string\n"},
		{"blank", `{"body":"  "}`, "Field \"body\" must have non-zero length\n"},
		{"malformed", `{"body":`, "Malformed JSON\n"},
	}

	for _, tt := range tests {
		resp := c.postJSON(endpoint, tt.body)
		require.Equal(t, http.StatusBadRequest, resp.code, tt.name)
		require.Equal(t, tt.msg, resp.body, tt.name)
	}

	resp = c.postJSON(urlFor("/api/rooms/{id}/messages", 999), `{"body":"lost"}`)
	require.Equal(t, http.StatusNotFound, resp.code)
	require.Len(t, s.messages, 1)
}
