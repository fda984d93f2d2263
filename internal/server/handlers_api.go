package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
	"golang.org/x/sync/errgroup"

	"studybud/internal/storage"
)

var apiRouteIndex = []string{
	"GET /api",
	"GET /api/rooms",
	"GET /api/rooms/:id",
	"POST /api/rooms/:id/messages",
}

type roomDetail struct {
	storage.Room
	Messages     []storage.Message `json:"messages"`
	Participants []storage.User    `json:"participants"`
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Errorf("marshaling response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(payload); err != nil {
		h.logger.Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}

// apiRoutes handles "/api"
func (h *handler) apiRoutes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, apiRouteIndex)
}

// apiRooms handles "/api/rooms" with the same "q" filter as the home page
func (h *handler) apiRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.store.SearchRooms(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, rooms)
}

// apiRoom handles "/api/rooms/{id}"
func (h *handler) apiRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Room does not exist", http.StatusNotFound)
		return
	}

	room, err := h.store.RoomByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			http.Error(w, "Room does not exist", http.StatusNotFound)
			return
		}
		h.internalError(w, r, err)
		return
	}

	d := roomDetail{Room: room}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		d.Messages, err = h.store.MessagesByRoom(ctx, room.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Participants, err = h.store.Participants(ctx, room.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(w, r, err)
		return
	}

	// emails are private to their owners
	for i := range d.Participants {
		d.Participants[i].Email = ""
	}

	h.writeJSON(w, http.StatusOK, d)
}

// apiCreateMessage handles HTTP requests on "/api/rooms/{id}/messages" endpoint
func (h *handler) apiCreateMessage(w http.ResponseWriter, r *http.Request) {
	room, ok := idParam(r)
	if !ok {
		http.Error(w, "Room does not exist", http.StatusNotFound)
		return
	}

	body, _ := io.ReadAll(r.Body)

	parser := h.parsers.createMessagePool.Get()
	defer h.parsers.createMessagePool.Put(parser)
	v, _ := parser.ParseBytes(body)

	if !v.Exists("body") {
		http.Error(w, "Missing Field \"body\"", http.StatusBadRequest)
		return
	}

	bodyValue := v.Get("body")
	if bodyValue.Type() != fastjson.TypeString {
		http.Error(w, "Field \"body\" must be a string", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(string(bodyValue.GetStringBytes()))
	if len(text) == 0 {
		http.Error(w, "Field \"body\" must have non-zero length", http.StatusBadRequest)
		return
	}

	u := currentUser(r.Context())
	id, err := h.store.CreateMessage(r.Context(), room, u.ID, text)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			http.Error(w, "Room does not exist", http.StatusNotFound)
			return
		}
		h.internalError(w, r, err)
		return
	}

	payload := []byte(`{"id":` + strconv.FormatInt(id, 10) + `}`)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if _, err = w.Write(payload); err != nil {
		h.logger.Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}
