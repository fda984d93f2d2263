package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"studybud/internal/storage"
)

const (
	msgNotAllowed   = "You don't have authentication to do that"
	msgLoginToPost  = "Log in to join the conversation"
	msgEmptyMessage = "Message body cannot be empty"
	homeTopicsLimit = 5
)

// home handles "/" listing rooms matching optional "q"
func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var (
		rooms    []storage.Room
		topics   []storage.Topic
		messages []storage.Message
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		rooms, err = h.store.SearchRooms(ctx, q)
		return err
	})
	g.Go(func() (err error) {
		topics, err = h.store.Topics(ctx, "", homeTopicsLimit)
		return err
	})
	g.Go(func() (err error) {
		messages, err = h.store.MessagesByTopic(ctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "home.html", viewData{
		"Q":            q,
		"Rooms":        rooms,
		"RoomCount":    len(rooms),
		"Topics":       topics,
		"RoomMessages": messages,
	})
}

// room handles "/room/{id}": GET shows the room, POST posts a message in it
func (h *handler) room(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	room, err := h.store.RoomByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			h.notFound(w, r)
			return
		}
		h.internalError(w, r, err)
		return
	}

	if r.Method == http.MethodPost {
		h.postMessage(w, r, room)
		return
	}

	var (
		messages     []storage.Message
		participants []storage.User
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		messages, err = h.store.MessagesByRoom(ctx, room.ID)
		return err
	})
	g.Go(func() (err error) {
		participants, err = h.store.Participants(ctx, room.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "room.html", viewData{
		"Room":         room,
		"RoomMessages": messages,
		"Participants": participants,
	})
}

func (h *handler) postMessage(w http.ResponseWriter, r *http.Request, room storage.Room) {
	u := currentUser(r.Context())
	if u == nil {
		h.flash(w, r, msgLoginToPost)
		redirect(w, r, roomURL(room.ID))
		return
	}

	body := strings.TrimSpace(r.PostFormValue("body"))
	if body == "" {
		h.flash(w, r, msgEmptyMessage)
		redirect(w, r, roomURL(room.ID))
		return
	}

	if _, err := h.store.CreateMessage(r.Context(), room.ID, u.ID, body); err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			h.notFound(w, r)
			return
		}
		h.internalError(w, r, err)
		return
	}

	redirect(w, r, roomURL(room.ID))
}

// createRoom handles "/room/create"
func (h *handler) createRoom(w http.ResponseWriter, r *http.Request) {
	topics, err := h.store.Topics(r.Context(), "", 0)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	data := viewData{"Topics": topics, "Form": roomForm{}}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "room_form.html", data)
		return
	}

	form := parseRoomForm(r)
	data["Form"] = form

	if err := h.validate.Struct(form); err != nil {
		data["Errors"] = formErrors(err)
		h.render(w, r, http.StatusOK, "room_form.html", data)
		return
	}

	u := currentUser(r.Context())
	if _, err := h.store.CreateRoom(r.Context(), u.ID, form.Topic, form.Name, form.Description); err != nil {
		h.internalError(w, r, err)
		return
	}

	redirect(w, r, "/")
}

// hostedRoom loads room from URL and checks that the current user hosts it.
// It writes the response itself and returns false when the handler must stop.
func (h *handler) hostedRoom(w http.ResponseWriter, r *http.Request) (storage.Room, bool) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return storage.Room{}, false
	}

	room, err := h.store.RoomByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			h.notFound(w, r)
			return storage.Room{}, false
		}
		h.internalError(w, r, err)
		return storage.Room{}, false
	}

	if u := currentUser(r.Context()); u == nil || u.ID != room.HostID {
		h.flash(w, r, msgNotAllowed)
		redirect(w, r, "/")
		return storage.Room{}, false
	}

	return room, true
}

// updateRoom handles "/room/{id}/update"
func (h *handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := h.hostedRoom(w, r)
	if !ok {
		return
	}

	topics, err := h.store.Topics(r.Context(), "", 0)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	data := viewData{
		"Room":   room,
		"Topics": topics,
		"Form":   roomForm{Topic: room.TopicName, Name: room.Name, Description: room.Description},
	}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "room_form.html", data)
		return
	}

	form := parseRoomForm(r)
	data["Form"] = form

	if err := h.validate.Struct(form); err != nil {
		data["Errors"] = formErrors(err)
		h.render(w, r, http.StatusOK, "room_form.html", data)
		return
	}

	err = h.store.UpdateRoom(r.Context(), room.ID, form.Topic, form.Name, form.Description)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			h.notFound(w, r)
			return
		}
		h.internalError(w, r, err)
		return
	}

	redirect(w, r, "/")
}

// deleteRoom handles "/room/{id}/delete": GET asks for confirmation, POST deletes
func (h *handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := h.hostedRoom(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "delete.html", viewData{
			"Obj":    room.Name,
			"Action": r.URL.RequestURI(),
			"Back":   roomURL(room.ID),
		})
		return
	}

	if err := h.store.DeleteRoom(r.Context(), room.ID); err != nil {
		h.internalError(w, r, err)
		return
	}

	redirect(w, r, "/")
}

// topics handles "/topics"
func (h *handler) topics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	topics, err := h.store.Topics(r.Context(), q, 0)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "topics.html", viewData{"Q": q, "Topics": topics})
}

// activity handles "/activity"
func (h *handler) activity(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.RecentMessages(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "activity.html", viewData{"RoomMessages": messages})
}
