package server

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"studybud/internal/storage"
)

// userProfile handles "/user/{id}"
func (h *handler) userProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	u, err := h.store.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotExist) {
			h.notFound(w, r)
			return
		}
		h.internalError(w, r, err)
		return
	}

	var (
		rooms    []storage.Room
		messages []storage.Message
		topics   []storage.Topic
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		rooms, err = h.store.RoomsByHost(ctx, u.ID)
		return err
	})
	g.Go(func() (err error) {
		messages, err = h.store.MessagesByAuthor(ctx, u.ID)
		return err
	})
	g.Go(func() (err error) {
		topics, err = h.store.Topics(ctx, "", 0)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "profile.html", viewData{
		"Profile":      u,
		"Rooms":        rooms,
		"RoomCount":    len(rooms),
		"RoomMessages": messages,
		"Topics":       topics,
	})
}

// updateUser handles "/user/update" for the session user
func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	data := viewData{
		"Form": profileForm{Name: u.Name, Username: u.Username, Email: u.Email, Bio: u.Bio, Avatar: u.Avatar},
	}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "update-user.html", data)
		return
	}

	form := parseProfileForm(r)
	data["Form"] = form

	if err := h.validate.Struct(form); err != nil {
		data["Errors"] = formErrors(err)
		h.render(w, r, http.StatusOK, "update-user.html", data)
		return
	}

	updated := *u
	updated.Name = form.Name
	updated.Username = form.Username
	updated.Email = form.Email
	updated.Bio = form.Bio
	updated.Avatar = form.Avatar

	if err := h.store.UpdateUser(r.Context(), updated); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			data["Errors"] = map[string]string{"username": msgUsernameTaken}
		case errors.Is(err, storage.ErrEmailExists):
			data["Errors"] = map[string]string{"email": msgEmailTaken}
		default:
			h.internalError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "update-user.html", data)
		return
	}

	redirect(w, r, userURL(u.ID))
}
