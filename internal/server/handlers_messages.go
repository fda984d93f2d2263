package server

import (
	"errors"
	"net/http"

	"studybud/internal/storage"
)

// deleteMessage handles "/message/{id}/delete"; only the author may delete.
// "from=room" sends the author back to the room afterwards.
func (h *handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	m, err := h.store.MessageByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotExist) {
			h.notFound(w, r)
			return
		}
		h.internalError(w, r, err)
		return
	}

	if u := currentUser(r.Context()); u == nil || u.ID != m.AuthorID {
		h.flash(w, r, msgNotAllowed)
		redirect(w, r, "/")
		return
	}

	back := "/"
	if r.URL.Query().Get("from") == "room" {
		back = roomURL(m.RoomID)
	}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "delete.html", viewData{
			"Obj":    m.Body,
			"Action": r.URL.RequestURI(),
			"Back":   back,
		})
		return
	}

	if err := h.store.DeleteMessage(r.Context(), m.ID); err != nil {
		h.internalError(w, r, err)
		return
	}

	redirect(w, r, back)
}
