package server

import (
	"errors"
	"net/http"
	"strings"

	"studybud/internal/storage"
)

const (
	msgBadCredentials = "username or password is wrong"
	msgUsernameTaken  = "A user with that username already exists."
	msgEmailTaken     = "User with this Email address already exists."
)

// safeNext accepts only local absolute paths as post-login destinations
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	return next
}

// login handles "/login"; requests from authenticated users go straight home
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		redirect(w, r, "/")
		return
	}

	data := viewData{"Page": "login", "Next": r.FormValue("next"), "Username": ""}

	if r.Method == http.MethodPost {
		username := strings.ToLower(strings.TrimSpace(r.PostFormValue("username")))
		password := r.PostFormValue("password")

		u, err := h.store.UserByUsername(r.Context(), username)
		if err != nil && !errors.Is(err, storage.ErrUserNotExist) {
			h.internalError(w, r, err)
			return
		}

		if err == nil && h.hasher.Verify(password, u.PasswordHash) {
			if err := h.sessions.Login(w, r, u.ID); err != nil {
				h.internalError(w, r, err)
				return
			}
			redirect(w, r, safeNext(r.FormValue("next")))
			return
		}

		data["Username"] = username
		data["Errors"] = map[string]string{"__all__": msgBadCredentials}
	}

	h.render(w, r, http.StatusOK, "login_register.html", data)
}

// logout handles "/logout"
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Errorf("destroying session: %v", err)
	}
	redirect(w, r, "/")
}

// register handles "/register"
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	data := viewData{"Page": "register", "Form": registerForm{}}

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "login_register.html", data)
		return
	}

	form := parseRegisterForm(r)
	data["Form"] = form

	if err := h.validate.Struct(form); err != nil {
		data["Errors"] = formErrors(err)
		h.render(w, r, http.StatusOK, "login_register.html", data)
		return
	}

	hash, err := h.hasher.Hash(form.Password1)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	id, err := h.store.CreateUser(r.Context(), storage.NewUser{
		Username:     form.Username,
		PasswordHash: hash,
		Name:         form.Name,
		Email:        form.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			data["Errors"] = map[string]string{"username": msgUsernameTaken}
		case errors.Is(err, storage.ErrEmailExists):
			data["Errors"] = map[string]string{"email": msgEmailTaken}
		default:
			h.internalError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "login_register.html", data)
		return
	}

	h.logger.Infof("Registered user (%s) with id %d", form.Username, id)

	if err := h.sessions.Login(w, r, id); err != nil {
		h.internalError(w, r, err)
		return
	}
	redirect(w, r, "/")
}
