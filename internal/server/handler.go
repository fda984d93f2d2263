package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"studybud/internal/auth"
	"studybud/internal/storage/pgxlog"
)

type parsers struct {
	createMessagePool fastjson.ParserPool
}

type handler struct {
	logger             *zap.SugaredLogger
	store              Store
	sessions           *auth.Sessions
	hasher             *auth.PasswordHasher
	validate           *validator.Validate
	views              *views
	parsers            parsers
	requireLoginToPost bool
}

// idParam parses positive integer URL parameter "id"
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

func roomURL(id int64) string {
	return "/room/" + strconv.FormatInt(id, 10)
}

func userURL(id int64) string {
	return "/user/" + strconv.FormatInt(id, 10)
}

// flash queues msg for the next rendered page
func (h *handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.sessions.AddFlash(w, r, msg); err != nil {
		h.logger.Errorf("adding flash: %v", err)
	}
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404.html", nil)
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	id, _ := pgxlog.RequestIDFromContext(r.Context())
	h.logger.Errorw("handling request", "request_id", id, "uri", r.URL.RequestURI(), "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
