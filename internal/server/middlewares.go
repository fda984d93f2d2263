package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"studybud/internal/storage"
	"studybud/internal/storage/pgxlog"
)

// maxJSONBody limits the size of JSON request bodies
const maxJSONBody = 1 << 20

type userKey struct{}

func withUser(ctx context.Context, u *storage.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// currentUser returns the authenticated user or nil for anonymous requests
func currentUser(ctx context.Context) *storage.User {
	u, _ := ctx.Value(userKey{}).(*storage.User)
	return u
}

// enforcePostJson is a middleware pre-processing each HTTP request
// it checks for POST method, application/json Content-Type header and valid json body
// it also sets blank Content-Type header to application/json
func enforcePostJson(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			w.Header().Set("Allow", "POST")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		// check "Content-Type" header
		contentType := r.Header.Get("Content-Type")
		if contentType != "" {
			mt, _, err := mime.ParseMediaType(contentType)
			if err != nil {
				http.Error(w, "Malformed Content-Type header", http.StatusBadRequest)
				return
			}

			if mt != "application/json" {
				http.Error(w, "Content-Type header must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		} else {
			r.Header.Set("Content-Type", "application/json")
		}

		// check if provided request body is valid JSON
		body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
		if err != nil {
			http.Error(w, "Can not read request body", http.StatusBadRequest)
			return
		}

		if len(body) == 0 {
			http.Error(w, "No body provided", http.StatusBadRequest)
			return
		}

		if len(body) > maxJSONBody {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		err = fastjson.ValidateBytes(body)
		if err != nil {
			http.Error(w, "Malformed JSON", http.StatusBadRequest)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))

		next.ServeHTTP(w, r)
	})
}

// log tags each request with an xid, passes it down in context for query logs
// and writes one line per request once it is served
func log(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()

		ctx := pgxlog.NewContextWithRequestID(r.Context(), id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("http request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()),
			zap.String("ip", r.RemoteAddr),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// loadUser resolves the session user and stores it in request context.
// A session pointing to a missing user is treated as anonymous.
func (h *handler) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.sessions.UserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		u, err := h.store.UserByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, storage.ErrUserNotExist) {
				h.logger.Errorf("loading session user (id: %d): %v", id, err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), &u)))
	})
}

// requireAuth redirects anonymous requests to the login page, remembering where they were headed
func (h *handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// apiRequireAuth answers anonymous API requests with 401
func (h *handler) apiRequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
