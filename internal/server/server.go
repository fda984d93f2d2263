package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"studybud/internal/auth"
)

// Server defines fields used in HTTP processing
type Server struct {
	logger        *zap.SugaredLogger
	httpServer    *http.Server
	afterShutdown []func()
}

// NewServer returns new Server struct with provided zap.SugaredLogger and Store
func NewServer(logger *zap.SugaredLogger, store Store, opts ...Option) (*Server, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt.apply(c)
	}

	h, err := newHandler(logger, store, c)
	if err != nil {
		return nil, err
	}

	var root http.Handler = newRouter(h)
	if c.timeout > 0 {
		root = http.TimeoutHandler(root, c.timeout, c.timeoutMsg)
	}
	c.httpServer.Handler = root

	return &Server{
		logger:        logger,
		httpServer:    c.httpServer,
		afterShutdown: c.afterShutdown,
	}, nil
}

func newHandler(logger *zap.SugaredLogger, store Store, c *config) (*handler, error) {
	v, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &handler{
		logger:             logger,
		store:              store,
		sessions:           auth.NewSessions(c.sessionKey, c.secureCookies),
		hasher:             c.hasher,
		validate:           newValidator(),
		views:              v,
		requireLoginToPost: c.requireLoginToPost,
		parsers: parsers{
			createMessagePool: fastjson.ParserPool{},
		},
	}, nil
}

// newRouter registers every route; mutating routes are wrapped in the login gate explicitly
func newRouter(h *handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return log(next, h.logger.Desugar())
	})

	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(h.loadUser)
		r.NotFound(h.notFound)

		r.Get("/", h.home)
		r.Get("/login", h.login)
		r.Post("/login", h.login)
		r.Get("/logout", h.logout)
		r.Get("/register", h.register)
		r.Post("/register", h.register)
		r.Get("/topics", h.topics)
		r.Get("/activity", h.activity)

		r.Get("/room/{id}", h.room)
		if h.requireLoginToPost {
			r.With(h.requireAuth).Post("/room/{id}", h.room)
		} else {
			r.Post("/room/{id}", h.room)
		}

		r.Get("/user/{id}", h.userProfile)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/room/create", h.createRoom)
			r.Post("/room/create", h.createRoom)
			r.Get("/room/{id}/update", h.updateRoom)
			r.Post("/room/{id}/update", h.updateRoom)
			r.Get("/room/{id}/delete", h.deleteRoom)
			r.Post("/room/{id}/delete", h.deleteRoom)
			r.Get("/message/{id}/delete", h.deleteMessage)
			r.Post("/message/{id}/delete", h.deleteMessage)
			r.Get("/user/update", h.updateUser)
			r.Post("/user/update", h.updateUser)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/", h.apiRoutes)
			r.Get("/rooms", h.apiRooms)
			r.Get("/rooms/{id}", h.apiRoom)
			r.With(h.apiRequireAuth, enforcePostJson).Post("/rooms/{id}/messages", h.apiCreateMessage)
		})
	})

	return r
}

// Start calls ListenAndServe on http.Server instance inside Server struct
// and implements graceful shutdown via goroutine waiting for signals
func (s *Server) Start() error {
	idleConnsClosed := make(chan struct{})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		s.logger.Info("Shutting down HTTP server")

		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Errorf("srv.Shutdown: %v", err)
		}
		s.logger.Info("HTTP server is stopped")

		close(idleConnsClosed)
	}()

	s.logger.Infof("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("s.httpServer.ListenAndServe: %w", err)
	}

	<-idleConnsClosed

	for _, f := range s.afterShutdown {
		f()
	}

	return nil
}
