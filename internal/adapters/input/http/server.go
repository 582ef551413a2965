package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"gaggimate-dashboard/internal/domain/presentation"
	"gaggimate-dashboard/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the card, its editor and a live feed over HTTP.
type Server struct {
	card    ports.CardPort
	editor  ports.EditorPort
	catalog ports.CardCatalog
	feeds   []ports.StateFeed
	hub     *Hub
	logger  logr.Logger
}

// NewServer pushes a fresh view to live clients whenever one of feeds signals.
func NewServer(card ports.CardPort, editor ports.EditorPort, catalog ports.CardCatalog, logger logr.Logger, feeds ...ports.StateFeed) *Server {
	logger = logger.WithName("http")
	return &Server{
		card:    card,
		editor:  editor,
		catalog: catalog,
		feeds:   feeds,
		hub:     NewHub(logger),
		logger:  logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleCard)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthcheck", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/text", s.handleText)
		r.Get("/roles", s.handleRoles)
		r.Get("/cards", s.handleCards)
		r.Post("/actions/{action}", s.handleAction)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.handleAdmin)
		r.Get("/config", s.handleGetConfig)
		r.Post("/config", s.handleReplaceConfig)
		r.Patch("/config/{field}", s.handleUpdateField)
		r.Get("/devices", s.handleDevices)
		r.Get("/entities", s.handleEntities)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)
	go s.Follow(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Follow pushes a fresh view to every live client whenever a feed signals,
// until ctx is done.
func (s *Server) Follow(ctx context.Context) {
	var wg sync.WaitGroup
	for _, feed := range s.feeds {
		sub := feed.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sub.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case <-sub.C():
					s.Broadcast()
				}
			}
		}()
	}
	wg.Wait()
}

// Broadcast renders the current view once and sends it to all clients.
func (s *Server) Broadcast() {
	if s.hub.ClientCount() == 0 {
		return
	}
	msg, err := s.viewMessage()
	if err != nil {
		s.logger.Error(err, "failed to render view")
		return
	}
	s.hub.Broadcast(msg)
}

// viewMessage is what /ws pushes: the view and its rendered markup.
func (s *Server) viewMessage() (wsMessage, error) {
	v := s.card.View()
	var face bytes.Buffer
	if err := presentation.RenderFace(&face, v); err != nil {
		return wsMessage{}, err
	}
	return wsMessage{Type: wsTypeView, View: &v, HTML: face.String()}, nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
