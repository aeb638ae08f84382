package console

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockdesk/internal/middleware"
	"stockdesk/internal/notify"
	"stockdesk/internal/remote"
	"stockdesk/internal/session"
	"stockdesk/internal/store"
)

// Deps are the core components the console renders and drives.
type Deps struct {
	Store   *store.Store
	Loader  *store.Loader
	Session *session.Coordinator
	Feed    *notify.Feed
	Log     logrus.FieldLogger
}

// Server exposes views, the edit session and notifications as JSON for a thin
// UI. Requests are handled one at a time so the core only ever sees a single
// logical thread.
type Server struct {
	engine *gin.Engine
	deps   Deps
	mu     sync.Mutex
}

// NewServer builds the engine. An empty rateLimit disables rate limiting.
func NewServer(d Deps, rateLimit string) (*Server, error) {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Log), gin.Recovery())
	if rateLimit != "" {
		limit, err := middleware.RateLimit(rateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(limit)
	}
	s := &Server{engine: r, deps: d}
	s.registerRoutes()
	return s, nil
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api")
	api.Use(s.serialize)
	{
		view := api.Group("/view")
		view.GET("/:collection", s.getView)
		view.POST("/:collection/refresh", s.refreshView)

		sess := api.Group("/session")
		sess.GET("", s.getSession)
		sess.POST("/:collection", s.openSession)
		sess.POST("/:collection/:id", s.openSession)
		sess.PATCH("/fields", s.setFields)
		sess.POST("/items", s.addItem)
		sess.PATCH("/items/:index", s.setItem)
		sess.DELETE("/items/:index", s.removeItem)
		sess.POST("/submit", s.submit)
		sess.DELETE("", s.cancelSession)

		del := api.Group("/delete")
		del.POST("/confirm", s.confirmDelete)
		del.POST("/:collection/:id", s.requestDelete)
		del.DELETE("", s.cancelDelete)

		api.GET("/notifications", s.notifications)
	}
}

func (s *Server) serialize(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Next()
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Active notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} notify.Notification
// @Router /api/notifications [get]
func (s *Server) notifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Feed.Active())
}

func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	body := gin.H{"error": err.Error()}
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.ByField()
		body["errors"] = verr.Errors
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func mapErrorToStatus(err error) int {
	var (
		verr *session.ValidationError
		rerr *remote.RemoteError
		terr *remote.TransportError
		derr *remote.DecodeError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound), errors.Is(err, errUnknownCollection):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionActive), errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrNoPendingDelete):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownField), errors.Is(err, session.ErrItemIndex),
		errors.Is(err, session.ErrNotOrderForm), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &rerr), errors.As(err, &terr), errors.As(err, &derr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
