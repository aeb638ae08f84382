package stubapi

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"stockdesk/internal/middleware"
)

// Server is a stand-in for the inventory REST API, backed by Documents.
type Server struct {
	engine *gin.Engine
	docs   *Documents
	log    logrus.FieldLogger

	faultMu sync.Mutex
	fault   *fault
}

type fault struct {
	status int
	body   string
}

func NewServer(docs *Documents, log logrus.FieldLogger) *Server {
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	s := &Server{engine: r, docs: docs, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) Documents() *Documents { return s.docs }

// FailNext makes the next request answer with status and body as plain text.
func (s *Server) FailNext(status int, body string) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = &fault{status: status, body: body}
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.injectFault, s.knownCollection)
	{
		api.GET("/:collection", s.list)
		api.POST("/:collection", s.create)
		api.PUT("/:collection/:id", s.replace)
		api.DELETE("/:collection/:id", s.delete)
	}
}

func (s *Server) injectFault(c *gin.Context) {
	s.faultMu.Lock()
	f := s.fault
	s.fault = nil
	s.faultMu.Unlock()
	if f != nil {
		c.String(f.status, f.body)
		c.Abort()
		return
	}
	c.Next()
}

var collections = map[string]func() any{
	"products":  func() any { return &productReq{} },
	"suppliers": func() any { return &supplierReq{} },
	"orders":    func() any { return &orderReq{} },
}

func (s *Server) knownCollection(c *gin.Context) {
	if _, ok := collections[c.Param("collection")]; !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	c.Next()
}

// Request shapes, used only to check required fields. The stored document is
// the request body as sent.
type productReq struct {
	SKU   string   `json:"sku" binding:"required"`
	Name  string   `json:"name" binding:"required"`
	Price *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock *int64   `json:"stock" binding:"omitempty,gte=0"`
}

type supplierReq struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

type orderItemReq struct {
	ProductID string  `json:"productId" binding:"required"`
	Qty       int64   `json:"qty" binding:"gt=0"`
	Price     float64 `json:"price" binding:"gte=0"`
}

type orderReq struct {
	SupplierID string         `json:"supplierId" binding:"required"`
	Status     string         `json:"status"`
	Items      []orderItemReq `json:"items" binding:"required,min=1,dive"`
}

// bind validates the body against the collection's request shape and returns
// it as a document.
func bind(c *gin.Context) (Document, bool) {
	req := collections[c.Param("collection")]()
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	var doc Document
	if err := c.ShouldBindBodyWith(&doc, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return nil, false
	}
	delete(doc, "_id")
	delete(doc, "id")
	return doc, true
}

func (s *Server) list(c *gin.Context) {
	c.JSON(http.StatusOK, s.docs.List(c.Param("collection")))
}

func (s *Server) create(c *gin.Context) {
	doc, ok := bind(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, s.docs.Insert(c.Param("collection"), doc))
}

func (s *Server) replace(c *gin.Context) {
	doc, ok := bind(c)
	if !ok {
		return
	}
	out, err := s.docs.Replace(c.Param("collection"), c.Param("id"), doc)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) delete(c *gin.Context) {
	if err := s.docs.Delete(c.Param("collection"), c.Param("id")); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func mapErrorToStatus(err error) int {
	switch err {
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
