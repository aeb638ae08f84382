package console

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/derive"
	"stockdesk/internal/domain"
	"stockdesk/internal/session"
)

var (
	errUnknownCollection = errors.New("unknown collection")
	errBadRequest        = errors.New("bad request")
)

func collectionParam(c *gin.Context) (domain.Collection, error) {
	col, ok := domain.ParseCollection(c.Param("collection"))
	if !ok {
		return "", errUnknownCollection
	}
	return col, nil
}

func indexParam(c *gin.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, errBadRequest
	}
	return i, nil
}

// Views

type viewResp struct {
	Collection   domain.Collection `json:"collection"`
	Loaded       bool              `json:"loaded"`
	Rows         any               `json:"rows"`
	EmptyMessage string            `json:"empty_message,omitempty"`
}

func (s *Server) view(col domain.Collection) viewResp {
	st := s.deps.Store
	resp := viewResp{Collection: col, Loaded: st.Loaded(col)}
	n := 0
	switch col {
	case domain.Products:
		rows := derive.ProductRows(st.Products())
		resp.Rows, n = rows, len(rows)
	case domain.Suppliers:
		rows := derive.SupplierRows(st.Suppliers())
		resp.Rows, n = rows, len(rows)
	case domain.Orders:
		rows := derive.OrderRows(st, st.Orders())
		resp.Rows, n = rows, len(rows)
	}
	if n == 0 {
		resp.EmptyMessage = derive.EmptyMessage(col)
	}
	return resp
}

// @Summary Collection view
// @Tags views
// @Produce json
// @Param collection path string true "products, suppliers or orders"
// @Success 200 {object} viewResp
// @Failure 404 {object} map[string]string
// @Router /api/view/{collection} [get]
func (s *Server) getView(c *gin.Context) {
	col, err := collectionParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view(col))
}

// @Summary Reload a collection
// @Description A failed load keeps the previous rows.
// @Tags views
// @Produce json
// @Param collection path string true "products, suppliers or orders"
// @Success 200 {object} viewResp
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/view/{collection}/refresh [post]
func (s *Server) refreshView(c *gin.Context) {
	col, err := collectionParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.deps.Loader.Load(c.Request.Context(), col); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view(col))
}

// Edit session

type sessionResp struct {
	Phase         session.Phase          `json:"phase"`
	Target        *session.Target        `json:"target,omitempty"`
	Fields        map[string]string      `json:"fields,omitempty"`
	Items         []session.OrderLine    `json:"items,omitempty"`
	Total         string                 `json:"total,omitempty"`
	Errors        map[string]string      `json:"errors,omitempty"`
	PendingDelete *session.PendingDelete `json:"pending_delete,omitempty"`
}

func (s *Server) sessionView() sessionResp {
	st := s.deps.Session.State()
	resp := sessionResp{Phase: st.Phase}
	if st.Draft != nil {
		t := st.Target
		resp.Target = &t
		resp.Fields = st.Draft.Fields()
		if od, ok := st.Draft.(*session.OrderDraft); ok {
			resp.Items = od.Items
			resp.Total = derive.FormatMoney(od.Total())
		}
	}
	if st.Errors != nil {
		resp.Errors = st.Errors.ByField()
	}
	if p, ok := s.deps.Session.PendingDelete(); ok {
		resp.PendingDelete = &p
	}
	return resp
}

// @Summary Edit session state
// @Tags session
// @Produce json
// @Success 200 {object} sessionResp
// @Router /api/session [get]
func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Open a create or edit form
// @Tags session
// @Produce json
// @Param collection path string true "products, suppliers or orders"
// @Param id path string false "Entity ID, omitted for a create form"
// @Success 200 {object} sessionResp
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/session/{collection}/{id} [post]
func (s *Server) openSession(c *gin.Context) {
	col, err := collectionParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.deps.Session.Open(col, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Set form fields
// @Description Applies a flat {"field": "value"} body to the open draft.
// @Tags session
// @Accept json
// @Produce json
// @Param input body map[string]string true "Field values"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/session/fields [patch]
func (s *Server) setFields(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	names := make([]string, 0, len(body))
	for k := range body {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.deps.Session.SetField(name, body[name]); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Add an order line
// @Tags session
// @Produce json
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Router /api/session/items [post]
func (s *Server) addItem(c *gin.Context) {
	if err := s.deps.Session.AddItem(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// itemFieldOrder applies a product choice before an explicit price so that a
// price sent in the same request overrides the auto-filled one.
var itemFieldOrder = map[string]int{
	session.FieldProductID: 0,
	session.FieldQuantity:  1,
	"qty":                  1,
	session.FieldPrice:     2,
}

// @Summary Set order line fields
// @Tags session
// @Accept json
// @Produce json
// @Param index path int true "Line index"
// @Param input body map[string]string true "productId, quantity, price"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Router /api/session/items/{index} [patch]
func (s *Server) setItem(c *gin.Context) {
	i, err := indexParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	fields := make([]string, 0, len(body))
	for k := range body {
		fields = append(fields, k)
	}
	sort.Slice(fields, func(a, b int) bool {
		ra, oka := itemFieldOrder[fields[a]]
		rb, okb := itemFieldOrder[fields[b]]
		if oka != okb {
			return oka
		}
		if ra != rb {
			return ra < rb
		}
		return fields[a] < fields[b]
	})
	for _, f := range fields {
		if err := s.deps.Session.SetItem(i, f, body[f]); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Remove an order line
// @Tags session
// @Produce json
// @Param index path int true "Line index"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]string
// @Router /api/session/items/{index} [delete]
func (s *Server) removeItem(c *gin.Context) {
	i, err := indexParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.deps.Session.RemoveItem(i); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Validate and save the draft
// @Tags session
// @Produce json
// @Success 200 {object} sessionResp
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Failure 502 {object} map[string]string
// @Router /api/session/submit [post]
func (s *Server) submit(c *gin.Context) {
	if err := s.deps.Session.Submit(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Discard the draft
// @Tags session
// @Produce json
// @Success 200 {object} sessionResp
// @Failure 409 {object} map[string]string
// @Router /api/session [delete]
func (s *Server) cancelSession(c *gin.Context) {
	if err := s.deps.Session.Cancel(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// Delete confirmation

// @Summary Ask to delete an entity
// @Tags delete
// @Produce json
// @Param collection path string true "products, suppliers or orders"
// @Param id path string true "Entity ID"
// @Success 200 {object} session.PendingDelete
// @Failure 404 {object} map[string]string
// @Router /api/delete/{collection}/{id} [post]
func (s *Server) requestDelete(c *gin.Context) {
	col, err := collectionParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := s.deps.Session.RequestDelete(col, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Confirm the pending delete
// @Tags delete
// @Produce json
// @Success 200 {object} sessionResp
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/delete/confirm [post]
func (s *Server) confirmDelete(c *gin.Context) {
	if err := s.deps.Session.ConfirmDelete(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sessionView())
}

// @Summary Cancel the pending delete
// @Tags delete
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /api/delete [delete]
func (s *Server) cancelDelete(c *gin.Context) {
	if err := s.deps.Session.CancelDelete(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
