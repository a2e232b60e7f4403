package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/client"
	"atelier/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles client (customer) endpoints.
type ClientHandler struct {
	*BaseHandler
	service *client.Service
}

// NewClientHandler creates a new client handler.
func NewClientHandler(service *client.Service) *ClientHandler {
	return &ClientHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create handles POST /clients.
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cl := client.NewClient(req.Name)
	cl.Email = req.Email
	cl.Phone = req.Phone
	cl.Company = req.Company

	created, err := h.service.Create(c.Request.Context(), cl)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created.ID.String())
}

// Update handles PUT /clients/:id.
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cl, err := h.service.Get(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	cl.Name = req.Name
	cl.Email = req.Email
	cl.Phone = req.Phone
	cl.Company = req.Company
	cl.Version = req.Version

	updated, err := h.service.Update(c.Request.Context(), cl)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Get handles GET /clients/:id.
func (h *ClientHandler) Get(c *gin.Context) {
	clientID, ok := h.parseID(c)
	if !ok {
		return
	}

	cl, err := h.service.Get(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cl)
}

// List handles GET /clients.
func (h *ClientHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Archive handles POST /clients/:id/archive.
func (h *ClientHandler) Archive(c *gin.Context) {
	clientID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Archive(c.Request.Context(), clientID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ClientHandler) parseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid client id").WithDetail("id", c.Param("id")))
		return id.Nil(), false
	}
	return parsed, true
}
