package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/project"
	"atelier/internal/infrastructure/http/v1/dto"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	*BaseHandler
	service *project.Service
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(service *project.Service) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := project.NewProject(req.Name)
	p.Budget = req.Budget
	p.Notes = req.Notes
	if req.ClientID != nil {
		clientID, err := id.Parse(*req.ClientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid client id").WithDetail("clientId", *req.ClientID))
			return
		}
		p.ClientID = &clientID
	}

	created, err := h.service.Create(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created.ID.String())
}

// Update handles PUT /projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Get(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p.Name = req.Name
	p.Status = project.Status(req.Status)
	p.Budget = req.Budget
	p.Notes = req.Notes
	p.Version = req.Version
	p.ClientID = nil
	if req.ClientID != nil {
		clientID, err := id.Parse(*req.ClientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid client id").WithDetail("clientId", *req.ClientID))
			return
		}
		p.ClientID = &clientID
	}

	updated, err := h.service.Update(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Get handles GET /projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := h.parseID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /projects.
func (h *ProjectHandler) List(c *gin.Context) {
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

// Archive handles POST /projects/:id/archive.
func (h *ProjectHandler) Archive(c *gin.Context) {
	projectID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Archive(c.Request.Context(), projectID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ProjectHandler) parseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid project id").WithDetail("id", c.Param("id")))
		return id.Nil(), false
	}
	return parsed, true
}
