package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/task"
	"atelier/internal/infrastructure/http/v1/dto"
)

// TaskHandler handles task endpoints. Tasks are nested under projects.
type TaskHandler struct {
	*BaseHandler
	service *task.Service
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(service *task.Service) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create handles POST /projects/:id/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, ok := h.parseParam(c, "id", "project")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := task.NewTask(projectID, req.Title)
	t.AssigneeID = req.AssigneeID
	t.StartsOn = req.StartsOn
	t.DueOn = req.DueOn

	created, err := h.service.Create(c.Request.Context(), t)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created.ID.String())
}

// Update handles PUT /tasks/:taskId.
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := h.parseParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.Get(c.Request.Context(), taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	t.Title = req.Title
	t.Status = task.Status(req.Status)
	t.AssigneeID = req.AssigneeID
	t.StartsOn = req.StartsOn
	t.DueOn = req.DueOn
	t.Version = req.Version

	updated, err := h.service.Update(c.Request.Context(), t)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Get handles GET /tasks/:taskId.
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := h.parseParam(c, "taskId", "task")
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// ListByProject handles GET /projects/:id/tasks.
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, ok := h.parseParam(c, "id", "project")
	if !ok {
		return
	}

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.ListByProject(c.Request.Context(), projectID, query.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result))
}

// Delete handles DELETE /tasks/:taskId.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := h.parseParam(c, "taskId", "task")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), taskID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *TaskHandler) parseParam(c *gin.Context, key, entity string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(key))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+entity+" id").WithDetail("id", c.Param(key)))
		return id.Nil(), false
	}
	return parsed, true
}
