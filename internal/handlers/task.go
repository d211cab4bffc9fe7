package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns all tasks, or their number when count=true
func (h *TaskHandler) ListTasks(c *gin.Context) {
	if wantsCount(c) {
		count, err := h.taskService.CountTasks(c.Request.Context())
		if err != nil {
			apierrors.RespondWithError(c, err)
			return
		}
		apierrors.Respond(c, http.StatusOK, "OK", count)
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "OK", dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "OK", dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req.ToDraft())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusCreated, "Task created!", dto.ToTaskDTO(*task))
}

// UpdateTask replaces an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), req.ToDraft())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Task updated!", dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func wantsCount(c *gin.Context) bool {
	return c.Query("count") == "true"
}
