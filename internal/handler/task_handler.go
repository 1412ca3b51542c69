package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
}

type addTaskRequest struct {
	Text string `json:"text"`
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tasks": h.tasks.List(),
		"stats": h.tasks.Stats(),
	})
}

func (h *TaskHandler) Add(c *gin.Context) {
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	task, err := h.tasks.Add(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, taskError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) Toggle(c *gin.Context) {
	task, err := h.tasks.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, taskError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, taskError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func taskError(err error) *apperrors.APIError {
	switch {
	case errors.Is(err, service.ErrEmptyTask):
		return apperrors.BadRequest("invalid_task", err.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		return apperrors.NotFound("task_not_found", err.Error())
	default:
		log.Printf("tasks: %v", err)
		return apperrors.Internal("failed to save tasks")
	}
}
