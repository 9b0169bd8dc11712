package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JocelynSullivan/VibeCycle/internal/model"
	"github.com/JocelynSullivan/VibeCycle/internal/store"

	"github.com/gin-gonic/gin"
)

// upsertTaskRequest 创建/更新任务的请求参数。
// 可选字段用指针区分"未传"和"传了零值"，缺席字段在更新时保持原值。
type upsertTaskRequest struct {
	TaskName        string  `json:"task_name" binding:"required"`
	RoutineType     *string `json:"routine_type"`
	NecessityLevel  *int    `json:"necessity_level"`
	DifficultyLevel *int    `json:"difficulty_level"`
	AmountOfTime    *int    `json:"amount_of_time"`
}

// handleListTasks 返回当前用户拥有的全部任务。
//
// GET /tasks
func (s *Server) handleListTasks(c *gin.Context) {
	owner := currentUsername(c)
	tasks, err := s.tasks.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		s.logger.Error("list tasks failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tasks failed"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{} // 保证 JSON 是 [] 不是 null
	}
	c.JSON(http.StatusOK, tasks)
}

// handleGetTask 返回指定任务。
// 任务不存在、无主、属于别人，响应完全一致，都是 404。
//
// GET /tasks/:name
func (s *Server) handleGetTask(c *gin.Context) {
	name := c.Param("name")
	owner := currentUsername(c)

	task, err := s.tasks.GetByName(c.Request.Context(), name)
	if err != nil {
		s.logger.Error("get task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get task failed"})
		return
	}
	if task == nil || task.Owner == nil || *task.Owner != owner {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Task '%s' not found", name)})
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleUpsertTask 按任务名创建或更新任务。
//
// POST /tasks
func (s *Server) handleUpsertTask(c *gin.Context) {
	var req upsertTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := currentUsername(c)

	task := model.Task{
		TaskName:        req.TaskName,
		RoutineType:     req.RoutineType,
		NecessityLevel:  req.NecessityLevel,
		DifficultyLevel: req.DifficultyLevel,
		AmountOfTime:    req.AmountOfTime,
	}

	created, err := s.tasks.Upsert(c.Request.Context(), task, owner)
	if errors.Is(err, store.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "Task name already exists for another user"})
		return
	}
	if err != nil {
		s.logger.Error("upsert task failed", slog.String("task", req.TaskName), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upsert task failed"})
		return
	}

	response := "task updated"
	if created {
		response = "task created"
	}
	c.JSON(http.StatusCreated, gin.H{"response": response})
}

// handleDeleteTask 删除当前用户名下的指定任务。
//
// DELETE /tasks/:name
func (s *Server) handleDeleteTask(c *gin.Context) {
	name := c.Param("name")
	owner := currentUsername(c)

	err := s.tasks.DeleteByNameForOwner(c.Request.Context(), name, owner)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Task '%s' not found", name)})
		return
	}
	if err != nil {
		s.logger.Error("delete task failed", slog.String("task", name), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete task failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
