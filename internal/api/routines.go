package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JocelynSullivan/VibeCycle/internal/model"
	"github.com/JocelynSullivan/VibeCycle/internal/pkg/metrics"
	"github.com/JocelynSullivan/VibeCycle/internal/pkg/ratelimit"
	"github.com/JocelynSullivan/VibeCycle/internal/routine"
	"github.com/JocelynSullivan/VibeCycle/internal/store"

	"github.com/gin-gonic/gin"
)

// generateRoutineRequest 生成例程的请求参数。
// energy_level 用指针表达 required，0 也是合法取值。
type generateRoutineRequest struct {
	EnergyLevel *int `json:"energy_level" binding:"required"`
}

type saveRoutineRequest struct {
	Title   *string `json:"title"`
	Content string  `json:"content" binding:"required"`
}

type updateRoutineRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// handleGenerateRoutine 用当前用户的任务清单生成一份日常例程。
// 只生成不落库，保存由 POST /routines 单独完成。
//
// POST /routine
func (s *Server) handleGenerateRoutine(c *gin.Context) {
	var req generateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := currentUsername(c)

	tasks, err := s.tasks.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		s.logger.Error("list tasks failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tasks failed"})
		return
	}

	prompt, ok := routine.BuildPrompt(tasks, *req.EnergyLevel)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"routine": routine.NoTasksMessage})
		return
	}

	if err := s.limiter.Acquire(c.Request.Context()); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimitTimeout) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many generation requests"})
			return
		}
		s.logger.Error("rate limit failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit failed"})
		return
	}

	start := time.Now()
	text, err := s.generator.Generate(c.Request.Context(), prompt)
	if err != nil {
		metrics.RoutineGenerationFailedTotal.Inc()
		s.logger.Error("generate routine failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating routine: " + err.Error()})
		return
	}
	metrics.RoutineGenerationTotal.Inc()
	metrics.RoutineGenerationDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, gin.H{"routine": text})
}

// handleSaveRoutine 保存一份例程快照。
//
// POST /routines
func (s *Server) handleSaveRoutine(c *gin.Context) {
	var req saveRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := currentUsername(c)

	saved, err := s.routines.Create(c.Request.Context(), owner, req.Title, req.Content)
	if err != nil {
		s.logger.Error("save routine failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save routine failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": saved.ID, "owner": saved.Owner, "title": saved.Title})
}

// handleListRoutines 返回当前用户保存的全部例程。
//
// GET /routines
func (s *Server) handleListRoutines(c *gin.Context) {
	owner := currentUsername(c)
	routines, err := s.routines.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		s.logger.Error("list routines failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list routines failed"})
		return
	}
	if routines == nil {
		routines = []model.SavedRoutine{}
	}
	c.JSON(http.StatusOK, routines)
}

// handleGetRoutine 返回当前用户名下的指定例程。
//
// GET /routines/:id
func (s *Server) handleGetRoutine(c *gin.Context) {
	id, ok := parseRoutineID(c)
	if !ok {
		return
	}
	owner := currentUsername(c)

	saved, err := s.routines.GetByIDForOwner(c.Request.Context(), id, owner)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}
	if err != nil {
		s.logger.Error("get routine failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get routine failed"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// handleUpdateRoutine 更新例程的标题和/或内容。
//
// PUT /routines/:id
func (s *Server) handleUpdateRoutine(c *gin.Context) {
	id, ok := parseRoutineID(c)
	if !ok {
		return
	}
	owner := currentUsername(c)

	var req updateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := s.routines.Update(c.Request.Context(), id, owner, req.Title, req.Content)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}
	if err != nil {
		s.logger.Error("update routine failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update routine failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": saved.ID, "title": saved.Title})
}

// handleDeleteRoutine 删除当前用户名下的指定例程。
//
// DELETE /routines/:id
func (s *Server) handleDeleteRoutine(c *gin.Context) {
	id, ok := parseRoutineID(c)
	if !ok {
		return
	}
	owner := currentUsername(c)

	err := s.routines.DeleteByIDForOwner(c.Request.Context(), id, owner)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}
	if err != nil {
		s.logger.Error("delete routine failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete routine failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseRoutineID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid routine id"})
		return 0, false
	}
	return uint(id), true
}
