package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/service"
)

type HabitHandler struct {
	svc    *service.HabitService
	logger *zap.Logger
}

func NewHabitHandler(svc *service.HabitService, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{svc: svc, logger: logger}
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if req.Frequency == "" {
		req.Frequency = "daily"
	}

	habit, err := h.svc.CreateHabit(c.Request.Context(), &model.Habit{
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		Active:      true,
	})
	if err != nil {
		h.logger.Error("CreateHabit: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create habit"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) ListHabits(c *gin.Context) {
	habits, err := h.svc.ListHabits(c.Request.Context())
	if err != nil {
		h.logger.Error("ListHabits: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch habits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (h *HabitHandler) GetHabit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	habit, logs, err := h.svc.GetHabit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habit, "logs": logs})
}

func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patch model.HabitPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	habit, err := h.svc.UpdateHabit(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteHabit(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type logHabitRequest struct {
	Date      *time.Time `json:"date"`
	Completed *bool      `json:"completed"`
	Notes     string     `json:"notes"`
}

// LogHabit records a completion for the day and returns the recomputed
// streak alongside the log row.
func (h *HabitHandler) LogHabit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req logHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	log, streak, err := h.svc.LogCompletion(c.Request.Context(), id, req.Date, completed, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"log": log, "streak": streak})
}
