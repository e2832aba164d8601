package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/service"
)

type RecurringHandler struct {
	svc    *service.RecurringService
	logger *zap.Logger
}

func NewRecurringHandler(svc *service.RecurringService, logger *zap.Logger) *RecurringHandler {
	return &RecurringHandler{svc: svc, logger: logger}
}

type createRecurringRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Schedule    string `json:"schedule" binding:"required"`
	DayOfWeek   *int   `json:"day_of_week"`
	DayOfMonth  *int   `json:"day_of_month"`
	GenerateNow bool   `json:"generate_now"`
}

func (h *RecurringHandler) CreateTemplate(c *gin.Context) {
	var req createRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and schedule required"})
		return
	}

	tpl, err := h.svc.CreateTemplate(c.Request.Context(), &model.RecurringTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Schedule:    req.Schedule,
		DayOfWeek:   req.DayOfWeek,
		DayOfMonth:  req.DayOfMonth,
		Active:      true,
	}, req.GenerateNow)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

func (h *RecurringHandler) ListTemplates(c *gin.Context) {
	templates, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		h.logger.Error("ListTemplates: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recurring tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recurring_tasks": templates})
}

func (h *RecurringHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patch model.RecurringPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tpl, err := h.svc.UpdateTemplate(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpl)
}

func (h *RecurringHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Generate runs the due-today scan. Idempotent within a calendar day, so
// the dashboard can call it on every load.
func (h *RecurringHandler) Generate(c *gin.Context) {
	batch, err := h.svc.GenerateNow(c.Request.Context())
	if err != nil {
		h.logger.Error("Generate: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		return
	}

	c.JSON(http.StatusOK, batch)
}
