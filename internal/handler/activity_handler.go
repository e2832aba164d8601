package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondbrain/internal/repository"
)

type ActivityHandler struct {
	repo   *repository.ActivityRepository
	logger *zap.Logger
}

func NewActivityHandler(repo *repository.ActivityRepository, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{repo: repo, logger: logger}
}

// ListActivities returns the newest feed entries, default 50.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	activities, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("ListActivities: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch activities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
