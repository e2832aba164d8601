package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/service"
)

type GoalHandler struct {
	svc    *service.GoalService
	logger *zap.Logger
}

func NewGoalHandler(svc *service.GoalService, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, logger: logger}
}

type createGoalRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	Category    string     `json:"category"`
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	goal, err := h.svc.CreateGoal(c.Request.Context(), &model.Goal{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Category:    req.Category,
	})
	if err != nil {
		h.logger.Error("CreateGoal: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create goal"})
		return
	}

	c.JSON(http.StatusCreated, goal)
}

func (h *GoalHandler) ListGoals(c *gin.Context) {
	goals, err := h.svc.ListGoals(c.Request.Context())
	if err != nil {
		h.logger.Error("ListGoals: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch goals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *GoalHandler) GetGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	goal, err := h.svc.GetGoal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

type updateGoalRequest struct {
	model.GoalPatch
	KeyResults []model.KeyResultPatch `json:"key_results"`
}

// UpdateGoal applies field edits and an optional inline batch of
// key-result upserts; the response carries the recomputed progress.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	goal, err := h.svc.UpdateGoal(c.Request.Context(), id, req.GoalPatch, req.KeyResults)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteGoal(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UpsertKeyResult creates or updates a single key result on a goal.
func (h *GoalHandler) UpsertKeyResult(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var kr model.KeyResultPatch
	if err := c.ShouldBindJSON(&kr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	goal, err := h.svc.UpsertKeyResult(c.Request.Context(), id, kr)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}
