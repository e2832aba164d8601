package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"secondbrain/internal/service"
)

// respondError maps service errors onto HTTP responses. Gate rejections
// are expected outcomes and carry their structured detail so the client
// can render what to fix; everything else collapses to a generic 500.
func respondError(c *gin.Context, err error) {
	var pr *service.ProofRejection
	var sr *service.SubtaskRejection
	var schr *service.ScheduleRejection
	var krr *service.KeyResultRejection

	switch {
	case errors.As(err, &pr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "proof of completion rejected",
			"failures": pr.Failures,
		})
	case errors.As(err, &sr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":               err.Error(),
			"incomplete_subtasks": sr.Incomplete,
			"done":                sr.Done,
			"total":               sr.Total,
		})
	case errors.As(err, &schr):
		c.JSON(http.StatusBadRequest, gin.H{"error": schr.Reason})
	case errors.As(err, &krr):
		c.JSON(http.StatusBadRequest, gin.H{"error": krr.Reason})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses the named path parameter, replying 400 itself on garbage.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
