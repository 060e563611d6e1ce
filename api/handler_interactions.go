package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"workforce-engine/models"
	"workforce-engine/parser"
)

type interactionRequest struct {
	OccurredAt    time.Time `json:"occurredAt" binding:"required"`
	HandleSeconds float64   `json:"handleSeconds" binding:"gte=0"`
	Concurrency   float64   `json:"concurrency" binding:"gte=0"`
}

// PostInteractions handles POST /api/interactions. The body is either a JSON
// array of interactions or, with Content-Type text/csv, a history CSV.
func (h *Handler) PostInteractions(c *gin.Context) {
	var history []models.HistoryRecord

	if strings.HasPrefix(c.ContentType(), "text/csv") {
		records, err := parser.ParseHistory(c.Request.Body)
		if err != nil {
			h.fail(c, err)
			return
		}
		history = records
	} else {
		var req []interactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		for _, r := range req {
			history = append(history, models.HistoryRecord{
				OccurredAt:    r.OccurredAt.UTC(),
				HandleMinutes: r.HandleSeconds / 60,
				Concurrency:   r.Concurrency,
			})
		}
	}

	if err := h.store.AddInteractions(c.Request.Context(), history); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": len(history)})
}
