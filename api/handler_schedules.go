package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce-engine/parser"
	"workforce-engine/validation"
)

// PostValidateSchedule handles POST /api/schedules/validate. When the body
// carries no forecasts, stored forecasts inside the date range are used for
// the coverage check.
func (h *Handler) PostValidateSchedule(c *gin.Context) {
	in, err := parser.ParseSchedule(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	if len(in.Forecasts) == 0 && in.DateRange != nil && in.DateRange.Start.Before(in.DateRange.End) {
		rows, err := h.store.ListForecasts(ctx, in.DateRange.Start, in.DateRange.End)
		if err != nil {
			h.fail(c, err)
			return
		}
		for _, row := range rows {
			in.Forecasts = append(in.Forecasts, row.Demand())
		}
	}

	result, err := validation.ValidateSchedule(ctx, in, h.validation)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
