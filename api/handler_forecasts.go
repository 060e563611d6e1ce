package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	customerrors "workforce-engine/errors"
	"workforce-engine/forecast"
	"workforce-engine/models"
)

// PostForecast handles POST /api/forecasts. It forecasts from the stored
// history inside the lookback window, replaces stored rows for the dates the
// new forecast covers and returns the rows.
func (h *Handler) PostForecast(c *gin.Context) {
	var req forecast.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p, err := req.Params(h.defaults)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	from, to := p.LookbackWindow()
	history, err := h.store.ListInteractions(ctx, from, to)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows, err := forecast.Staffing(history, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.ReplaceForecasts(ctx, p.Activity, rows); err != nil {
		h.fail(c, err)
		return
	}
	h.responses.Flush()

	h.logger.Info(ctx, "forecast_generated", "forecast stored",
		slog.String("method", string(p.Method)),
		slog.String("activity", p.Activity),
		slog.Int("history_records", len(history)),
		slog.Int("rows", len(rows)),
		slog.Int("peak_agents", forecast.PeakAgents(rows)),
	)
	c.JSON(http.StatusOK, rows)
}

// GetForecasts handles GET /api/forecasts?from=...&to=... and returns the
// stored rows with from <= slotStart < to.
func (h *Handler) GetForecasts(c *gin.Context) {
	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.store.ListForecasts(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rows == nil {
		rows = []models.ForecastRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func parseRange(rawFrom, rawTo string) (time.Time, time.Time, error) {
	if rawFrom == "" || rawTo == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to are required", customerrors.ErrInvalidDateRange)
	}
	from, err := parseDay(rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from: %v", customerrors.ErrInvalidDateRange, err)
	}
	to, err := parseDay(rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to: %v", customerrors.ErrInvalidDateRange, err)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be before to", customerrors.ErrInvalidDateRange)
	}
	return from, to, nil
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
