// Package api exposes the forecast and validation engines over HTTP.
package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	customerrors "workforce-engine/errors"
	"workforce-engine/forecast"
	"workforce-engine/logx"
	"workforce-engine/store"
	"workforce-engine/validation"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	defaults   forecast.Params
	validation validation.Options
	logger     logx.Logger
	responses  *cache.Cache
	cacheTTL   time.Duration
}

// Options configures a Handler.
type Options struct {
	ForecastDefaults forecast.Params
	Validation       validation.Options
	Logger           logx.Logger
	// CacheTTL bounds how long GET /api/forecasts responses are reused.
	CacheTTL time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, opts Options) *Handler {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if opts.Validation.Logger == (logx.Logger{}) {
		opts.Validation.Logger = opts.Logger
	}
	return &Handler{
		store:      s,
		defaults:   opts.ForecastDefaults,
		validation: opts.Validation,
		logger:     opts.Logger,
		responses:  cache.New(ttl, 2*ttl),
		cacheTTL:   ttl,
	}
}

var inputErrors = []error{
	customerrors.ErrMissingDateRange,
	customerrors.ErrInvalidDateRange,
	customerrors.ErrInvalidShift,
	customerrors.ErrInvalidForecastStart,
	customerrors.ErrInvalidSlotMinutes,
	customerrors.ErrInvalidHorizon,
	customerrors.ErrUnknownMethod,
	customerrors.ErrInvalidServiceTarget,
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	var parseErr *customerrors.ParseError
	var csvErr *csv.ParseError
	if errors.As(err, &parseErr) || errors.As(err, &csvErr) {
		return http.StatusBadRequest
	}
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
