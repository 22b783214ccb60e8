// Package handler serves the fitted model over HTTP.
package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/dataset"
	"github.com/abhisek/wellstat/internal/glm"
	"github.com/abhisek/wellstat/internal/history"
	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/report"
	"github.com/abhisek/wellstat/internal/scoring"
	"github.com/abhisek/wellstat/internal/store"
	"github.com/abhisek/wellstat/internal/telemetry"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Options configures a Handler.
type Options struct {
	Model            *model.Model
	Scorer           model.Scorer    // defaults to Model
	Events           store.EventRepo // nil when history is disabled
	DefaultThreshold float64
	Logger           *zap.Logger
}

// Handler handles HTTP requests
type Handler struct {
	model            *model.Model
	scorer           model.Scorer
	events           store.EventRepo
	defaultThreshold float64
	logger           *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(opts Options) *Handler {
	h := &Handler{
		model:            opts.Model,
		scorer:           opts.Scorer,
		events:           opts.Events,
		defaultThreshold: opts.DefaultThreshold,
		logger:           opts.Logger,
	}
	if h.scorer == nil {
		h.scorer = opts.Model
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/summary", h.GetSummary)
		api.GET("/domains", h.GetDomains)
		api.GET("/schema/case", h.GetCaseSchema)
		api.GET("/evaluate", h.Evaluate)
		api.POST("/predict", h.Predict)
		api.GET("/history", h.GetHistory)
	}

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(telemetry.Handler()))
}

// NewRouter builds the engine with recovery, request logging and routes.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	h.RegisterRoutes(r)
	return r
}

// coefficientView is the JSON form of a coefficient. Aliased terms have
// null statistics.
type coefficientView struct {
	Name     string   `json:"name"`
	Estimate *float64 `json:"estimate"`
	StdErr   *float64 `json:"std_error"`
	Z        *float64 `json:"z"`
	P        *float64 `json:"p"`
	Aliased  bool     `json:"aliased"`
}

type summaryView struct {
	model.Summary
	Coefficients []coefficientView `json:"coefficients"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func viewCoefficients(coefs []glm.Coefficient) []coefficientView {
	out := make([]coefficientView, len(coefs))
	for i, c := range coefs {
		out[i] = coefficientView{
			Name:     c.Name,
			Estimate: finite(c.Estimate),
			StdErr:   finite(c.StdErr),
			Z:        finite(c.Z),
			P:        finite(c.P),
			Aliased:  c.Aliased,
		}
	}
	return out
}

// GetSummary returns the fitted model summary
func (h *Handler) GetSummary(c *gin.Context) {
	s := h.model.Summary()
	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.Summary(s))
		return
	}
	c.JSON(http.StatusOK, summaryView{Summary: s, Coefficients: viewCoefficients(s.Coefficients)})
}

// GetDomains returns the categorical levels accepted by /predict
func (h *Handler) GetDomains(c *gin.Context) {
	d := h.model.Design()
	c.JSON(http.StatusOK, gin.H{
		dataset.FieldGender:   domainView(d.Gender()),
		dataset.FieldPlatform: domainView(d.Platform()),
	})
}

func domainView(d dataset.Domain) gin.H {
	return gin.H{"levels": d.Levels(), "reference": d.Reference()}
}

// GetCaseSchema returns the JSON schema for /predict bodies
func (h *Handler) GetCaseSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.model.Design().CaseSchema())
}

// Evaluate scores the training data at a threshold
func (h *Handler) Evaluate(c *gin.Context) {
	threshold, err := h.threshold(c)
	if err != nil {
		h.reject(c, err)
		return
	}

	ev, err := h.scorer.Evaluate(threshold)
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.Evaluation(ev))
		return
	}
	c.JSON(http.StatusOK, ev)
}

// Predict scores one case from the JSON body
func (h *Handler) Predict(c *gin.Context) {
	threshold, err := h.threshold(c)
	if err != nil {
		h.reject(c, err)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	cs, err := h.model.Design().DecodeCase(body)
	if err != nil {
		h.reject(c, err)
		return
	}

	p, err := h.scorer.Predict(cs, threshold)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"case":       cs,
		"prediction": p,
	})
}

// GetHistory returns recent evaluations and predictions
func (h *Handler) GetHistory(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit (must be 1-%d)", maxHistoryLimit)})
			return
		}
		limit = n
	}

	entries, err := history.Recent(c.Request.Context(), h.events, limit)
	if err != nil {
		h.logger.Error("Failed to query history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	s := h.model.Summary()
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"observations": s.Observations,
		"converged":    s.Converged,
	})
}

// threshold reads ?threshold=, falling back to the configured default.
func (h *Handler) threshold(c *gin.Context) (float64, error) {
	raw := c.Query("threshold")
	if raw == "" {
		return h.defaultThreshold, nil
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", scoring.ErrInvalidThreshold, raw)
	}
	return t, scoring.ValidateThreshold(t)
}

// reject answers a caller error found before scoring.
func (h *Handler) reject(c *gin.Context, err error) {
	telemetry.RecordRejection(err)
	h.fail(c, err)
}

// fail maps scoring errors to HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	var ule *model.UnknownLevelError
	switch {
	case errors.As(err, &ule):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  err.Error(),
			"field":  ule.Field,
			"levels": ule.Levels,
		})
	case errors.Is(err, scoring.ErrInvalidThreshold), errors.Is(err, model.ErrInvalidCase):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Scoring failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring failed"})
	}
}
