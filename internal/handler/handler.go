// Package handler exposes the match pipeline over REST and server-sent events.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
	"github.com/BerylCAtieno/starstruck-agent/internal/pipeline"
	"github.com/BerylCAtieno/starstruck-agent/internal/sources"
)

// Pipeline runs a full match.
type Pipeline interface {
	Run(ctx context.Context, a, b models.UserIdentity, includeVenueHint bool) (*models.PipelineState, error)
	Stream(ctx context.Context, a, b models.UserIdentity, includeVenueHint bool, observe pipeline.Observer) (*models.PipelineState, error)
}

// DossierBuilder synthesizes one user's dossier.
type DossierBuilder interface {
	ProfileAnalysis(ctx context.Context, bundle models.RawDataBundle) (models.Dossier, error)
}

type MatchHandler struct {
	pipeline Pipeline
	sources  *sources.Coordinator
	dossiers DossierBuilder
}

func NewMatchHandler(p Pipeline, coord *sources.Coordinator, dossiers DossierBuilder) *MatchHandler {
	return &MatchHandler{pipeline: p, sources: coord, dossiers: dossiers}
}

func (h *MatchHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.POST("/run", h.Run)
	r.POST("/stream", h.Stream)

	api := r.Group("/api")
	api.POST("/connect", h.Connect)
	api.POST("/analyze", h.Analyze)
}

func (h *MatchHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run executes the pipeline and answers with the finished coaching output.
func (h *MatchHandler) Run(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	state, err := h.pipeline.Run(c.Request.Context(), req.UserA.Identity(), req.UserB.Identity(), req.VenueHint())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCoachingResponse(state))
}

// Stream runs the pipeline and pushes one SSE event per finished stage, then
// "done" or "error".
func (h *MatchHandler) Stream(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	_, err := h.pipeline.Stream(ctx, req.UserA.Identity(), req.UserB.Identity(), req.VenueHint(), func(ev pipeline.Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, payload := toStreamEvent(ev)
		c.SSEvent(name, payload)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		zap.L().Warn("stream ended with error", zap.Error(err))
	}
}

// Connect fetches one source for one identifier and returns a preview line.
// A rejected credential answers 401 with reconnect set.
func (h *MatchHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	payload, err := h.sources.Registry().Fetch(c.Request.Context(), req.Service, req.Identifier)
	if err != nil {
		if !errors.Is(err, sources.ErrAuthExpired) && !errors.Is(err, sources.ErrUnknownSource) {
			zap.L().Warn("connect failed", zap.String("service", req.Service), zap.Error(err))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConnectResponse{
		Service: req.Service,
		Status:  "connected",
		Preview: sources.Preview(req.Service, payload),
		Data:    payload,
	})
}

// Analyze gathers one user's sources and synthesizes their dossier with
// display-ready findings.
func (h *MatchHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	bundle, report := h.sources.Gather(ctx, req.User.Identity())
	dossier, err := h.dossiers.ProfileAnalysis(ctx, bundle)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Dossier:   dossier,
		Findings:  sources.Findings(dossier, bundle),
		Fetched:   report.Fetched,
		Omitted:   report.Omitted,
		Reconnect: report.Reconnect,
	})
}
