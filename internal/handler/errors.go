package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerylCAtieno/starstruck-agent/internal/contract"
	"github.com/BerylCAtieno/starstruck-agent/internal/pipeline"
	"github.com/BerylCAtieno/starstruck-agent/internal/sources"
)

// StatusClientClosedRequest is the nginx convention for a caller that went away.
const StatusClientClosedRequest = 499

type ErrorResponse struct {
	Error     string `json:"error"`
	Stage     string `json:"stage,omitempty"`
	Task      string `json:"task,omitempty"`
	Reconnect bool   `json:"reconnect,omitempty"`
}

// StatusFor maps a pipeline or source error onto an HTTP status.
func StatusFor(err error) int {
	var v *contract.Violation
	switch {
	case errors.As(err, &v):
		return http.StatusBadGateway
	case errors.Is(err, sources.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, sources.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error(), Reconnect: errors.Is(err, sources.ErrAuthExpired)}
	var se *pipeline.StageError
	if errors.As(err, &se) {
		resp.Stage = string(se.Stage)
	}
	var v *contract.Violation
	if errors.As(err, &v) {
		resp.Task = v.Stage
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
