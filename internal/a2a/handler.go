// Package a2a exposes the match pipeline as an A2A JSON-RPC agent.
package a2a

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/starstruck-agent/internal/agent"
	"github.com/BerylCAtieno/starstruck-agent/internal/handler"
	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const usageHint = "Send two sets of source handles separated by \"vs\", e.g. " +
	"\"github:ada spotify:<token> location:Lagos vs letterboxd:bob\", " +
	"or a data part with user_a and user_b."

type A2AHandler struct {
	pipeline handler.Pipeline
	baseURL  string
}

func NewA2AHandler(p handler.Pipeline, baseURL string) *A2AHandler {
	return &A2AHandler{pipeline: p, baseURL: baseURL}
}

func (h *A2AHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/.well-known/agent.json", h.ServeAgentCard)
	r.POST("/a2a/starstruck", h.HandleMatch)
}

// HandleMatch processes A2A messages. JSON-RPC errors are sent with 200.
func (h *A2AHandler) HandleMatch(c *gin.Context) {
	var rpcReq JSONRPCRequest
	if err := c.ShouldBindJSON(&rpcReq); err != nil {
		zap.L().Warn("a2a: malformed JSON-RPC request", zap.Error(err))
		h.sendErrorResponse(c, "", "Parse error", CodeParseError)
		return
	}

	if rpcReq.JSONRPC != "2.0" {
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "agent/task", "message/send":
		h.handleTask(c, rpcReq)
	default:
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	var msgParams MessageParams
	if err := json.Unmarshal(rpcReq.Params, &msgParams); err != nil {
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}

	taskID := msgParams.Message.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	log := zap.L().With(zap.String("task_id", taskID), zap.String("rpc_id", rpcReq.ID))

	req, ok := extractMatch(msgParams.Message)
	if !ok {
		log.Info("a2a: no identifiers in message")
		h.sendSuccessResponse(c, rpcReq.ID, h.createTaskResult(taskID, StateInputRequired, usageHint, nil))
		return
	}

	state, err := h.pipeline.Run(c.Request.Context(), req.UserA.Identity(), req.UserB.Identity(), req.VenueHint())
	if err != nil {
		log.Error("a2a: pipeline failed", zap.Error(err))
		h.sendSuccessResponse(c, rpcReq.ID, h.createTaskResult(taskID, StateFailed,
			fmt.Sprintf("Failed to build the match briefing: %v", err), nil))
		return
	}

	log.Info("a2a: pipeline completed", zap.Strings("trace", state.Trace))
	h.sendSuccessResponse(c, rpcReq.ID, h.createTaskResult(taskID, StateCompleted, formatBriefing(state), state))
}

// ServeAgentCard serves the agent card with this deployment's URL.
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	card, err := agent.LoadAgentCard(h.baseURL)
	if err != nil {
		zap.L().Error("a2a: agent card unavailable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Agent card not available"})
		return
	}
	c.Data(http.StatusOK, "application/json", card)
}

func (h *A2AHandler) createTaskResult(taskID, state, text string, result *models.PipelineState) TaskResult {
	task := TaskResult{
		ID:   taskID,
		Kind: "task",
		Status: TaskStatus{
			State:     state,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    taskID,
				Parts:     []MessagePart{TextPart(text)},
			},
		},
	}
	if result != nil {
		task.Artifacts = []Artifact{{
			ArtifactID: uuid.NewString(),
			Name:       "Match Briefing",
			Parts:      []MessagePart{TextPart(text), DataPart(handler.NewCoachingResponse(result))},
		}}
	}
	return task
}

func formatBriefing(s *models.PipelineState) string {
	var b strings.Builder
	b.WriteString("# Match Briefing\n\n")

	writeSignals := func(title string, signals []models.Signal) {
		if len(signals) == 0 {
			return
		}
		fmt.Fprintf(&b, "**%s:**\n", title)
		for _, sig := range signals {
			fmt.Fprintf(&b, "- %s: %s\n", sig.Signal, sig.Detail)
		}
		b.WriteString("\n")
	}
	writeSignals("Shared", s.CrossRef.Shared)
	writeSignals("Complementary", s.CrossRef.Complementary)
	writeSignals("Tension Points", s.CrossRef.TensionPoints)

	if len(s.Venues) > 0 {
		b.WriteString("**Venues:**\n")
		for _, v := range s.Venues {
			fmt.Fprintf(&b, "- %s (%s): %s\n", v.Name, v.Address, v.Reason)
		}
		b.WriteString("\n")
	}

	for _, side := range []struct {
		who string
		c   models.CoachingBriefing
	}{{"User A", s.CoachingA}, {"User B", s.CoachingB}} {
		fmt.Fprintf(&b, "---\n\n## Coaching for %s\n\n", side.who)
		for _, card := range side.c.Cards() {
			fmt.Fprintf(&b, "- **%s:** %s\n", card.Label, strings.TrimSpace(card.Content))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id string, result any) {
	c.JSON(http.StatusOK, JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (h *A2AHandler) sendErrorResponse(c *gin.Context, id string, message string, code int) {
	zap.L().Warn("a2a: rpc error", zap.String("rpc_id", id), zap.Int("code", code), zap.String("message", message))
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	})
}
