// Package tools registers the MCP tools exposed by the server and holds
// their handlers. Handlers never return Go errors for upstream failures;
// the MCP tool contract is text, so every failure becomes a descriptive
// tool-error string.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/soyeahso/mcp-openwebui/internal/directory"
	"github.com/soyeahso/mcp-openwebui/internal/logging"
	"github.com/soyeahso/mcp-openwebui/internal/openwebui"
)

// ChatInvoker sends a single prompt to one agent. *openwebui.Client
// satisfies this; handlers depend only on this method.
type ChatInvoker interface {
	ChatCompletion(ctx context.Context, model, prompt string) (string, error)
}

// Handlers carries the collaborators the tool handlers need.
type Handlers struct {
	cache   *directory.Cache
	invoker ChatInvoker
	log     *logging.Logger
}

// NewHandlers wires tool handlers to the agent directory and chat invoker.
func NewHandlers(cache *directory.Cache, invoker ChatInvoker, log *logging.Logger) *Handlers {
	return &Handlers{
		cache:   cache,
		invoker: invoker,
		log:     log.Sub("tools"),
	}
}

// Register adds the tools to an MCP server.
func (h *Handlers) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_agents",
		mcp.WithDescription("List all available OpenWebUI agents (models). Returns a JSON array with id, name, and description for each agent."),
	), h.handleListAgents)

	s.AddTool(mcp.NewTool("openwebui_chat",
		mcp.WithDescription("Performs a chat completion using a specified OpenWebUI agent (model). Returns the agent's textual response."),
		mcp.WithString("agent_id", mcp.Required(),
			mcp.Description("The ID of the OpenWebUI model (agent) to use. Must be one of the ids returned by list_agents."),
		),
		mcp.WithString("prompt", mcp.Required(),
			mcp.Description("The prompt for the agent."),
		),
	), h.handleChat)
}

// agentSummary is the simplified record returned by list_agents.
type agentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handlers) handleListAgents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.log.Info().Msg("list_agents tool called")

	agents := h.cache.Agents(ctx)

	summaries := make([]agentSummary, 0, len(agents))
	for _, a := range agents {
		summaries = append(summaries, agentSummary{
			ID:          a.ID(),
			Name:        a.DisplayName(),
			Description: a.Description(),
		})
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize agent list: %v", err)), nil
	}

	h.log.Info().Int("count", len(summaries)).Msg("returning agent list")
	return mcp.NewToolResultText(string(data)), nil
}

func (h *Handlers) handleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.Info().Str("agent", agentID).Msg("openwebui_chat tool called")
	h.log.Debug().Str("prompt", truncate(prompt, 100)).Msg("prompt received")

	// Validate against the cached directory before spending an upstream
	// call. This is a local check; no network round trip.
	ids := h.cache.IDs(ctx)
	if !slices.Contains(ids, agentID) {
		msg := fmt.Sprintf("Error: Agent '%s' is not available. Available agents are: %s",
			agentID, strings.Join(ids, ", "))
		h.log.Error().Str("agent", agentID).Msg("unknown agent requested")
		return mcp.NewToolResultError(msg), nil
	}

	content, err := h.invoker.ChatCompletion(ctx, agentID, prompt)
	if err != nil {
		var apiErr *openwebui.APIError
		if errors.As(err, &apiErr) {
			h.log.Error().Int("status", apiErr.Status).Msg("chat completion rejected by API")
			return mcp.NewToolResultError(fmt.Sprintf("Error from OpenWebUI API: %s", apiErr.Body)), nil
		}
		h.log.Error().Err(err).Msg("chat completion failed")
		return mcp.NewToolResultError(fmt.Sprintf("Error during chat completion: %v", err)), nil
	}

	h.log.Info().Str("agent", agentID).Msg("chat completion succeeded")
	return mcp.NewToolResultText(content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
