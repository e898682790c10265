package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/errors"
	"github.com/notepane/notepane/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *db.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *db.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, cfg: cfg}
}

// Request types for each tool

// SaveRequest represents the arguments for note_save.
type SaveRequest struct {
	Text      string  `json:"text"`
	UserEmail *string `json:"user_email,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	Sender    *string `json:"sender,omitempty"`
}

// ListRequest represents the arguments for note_list.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// GetRequest represents the arguments for note_get.
type GetRequest struct {
	ID int64 `json:"id"`
}

// Handler implementations

// HandleSave handles the note_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Save(ctx, h.store, h.cfg, ops.SaveInput{
		Text:      input.Text,
		UserEmail: input.UserEmail,
		Subject:   input.Subject,
		Sender:    input.Sender,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the note_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.store, h.cfg, ops.ListInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStats handles the note_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stats(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the note_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Get(ctx, h.store, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// hiddenMessages replaces the message of errors whose text may carry
// connection strings, file paths or SQL.
var hiddenMessages = map[errors.ErrorCode]string{
	errors.ErrInternal: "an internal error occurred",
	errors.ErrStorage:  "storage is unavailable",
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
func errorResult(err error) *mcp.CallToolResult {
	nErr := errors.As(err)

	message := nErr.Message
	hidden, isHidden := hiddenMessages[nErr.Code]
	if isHidden {
		message = hidden
	}

	errorObj := map[string]any{
		"code":    nErr.Code,
		"message": message,
		"status":  nErr.Status,
	}
	if !isHidden && nErr.Details != nil {
		errorObj["details"] = nErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
