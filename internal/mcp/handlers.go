package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/errors"
	"github.com/hpungsan/easypass/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// AddressRequest holds the id or group+name of one credential.
type AddressRequest struct {
	ID    int64  `json:"id,omitempty"`
	Group string `json:"group,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ListRequest represents the arguments for credential_list.
type ListRequest struct {
	Group string `json:"group,omitempty"`
}

// StoreRequest represents the arguments for credential_store.
type StoreRequest struct {
	Group       string `json:"group,omitempty"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Note        string `json:"note,omitempty"`
	Mode        string `json:"mode,omitempty"`
	CreateGroup bool   `json:"create_group,omitempty"`
}

// UpdateRequest represents the arguments for credential_update.
type UpdateRequest struct {
	AddressRequest
	NewGroup    *string `json:"new_group,omitempty"`
	NewName     *string `json:"new_name,omitempty"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
	Note        *string `json:"note,omitempty"`
	CreateGroup bool    `json:"create_group,omitempty"`
}

// NoteRequest represents the arguments for credential_note.
type NoteRequest struct {
	AddressRequest
	Note string `json:"note"`
}

// GroupRequest represents the arguments for group_add and group_delete.
type GroupRequest struct {
	Name string `json:"name"`
}

// GenerateRequest represents the arguments for password_generate.
type GenerateRequest struct {
	Length  int    `json:"length,omitempty"`
	Charset string `json:"charset,omitempty"`
}

// HandleList handles the credential_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{Group: input.Group})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the credential_fetch tool call. The secret stays in
// the store: agents read metadata and notes only.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:    input.ID,
		Group: input.Group,
		Name:  input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStore handles the credential_store tool call.
func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StoreRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Store(ctx, h.db, ops.StoreInput{
		Group:       input.Group,
		Name:        input.Name,
		Username:    input.Username,
		Secret:      input.Password,
		Note:        input.Note,
		Mode:        ops.StoreMode(input.Mode),
		CreateGroup: input.CreateGroup,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the credential_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Update(ctx, h.db, ops.UpdateInput{
		ID:          input.ID,
		Group:       input.Group,
		Name:        input.Name,
		NewGroup:    input.NewGroup,
		NewName:     input.NewName,
		Username:    input.Username,
		Secret:      input.Password,
		Note:        input.Note,
		CreateGroup: input.CreateGroup,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the credential_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{
		ID:    input.ID,
		Group: input.Group,
		Name:  input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleNote handles the credential_note tool call.
func (h *Handlers) HandleNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SetNote(ctx, h.db, ops.SetNoteInput{
		ID:    input.ID,
		Group: input.Group,
		Name:  input.Name,
		Note:  input.Note,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGroupList handles the group_list tool call.
func (h *Handlers) HandleGroupList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Groups(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGroupAdd handles the group_add tool call.
func (h *Handlers) HandleGroupAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GroupRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddGroup(ctx, h.db, input.Name)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGroupDelete handles the group_delete tool call.
func (h *Handlers) HandleGroupDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GroupRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteGroup(ctx, h.db, input.Name)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGenerate handles the password_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Generate(h.cfg, ops.GenerateInput{
		Length:  input.Length,
		Charset: input.Charset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to prevent leaking paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var epErr *errors.EasyPassError
	if stderrors.As(err, &epErr) {
		message := epErr.Message
		if err != error(epErr) {
			// keep the wrapping context
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    epErr.Code,
			"message": message,
			"status":  epErr.Status,
		}
		if epErr.Code != errors.ErrInternal && epErr.Details != nil {
			errorObj["details"] = epErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
