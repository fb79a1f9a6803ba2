package mcp

import (
	"database/sql"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/easypass/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"credential_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"credential_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"credential_store": {
		def:     storeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStore },
	},
	"credential_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"credential_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"credential_note": {
		def:     noteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNote },
	},
	"group_list": {
		def:     groupListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGroupList },
	},
	"group_add": {
		def:     groupAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGroupAdd },
	},
	"group_delete": {
		def:     groupDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGroupDelete },
	},
	"password_generate": {
		def:     generateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the credential tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"easypass",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("ignoring unknown disabled_tools", "component", "mcp", "tools", unknown)
	}
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}
