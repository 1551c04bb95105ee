package mcp

import (
	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nourish-labs/mealplan-mcp/config"
	"github.com/nourish-labs/mealplan-mcp/handlers"
	"github.com/nourish-labs/mealplan-mcp/mapbox"
	"github.com/nourish-labs/mealplan-mcp/observe"
)

// RegisterTools wires the tool surface onto the MCP server. storeFinder is
// optional; the search tool is only offered when a Mapbox client exists.
func RegisterTools(s *server.MCPServer, cfg *config.Config, recorder *observe.Recorder, storeFinder *mapbox.Client) {
	inspectTool := goMCP.NewTool("inspect_schema",
		goMCP.WithDescription("Inspect the current database schema: list all tables and their columns (name, type, notnull, default_value, pk)"),
	)

	executeTool := goMCP.NewTool("execute_sql",
		goMCP.WithDescription("Execute a single SQL statement (CREATE TABLE, ALTER TABLE, INSERT, UPDATE, SELECT, DELETE with WHERE). "+
			"Named parameters use :name syntax; :user_id and :session_id are injected automatically. "+
			"DROP, unscoped DELETE, ATTACH, PRAGMA, and multi-statement batches are blocked."),
		goMCP.WithString("sql",
			goMCP.Required(),
			goMCP.Description("The SQL statement to execute; may contain named parameters like :user_id, :age"),
		),
		goMCP.WithString("params_json",
			goMCP.Description("Optional JSON object of named parameters, e.g. '{\"age\": 25, \"goal\": \"fat_loss\"}'"),
		),
		goMCP.WithBoolean("expect_result",
			goMCP.Description("True when a result set is expected (e.g. SELECT), false otherwise"),
		),
	)

	s.AddTool(inspectTool, handlers.InspectSchemaHandler(cfg))
	s.AddTool(executeTool, handlers.ExecuteSQLHandler(cfg, recorder))

	if storeFinder != nil {
		storeTool := goMCP.NewTool("search_nearby_stores",
			goMCP.WithDescription("Find nearby grocery stores, supermarkets, and markets for a free-text location query"),
			goMCP.WithString("query",
				goMCP.Required(),
				goMCP.Description("Location or store query, e.g. 'supermarket near Salmiya, Kuwait'"),
			),
			goMCP.WithNumber("limit",
				goMCP.Description("Maximum number of suggestions to resolve"),
			),
		)

		s.AddTool(storeTool, handlers.StoreSearchHandler(storeFinder))
	}
}
