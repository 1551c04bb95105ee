package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nourish-labs/mealplan-mcp/config"
	"github.com/nourish-labs/mealplan-mcp/databases"
	"github.com/nourish-labs/mealplan-mcp/identity"
	"github.com/nourish-labs/mealplan-mcp/mapbox"
	"github.com/nourish-labs/mealplan-mcp/observe"
	"github.com/nourish-labs/mealplan-mcp/params"
	"github.com/nourish-labs/mealplan-mcp/safety"
	"github.com/nourish-labs/mealplan-mcp/types"
)

// InspectSchemaHandler creates the handler for the inspect_schema tool. It
// opens a fresh store, reads the live catalog, and closes the store before
// returning; nothing is cached between calls.
func InspectSchemaHandler(cfg *config.Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		store, err := databases.Open(cfg.Database)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to open database: %v", err)), nil
		}
		defer store.Close()

		tables, err := store.InspectSchema(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Schema inspection failed: %v", err)), nil
		}

		jsonData, err := json.MarshalIndent(types.Schema{Tables: tables}, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// ExecuteSQLHandler creates the handler for the execute_sql tool: resolve
// identity, gate the statement, bind parameters, run it on a fresh store,
// record the outcome. A gated or malformed request never touches the engine.
func ExecuteSQLHandler(cfg *config.Config, recorder *observe.Recorder) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		statement, err := request.RequireString("sql")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing sql parameter: %v", err)), nil
		}

		paramsJSON := ""
		expectResult := false
		if args, ok := request.Params.Arguments.(map[string]any); ok {
			if raw, exists := args["params_json"]; exists {
				if s, ok := raw.(string); ok {
					paramsJSON = s
				}
			}
			if raw, exists := args["expect_result"]; exists {
				if b, ok := raw.(bool); ok {
					expectResult = b
				}
			}
		}

		id := identity.Resolve(ctx, cfg.Identity)

		if err := safety.Check(statement); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		bound, err := params.Bind(paramsJSON, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		store, err := databases.Open(cfg.Database)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to open database: %v", err)), nil
		}
		defer store.Close()

		kind := observe.Classify(statement)
		start := time.Now()

		var result any
		var count int64
		if expectResult {
			rows, err := store.Query(ctx, statement, bound)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			count = int64(len(rows))
			result = types.QueryResult{Rows: rows, RowCount: len(rows)}
		} else {
			affected, err := store.Exec(ctx, statement, bound)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			count = affected
			result = types.ExecResult{RowCount: affected}
		}

		recorder.Record(kind, count, time.Since(start))

		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// StoreSearchHandler creates the handler for the search_nearby_stores tool.
func StoreSearchHandler(client *mapbox.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing query parameter: %v", err)), nil
		}

		limit := 0
		if args, ok := request.Params.Arguments.(map[string]any); ok {
			if raw, exists := args["limit"]; exists {
				if n, ok := raw.(float64); ok {
					limit = int(n)
				}
			}
		}

		result, err := client.SearchNearbyStores(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Store search failed: %v", err)), nil
		}

		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
