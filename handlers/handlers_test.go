package handlers

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nourish-labs/mealplan-mcp/config"
	"github.com/nourish-labs/mealplan-mcp/identity"
	"github.com/nourish-labs/mealplan-mcp/observe"
	"github.com/nourish-labs/mealplan-mcp/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{
		DBType: "sqlite",
		File:   filepath.Join(t.TempDir(), "test.db"),
	}
	cfg.Identity = config.IdentityConfig{
		UserEnv:      "TEST_HANDLERS_USER_ID",
		SessionEnv:   "TEST_HANDLERS_SESSION_ID",
		FallbackUser: "user",
	}
	return cfg
}

func executeRequest(sql string, paramsJSON string, expectResult bool) mcp.CallToolRequest {
	args := map[string]any{"sql": sql, "expect_result": expectResult}
	if paramsJSON != "" {
		args["params_json"] = paramsJSON
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = "execute_sql"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestExecuteSQLScenario(t *testing.T) {
	cfg := testConfig(t)
	handler := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))
	ctx := identity.WithIdentity(context.Background(), identity.Identity{UserID: "alice"})

	// CREATE TABLE reports zero affected rows.
	result, err := handler(ctx, executeRequest("CREATE TABLE user_profiles (user_id TEXT PRIMARY KEY, age INTEGER)", "", false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.IsError {
		t.Fatalf("create failed: %s", resultText(t, result))
	}
	var exec types.ExecResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &exec); err != nil {
		t.Fatalf("unmarshal create result: %v", err)
	}
	if exec.RowCount != 0 {
		t.Errorf("create rowcount = %d, want 0", exec.RowCount)
	}

	// INSERT picks up :user_id from the resolved identity, :age from params_json.
	result, err = handler(ctx, executeRequest(
		"INSERT INTO user_profiles (user_id, age) VALUES (:user_id, :age)",
		`{"age": 30}`, false))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if result.IsError {
		t.Fatalf("insert failed: %s", resultText(t, result))
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &exec); err != nil {
		t.Fatalf("unmarshal insert result: %v", err)
	}
	if exec.RowCount != 1 {
		t.Errorf("insert rowcount = %d, want 1", exec.RowCount)
	}

	// SELECT returns exactly the inserted row.
	result, err = handler(ctx, executeRequest("SELECT * FROM user_profiles WHERE user_id = :user_id", "", true))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.IsError {
		t.Fatalf("select failed: %s", resultText(t, result))
	}
	var query types.QueryResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &query); err != nil {
		t.Fatalf("unmarshal select result: %v", err)
	}
	if query.RowCount != 1 || len(query.Rows) != 1 {
		t.Fatalf("select rowcount = %d, rows = %d, want 1", query.RowCount, len(query.Rows))
	}
	if query.Rows[0]["user_id"] != "alice" {
		t.Errorf("user_id = %v, want alice", query.Rows[0]["user_id"])
	}
	if query.Rows[0]["age"] != float64(30) {
		t.Errorf("age = %v, want 30", query.Rows[0]["age"])
	}
}

func TestExecuteSQLSessionInjection(t *testing.T) {
	cfg := testConfig(t)
	handler := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))
	ctx := identity.WithIdentity(context.Background(), identity.Identity{UserID: "alice", SessionID: "s-42"})

	for _, step := range []mcp.CallToolRequest{
		executeRequest("CREATE TABLE session_notes (user_id TEXT, session_id TEXT, note TEXT)", "", false),
		executeRequest("INSERT INTO session_notes (user_id, session_id, note) VALUES (:user_id, :session_id, :note)", `{"note": "hi"}`, false),
	} {
		result, err := handler(ctx, step)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if result.IsError {
			t.Fatalf("step failed: %s", resultText(t, result))
		}
	}

	result, err := handler(ctx, executeRequest("SELECT session_id FROM session_notes WHERE user_id = :user_id", "", true))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var query types.QueryResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &query); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(query.Rows) != 1 || query.Rows[0]["session_id"] != "s-42" {
		t.Errorf("session_id not injected: %+v", query.Rows)
	}
}

func TestExecuteSQLBlockedBeforeEngine(t *testing.T) {
	cfg := testConfig(t)
	// A database path in a missing directory makes any engine open fail, so
	// a gate rejection proves the engine was never touched.
	cfg.Database.File = filepath.Join(t.TempDir(), "missing-dir", "test.db")
	handler := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))

	tests := []struct {
		name   string
		sql    string
		params string
		reason string
	}{
		{"drop", "DROP TABLE user_profiles", "", "unsafe statement"},
		{"unscoped delete", "DELETE FROM user_profiles", "", "unscoped deletion"},
		{"attach", "ATTACH DATABASE 'x.db' AS x", "", "unsafe statement"},
		{"pragma", "PRAGMA user_version", "", "unsafe statement"},
		{"multi statement", "SELECT 1; SELECT 2;", "", "unsafe statement"},
		{"array params", "SELECT 1", "[1,2]", "invalid params_json"},
		{"scalar params", "SELECT 1", "5", "invalid params_json"},
		{"broken params", "SELECT 1", `{"age":`, "invalid params_json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), executeRequest(tt.sql, tt.params, false))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected an error result")
			}

			text := resultText(t, result)
			if !strings.Contains(text, tt.reason) {
				t.Errorf("error %q does not mention %q", text, tt.reason)
			}
			if strings.Contains(text, "Failed to open database") {
				t.Errorf("engine was touched for a request that should fail fast: %q", text)
			}
		})
	}
}

func TestExecuteSQLRejectionPreservesData(t *testing.T) {
	cfg := testConfig(t)
	handler := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))
	ctx := identity.WithIdentity(context.Background(), identity.Identity{UserID: "alice"})

	for _, step := range []mcp.CallToolRequest{
		executeRequest("CREATE TABLE user_profiles (user_id TEXT PRIMARY KEY, age INTEGER)", "", false),
		executeRequest("INSERT INTO user_profiles (user_id, age) VALUES (:user_id, :age)", `{"age": 30}`, false),
	} {
		result, err := handler(ctx, step)
		if err != nil || result.IsError {
			t.Fatalf("setup failed: %v %v", err, result)
		}
	}

	result, err := handler(ctx, executeRequest("DELETE FROM user_profiles", "", false))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !result.IsError {
		t.Fatal("unscoped DELETE should be rejected")
	}
	if !strings.Contains(resultText(t, result), "unscoped deletion") {
		t.Errorf("rejection %q should identify unscoped deletion", resultText(t, result))
	}

	result, err = handler(ctx, executeRequest("SELECT * FROM user_profiles WHERE user_id = :user_id", "", true))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var query types.QueryResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &query); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if query.RowCount != 1 {
		t.Errorf("row should survive the rejected DELETE, got %d rows", query.RowCount)
	}
}

func TestExecuteSQLEngineError(t *testing.T) {
	cfg := testConfig(t)
	handler := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))

	result, err := handler(context.Background(), executeRequest("SELECT * FROM does_not_exist", "", true))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for a missing table")
	}
	if !strings.Contains(resultText(t, result), "statement execution failed") {
		t.Errorf("unexpected error text: %q", resultText(t, result))
	}
}

func TestExecuteSQLMissingParameter(t *testing.T) {
	cfg := testConfig(t)
	handler := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))

	req := mcp.CallToolRequest{}
	req.Params.Name = "execute_sql"
	req.Params.Arguments = map[string]any{}

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for a missing sql argument")
	}
}

func TestInspectSchemaHandler(t *testing.T) {
	cfg := testConfig(t)
	execute := ExecuteSQLHandler(cfg, observe.NewRecorder(nil))
	inspect := InspectSchemaHandler(cfg)
	ctx := context.Background()

	result, err := inspect(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("inspect empty: %v", err)
	}
	var schema types.Schema
	if err := json.Unmarshal([]byte(resultText(t, result)), &schema); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(schema.Tables) != 0 {
		t.Errorf("fresh database should have no tables, got %d", len(schema.Tables))
	}

	createResult, err := execute(ctx, executeRequest(
		"CREATE TABLE user_profiles (id INTEGER PRIMARY KEY, user_id TEXT, note TEXT)", "", false))
	if err != nil || createResult.IsError {
		t.Fatalf("create failed: %v %v", err, createResult)
	}

	result, err = inspect(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	first := resultText(t, result)
	if err := json.Unmarshal([]byte(first), &schema); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(schema.Tables) != 1 || schema.Tables[0].Name != "user_profiles" {
		t.Fatalf("unexpected catalog: %+v", schema.Tables)
	}
	cols := schema.Tables[0].Columns
	if len(cols) != 3 {
		t.Fatalf("got %d columns, want 3", len(cols))
	}
	if cols[0].Name != "id" || cols[0].PK != 1 {
		t.Errorf("id column = %+v, want pk 1", cols[0])
	}
	if cols[1].Name != "user_id" || cols[1].Type != "TEXT" || cols[1].PK != 0 {
		t.Errorf("user_id column = %+v", cols[1])
	}

	// Idempotent with no intervening writes.
	result, err = inspect(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("second inspect: %v", err)
	}
	if second := resultText(t, result); second != first {
		t.Errorf("inspect_schema not idempotent:\nfirst:  %s\nsecond: %s", first, second)
	}
}
