package databases

import (
	"context"
	"fmt"

	"github.com/nourish-labs/mealplan-mcp/config"
	"github.com/nourish-labs/mealplan-mcp/types"
)

// Store is one short-lived connection to the backing database. Every tool
// call opens its own store via Open and closes it before returning; there
// is no pooling and no transaction spanning calls.
type Store interface {
	Ping(ctx context.Context) error

	// InspectSchema lists user-created tables with their column metadata
	// in declared ordinal order, excluding engine-internal tables.
	InspectSchema(ctx context.Context) ([]types.Table, error)

	// Query runs one row-returning statement with named parameters
	// (:user_id style) and materializes every row in order.
	Query(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error)

	// Exec runs one write-intent statement with named parameters and
	// returns the engine-reported affected row count.
	Exec(ctx context.Context, statement string, params map[string]any) (int64, error)

	Close() error
}

// SchemaIntrospectionError wraps an engine failure while reading the catalog.
type SchemaIntrospectionError struct {
	Err error
}

func (e *SchemaIntrospectionError) Error() string {
	return fmt.Sprintf("schema introspection failed: %v", e.Err)
}

func (e *SchemaIntrospectionError) Unwrap() error { return e.Err }

// StatementExecutionError wraps an engine rejection of a gated statement
// (syntax, constraint, type, missing table or column, lock contention).
type StatementExecutionError struct {
	Err error
}

func (e *StatementExecutionError) Error() string {
	return fmt.Sprintf("statement execution failed: %v", e.Err)
}

func (e *StatementExecutionError) Unwrap() error { return e.Err }

// Open creates a fresh store for one tool call.
func Open(cfg config.DatabaseConfig) (Store, error) {
	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	switch cfg.DBType {
	case "", "sqlite":
		return OpenSQLite(connStr)
	case "postgres":
		return OpenPostgres(connStr)
	case "mysql":
		return OpenMySQL(connStr)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}
