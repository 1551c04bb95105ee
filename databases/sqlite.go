package databases

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nourish-labs/mealplan-mcp/types"
)

// SQLiteStore is the default engine: a single local file holding the
// agent's dynamic tables.
type SQLiteStore struct {
	db *sqlx.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) InspectSchema(ctx context.Context) ([]types.Table, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}
	defer tx.Commit()

	rows, err := tx.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type='table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}
	defer rows.Close()

	tables := []types.Table{}
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, &SchemaIntrospectionError{Err: err}
		}

		columns, err := s.loadColumns(ctx, tx, tableName)
		if err != nil {
			return nil, &SchemaIntrospectionError{Err: fmt.Errorf("table %s: %w", tableName, err)}
		}

		tables = append(tables, types.Table{
			Name:    tableName,
			Columns: columns,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}

	return tables, nil
}

func (s *SQLiteStore) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName string) ([]types.Column, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT cid, name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var defaultValue *string
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, types.Column{
			Name:         name,
			Type:         dataType,
			NotNull:      notNull,
			DefaultValue: defaultValue,
			PK:           pk,
		})
	}

	return columns, rows.Err()
}

func (s *SQLiteStore) Query(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
	rows, err := sqlx.NamedQueryContext(ctx, s.db, statement, params)
	if err != nil {
		return nil, &StatementExecutionError{Err: err}
	}
	defer rows.Close()

	results := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, &StatementExecutionError{Err: err}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StatementExecutionError{Err: err}
	}

	return results, nil
}

func (s *SQLiteStore) Exec(ctx context.Context, statement string, params map[string]any) (int64, error) {
	result, err := s.db.NamedExecContext(ctx, statement, params)
	if err != nil {
		return 0, &StatementExecutionError{Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, &StatementExecutionError{Err: err}
	}

	return affected, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
