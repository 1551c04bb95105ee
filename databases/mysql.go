package databases

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/nourish-labs/mealplan-mcp/types"
)

// MySQLStore offers the same per-call contract as SQLiteStore on a MySQL
// database, scoped to the DSN's current schema.
type MySQLStore struct {
	db *sqlx.DB
}

func OpenMySQL(connectionString string) (*MySQLStore, error) {
	if _, err := mysql.ParseDSN(connectionString); err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	db, err := sqlx.Open("mysql", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &MySQLStore{db: db}

	if err := store.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return store, nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) InspectSchema(ctx context.Context) ([]types.Table, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}
	defer tx.Commit()

	rows, err := tx.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = DATABASE()
		ORDER BY table_name
	`)
	if err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, &SchemaIntrospectionError{Err: err}
		}
		names = append(names, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}

	tables := []types.Table{}
	for _, tableName := range names {
		columns, err := s.loadColumns(ctx, tx, tableName)
		if err != nil {
			return nil, &SchemaIntrospectionError{Err: fmt.Errorf("table %s: %w", tableName, err)}
		}

		tables = append(tables, types.Table{
			Name:    tableName,
			Columns: columns,
		})
	}

	return tables, nil
}

func (s *MySQLStore) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName string) ([]types.Column, error) {
	pkOrdinals, err := s.loadPrimaryKey(ctx, tx, tableName)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = DATABASE()
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, dataType, isNullable string
		var defaultValue *string
		if err := rows.Scan(&name, &dataType, &isNullable, &defaultValue); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		notNull := 0
		if isNullable == "NO" {
			notNull = 1
		}

		columns = append(columns, types.Column{
			Name:         name,
			Type:         dataType,
			NotNull:      notNull,
			DefaultValue: defaultValue,
			PK:           pkOrdinals[name],
		})
	}

	return columns, rows.Err()
}

func (s *MySQLStore) loadPrimaryKey(ctx context.Context, tx *sqlx.Tx, tableName string) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT column_name, ordinal_position
		FROM information_schema.key_column_usage
		WHERE constraint_name = 'PRIMARY'
		AND table_name = ? AND table_schema = DATABASE()
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}
	defer rows.Close()

	ordinals := map[string]int{}
	for rows.Next() {
		var name string
		var position int
		if err := rows.Scan(&name, &position); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		ordinals[name] = position
	}

	return ordinals, rows.Err()
}

func (s *MySQLStore) Query(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
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

func (s *MySQLStore) Exec(ctx context.Context, statement string, params map[string]any) (int64, error) {
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

func (s *MySQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
