package databases

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/nourish-labs/mealplan-mcp/types"
)

// PostgresStore offers the same per-call contract as SQLiteStore on a
// Postgres database, with introspection served from information_schema.
type PostgresStore struct {
	db *sqlx.DB
}

func OpenPostgres(connectionString string) (*PostgresStore, error) {
	config, err := pgx.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.PreferSimpleProtocol = true

	db := sqlx.NewDb(stdlib.OpenDB(*config), "pgx")

	store := &PostgresStore{db: db}

	if err := store.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) InspectSchema(ctx context.Context) ([]types.Table, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}
	defer tx.Commit()

	rows, err := tx.QueryContext(ctx, `
		SELECT table_name, table_schema
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name
	`)
	if err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}
	defer rows.Close()

	type namedTable struct{ name, schema string }
	var names []namedTable
	for rows.Next() {
		var nt namedTable
		if err := rows.Scan(&nt.name, &nt.schema); err != nil {
			return nil, &SchemaIntrospectionError{Err: err}
		}
		names = append(names, nt)
	}
	if err := rows.Err(); err != nil {
		return nil, &SchemaIntrospectionError{Err: err}
	}

	tables := []types.Table{}
	for _, nt := range names {
		columns, err := s.loadColumns(ctx, tx, nt.name, nt.schema)
		if err != nil {
			return nil, &SchemaIntrospectionError{Err: fmt.Errorf("table %s: %w", nt.name, err)}
		}

		tables = append(tables, types.Table{
			Name:    nt.name,
			Columns: columns,
		})
	}

	return tables, nil
}

func (s *PostgresStore) loadColumns(ctx context.Context, tx *sqlx.Tx, tableName, tableSchema string) ([]types.Column, error) {
	pkOrdinals, err := s.loadPrimaryKey(ctx, tx, tableName, tableSchema)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = $2
		ORDER BY ordinal_position
	`, tableName, tableSchema)
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

// loadPrimaryKey maps column name to its 1-based position within the
// primary key, matching the SQLite pk convention.
func (s *PostgresStore) loadPrimaryKey(ctx context.Context, tx *sqlx.Tx, tableName, tableSchema string) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_name = $1 AND tc.table_schema = $2
		ORDER BY kcu.ordinal_position
	`, tableName, tableSchema)
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

func (s *PostgresStore) Query(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
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

func (s *PostgresStore) Exec(ctx context.Context, statement string, params map[string]any) (int64, error) {
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

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
