package types

// Column mirrors the storage engine's own column metadata. For SQLite this
// is the shape of PRAGMA table_info: notnull is 0/1 and pk is the column's
// ordinal position within the primary key (0 when not part of it), so
// composite keys like (user_id, key) survive the round trip.
type Column struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	NotNull      int     `json:"notnull"`
	DefaultValue *string `json:"default_value"`
	PK           int     `json:"pk"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the inspect_schema tool response.
type Schema struct {
	Tables []Table `json:"tables"`
}

// QueryResult is the execute_sql response when the caller expects rows.
type QueryResult struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowcount"`
}

// ExecResult is the execute_sql response for write-intent statements.
type ExecResult struct {
	RowCount int64 `json:"rowcount"`
}
