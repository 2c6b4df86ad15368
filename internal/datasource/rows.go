package datasource

import (
	"context"
	"database/sql"
	"fmt"
)

// QuerySQL runs a validated query on a database/sql handle and collects at
// most opts.MaxRows rows. One extra row is requested to detect truncation.
func QuerySQL(ctx context.Context, db *sql.DB, query string, opts QueryOptions) (*QueryResult, error) {
	if db == nil {
		return nil, fmt.Errorf("not connected")
	}

	query = EnforceLimit(query, opts.MaxRows+1)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var resultRows [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// Convert []byte to string for better JSON serialization
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		resultRows = append(resultRows, values)
		if len(resultRows) > opts.MaxRows {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return Truncate(columns, resultRows, opts.MaxRows), nil
}

// Truncate builds a result from rows fetched with one extra row of headroom
func Truncate(columns []string, rows [][]any, maxRows int) *QueryResult {
	truncated := len(rows) > maxRows
	if truncated {
		rows = rows[:maxRows]
	}
	return &QueryResult{
		Columns:   columns,
		Rows:      rows,
		Truncated: truncated,
	}
}

