package datasource

import (
	"fmt"
	"regexp"
	"strings"
)

// Common blocked SQL patterns across all databases
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bINSERT\b`),
	regexp.MustCompile(`(?i)\bUPDATE\b`),
	regexp.MustCompile(`(?i)\bDELETE\b`),
	regexp.MustCompile(`(?i)\bDROP\b`),
	regexp.MustCompile(`(?i)\bTRUNCATE\b`),
	regexp.MustCompile(`(?i)\bALTER\b`),
	regexp.MustCompile(`(?i)\bCREATE\b`),
	regexp.MustCompile(`(?i)\bGRANT\b`),
	regexp.MustCompile(`(?i)\bREVOKE\b`),
	regexp.MustCompile(`(?i)\bEXEC\b`),
	regexp.MustCompile(`(?i)\bEXECUTE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+OUTFILE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+DUMPFILE\b`),
	regexp.MustCompile(`(?i)\bLOAD_FILE\b`),
	regexp.MustCompile(`(?i)\bLOAD\s+DATA\b`),
	regexp.MustCompile(`(?i);\s*--`),
	regexp.MustCompile(`(?i);\s*/\*`),
}

// PostgreSQL specific blocked patterns
var PostgresBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pg_read_file`),
	regexp.MustCompile(`(?i)pg_write_file`),
	regexp.MustCompile(`(?i)pg_ls_dir`),
	regexp.MustCompile(`(?i)lo_import`),
	regexp.MustCompile(`(?i)lo_export`),
	regexp.MustCompile(`(?i)\bCOPY\b`),
	regexp.MustCompile(`(?i)dblink`),
}

// MySQL specific blocked patterns
var MysqlBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSLEEP\s*\(`),
	regexp.MustCompile(`(?i)\bBENCHMARK\s*\(`),
}

// SQLite specific blocked patterns
var SqliteBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bATTACH\b`),
	regexp.MustCompile(`(?i)\bDETACH\b`),
	regexp.MustCompile(`(?i)\bPRAGMA\b`),
	regexp.MustCompile(`(?i)load_extension`),
}

// ValidationError represents a SQL validation error
type ValidationError struct {
	Message string
	Pattern string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateSQL checks that sql is a single read-only statement
func ValidateSQL(sql string, additionalPatterns []*regexp.Regexp) error {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return &ValidationError{Message: "empty SQL query"}
	}

	// A single trailing semicolon is fine
	if strings.Count(strings.TrimSuffix(sql, ";"), ";") > 0 {
		return &ValidationError{Message: "multiple statements not allowed"}
	}

	normalized := strings.ToUpper(sql)
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return &ValidationError{Message: "only SELECT statements allowed"}
	}

	for _, patterns := range [][]*regexp.Regexp{blockedPatterns, additionalPatterns} {
		for _, pattern := range patterns {
			if pattern.MatchString(sql) {
				return &ValidationError{
					Message: "blocked SQL pattern detected",
					Pattern: pattern.String(),
				}
			}
		}
	}

	return nil
}

// EnforceLimit appends a LIMIT clause unless the query already has one
func EnforceLimit(sql string, maxRows int) string {
	if strings.Contains(strings.ToUpper(sql), "LIMIT") {
		return sql
	}

	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	return fmt.Sprintf("%s LIMIT %d", sql, maxRows)
}
