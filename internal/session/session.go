// Package session adapts statement execution targets to the planner's
// executor contract: a live database/sql connection, or a script collector
// for dry runs and tests.
package session

import (
	"context"
	"database/sql"
	"strings"

	"frostform/internal/blueprint"
)

// Compile-time checks.
var (
	_ blueprint.Executor = (*SQL)(nil)
	_ blueprint.Executor = (*Script)(nil)
)

// SQL executes statements against a warehouse session over database/sql.
type SQL struct {
	db *sql.DB
}

// NewSQL wraps an open connection.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Execute runs one statement.
func (s *SQL) Execute(ctx context.Context, statement string) error {
	_, err := s.db.ExecContext(ctx, statement)
	return err
}

// Script collects statements instead of executing them. Used for dry runs
// and for asserting rendered DDL in tests.
type Script struct {
	statements []string
}

// NewScript returns an empty collector.
func NewScript() *Script {
	return &Script{}
}

// Execute records the statement.
func (s *Script) Execute(_ context.Context, statement string) error {
	s.statements = append(s.statements, statement)
	return nil
}

// Statements returns the recorded statements in execution order.
func (s *Script) Statements() []string {
	return s.statements
}

// String renders the collected statements as a semicolon-terminated script.
func (s *Script) String() string {
	if len(s.statements) == 0 {
		return ""
	}
	return strings.Join(s.statements, ";\n") + ";\n"
}
