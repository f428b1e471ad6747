package dbschema

import (
	"errors"
	"fmt"
	"github.com/Maksumys/dbschema/internal/connector"
	"github.com/Maksumys/dbschema/internal/models"
	"github.com/Maksumys/dbschema/internal/repository"
	"github.com/Maksumys/dbschema/internal/statements"
	"strings"
)

var (
	ErrNotApplied        = errors.New("migration is not in the list of previously applied migrations")
	ErrMissingDownScript = errors.New("missing down script")
	ErrExecution         = errors.New("statement failed")

	ErrNotFound           = repository.ErrNotFound
	ErrConfig             = models.ErrConfig
	ErrInvalidEngine      = models.ErrInvalidEngine
	ErrConnection         = connector.ErrConnection
	ErrParse              = statements.ErrParse
	ErrMissingLedgerTable = repository.ErrMissingLedgerTable
	ErrDuplicate          = repository.ErrDuplicate
)

// ParseError is returned for scripts that cannot be split into statements.
type ParseError = statements.ParseError

// ExecutionError reports a statement rejected by the server. Statement is 1-based.
type ExecutionError struct {
	Statement int
	SQL       string
	Code      string
	Err       error
}

func newExecutionError(statement int, sql string, err error) *ExecutionError {
	return &ExecutionError{
		Statement: statement,
		SQL:       sql,
		Code:      repository.ErrorCode(err),
		Err:       err,
	}
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("statement %d", e.Statement)
	if e.Code != "" {
		msg += " (code " + e.Code + ")"
	}
	return fmt.Sprintf("%s `%s`: %v", msg, excerpt(e.SQL), e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

func excerpt(sql string) string {
	const limit = 60
	line := sql
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i] + " ..."
	}
	if len(line) > limit {
		line = line[:limit] + "..."
	}
	return line
}

func formatTargetErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}

	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = "* " + err.Error()
	}
	return fmt.Sprintf("%d targets failed:\n%s", len(errs), strings.Join(points, "\n"))
}
