package repository

import (
	"errors"
	"strings"

	"userapi/internal/port/outbound"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidArgument is returned for arguments rejected before reaching the database.
var ErrInvalidArgument = errors.New("invalid argument")

// PostgreSQL SQLSTATE codes the classifier distinguishes.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNotNullViolation    = "23502"
	sqlStateCheckViolation      = "23514"
	sqlStateUndefinedTable      = "42P01"
	sqlStateUndefinedColumn     = "42703"
	sqlStateSyntaxError         = "42601"
	sqlStateDatatypeMismatch    = "42804"
	sqlStateInternalError       = "XX000"
	sqlStateDataCorrupted       = "XX001"
	sqlStateIndexCorrupted      = "XX002"
	sqlStateAdminShutdown       = "57P01"
	sqlStateCrashShutdown       = "57P02"
	sqlStateCannotConnectNow    = "57P03"
)

// IsNotFoundError checks if an error is a "no rows" error.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows)
}

// IsConnectionError checks if an error is a connection-related error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isConnectionSQLState(pgErr.Code)
	}

	// pgxpool reports use of a closed pool with a plain error.
	return strings.Contains(err.Error(), "closed pool")
}

func isConnectionSQLState(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08", // connection exception
		"28", // invalid authorization specification
		"3D", // invalid catalog name
		"53": // insufficient resources
		return true
	}
	switch code {
	case sqlStateAdminShutdown, sqlStateCrashShutdown, sqlStateCannotConnectNow:
		return true
	}
	return false
}

// ClassifyError converts a driver error into a *outbound.StorageFailure tagged with the
// failing operation. Errors that already are storage failures pass through unchanged.
func ClassifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var existing *outbound.StorageFailure
	if errors.As(err, &existing) {
		return err
	}

	meta := map[string]any{outbound.MetaOperation: operation}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(pgErr, meta, err)
	}

	if IsConnectionError(err) {
		return &outbound.StorageFailure{Kind: outbound.FailureKindInitialization, Meta: meta, Err: err}
	}

	return &outbound.StorageFailure{Kind: outbound.FailureKindUnknown, Meta: meta, Err: err}
}

func classifyPgError(pgErr *pgconn.PgError, meta map[string]any, err error) *outbound.StorageFailure {
	known := func(code outbound.FailureCode) *outbound.StorageFailure {
		return &outbound.StorageFailure{Kind: outbound.FailureKindKnownRequest, Code: code, Meta: meta, Err: err}
	}

	switch pgErr.Code {
	case sqlStateUniqueViolation:
		if fields := detailKeyColumns(pgErr.Detail); len(fields) > 0 {
			meta[outbound.MetaTarget] = fields
		} else if pgErr.ConstraintName != "" {
			meta[outbound.MetaTarget] = []string{pgErr.ConstraintName}
		}
		return known(outbound.CodeUniqueViolation)
	case sqlStateForeignKeyViolation:
		if fields := detailKeyColumns(pgErr.Detail); len(fields) > 0 {
			meta[outbound.MetaFieldName] = strings.Join(fields, ", ")
		}
		if pgErr.ConstraintName != "" {
			meta[outbound.MetaTarget] = pgErr.ConstraintName
		}
		return known(outbound.CodeForeignKeyViolation)
	case sqlStateUndefinedTable:
		return known(outbound.CodeTableNotFound)
	case sqlStateUndefinedColumn:
		return known(outbound.CodeColumnNotFound)
	case sqlStateNotNullViolation, sqlStateCheckViolation, sqlStateSyntaxError, sqlStateDatatypeMismatch:
		if pgErr.ColumnName != "" {
			meta[outbound.MetaFieldName] = pgErr.ColumnName
		}
		return &outbound.StorageFailure{Kind: outbound.FailureKindValidation, Meta: meta, Err: err}
	case sqlStateInternalError, sqlStateDataCorrupted, sqlStateIndexCorrupted:
		return &outbound.StorageFailure{Kind: outbound.FailureKindEnginePanic, Meta: meta, Err: err}
	}

	if strings.HasPrefix(pgErr.Code, "22") {
		// Data exceptions: invalid text representation, numeric out of range, ...
		return &outbound.StorageFailure{Kind: outbound.FailureKindValidation, Meta: meta, Err: err}
	}
	if isConnectionSQLState(pgErr.Code) {
		return &outbound.StorageFailure{Kind: outbound.FailureKindInitialization, Meta: meta, Err: err}
	}

	return known(outbound.FailureCode(pgErr.Code))
}

// detailKeyColumns extracts the column list from details such as
// `Key (email)=(a@example.com) already exists.`
func detailKeyColumns(detail string) []string {
	const prefix = "Key ("
	start := strings.Index(detail, prefix)
	if start < 0 {
		return nil
	}
	rest := detail[start+len(prefix):]
	end := strings.Index(rest, ")=(")
	if end <= 0 {
		return nil
	}

	parts := strings.Split(rest[:end], ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		if col := strings.Trim(strings.TrimSpace(part), `"`); col != "" {
			columns = append(columns, col)
		}
	}
	return columns
}

// NotFoundFailure reports a mutation that matched no rows.
func NotFoundFailure(operation string) error {
	return &outbound.StorageFailure{
		Kind: outbound.FailureKindKnownRequest,
		Code: outbound.CodeRecordNotFound,
		Meta: map[string]any{outbound.MetaOperation: operation},
	}
}
