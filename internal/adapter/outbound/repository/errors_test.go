package repository

import (
	"errors"
	"fmt"
	"testing"

	"userapi/internal/port/outbound"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, err error, operation string) *outbound.StorageFailure {
	t.Helper()
	classified := ClassifyError(err, operation)
	var failure *outbound.StorageFailure
	require.ErrorAs(t, classified, &failure)
	return failure
}

func TestClassifyError_PgErrors(t *testing.T) {
	tests := []struct {
		name         string
		pgErr        *pgconn.PgError
		expectedKind outbound.FailureKind
		expectedCode outbound.FailureCode
		validateMeta func(t *testing.T, failure *outbound.StorageFailure)
	}{
		{
			name: "unique_violation_extracts_field_from_detail",
			pgErr: &pgconn.PgError{
				Code:           "23505",
				Detail:         "Key (email)=(ada@example.com) already exists.",
				ConstraintName: "users_email_key",
			},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeUniqueViolation,
			validateMeta: func(t *testing.T, failure *outbound.StorageFailure) {
				assert.Equal(t, []string{"email"}, failure.MetaStrings(outbound.MetaTarget))
			},
		},
		{
			name: "unique_violation_composite_key",
			pgErr: &pgconn.PgError{
				Code:   "23505",
				Detail: `Key (author_id, "title")=(1, hello) already exists.`,
			},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeUniqueViolation,
			validateMeta: func(t *testing.T, failure *outbound.StorageFailure) {
				assert.Equal(t, []string{"author_id", "title"}, failure.MetaStrings(outbound.MetaTarget))
			},
		},
		{
			name:         "unique_violation_falls_back_to_constraint_name",
			pgErr:        &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeUniqueViolation,
			validateMeta: func(t *testing.T, failure *outbound.StorageFailure) {
				assert.Equal(t, []string{"users_email_key"}, failure.MetaStrings(outbound.MetaTarget))
			},
		},
		{
			name: "foreign_key_violation_extracts_field_and_constraint",
			pgErr: &pgconn.PgError{
				Code:           "23503",
				Detail:         `Key (author_id)=(42) is not present in table "users".`,
				ConstraintName: "posts_author_id_fkey",
			},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeForeignKeyViolation,
			validateMeta: func(t *testing.T, failure *outbound.StorageFailure) {
				assert.Equal(t, "author_id", failure.MetaString(outbound.MetaFieldName))
				assert.Equal(t, "posts_author_id_fkey", failure.MetaString(outbound.MetaTarget))
			},
		},
		{
			name:         "foreign_key_violation_without_detail",
			pgErr:        &pgconn.PgError{Code: "23503"},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeForeignKeyViolation,
			validateMeta: func(t *testing.T, failure *outbound.StorageFailure) {
				assert.Empty(t, failure.MetaString(outbound.MetaFieldName))
				assert.Empty(t, failure.MetaString(outbound.MetaTarget))
			},
		},
		{
			name:         "undefined_table",
			pgErr:        &pgconn.PgError{Code: "42P01"},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeTableNotFound,
		},
		{
			name:         "undefined_column",
			pgErr:        &pgconn.PgError{Code: "42703"},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.CodeColumnNotFound,
		},
		{
			name:         "not_null_violation_is_validation",
			pgErr:        &pgconn.PgError{Code: "23502", ColumnName: "email"},
			expectedKind: outbound.FailureKindValidation,
			validateMeta: func(t *testing.T, failure *outbound.StorageFailure) {
				assert.Equal(t, "email", failure.MetaString(outbound.MetaFieldName))
			},
		},
		{
			name:         "invalid_text_representation_is_validation",
			pgErr:        &pgconn.PgError{Code: "22P02"},
			expectedKind: outbound.FailureKindValidation,
		},
		{
			name:         "syntax_error_is_validation",
			pgErr:        &pgconn.PgError{Code: "42601"},
			expectedKind: outbound.FailureKindValidation,
		},
		{
			name:         "connection_exception_is_initialization",
			pgErr:        &pgconn.PgError{Code: "08006"},
			expectedKind: outbound.FailureKindInitialization,
		},
		{
			name:         "invalid_password_is_initialization",
			pgErr:        &pgconn.PgError{Code: "28P01"},
			expectedKind: outbound.FailureKindInitialization,
		},
		{
			name:         "admin_shutdown_is_initialization",
			pgErr:        &pgconn.PgError{Code: "57P01"},
			expectedKind: outbound.FailureKindInitialization,
		},
		{
			name:         "internal_error_is_engine_panic",
			pgErr:        &pgconn.PgError{Code: "XX000"},
			expectedKind: outbound.FailureKindEnginePanic,
		},
		{
			name:         "data_corrupted_is_engine_panic",
			pgErr:        &pgconn.PgError{Code: "XX001"},
			expectedKind: outbound.FailureKindEnginePanic,
		},
		{
			name:         "other_sqlstate_keeps_raw_code",
			pgErr:        &pgconn.PgError{Code: "40P01"},
			expectedKind: outbound.FailureKindKnownRequest,
			expectedCode: outbound.FailureCode("40P01"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("query failed: %w", tt.pgErr)

			failure := classify(t, wrapped, "save user")

			assert.Equal(t, tt.expectedKind, failure.Kind)
			assert.Equal(t, tt.expectedCode, failure.Code)
			assert.Equal(t, "save user", failure.MetaString(outbound.MetaOperation))
			assert.ErrorIs(t, failure, tt.pgErr)
			if tt.validateMeta != nil {
				tt.validateMeta(t, failure)
			}
		})
	}
}

func TestClassifyError_NonPgErrors(t *testing.T) {
	t.Run("nil_stays_nil", func(t *testing.T) {
		assert.NoError(t, ClassifyError(nil, "save user"))
	})

	t.Run("closed_pool_is_initialization", func(t *testing.T) {
		failure := classify(t, errors.New("closed pool"), "find user by id")
		assert.Equal(t, outbound.FailureKindInitialization, failure.Kind)
	})

	t.Run("plain_error_is_unknown", func(t *testing.T) {
		failure := classify(t, errors.New("scan: cannot assign"), "scan post")
		assert.Equal(t, outbound.FailureKindUnknown, failure.Kind)
	})

	t.Run("no_rows_is_unknown_when_not_handled_by_caller", func(t *testing.T) {
		failure := classify(t, pgx.ErrNoRows, "save user")
		assert.Equal(t, outbound.FailureKindUnknown, failure.Kind)
	})

	t.Run("storage_failure_passes_through", func(t *testing.T) {
		original := NotFoundFailure("delete user")
		assert.Same(t, original, ClassifyError(original, "other"))
	})
}

func TestNotFoundFailure(t *testing.T) {
	failure := classify(t, NotFoundFailure("delete user"), "delete user")

	assert.Equal(t, outbound.FailureKindKnownRequest, failure.Kind)
	assert.Equal(t, outbound.CodeRecordNotFound, failure.Code)
	assert.Equal(t, "delete user", failure.MetaString(outbound.MetaOperation))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
	assert.False(t, IsNotFoundError(nil))
}

func TestDetailKeyColumns(t *testing.T) {
	assert.Equal(t, []string{"email"}, detailKeyColumns("Key (email)=(x) already exists."))
	assert.Equal(t, []string{"a", "b"}, detailKeyColumns("Key (a, b)=(1, 2) already exists."))
	assert.Nil(t, detailKeyColumns("no key here"))
	assert.Nil(t, detailKeyColumns("Key ()=() broken"))
}
