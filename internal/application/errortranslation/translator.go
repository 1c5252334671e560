// Package errortranslation turns storage-layer failures into client-facing domain errors.
package errortranslation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"userapi/internal/domain/errors/domain"
	"userapi/internal/port/outbound"
)

// Client-facing messages for translated storage failures.
const (
	MsgInvalidInput       = "Invalid input data. Please check your request."
	MsgRecordNotFound     = "Record not found."
	MsgTableMissing       = "The table does not exist."
	MsgColumnMissing      = "The column does not exist."
	MsgConnectionFailed   = "Database connection failed. Please try again later."
	MsgCriticalDatabase   = "Critical database error occurred. Please try again."
	MsgDatabaseError      = "Database error occurred."
	unknownFieldName      = "unknown field"
	defaultDuplicateField = "field"
)

var errNilFailure = errors.New("nil storage failure")

// Translate maps a StorageFailure onto an AppError. The failure is kept as the cause.
// A nil failure is a defect and becomes a non-operational 500.
func Translate(f *outbound.StorageFailure) *domain.AppError {
	if f == nil {
		return domain.Internal(errNilFailure)
	}
	switch f.Kind {
	case outbound.FailureKindValidation:
		return domain.Wrap(f, MsgInvalidInput, http.StatusBadRequest)
	case outbound.FailureKindKnownRequest:
		return translateKnownRequest(f)
	case outbound.FailureKindInitialization:
		return domain.Wrap(f, MsgConnectionFailed, http.StatusInternalServerError)
	case outbound.FailureKindEnginePanic:
		return domain.Wrap(f, MsgCriticalDatabase, http.StatusInternalServerError)
	case outbound.FailureKindUnknown:
		return domain.Wrap(f, MsgDatabaseError, http.StatusInternalServerError)
	}
	return domain.Wrap(f, MsgDatabaseError, http.StatusInternalServerError)
}

func translateKnownRequest(f *outbound.StorageFailure) *domain.AppError {
	switch f.Code {
	case outbound.CodeUniqueViolation:
		field := strings.Join(f.MetaStrings(outbound.MetaTarget), ", ")
		if field == "" {
			field = defaultDuplicateField
		}
		return domain.Wrap(f,
			fmt.Sprintf("Duplicate value found for %s. Please use a different value.", field),
			http.StatusConflict)
	case outbound.CodeForeignKeyViolation:
		return domain.Wrap(f,
			fmt.Sprintf("Invalid reference for field: %s", foreignKeyField(f)),
			http.StatusBadRequest)
	case outbound.CodeRecordNotFound:
		return domain.Wrap(f, MsgRecordNotFound, http.StatusNotFound)
	case outbound.CodeTableNotFound:
		return domain.Wrap(f, MsgTableMissing, http.StatusInternalServerError)
	case outbound.CodeColumnNotFound:
		return domain.Wrap(f, MsgColumnMissing, http.StatusInternalServerError)
	default:
		return domain.Wrap(f, MsgDatabaseError, http.StatusInternalServerError)
	}
}

// foreignKeyField prefers the explicit column hint over the constraint target.
func foreignKeyField(f *outbound.StorageFailure) string {
	if name := f.MetaString(outbound.MetaFieldName); name != "" {
		return name
	}
	if target := f.MetaString(outbound.MetaTarget); target != "" {
		return target
	}
	if targets := f.MetaStrings(outbound.MetaTarget); len(targets) > 0 {
		return strings.Join(targets, ", ")
	}
	return unknownFieldName
}

// TranslateError translates the first StorageFailure in err's chain.
// It reports false when err carries no storage failure or only a typed nil one.
func TranslateError(err error) (*domain.AppError, bool) {
	var failure *outbound.StorageFailure
	if !errors.As(err, &failure) || failure == nil {
		return nil, false
	}
	return Translate(failure), true
}
