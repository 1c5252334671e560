package outbound

import "fmt"

// FailureKind is the closed set of failure shapes the storage adapter reports.
type FailureKind int

const (
	// FailureKindUnknown is any storage error that fits no other kind.
	FailureKindUnknown FailureKind = iota
	// FailureKindValidation is a malformed or invalid query shape, usually bad input data.
	FailureKindValidation
	// FailureKindKnownRequest is a request the engine rejected with a known code.
	FailureKindKnownRequest
	// FailureKindInitialization is a connection or startup failure.
	FailureKindInitialization
	// FailureKindEnginePanic is an engine-internal failure.
	FailureKindEnginePanic
)

func (k FailureKind) String() string {
	switch k {
	case FailureKindValidation:
		return "validation"
	case FailureKindKnownRequest:
		return "known_request"
	case FailureKindInitialization:
		return "initialization"
	case FailureKindEnginePanic:
		return "engine_panic"
	case FailureKindUnknown:
		return "unknown"
	}
	return fmt.Sprintf("failure_kind(%d)", int(k))
}

// FailureCode discriminates known request failures.
type FailureCode string

const (
	CodeUniqueViolation     FailureCode = "unique_violation"
	CodeForeignKeyViolation FailureCode = "foreign_key_violation"
	CodeRecordNotFound      FailureCode = "record_not_found"
	CodeTableNotFound       FailureCode = "table_not_found"
	CodeColumnNotFound      FailureCode = "column_not_found"
)

// Metadata keys set on StorageFailure.Meta.
const (
	// MetaTarget holds the constraint fields ([]string) or, for foreign keys, the constraint name (string).
	MetaTarget = "target"
	// MetaFieldName holds the offending column of a foreign-key violation.
	MetaFieldName = "field_name"
	// MetaOperation names the repository operation that failed.
	MetaOperation = "operation"
)

// StorageFailure is a failure surfaced by the storage layer.
// Consumers treat it as read-only input.
type StorageFailure struct {
	Kind FailureKind
	Code FailureCode
	Meta map[string]any
	Err  error
}

// Error implements the error interface.
func (f *StorageFailure) Error() string {
	if f == nil {
		return "<nil storage failure>"
	}
	op, _ := f.Meta[MetaOperation].(string)
	switch {
	case op != "" && f.Err != nil:
		return fmt.Sprintf("%s failed (%s %s): %v", op, f.Kind, f.Code, f.Err)
	case f.Err != nil:
		return fmt.Sprintf("storage failure (%s %s): %v", f.Kind, f.Code, f.Err)
	default:
		return fmt.Sprintf("storage failure (%s %s)", f.Kind, f.Code)
	}
}

// Unwrap returns the driver error.
func (f *StorageFailure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// MetaString returns a string metadata value, or "" when absent.
func (f *StorageFailure) MetaString(key string) string {
	if v, ok := f.Meta[key].(string); ok {
		return v
	}
	return ""
}

// MetaStrings returns a string slice metadata value, or nil when absent.
func (f *StorageFailure) MetaStrings(key string) []string {
	switch v := f.Meta[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
