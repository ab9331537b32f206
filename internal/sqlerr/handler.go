package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// noRowsTablePrefix lets callers name the missing entity:
// fmt.Errorf("table:users: %w", pgx.ErrNoRows).
const noRowsTablePrefix = "table:"

var (
	uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey|pkey)$`)
	titleCaser       = cases.Title(language.English)
)

// ErrCode reports the Code of err, or Other when err carries no *Error.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// HandleError converts a database error into an *errs.HTTPError.
// Errors that already are *errs.HTTPError are returned unchanged.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromConstraint(ConvertPgError(pgerr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if _, rest, ok := strings.Cut(err.Error(), noRowsTablePrefix); ok {
			table, _, _ := strings.Cut(rest, ":")
			return errs.NewNotFoundError(entityName(table, "")+" not found", true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

// fromConstraint maps integrity violations to 400s with a code such as
// USER_ALREADY_EXISTS. Anything else is an internal error.
func fromConstraint(e *Error) error {
	var (
		action   string
		message  string
		override = true
		fields   []errs.FieldError
	)

	entity := entityName(e.TableName, e.ColumnName)
	column := humanize(e.ColumnName)

	switch e.Code {
	case UniqueViolation:
		action = "ALREADY_EXISTS"
		identifier := "identifier"
		if c := uniqueColumn(e.ConstraintName); c != "" {
			identifier = humanize(c)
		}
		message = fmt.Sprintf("A %s with this %s already exists", entity, identifier)

	case ForeignKeyViolation:
		action = "NOT_FOUND"
		message = fmt.Sprintf("The referenced %s does not exist", entity)
		override = false

	case NotNullViolation:
		action = "REQUIRED"
		if column == "" {
			column = "field"
		}
		message = fmt.Sprintf("The %s is required", column)
		fields = []errs.FieldError{{Field: strings.ToLower(e.ColumnName), Error: "is required"}}

	case CheckViolation:
		action = "INVALID"
		message = "One or more values do not meet required conditions"
		if column != "" {
			message = fmt.Sprintf("The %s value does not meet required conditions", column)
		}

	default:
		return errs.NewInternalServerError()
	}

	table := e.TableName
	if table == "" {
		table = "RECORD"
	}
	code := strings.ToUpper(singular(table)) + "_" + action

	return errs.NewBadRequestError(message, override, &code, fields, nil)
}

// entityName prefers a "<entity>_id" column, then the singular table
// name, then "record".
func entityName(table, column string) string {
	if lower := strings.ToLower(column); strings.HasSuffix(lower, "_id") {
		return humanize(strings.TrimSuffix(lower, "_id"))
	}
	if table != "" {
		return humanize(singular(table))
	}
	return "record"
}

func singular(name string) string {
	if len(name) > 1 && strings.HasSuffix(strings.ToLower(name), "s") {
		return name[:len(name)-1]
	}
	return name
}

// humanize turns "first_name" into "First Name".
func humanize(text string) string {
	return titleCaser.String(strings.ReplaceAll(text, "_", " "))
}

// uniqueColumn infers the column from "unique_<table>_<column>" or
// "<table>_<column>_key" style constraint names.
func uniqueColumn(constraint string) string {
	if rest, ok := strings.CutPrefix(constraint, "unique_"); ok {
		if i := strings.LastIndex(rest, "_"); i >= 0 {
			return rest[i+1:]
		}
	}
	if m := uniqueKeyPattern.FindStringSubmatch(constraint); len(m) > 1 {
		return m[1]
	}
	return ""
}
