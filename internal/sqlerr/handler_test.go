package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	t.Run("unique violation on users names the column", func(t *testing.T) {
		err := HandleError(&pgconn.PgError{
			Code:           "23505",
			Severity:       "ERROR",
			TableName:      "users",
			ConstraintName: "users_email_key",
		})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
		assert.Equal(t, "A User with this Email already exists", httpErr.Message)
	})

	t.Run("not null violation carries a field error", func(t *testing.T) {
		err := HandleError(&pgconn.PgError{
			Code:       "23502",
			TableName:  "users",
			ColumnName: "first_name",
		})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, "USER_REQUIRED", httpErr.Code)
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "first_name", httpErr.Errors[0].Field)
	})

	t.Run("no rows with table prefix becomes not found", func(t *testing.T) {
		err := HandleError(fmt.Errorf("table:users: %w", pgx.ErrNoRows))

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
		assert.Equal(t, "User not found", httpErr.Message)
	})

	t.Run("http errors pass through", func(t *testing.T) {
		in := errs.NewUnauthorizedError("Unauthorized", false)
		assert.Same(t, in, HandleError(in))
	})

	t.Run("unknown errors become internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, errs.StatusOf(HandleError(errors.New("boom"))))
	})
}

func TestErrCode(t *testing.T) {
	converted := ConvertPgError(&pgconn.PgError{Code: "23503", Severity: "ERROR"})

	assert.Equal(t, ForeignKeyViolation, ErrCode(fmt.Errorf("wrap: %w", converted)))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
	assert.Equal(t, SeverityError, converted.Severity)
}

func TestHandleError_Constraints(t *testing.T) {
	tests := []struct {
		name     string
		pgErr    *pgconn.PgError
		status   int
		code     string
		message  string
		override bool
	}{
		{
			name:     "unique prefixed constraint",
			pgErr:    &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "unique_users_username"},
			status:   http.StatusBadRequest,
			code:     "USER_ALREADY_EXISTS",
			message:  "A User with this Username already exists",
			override: true,
		},
		{
			name:    "foreign key names the referenced entity",
			pgErr:   &pgconn.PgError{Code: "23503", TableName: "applications", ColumnName: "job_id"},
			status:  http.StatusBadRequest,
			code:    "APPLICATION_NOT_FOUND",
			message: "The referenced Job does not exist",
		},
		{
			name:     "check violation on a column",
			pgErr:    &pgconn.PgError{Code: "23514", TableName: "jobs", ColumnName: "salary"},
			status:   http.StatusBadRequest,
			code:     "JOB_INVALID",
			message:  "The Salary value does not meet required conditions",
			override: true,
		},
		{
			name:    "other database errors are internal",
			pgErr:   &pgconn.PgError{Code: "42P01", TableName: "users"},
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.ErrorAs(t, HandleError(tt.pgErr), &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Equal(t, tt.override, httpErr.Override)
		})
	}
}

func TestHandleError_NoRowsWithoutTable(t *testing.T) {
	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(pgx.ErrNoRows), &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Resource not found", httpErr.Message)
}
