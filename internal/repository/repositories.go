// Package repository holds the SQL that reads and writes application data.
//
// Repositories take a DBTX (satisfied by *pgxpool.Pool and pgx.Tx) and
// translate driver errors into errs.HTTPError values via sqlerr.
package repository

import (
	"github.com/deppfellow/jobly/internal/server"
)

// Repositories groups every repository instance.
type Repositories struct {
	User *UserRepository
}

// NewRepositories builds the repositories on top of the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User: NewUserRepository(s.DB.Pool),
	}
}
