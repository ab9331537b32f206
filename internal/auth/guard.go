package auth

import "github.com/deppfellow/jobly/internal/errs"

// Subject is what a Guard decides on: the authenticated caller, if any,
// and the username of the resource being accessed.
type Subject struct {
	// User is nil for anonymous requests.
	User *Claims

	// Username is the target account, usually the :username route param.
	Username string
}

// Guard returns nil to let a request continue, or an *errs.HTTPError
// (401) to reject it. Guards never modify the subject.
type Guard func(Subject) error

const (
	msgUnauthorized = "Unauthorized"
	msgAdminOnly    = "You must be logged in and an admin to access this"
	msgSelfOrAdmin  = "You must be the correct user or admin to access"
)

// RequireLoggedIn passes any authenticated caller.
func RequireLoggedIn(s Subject) error {
	if s.User == nil {
		return errs.NewUnauthorizedError(msgUnauthorized, false)
	}
	return nil
}

// RequireAdmin passes authenticated admins. Anonymous callers and
// non-admins get the same message.
func RequireAdmin(s Subject) error {
	if s.User == nil || !s.User.IsAdmin {
		return errs.NewUnauthorizedError(msgAdminOnly, true)
	}
	return nil
}

// RequireSelfOrAdmin passes the owner of the target account and admins.
func RequireSelfOrAdmin(s Subject) error {
	if s.User == nil {
		return errs.NewUnauthorizedError(msgSelfOrAdmin, true)
	}
	if s.User.Username == s.Username || s.User.IsAdmin {
		return nil
	}
	return errs.NewUnauthorizedError(msgSelfOrAdmin, true)
}

// Check runs guards in order and returns the first rejection.
func Check(s Subject, guards ...Guard) error {
	for _, guard := range guards {
		if err := guard(s); err != nil {
			return err
		}
	}
	return nil
}
