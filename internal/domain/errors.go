package domain

import "errors"

// Error is a domain failure with a stable code for logs.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the machine-readable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrNotFound means a referenced team, workout, session or code does not resolve.
	ErrNotFound = &Error{code: "NOT_FOUND", msg: "not found"}
	// ErrAlreadyMember means the subject is already on the team's active roster.
	ErrAlreadyMember = &Error{code: "ALREADY_MEMBER", msg: "already a member"}
	// ErrRosterFull means the team reached max_members.
	ErrRosterFull = &Error{code: "ROSTER_FULL", msg: "roster is full"}
	// ErrForbidden means the subject does not own the target record.
	ErrForbidden = &Error{code: "FORBIDDEN", msg: "forbidden"}
	// ErrInvalidTransition means a session status change is not allowed.
	ErrInvalidTransition = &Error{code: "INVALID_TRANSITION", msg: "invalid status transition"}
	// ErrAlreadyLinked means a trainer-trainee link already exists.
	ErrAlreadyLinked = &Error{code: "ALREADY_LINKED", msg: "already linked"}
)

// IsConflict reports whether err is a business conflict rather than an outage.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyMember) || errors.Is(err, ErrRosterFull) || errors.Is(err, ErrAlreadyLinked)
}

// CodeOf returns the code of the first domain error in err's chain, or ""
// when there is none.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return ""
}
