package service

import "errors"

// Domain errors surfaced to controllers. Token-lifecycle errors are kept
// distinct so a user can tell "request a new link" apart from "retry".
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrFirearmNotFound    = errors.New("firearm not found")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrInviteAlreadyUsed  = errors.New("invite already used")
	ErrInviteExpired      = errors.New("invite expired")
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenUsed     = errors.New("reset token already used")
	ErrResetTokenExpired  = errors.New("reset token expired")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("new password must be at least 12 characters")
	ErrInvalidTheme       = errors.New("invalid theme value")
)

// ValidationError reports per-field validation failures for form input.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}