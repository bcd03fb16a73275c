package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")
	// ErrUpstream marks transient failures of external collaborators
	// (social provider, mail relay)
	ErrUpstream = errors.New("upstream service failure")

	// Post errors
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrTagNotFound     = errors.New("tag not found")

	// Vote errors
	ErrSelfVote         = errors.New("cannot vote on own post")
	ErrDuplicateVote    = errors.New("vote already recorded")
	ErrInvalidMarkType  = errors.New("mark type must be like or dislike")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrIdentityConflict   = errors.New("an account with this email is already linked to a different social identity")
	ErrAlreadyConfirmed   = errors.New("email already confirmed")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Kindof groups sentinel errors into the error taxonomy used by the
// HTTP boundary
func Kindof(err error) string {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrTagNotFound),
		errors.Is(err, ErrUserNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrSelfVote):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrIdentityConflict),
		errors.Is(err, ErrUserAlreadyExists):
		return "CONFLICT"
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrUpstream):
		return "UPSTREAM"
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateVote),
		errors.Is(err, ErrInvalidMarkType),
		errors.Is(err, ErrAlreadyConfirmed),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
