package auth

import "errors"

var (
	// ErrUnauthenticated means the request carried no usable bearer
	// credential. The web layer maps it to 401 with a WWW-Authenticate hint.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden means the credential was understood but the caller does
	// not hold the required scope, the token is inactive, or an object-set
	// constraint was violated.
	ErrForbidden = errors.New("auth: forbidden")

	// Identity lookup misses. The web layer must treat these as forbidden
	// and never leak which of the two it was.
	ErrClientNotFound = errors.New("auth: client not found")
	ErrUserNotFound   = errors.New("auth: user not found")
)
