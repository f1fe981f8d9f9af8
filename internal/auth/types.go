package auth

import "errors"

// ErrTokenInvalid is returned for any session token that fails validation:
// bad signature, wrong signing method, malformed, or expired.
var ErrTokenInvalid = errors.New("invalid token")
