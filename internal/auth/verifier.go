package auth

import "crypto/subtle"

// Verifier checks login credentials against the single configured admin
// identity.
//
// Verify is deliberately enumeration-safe: the bcrypt comparison runs even
// when the username does not match, so response timing does not reveal
// whether a given username exists.
type Verifier struct {
	username     string
	passwordHash string
}

// NewVerifier creates a Verifier for the configured admin identity.
// Both values are validated as non-empty at config load time.
func NewVerifier(username, passwordHash string) *Verifier {
	return &Verifier{
		username:     username,
		passwordHash: passwordHash,
	}
}

// Verify returns true only when both the username and password match the
// configured identity. It never reports which of the two was wrong.
func (v *Verifier) Verify(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	// Always pay the bcrypt cost, even on a username mismatch.
	passwordMatch, err := VerifyPassword(password, v.passwordHash)
	if err != nil {
		return false
	}

	return usernameMatch && passwordMatch
}
