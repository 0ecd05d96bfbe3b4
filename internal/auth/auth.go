// Package auth provides the credential verification capability used by the
// admin login. The check is injected as an interface so call sites never
// embed a literal comparison.
package auth

import "crypto/subtle"

// Verifier decides whether a supplied credential pair grants admin access.
type Verifier interface {
	Verify(username, password string) bool
}

// StaticVerifier matches a single configured credential pair using
// constant-time comparison. Wrong credentials yield false with no detail;
// there is no lockout or rate limiting at this layer.
type StaticVerifier struct {
	username string
	password string
}

// NewStaticVerifier constructs a verifier for the configured pair. An empty
// password disables login entirely: nothing will ever match.
func NewStaticVerifier(username, password string) *StaticVerifier {
	return &StaticVerifier{username: username, password: password}
}

// Verify reports whether the pair matches the configured credentials.
func (v *StaticVerifier) Verify(username, password string) bool {
	if v.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	return userOK && passOK
}
