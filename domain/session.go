package domain

import "time"

// ClientSession is one browser client's server-side cookie jar: the upstream
// cookies accumulated on its behalf, keyed by the opaque identifier the relay
// minted. The identifier is a bearer reference, not a credential.
type ClientSession struct {
	ID         string            `json:"id"`
	Cookies    map[string]string `json:"cookies"`
	LastAccess time.Time         `json:"last_access"`
}

// IsExpired reports whether the session has been idle past the timeout at
// the given reference time. An expired session must never authenticate
// further calls, even if it has not been swept yet.
func (s *ClientSession) IsExpired(reference time.Time, timeout time.Duration) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return reference.Sub(s.LastAccess) > timeout
}
