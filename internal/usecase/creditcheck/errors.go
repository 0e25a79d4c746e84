// Package creditcheck runs bureau assessments for stored clients and keeps
// the credit columns of their records current.
package creditcheck

import "errors"

var (
	// ErrClientNotFound indicates that no client exists with the requested id.
	ErrClientNotFound = errors.New("client not found")

	// ErrCreditCheckNotAllowed indicates that the client is not active or is
	// not identified by a DNI, so the bureau cannot be queried for it.
	ErrCreditCheckNotAllowed = errors.New("credit check not allowed for client")
)
