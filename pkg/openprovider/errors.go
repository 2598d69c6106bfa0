// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package openprovider

import "fmt"

// AuthError means the credentials were rejected or the login response was
// malformed. It is fatal for the whole run.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// TransportError means a page fetch returned a non-success HTTP status or
// failed on the wire. The affected zone listing is aborted; callers must
// not assume a prefix of results survives.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s returned HTTP %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the response body did not carry the expected
// data.total / data.results shape.
type ProtocolError struct {
	URL    string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.URL, e.Reason)
}
