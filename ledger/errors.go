// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrScanUnsupported is returned from Registrations by ledger
	// implementations that cannot enumerate historical registration
	// notifications.
	ErrScanUnsupported = errors.New("registration scan not supported")
)

// GuardError is returned when the ledger rejects a write because one of its
// enforced preconditions failed (not authorized, wrong phase, duplicate
// action). The rejection reason is reported by the ledger and is surfaced
// verbatim to the actor. Guard rejections are never retried.
type GuardError struct {
	Op     string // Operation that was rejected
	Reason string // Ledger supplied rejection reason, may be empty
}

// Error satisfies the error interface.
func (e GuardError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: rejected by ledger", e.Op)
	}
	return fmt.Sprintf("%v: %v", e.Op, e.Reason)
}

// UserReason returns the rejection reason suitable for display, falling
// back to a generic failure message when the ledger did not provide one.
func (e GuardError) UserReason() string {
	if e.Reason == "" {
		return "the ledger rejected the request"
	}
	return e.Reason
}

// TransportError is returned when a request never reached the ledger or a
// reply was never observed. Submitted indicates whether the write had
// already been handed to the ledger when the failure occurred; a submitted
// write is indeterminate and must not be blindly resubmitted.
type TransportError struct {
	Op        string
	Submitted bool
	Err       error
}

// Error satisfies the error interface.
func (e TransportError) Error() string {
	if e.Submitted {
		return fmt.Sprintf("%v: submitted but unconfirmed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e TransportError) Unwrap() error {
	return e.Err
}
