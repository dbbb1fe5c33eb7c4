// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"fmt"

	"github.com/chunav/chunav/ledger"
)

var (
	// voterStatusChanges contains the allowed voter status changes. If
	// voterStatusChanges[currentStatus][newStatus] exists then the
	// status change is allowed. Decisions are one shot; a record in
	// Rejected or Withdrawn allows no further transitions, and a
	// Verified voter may only move to Withdrawn (reserved, no user
	// facing trigger).
	voterStatusChanges = map[ledger.StatusT]map[ledger.StatusT]struct{}{
		// None to...
		ledger.StatusNone: {
			ledger.StatusPending: {},
		},
		// Pending to...
		ledger.StatusPending: {
			ledger.StatusVerified: {},
			ledger.StatusRejected: {},
		},
		// Verified to...
		ledger.StatusVerified: {
			ledger.StatusWithdrawn: {},
		},
		// Statuses that do not allow any further transitions
		ledger.StatusRejected:  {},
		ledger.StatusWithdrawn: {},
	}

	// candidateStatusChanges contains the allowed candidate status
	// changes. A candidate may withdraw their own nomination while it
	// is pending or after it has been verified.
	candidateStatusChanges = map[ledger.StatusT]map[ledger.StatusT]struct{}{
		// None to...
		ledger.StatusNone: {
			ledger.StatusPending: {},
		},
		// Pending to...
		ledger.StatusPending: {
			ledger.StatusVerified:  {},
			ledger.StatusRejected:  {},
			ledger.StatusWithdrawn: {},
		},
		// Verified to...
		ledger.StatusVerified: {
			ledger.StatusWithdrawn: {},
		},
		// Statuses that do not allow any further transitions
		ledger.StatusRejected:  {},
		ledger.StatusWithdrawn: {},
	}
)

// StatusChangeError is returned when a record status change is not allowed
// by the status machine, e.g. when deciding a record that was already
// decided.
type StatusChangeError struct {
	From ledger.StatusT
	To   ledger.StatusT
}

// Error satisfies the error interface.
func (e StatusChangeError) Error() string {
	return fmt.Sprintf("status change from %v to %v is not allowed",
		e.From, e.To)
}

// VoterStatusChangeAllowed returns whether the provided voter status change
// is allowed.
func VoterStatusChangeAllowed(from, to ledger.StatusT) bool {
	allowed, ok := voterStatusChanges[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// CandidateStatusChangeAllowed returns whether the provided candidate
// status change is allowed.
func CandidateStatusChangeAllowed(from, to ledger.StatusT) bool {
	allowed, ok := candidateStatusChanges[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// DecisionStatus returns whether the provided status is a legal decision
// outcome. Officers may only decide a record Verified or Rejected.
func DecisionStatus(s ledger.StatusT) bool {
	return s == ledger.StatusVerified || s == ledger.StatusRejected
}
