// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"testing"

	"github.com/chunav/chunav/ledger"
)

func TestVoterStatusChanges(t *testing.T) {
	all := []ledger.StatusT{
		ledger.StatusNone,
		ledger.StatusPending,
		ledger.StatusVerified,
		ledger.StatusRejected,
		ledger.StatusWithdrawn,
	}

	allowed := map[ledger.StatusT][]ledger.StatusT{
		ledger.StatusNone:     {ledger.StatusPending},
		ledger.StatusPending:  {ledger.StatusVerified, ledger.StatusRejected},
		ledger.StatusVerified: {ledger.StatusWithdrawn},
		// Rejected and Withdrawn are terminal.
		ledger.StatusRejected:  {},
		ledger.StatusWithdrawn: {},
	}

	for _, from := range all {
		want := make(map[ledger.StatusT]struct{})
		for _, to := range allowed[from] {
			want[to] = struct{}{}
		}
		for _, to := range all {
			_, wantAllowed := want[to]
			got := VoterStatusChangeAllowed(from, to)
			if got != wantAllowed {
				t.Errorf("voter %v -> %v: got %v, want %v",
					from, to, got, wantAllowed)
			}
		}
	}
}

func TestCandidateStatusChanges(t *testing.T) {
	all := []ledger.StatusT{
		ledger.StatusNone,
		ledger.StatusPending,
		ledger.StatusVerified,
		ledger.StatusRejected,
		ledger.StatusWithdrawn,
	}

	allowed := map[ledger.StatusT][]ledger.StatusT{
		ledger.StatusNone: {ledger.StatusPending},
		ledger.StatusPending: {
			ledger.StatusVerified,
			ledger.StatusRejected,
			ledger.StatusWithdrawn,
		},
		ledger.StatusVerified:  {ledger.StatusWithdrawn},
		ledger.StatusRejected:  {},
		ledger.StatusWithdrawn: {},
	}

	for _, from := range all {
		want := make(map[ledger.StatusT]struct{})
		for _, to := range allowed[from] {
			want[to] = struct{}{}
		}
		for _, to := range all {
			_, wantAllowed := want[to]
			got := CandidateStatusChangeAllowed(from, to)
			if got != wantAllowed {
				t.Errorf("candidate %v -> %v: got %v, want %v",
					from, to, got, wantAllowed)
			}
		}
	}
}

func TestDecisionStatus(t *testing.T) {
	tests := []struct {
		status ledger.StatusT
		want   bool
	}{
		{ledger.StatusNone, false},
		{ledger.StatusPending, false},
		{ledger.StatusVerified, true},
		{ledger.StatusRejected, true},
		{ledger.StatusWithdrawn, false},
	}
	for _, test := range tests {
		if got := DecisionStatus(test.status); got != test.want {
			t.Errorf("DecisionStatus(%v): got %v, want %v",
				test.status, got, test.want)
		}
	}
}
