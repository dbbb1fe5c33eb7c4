// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"sort"
	"testing"

	"github.com/go-test/deep"

	"github.com/chunav/chunav/ledger"
)

func sortedActions(m map[ActionT]struct{}) []ActionT {
	var as []ActionT
	for a := range m {
		as = append(as, a)
	}
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	return as
}

func TestVisibleActions(t *testing.T) {
	noRole := ledger.Admin{Role: ledger.RoleNone, Active: false}
	pollingOfficer := ledger.Admin{Role: ledger.RolePollingOfficer, Active: true}
	superAdmin := ledger.Admin{Role: ledger.RoleSuperAdmin, Active: true}

	tests := []struct {
		name      string
		admin     ledger.Admin
		voter     ledger.Voter
		candidate *ledger.Candidate
		phase     ledger.PhaseT
		want      []ActionT
	}{
		{
			name:  "fresh visitor open election",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusNone},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionRegister},
		},
		{
			name:  "pending voter cannot re-register",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusPending},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionNominate},
		},
		{
			name:  "verified voter can vote and nominate",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusVerified},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionNominate, ActionVote},
		},
		{
			name:  "verified voter who voted cannot vote again",
			admin: noRole,
			voter: ledger.Voter{
				Status:   ledger.StatusVerified,
				HasVoted: true,
			},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionNominate},
		},
		{
			name:  "rejected voter may register again",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusRejected},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionRegister, ActionNominate},
		},
		{
			name:  "verified voter before start cannot vote yet",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusVerified},
			phase: ledger.PhaseNotStarted,
			want:  []ActionT{ActionNominate},
		},
		{
			name:  "ended election hides all entity actions",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusVerified},
			candidate: &ledger.Candidate{
				Status: ledger.StatusPending,
			},
			phase: ledger.PhaseEnded,
			want:  nil,
		},
		{
			name:  "pending nomination may be withdrawn",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusVerified},
			candidate: &ledger.Candidate{
				Status: ledger.StatusPending,
			},
			phase: ledger.PhaseOpen,
			want: []ActionT{
				ActionNominate, ActionWithdraw, ActionVote,
			},
		},
		{
			name:  "rejected nomination cannot be withdrawn",
			admin: noRole,
			voter: ledger.Voter{Status: ledger.StatusVerified},
			candidate: &ledger.Candidate{
				Status: ledger.StatusRejected,
			},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionNominate, ActionVote},
		},
		{
			name:  "polling officer sees voter decisions only",
			admin: pollingOfficer,
			voter: ledger.Voter{Status: ledger.StatusNone},
			phase: ledger.PhaseOpen,
			want:  []ActionT{ActionRegister, ActionDecideVoters},
		},
		{
			name:  "role actions survive an ended election",
			admin: pollingOfficer,
			voter: ledger.Voter{Status: ledger.StatusNone},
			phase: ledger.PhaseEnded,
			want:  []ActionT{ActionDecideVoters},
		},
		{
			name:  "super admin sees every role action",
			admin: superAdmin,
			voter: ledger.Voter{Status: ledger.StatusNone},
			phase: ledger.PhaseOpen,
			want: []ActionT{
				ActionRegister, ActionDecideVoters,
				ActionDecideCandidates, ActionManageElections,
				ActionManageParties, ActionManageRoles,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := VisibleActions(test.admin, &test.voter,
				test.candidate, test.phase)
			want := test.want
			sort.Slice(want, func(i, j int) bool {
				return want[i] < want[j]
			})
			if diff := deep.Equal(sortedActions(got), want); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestDecisionVisible(t *testing.T) {
	tests := []struct {
		status ledger.StatusT
		want   bool
	}{
		{ledger.StatusNone, false},
		{ledger.StatusPending, true},
		{ledger.StatusVerified, false},
		{ledger.StatusRejected, false},
		{ledger.StatusWithdrawn, false},
	}
	for _, test := range tests {
		if got := DecisionVisible(test.status); got != test.want {
			t.Errorf("DecisionVisible(%v): got %v, want %v",
				test.status, got, test.want)
		}
	}
}
