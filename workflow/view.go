// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workflow

import (
	"fmt"

	"github.com/chunav/chunav/ledger"
)

// ActionT identifies a user facing workflow action.
type ActionT int

const (
	ActionRegister         ActionT = 0
	ActionNominate         ActionT = 1
	ActionWithdraw         ActionT = 2
	ActionVote             ActionT = 3
	ActionDecideVoters     ActionT = 4
	ActionDecideCandidates ActionT = 5
	ActionManageElections  ActionT = 6
	ActionManageParties    ActionT = 7
	ActionManageRoles      ActionT = 8
)

// Actions contains the human readable actions.
var Actions = map[ActionT]string{
	ActionRegister:         "register",
	ActionNominate:         "nominate",
	ActionWithdraw:         "withdraw nomination",
	ActionVote:             "vote",
	ActionDecideVoters:     "verify voters",
	ActionDecideCandidates: "verify candidates",
	ActionManageElections:  "manage elections",
	ActionManageParties:    "manage parties",
	ActionManageRoles:      "manage admins",
}

func (a ActionT) String() string {
	if v, ok := Actions[a]; ok {
		return v
	}
	return fmt.Sprintf("unknown action %v", int(a))
}

// actionCapabilities maps the role gated actions to the capability each one
// requires.
var actionCapabilities = map[ActionT]Capability{
	ActionDecideVoters:     CapDecideVoters,
	ActionDecideCandidates: CapDecideCandidates,
	ActionManageElections:  CapManageElections,
	ActionManageParties:    CapManageElections,
	ActionManageRoles:      CapManageRoles,
}

// ActionCapability returns the capability an action requires and whether
// the action is role gated at all.
func ActionCapability(a ActionT) (Capability, bool) {
	c, ok := actionCapabilities[a]
	return c, ok
}

// VisibleActions composes the set of actions that are visible for an actor.
// It is a pure function of the actor's admin role tuple, their voter
// record, their own candidate record for the selected election (nil when
// none), and the selected election's derived phase. Each rule is evaluated
// independently and the result is the union of all that hold.
func VisibleActions(admin ledger.Admin, voter *ledger.Voter, ownCandidate *ledger.Candidate, phase ledger.PhaseT) map[ActionT]struct{} {
	visible := make(map[ActionT]struct{})

	// Registration requires that no active registration exists and that
	// the election has not ended. Pending and Verified registrations
	// are active; None, Rejected, and Withdrawn are not.
	if voter.Status != ledger.StatusPending &&
		voter.Status != ledger.StatusVerified &&
		phase != ledger.PhaseEnded {
		visible[ActionRegister] = struct{}{}
	}

	// Nomination requires holding some registration record.
	if voter.Status != ledger.StatusNone && phase != ledger.PhaseEnded {
		visible[ActionNominate] = struct{}{}
	}

	// Withdrawal requires an undecided or verified own nomination.
	if ownCandidate != nil &&
		(ownCandidate.Status == ledger.StatusPending ||
			ownCandidate.Status == ledger.StatusVerified) &&
		phase != ledger.PhaseEnded {
		visible[ActionWithdraw] = struct{}{}
	}

	// Voting requires a verified, unspent registration and an open
	// election.
	if voter.Status == ledger.StatusVerified && !voter.HasVoted &&
		phase == ledger.PhaseOpen {
		visible[ActionVote] = struct{}{}
	}

	// Role gated actions.
	for action, capability := range actionCapabilities {
		if RoleHas(admin, capability) {
			visible[action] = struct{}{}
		}
	}

	return visible
}

// DecisionVisible returns whether the verify/reject decision actions are
// shown for an individual record. Decisions are only offered on records
// that are awaiting one.
func DecisionVisible(status ledger.StatusT) bool {
	return status == ledger.StatusPending
}
