// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger"
	"github.com/chunav/chunav/workflow"
)

func convertElectionToWWW(e ledger.Election, now time.Time) v1.Election {
	return v1.Election{
		ID:             e.ID,
		Name:           e.Name,
		Constituency:   e.Constituency,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		TotalVotes:     e.TotalVotes,
		CandidateCount: e.CandidateCount,
		Active:         e.Active,
		Phase:          e.Phase(now).String(),
	}
}

func convertCandidateToWWW(c ledger.Candidate) v1.Candidate {
	return v1.Candidate{
		Address:    c.Address.Hex(),
		ElectionID: c.ElectionID,
		Name:       c.Name,
		Party:      c.Party,
		Symbol:     c.Symbol,
		Bio:        c.Bio,
		Votes:      c.Votes,
		Status:     c.Status.String(),
	}
}

func convertVoterToWWW(v ledger.Voter) v1.Voter {
	return v1.Voter{
		Address:     v.Address.Hex(),
		Name:        v.Name,
		IdentityRef: v.IdentityRef,
		ElectionID:  v.ElectionID,
		HasVoted:    v.HasVoted,
		Status:      v.Status.String(),
	}
}

func convertPartyToWWW(p ledger.Party) v1.Party {
	return v1.Party{
		Name:   p.Name,
		Symbol: p.Symbol,
	}
}

func convertActionsToWWW(actions map[workflow.ActionT]struct{}) []string {
	as := make([]string, 0, len(actions))
	for a := range actions {
		as = append(as, a.String())
	}
	sort.Strings(as)
	return as
}

// convertWWWDecisionStatus parses a decision status from its human readable
// form.
func convertWWWDecisionStatus(s string) (ledger.StatusT, bool) {
	for status, str := range ledger.Statuses {
		if strings.EqualFold(s, str) {
			return status, true
		}
	}
	return ledger.StatusNone, false
}

// convertWWWRole parses an admin role from its human readable form.
func convertWWWRole(s string) (ledger.RoleT, bool) {
	for role, str := range ledger.Roles {
		if strings.EqualFold(s, str) {
			return role, true
		}
	}
	return ledger.RoleNone, false
}

// convertWWWChannel parses a challenge delivery channel.
func convertWWWChannel(s string) (identity.ChannelT, bool) {
	switch strings.ToLower(s) {
	case "mobile":
		return identity.ChannelMobile, true
	case "email":
		return identity.ChannelEmail, true
	}
	return 0, false
}

// convertWWWAddress parses and validates a hex address.
func convertWWWAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// convertErrorToWWW translates workflow, ledger, and identity errors into
// the API's user error taxonomy. Errors that do not belong to the taxonomy
// are returned as is and end up as internal server errors.
func convertErrorToWWW(err error) error {
	var (
		guardErr     ledger.GuardError
		transportErr ledger.TransportError
		statusErr    workflow.StatusChangeError
		phaseErr     workflow.PhaseError
		inflightErr  workflow.InFlightError
		validateErr  workflow.ValidationError
	)
	switch {
	case errors.As(err, &guardErr):
		return v1.UserError{
			ErrorCode:    v1.ErrorStatusGuardRejection,
			ErrorContext: []string{guardErr.UserReason()},
		}
	case errors.As(err, &transportErr):
		if transportErr.Submitted {
			return v1.UserError{
				ErrorCode: v1.ErrorStatusOutcomeUnknown,
			}
		}
		return v1.UserError{
			ErrorCode: v1.ErrorStatusLedgerUnreachable,
		}
	case errors.As(err, &statusErr):
		return v1.UserError{
			ErrorCode:    v1.ErrorStatusWrongStatus,
			ErrorContext: []string{statusErr.Error()},
		}
	case errors.As(err, &phaseErr):
		return v1.UserError{
			ErrorCode:    v1.ErrorStatusElectionClosed,
			ErrorContext: []string{phaseErr.Error()},
		}
	case errors.As(err, &inflightErr):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusActionInFlight,
		}
	case errors.As(err, &validateErr):
		return v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{validateErr.Reason},
		}
	case errors.Is(err, workflow.ErrNotConnected):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusNotConnected,
		}
	case errors.Is(err, workflow.ErrNotAuthorized):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusNotAuthorized,
		}
	case errors.Is(err, identity.ErrNoChallenge):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusChallengeRequired,
		}
	case errors.Is(err, identity.ErrChallengeMismatch):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusChallengeMismatch,
		}
	case errors.Is(err, identity.ErrInvalidToken):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusAuthTokenInvalid,
		}
	case errors.Is(err, identity.ErrInvalidChannel):
		return v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidChannel,
		}
	}
	return err
}
