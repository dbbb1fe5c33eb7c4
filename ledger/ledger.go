// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger defines the types and operations of the external election
// ledger. The ledger is the authoritative store for all election, voter,
// candidate, and admin state; this package only mirrors its data model and
// describes the operations a front end may invoke against it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type StatusT uint8
type RoleT uint8
type PhaseT uint8

const (
	// Voter and candidate record statuses. These values mirror the
	// status codes stored by the ledger and must not be reordered.
	StatusNone      StatusT = 0
	StatusPending   StatusT = 1
	StatusVerified  StatusT = 2
	StatusRejected  StatusT = 3
	StatusWithdrawn StatusT = 4

	// Admin roles. A role is recorded alongside an active flag; an
	// inactive role confers no capability regardless of its tier.
	RoleNone              RoleT = 0
	RoleLocalityOfficer   RoleT = 1
	RolePollingOfficer    RoleT = 2
	RoleElectionAuthority RoleT = 3
	RoleSuperAdmin        RoleT = 4

	// Election phases, derived from the election time bounds and the
	// active flag. The ledger never flips an election inactive on its
	// own; PhaseEnded covers both the temporal and the administrative
	// end.
	PhaseNotStarted PhaseT = 0
	PhaseOpen       PhaseT = 1
	PhaseEnded      PhaseT = 2
)

var (
	// Statuses contains the human readable record statuses.
	Statuses = map[StatusT]string{
		StatusNone:      "none",
		StatusPending:   "pending",
		StatusVerified:  "verified",
		StatusRejected:  "rejected",
		StatusWithdrawn: "withdrawn",
	}

	// Roles contains the human readable admin roles.
	Roles = map[RoleT]string{
		RoleNone:              "none",
		RoleLocalityOfficer:   "locality officer",
		RolePollingOfficer:    "polling officer",
		RoleElectionAuthority: "election authority",
		RoleSuperAdmin:        "super admin",
	}

	// Phases contains the human readable election phases.
	Phases = map[PhaseT]string{
		PhaseNotStarted: "not started",
		PhaseOpen:       "open",
		PhaseEnded:      "ended",
	}
)

func (s StatusT) String() string {
	if v, ok := Statuses[s]; ok {
		return v
	}
	return fmt.Sprintf("unknown status %v", uint8(s))
}

func (r RoleT) String() string {
	if v, ok := Roles[r]; ok {
		return v
	}
	return fmt.Sprintf("unknown role %v", uint8(r))
}

func (p PhaseT) String() string {
	if v, ok := Phases[p]; ok {
		return v
	}
	return fmt.Sprintf("unknown phase %v", uint8(p))
}

// Election is the ledger record of a single election. IDs are assigned
// sequentially by the ledger starting at 1.
type Election struct {
	ID             uint64
	Name           string
	Constituency   string
	StartTime      int64 // Unix timestamp
	EndTime        int64 // Unix timestamp
	Active         bool
	TotalVotes     uint64
	CandidateCount uint64
}

// Phase returns the election phase at the provided point in time. An
// election that has been administratively ended is PhaseEnded even when the
// current time is inside its time bounds.
func (e *Election) Phase(now time.Time) PhaseT {
	ts := now.Unix()
	switch {
	case !e.Active || ts >= e.EndTime:
		return PhaseEnded
	case ts < e.StartTime:
		return PhaseNotStarted
	default:
		return PhaseOpen
	}
}

// Voter is the ledger record of a voter enrollment. A voter that has never
// registered is represented by a record with StatusNone.
type Voter struct {
	Address     common.Address
	Name        string
	IdentityRef string // Hashed identity ID
	ElectionID  uint64
	HasVoted    bool
	Status      StatusT
}

// Candidate is the ledger record of a candidate nomination, keyed by
// (election ID, address).
type Candidate struct {
	Address    common.Address
	ElectionID uint64
	Name       string
	Party      string
	Symbol     string
	Bio        string // IPFS CID
	Votes      uint64
	Status     StatusT
}

// Admin is the ledger record of an admin role grant.
type Admin struct {
	Role   RoleT
	Active bool
}

// Party is an entry in the ledger's political party registry.
type Party struct {
	Name   string
	Symbol string
}

// Registration is a historical voter registration notification emitted by
// the ledger. Registrations are returned in the order they were observed;
// when the same address appears more than once the later entry is the more
// recent one.
type Registration struct {
	Voter      common.Address
	Name       string
	ElectionID uint64
}

// Ledger describes the election ledger operations consumed by the front
// end. Reads return the current authoritative state. Writes submit a state
// transition and do not return until the ledger has confirmed or rejected
// it; a write that was submitted but whose confirmation was never observed
// returns a TransportError with Submitted set.
type Ledger interface {
	// ElectionCount returns the number of elections the ledger has
	// created. Election IDs run from 1 through this count.
	ElectionCount(ctx context.Context) (uint64, error)

	// ElectionDetails returns a single election with its aggregate
	// counters filled in.
	ElectionDetails(ctx context.Context, electionID uint64) (*Election, error)

	// ElectionCandidates returns all candidate nominations for an
	// election, regardless of status.
	ElectionCandidates(ctx context.Context, electionID uint64) ([]Candidate, error)

	// CandidateProfile returns a single candidate nomination.
	CandidateProfile(ctx context.Context, electionID uint64, candidate common.Address) (*Candidate, error)

	// VoterStatus returns the voter record for an address. An address
	// that has never registered returns a StatusNone record, not an
	// error.
	VoterStatus(ctx context.Context, voter common.Address) (*Voter, error)

	// AdminRole returns the admin role tuple for an address.
	AdminRole(ctx context.Context, admin common.Address) (*Admin, error)

	// PendingVoters enumerates all voter registrations that are
	// currently pending a decision.
	PendingVoters(ctx context.Context) ([]Voter, error)

	// Registrations returns the historical voter registration
	// notifications. This is the discovery fallback used when
	// PendingVoters is unavailable. Implementations that cannot scan
	// history return ErrScanUnsupported.
	Registrations(ctx context.Context) ([]Registration, error)

	// Parties returns the political party registry.
	Parties(ctx context.Context) ([]Party, error)

	// RegisterVoter enrolls the acting address as a voter in an
	// election.
	RegisterVoter(ctx context.Context, actor common.Address, name, identityRef string, electionID uint64) error

	// SubmitNomination enrolls the acting address as a candidate in an
	// election.
	SubmitNomination(ctx context.Context, actor common.Address, electionID uint64, name, party, symbol, bio string) error

	// WithdrawNomination withdraws the acting address's candidate
	// nomination from an election.
	WithdrawNomination(ctx context.Context, actor common.Address, electionID uint64) error

	// CastVote casts the acting address's vote for a candidate.
	CastVote(ctx context.Context, actor common.Address, electionID uint64, candidate common.Address) error

	// VerifyVoter decides a pending voter registration. The status must
	// be StatusVerified or StatusRejected.
	VerifyVoter(ctx context.Context, actor, voter common.Address, status StatusT) error

	// VerifyCandidate decides a pending candidate nomination. The
	// status must be StatusVerified or StatusRejected.
	VerifyCandidate(ctx context.Context, actor common.Address, electionID uint64, candidate common.Address, status StatusT) error

	// CreateElection creates a new election and returns nothing; the
	// assigned ID is discovered on the next refresh.
	CreateElection(ctx context.Context, actor common.Address, name string, startTime, endTime int64, constituency string) error

	// EndElection administratively ends an election.
	EndElection(ctx context.Context, actor common.Address, electionID uint64) error

	// AddAdmin grants an admin role to an address.
	AddAdmin(ctx context.Context, actor, admin common.Address, role RoleT) error

	// AddParty appends a party to the party registry.
	AddParty(ctx context.Context, actor common.Address, name, symbol string) error
}
