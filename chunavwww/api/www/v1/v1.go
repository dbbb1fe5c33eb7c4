// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package v1

import (
	"fmt"
)

type ErrorStatusT int

const (
	ChunavWWWAPIVersion = 1 // API version this backend understands

	RouteVersion           = "/version"
	RoutePolicy            = "/policy"
	RouteConnect           = "/connect"
	RouteDisconnect        = "/disconnect"
	RouteMe                = "/me"
	RouteElections         = "/elections"
	RouteElectionDetails   = "/election/{id:[0-9]+}"
	RouteElectionResults   = "/election/{id:[0-9]+}/results"
	RouteCandidates        = "/election/{id:[0-9]+}/candidates"
	RouteBallot            = "/election/{id:[0-9]+}/ballot"
	RouteParties           = "/parties"
	RouteIdentityPrecheck  = "/identity/precheck"
	RouteIdentityChallenge = "/identity/challenge"
	RouteIdentityVerify    = "/identity/verify"
	RouteRegisterVoter     = "/voter/register"
	RouteCastVote          = "/voter/vote"
	RouteSubmitNomination  = "/candidate/nominate"
	RouteWithdraw          = "/candidate/withdraw"
	RoutePendingVoters     = "/admin/voters/pending"
	RouteVerifyVoter       = "/admin/voters/verify"
	RoutePendingCandidates = "/admin/candidates/pending"
	RouteVerifyCandidate   = "/admin/candidates/verify"
	RouteNewElection       = "/admin/elections/new"
	RouteEndElection       = "/admin/elections/end"
	RouteNewAdmin          = "/admin/admins/new"
	RouteNewParty          = "/admin/parties/new"

	// PolicyIdentityIDLength is the exact length of a national identity
	// ID.
	PolicyIdentityIDLength = 12

	// PolicyChallengeCodeDigits is the number of digits in an identity
	// challenge code.
	PolicyChallengeCodeDigits = 6

	// PolicyMaxNameLength is the max length of a person, election, or
	// party name.
	PolicyMaxNameLength = 80

	// PolicyMinNameLength is the min length of a person, election, or
	// party name.
	PolicyMinNameLength = 2

	// PolicyMaxBioLength is the max length of a candidate bio.
	PolicyMaxBioLength = 500

	// Error status codes
	ErrorStatusInvalid            ErrorStatusT = 0
	ErrorStatusInvalidInput       ErrorStatusT = 1
	ErrorStatusNotConnected       ErrorStatusT = 2
	ErrorStatusNotAuthorized      ErrorStatusT = 3
	ErrorStatusGuardRejection     ErrorStatusT = 4
	ErrorStatusLedgerUnreachable  ErrorStatusT = 5
	ErrorStatusOutcomeUnknown     ErrorStatusT = 6
	ErrorStatusActionInFlight     ErrorStatusT = 7
	ErrorStatusWrongStatus        ErrorStatusT = 8
	ErrorStatusElectionNotFound   ErrorStatusT = 9
	ErrorStatusElectionClosed     ErrorStatusT = 10
	ErrorStatusNoSuchIdentity     ErrorStatusT = 11
	ErrorStatusNameMismatch       ErrorStatusT = 12
	ErrorStatusChallengeRequired  ErrorStatusT = 13
	ErrorStatusChallengeMismatch  ErrorStatusT = 14
	ErrorStatusAuthTokenInvalid   ErrorStatusT = 15
	ErrorStatusInvalidChannel     ErrorStatusT = 16
	ErrorStatusInvalidStatus      ErrorStatusT = 17
	ErrorStatusInvalidRole        ErrorStatusT = 18
	ErrorStatusInvalidAddress     ErrorStatusT = 19
	ErrorStatusEnumerationFailed  ErrorStatusT = 20
)

var (
	// ChunavWWWAPIRoute is the prefix to the API route.
	ChunavWWWAPIRoute = fmt.Sprintf("/v%v", ChunavWWWAPIVersion)

	// CookieSession is the cookie name that indicates that an actor is
	// connected.
	CookieSession = "session"

	// ErrorStatus converts error status codes to human readable text.
	ErrorStatus = map[ErrorStatusT]string{
		ErrorStatusInvalid:           "invalid error status",
		ErrorStatusInvalidInput:      "invalid input",
		ErrorStatusNotConnected:      "no wallet connected",
		ErrorStatusNotAuthorized:     "role does not allow this action",
		ErrorStatusGuardRejection:    "the ledger rejected the action",
		ErrorStatusLedgerUnreachable: "the ledger could not be reached",
		ErrorStatusOutcomeUnknown: "the action was submitted but its " +
			"outcome is unknown; refresh before retrying",
		ErrorStatusActionInFlight:   "the action is already awaiting confirmation",
		ErrorStatusWrongStatus:      "the record status does not allow this action",
		ErrorStatusElectionNotFound: "election not found",
		ErrorStatusElectionClosed:   "the election does not permit this action",
		ErrorStatusNoSuchIdentity:   "identity not found",
		ErrorStatusNameMismatch:     "name does not match identity records",
		ErrorStatusChallengeRequired: "an identity challenge must be " +
			"completed first",
		ErrorStatusChallengeMismatch: "incorrect challenge code",
		ErrorStatusAuthTokenInvalid:  "invalid or spent authorization token",
		ErrorStatusInvalidChannel:    "invalid delivery channel",
		ErrorStatusInvalidStatus:     "invalid status",
		ErrorStatusInvalidRole:       "invalid role",
		ErrorStatusInvalidAddress:    "invalid address",
		ErrorStatusEnumerationFailed: "pending registrations could not be " +
			"enumerated",
	}
)

// UserError represents an error that is caused by something that the user
// did (malformed input, bad timing, etc).
type UserError struct {
	ErrorCode    ErrorStatusT
	ErrorContext []string
}

// Error satisfies the error interface.
func (e UserError) Error() string {
	return fmt.Sprintf("user error code: %v", e.ErrorCode)
}

// ErrorReply are replies that the server returns when it encounters an
// unrecoverable problem while executing a command. The HTTP Error Code
// shall be 500 if it's an internal server error or 4xx if it's a user
// error.
type ErrorReply struct {
	ErrorCode    int64    `json:"errorcode,omitempty"`
	ErrorContext []string `json:"errorcontext,omitempty"`
}

// Election is an election as it appears on the ledger, along with its
// derived phase at the time the reply was composed.
type Election struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Constituency   string `json:"constituency"`
	StartTime      int64  `json:"starttime"` // Unix timestamp
	EndTime        int64  `json:"endtime"`   // Unix timestamp
	TotalVotes     uint64 `json:"totalvotes"`
	CandidateCount uint64 `json:"candidatecount"`
	Active         bool   `json:"active"`
	Phase          string `json:"phase"` // Derived, not stored
}

// Candidate is a candidate nomination as it appears on the ledger.
type Candidate struct {
	Address    string `json:"address"`
	ElectionID uint64 `json:"electionid"`
	Name       string `json:"name"`
	Party      string `json:"party"`
	Symbol     string `json:"symbol,omitempty"`
	Bio        string `json:"bio,omitempty"`
	Votes      uint64 `json:"votes"`
	Status     string `json:"status"`
}

// Voter is a voter record as it appears on the ledger. The identity
// reference is a hash; the raw identity ID is never exposed.
type Voter struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	IdentityRef string `json:"identityref"`
	ElectionID  uint64 `json:"electionid"`
	HasVoted    bool   `json:"hasvoted"`
	Status      string `json:"status"`
}

// Party is an entry in the political party registry.
type Party struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Version command is used to determine the version of the API this backend
// understands and additionally it provides the route to said API.
type Version struct{}

// VersionReply returns information that indicates what version of the
// server is running and additionally the route to the API.
type VersionReply struct {
	Version       uint   `json:"version"`       // chunav WWW API version
	Route         string `json:"route"`         // prefix to API calls
	ActiveSession bool   `json:"activesession"` // whether a wallet is connected
}

// Policy returns a struct with various maxima. The client shall observe
// the maxima.
type Policy struct{}

// PolicyReply is used to reply to the policy command. It returns the
// client side policy restrictions.
type PolicyReply struct {
	IdentityIDLength    uint              `json:"identityidlength"`
	ChallengeCodeDigits uint              `json:"challengecodedigits"`
	MaxNameLength       uint              `json:"maxnamelength"`
	MinNameLength       uint              `json:"minnamelength"`
	MaxBioLength        uint              `json:"maxbiolength"`
	Roles               map[string]string `json:"roles"`
	Statuses            map[string]string `json:"statuses"`
}

// Connect binds the session to a wallet address and mirrors its role and
// voter record from the ledger.
type Connect struct {
	Address string `json:"address"`
}

// ConnectReply returns the connected actor's ledger state and the actions
// that are visible for it.
type ConnectReply struct {
	Address    string   `json:"address"`
	Role       string   `json:"role"`
	RoleActive bool     `json:"roleactive"`
	Voter      Voter    `json:"voter"`
	Actions    []string `json:"actions"`
}

// Disconnect clears the session.
type Disconnect struct{}

// DisconnectReply is the reply to the Disconnect command.
type DisconnectReply struct{}

// Me requests the connected actor's current mirrored state. The optional
// election ID scopes the visible action composition to that election.
type Me struct {
	ElectionID uint64 `schema:"electionid"`
}

// MeReply is the reply to the Me command.
type MeReply struct {
	Address    string   `json:"address"`
	Role       string   `json:"role"`
	RoleActive bool     `json:"roleactive"`
	Voter      Voter    `json:"voter"`
	Actions    []string `json:"actions"`
}

// Elections requests all elections.
type Elections struct{}

// ElectionsReply is the reply to the Elections command. The list is
// complete; a partial list is never returned.
type ElectionsReply struct {
	Elections []Election `json:"elections"`
}

// ElectionDetails requests a single election. The election ID is part of
// the route.
type ElectionDetails struct{}

// ElectionDetailsReply is the reply to the ElectionDetails command.
type ElectionDetailsReply struct {
	Election Election `json:"election"`
}

// ElectionResults requests the tally for an election.
type ElectionResults struct{}

// ElectionResultsReply returns the verified candidates of an election
// sorted by descending vote count.
type ElectionResultsReply struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

// Candidates requests the candidate nominations for an election.
type Candidates struct{}

// CandidatesReply is the reply to the Candidates command.
type CandidatesReply struct {
	Candidates []Candidate `json:"candidates"`
}

// Ballot requests the verified candidates for an election, i.e. the ones
// that may receive votes.
type Ballot struct{}

// BallotReply is the reply to the Ballot command.
type BallotReply struct {
	Candidates []Candidate `json:"candidates"`
}

// Parties requests the political party registry.
type Parties struct{}

// PartiesReply is the reply to the Parties command.
type PartiesReply struct {
	Parties []Party `json:"parties"`
}

// IdentityPrecheck verifies that an identity ID exists and that the
// asserted name matches it before any registration input is accepted.
type IdentityPrecheck struct {
	IdentityID string `json:"identityid"`
	Name       string `json:"name"`
}

// IdentityPrecheckReply is the reply to the IdentityPrecheck command.
type IdentityPrecheckReply struct {
	Match string `json:"match"`
}

// IdentityChallenge requests that a one time code be delivered over the
// chosen channel for the provided identity.
type IdentityChallenge struct {
	IdentityID string `json:"identityid"`
	Name       string `json:"name"`
	Channel    string `json:"channel"` // "mobile" or "email"
}

// IdentityChallengeReply returns the masked destination the code was
// delivered to. The code itself is never echoed.
type IdentityChallengeReply struct {
	Destination string `json:"destination"`
}

// IdentityVerify redeems a delivered challenge code for a one time
// registration authorization token.
type IdentityVerify struct {
	Code string `json:"code"`
}

// IdentityVerifyReply is the reply to the IdentityVerify command.
type IdentityVerifyReply struct {
	Token string `json:"token"`
}

// RegisterVoter submits a voter registration for the connected actor. The
// token must come from a completed identity challenge and is consumed by
// this call.
type RegisterVoter struct {
	Token      string `json:"token"`
	ElectionID uint64 `json:"electionid"`
}

// RegisterVoterReply returns the actor's re-derived voter record.
type RegisterVoterReply struct {
	Voter Voter `json:"voter"`
}

// CastVote casts the connected actor's vote for a candidate.
type CastVote struct {
	ElectionID uint64 `json:"electionid"`
	Candidate  string `json:"candidate"`
}

// CastVoteReply returns the actor's re-derived voter record.
type CastVoteReply struct {
	Voter Voter `json:"voter"`
}

// SubmitNomination submits a candidate nomination for the connected actor.
type SubmitNomination struct {
	ElectionID uint64 `json:"electionid"`
	Name       string `json:"name"`
	Party      string `json:"party"`
	Symbol     string `json:"symbol"`
	Bio        string `json:"bio"`
}

// SubmitNominationReply returns the re-derived nomination record.
type SubmitNominationReply struct {
	Candidate Candidate `json:"candidate"`
}

// Withdraw withdraws the connected actor's nomination.
type Withdraw struct {
	ElectionID uint64 `json:"electionid"`
}

// WithdrawReply returns the re-derived nomination record.
type WithdrawReply struct {
	Candidate Candidate `json:"candidate"`
}

// PendingVoters requests the voter registrations that are awaiting a
// decision. The optional election ID scopes the enumeration; 0 means all
// elections.
type PendingVoters struct {
	ElectionID uint64 `schema:"electionid"`
}

// PendingVotersReply is the reply to the PendingVoters command.
type PendingVotersReply struct {
	Voters []Voter `json:"voters"`
}

// VerifyVoter decides a pending voter registration.
type VerifyVoter struct {
	Address string `json:"address"`
	Status  string `json:"status"` // "verified" or "rejected"
}

// VerifyVoterReply returns the re-derived voter record.
type VerifyVoterReply struct {
	Voter Voter `json:"voter"`
}

// PendingCandidates requests the candidate nominations for an election
// that are awaiting a decision.
type PendingCandidates struct {
	ElectionID uint64 `schema:"electionid"`
}

// PendingCandidatesReply is the reply to the PendingCandidates command.
type PendingCandidatesReply struct {
	Candidates []Candidate `json:"candidates"`
}

// VerifyCandidate decides a pending candidate nomination.
type VerifyCandidate struct {
	ElectionID uint64 `json:"electionid"`
	Address    string `json:"address"`
	Status     string `json:"status"` // "verified" or "rejected"
}

// VerifyCandidateReply returns the re-derived nomination record.
type VerifyCandidateReply struct {
	Candidate Candidate `json:"candidate"`
}

// NewElection creates a new election.
type NewElection struct {
	Name         string `json:"name"`
	StartTime    int64  `json:"starttime"` // Unix timestamp
	EndTime      int64  `json:"endtime"`   // Unix timestamp
	Constituency string `json:"constituency"`
}

// NewElectionReply returns the refreshed election list. The new election's
// ID is discovered from the refresh.
type NewElectionReply struct {
	Elections []Election `json:"elections"`
}

// EndElection administratively ends an election.
type EndElection struct {
	ElectionID uint64 `json:"electionid"`
}

// EndElectionReply returns the re-derived election record.
type EndElectionReply struct {
	Election Election `json:"election"`
}

// NewAdmin grants an admin role to an address.
type NewAdmin struct {
	Address string `json:"address"`
	Role    string `json:"role"`
}

// NewAdminReply returns the re-derived role tuple.
type NewAdminReply struct {
	Address    string `json:"address"`
	Role       string `json:"role"`
	RoleActive bool   `json:"roleactive"`
}

// NewParty appends a party to the registry.
type NewParty struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// NewPartyReply returns the refreshed party registry.
type NewPartyReply struct {
	Parties []Party `json:"parties"`
}
