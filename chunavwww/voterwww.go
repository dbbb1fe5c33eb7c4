// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger"
	"github.com/chunav/chunav/util"
	"github.com/chunav/chunav/workflow"
)

// routeElectionID extracts the election ID from the route.
func routeElectionID(r *http.Request) (uint64, error) {
	pathParams := mux.Vars(r)
	id, err := strconv.ParseUint(pathParams["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, v1.UserError{
			ErrorCode: v1.ErrorStatusElectionNotFound,
		}
	}
	return id, nil
}

// composeActions derives the visible action set for the connected actor
// against the provided election. Election ID 0 selects the most recently
// created election; when no election exists the entity actions are hidden
// and only the role gated actions can show.
func (p *chunavwww) composeActions(ctx context.Context, ac *actorContext, electionID uint64) ([]string, error) {
	if electionID == 0 {
		count, err := p.ledger.ElectionCount(ctx)
		if err != nil {
			return nil, err
		}
		electionID = count
	}

	phase := ledger.PhaseEnded
	var ownCandidate *ledger.Candidate
	if electionID != 0 {
		e, err := p.sync.Election(ctx, electionID)
		if err != nil {
			return nil, err
		}
		phase = e.Phase(time.Now())

		addr, err := ac.session.Address()
		if err != nil {
			return nil, err
		}
		c, err := p.ledger.CandidateProfile(ctx, electionID, addr)
		if err != nil {
			return nil, err
		}
		if c.Status != ledger.StatusNone {
			ownCandidate = c
		}
	}

	voter := ac.session.Voter()
	actions := workflow.VisibleActions(ac.session.Admin(), &voter,
		ownCandidate, phase)
	return convertActionsToWWW(actions), nil
}

// processConnect binds the session to a wallet address.
func (p *chunavwww) processConnect(ctx context.Context, ac *actorContext, c v1.Connect) (*v1.ConnectReply, error) {
	addr, ok := convertWWWAddress(c.Address)
	if !ok {
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidAddress,
		}
	}

	err := ac.session.Connect(ctx, addr)
	if err != nil {
		return nil, err
	}

	actions, err := p.composeActions(ctx, ac, 0)
	if err != nil {
		return nil, err
	}

	admin := ac.session.Admin()
	return &v1.ConnectReply{
		Address:    addr.Hex(),
		Role:       admin.Role.String(),
		RoleActive: admin.Active,
		Voter:      convertVoterToWWW(ac.session.Voter()),
		Actions:    actions,
	}, nil
}

// handleConnect handles the connect command.
func (p *chunavwww) handleConnect(w http.ResponseWriter, r *http.Request) {
	var c v1.Connect
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&c); err != nil {
		RespondWithError(w, r, 0, "handleConnect: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleConnect: sessionContext %v", err)
		return
	}

	reply, err := p.processConnect(r.Context(), ac, c)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleConnect: processConnect %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleDisconnect handles the disconnect command.
func (p *chunavwww) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDisconnect: sessionContext %v", err)
		return
	}

	ac.session.Disconnect()
	err = p.removeSession(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleDisconnect: removeSession %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.DisconnectReply{})
}

// processMe re-syncs and returns the connected actor's mirrored state.
func (p *chunavwww) processMe(ctx context.Context, ac *actorContext, me v1.Me) (*v1.MeReply, error) {
	err := ac.session.Resync(ctx)
	if err != nil {
		return nil, err
	}

	actions, err := p.composeActions(ctx, ac, me.ElectionID)
	if err != nil {
		return nil, err
	}

	addr, err := ac.session.Address()
	if err != nil {
		return nil, err
	}

	admin := ac.session.Admin()
	return &v1.MeReply{
		Address:    addr.Hex(),
		Role:       admin.Role.String(),
		RoleActive: admin.Active,
		Voter:      convertVoterToWWW(ac.session.Voter()),
		Actions:    actions,
	}, nil
}

// handleMe handles the me command.
func (p *chunavwww) handleMe(w http.ResponseWriter, r *http.Request) {
	var me v1.Me
	err := util.ParseGetParams(r, &me)
	if err != nil {
		RespondWithError(w, r, 0, "handleMe: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0, "handleMe: sessionContext %v", err)
		return
	}

	reply, err := p.processMe(r.Context(), ac, me)
	if err != nil {
		RespondWithError(w, r, 0, "handleMe: processMe %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleElections handles the elections command.
func (p *chunavwww) handleElections(w http.ResponseWriter, r *http.Request) {
	elections, err := p.sync.Elections(r.Context())
	if err != nil {
		RespondWithError(w, r, 0,
			"handleElections: Elections %v", err)
		return
	}

	now := time.Now()
	reply := v1.ElectionsReply{
		Elections: make([]v1.Election, 0, len(elections)),
	}
	for _, e := range elections {
		reply.Elections = append(reply.Elections,
			convertElectionToWWW(e, now))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleElectionDetails handles the election details command.
func (p *chunavwww) handleElectionDetails(w http.ResponseWriter, r *http.Request) {
	id, err := routeElectionID(r)
	if err != nil {
		RespondWithError(w, r, 0, "handleElectionDetails: id", err)
		return
	}

	e, err := p.sync.Election(r.Context(), id)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleElectionDetails: Election %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ElectionDetailsReply{
		Election: convertElectionToWWW(*e, time.Now()),
	})
}

// handleElectionResults handles the election results command.
func (p *chunavwww) handleElectionResults(w http.ResponseWriter, r *http.Request) {
	id, err := routeElectionID(r)
	if err != nil {
		RespondWithError(w, r, 0, "handleElectionResults: id", err)
		return
	}

	e, err := p.sync.Election(r.Context(), id)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleElectionResults: Election %v", err)
		return
	}
	ballot, err := p.sync.Ballot(r.Context(), id)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleElectionResults: Ballot %v", err)
		return
	}

	reply := v1.ElectionResultsReply{
		Election:   convertElectionToWWW(*e, time.Now()),
		Candidates: make([]v1.Candidate, 0, len(ballot)),
	}
	for _, c := range ballot {
		reply.Candidates = append(reply.Candidates,
			convertCandidateToWWW(c))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleCandidates handles the candidates command.
func (p *chunavwww) handleCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := routeElectionID(r)
	if err != nil {
		RespondWithError(w, r, 0, "handleCandidates: id", err)
		return
	}

	cs, err := p.sync.Candidates(r.Context(), id)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleCandidates: Candidates %v", err)
		return
	}

	reply := v1.CandidatesReply{
		Candidates: make([]v1.Candidate, 0, len(cs)),
	}
	for _, c := range cs {
		reply.Candidates = append(reply.Candidates,
			convertCandidateToWWW(c))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleBallot handles the ballot command.
func (p *chunavwww) handleBallot(w http.ResponseWriter, r *http.Request) {
	id, err := routeElectionID(r)
	if err != nil {
		RespondWithError(w, r, 0, "handleBallot: id", err)
		return
	}

	ballot, err := p.sync.Ballot(r.Context(), id)
	if err != nil {
		RespondWithError(w, r, 0, "handleBallot: Ballot %v", err)
		return
	}

	reply := v1.BallotReply{
		Candidates: make([]v1.Candidate, 0, len(ballot)),
	}
	for _, c := range ballot {
		reply.Candidates = append(reply.Candidates,
			convertCandidateToWWW(c))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleParties handles the parties command.
func (p *chunavwww) handleParties(w http.ResponseWriter, r *http.Request) {
	parties, err := p.sync.Parties(r.Context())
	if err != nil {
		RespondWithError(w, r, 0, "handleParties: Parties %v", err)
		return
	}

	reply := v1.PartiesReply{
		Parties: make([]v1.Party, 0, len(parties)),
	}
	for _, party := range parties {
		reply.Parties = append(reply.Parties,
			convertPartyToWWW(party))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// processIdentityPrecheck matches an asserted identity against the
// identity table. Both failure modes are reported the same way to the
// client via the match result; nothing else about the identity is leaked.
func (p *chunavwww) processIdentityPrecheck(ip v1.IdentityPrecheck) (*v1.IdentityPrecheckReply, error) {
	if len(ip.IdentityID) != v1.PolicyIdentityIDLength {
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"identity id must be " +
				strconv.Itoa(v1.PolicyIdentityIDLength) +
				" digits"},
		}
	}

	match, _ := p.lookup.Precheck(ip.IdentityID, ip.Name)
	return &v1.IdentityPrecheckReply{
		Match: match.String(),
	}, nil
}

// handleIdentityPrecheck handles the identity precheck command.
func (p *chunavwww) handleIdentityPrecheck(w http.ResponseWriter, r *http.Request) {
	var ip v1.IdentityPrecheck
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ip); err != nil {
		RespondWithError(w, r, 0, "handleIdentityPrecheck: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processIdentityPrecheck(ip)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleIdentityPrecheck: processIdentityPrecheck %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// processIdentityChallenge issues a challenge code for a prechecked
// identity. Delivery is simulated; the destination is echoed but the code
// travels out of band.
func (p *chunavwww) processIdentityChallenge(ac *actorContext, ic v1.IdentityChallenge) (*v1.IdentityChallengeReply, error) {
	channel, ok := convertWWWChannel(ic.Channel)
	if !ok {
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusInvalidChannel,
		}
	}

	match, entry := p.lookup.Precheck(ic.IdentityID, ic.Name)
	switch match {
	case identity.MatchNoSuchIdentity:
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusNoSuchIdentity,
		}
	case identity.MatchNameMismatch:
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusNameMismatch,
		}
	}

	delivery, err := ac.gate.IssueChallenge(*entry, channel)
	if err != nil {
		return nil, err
	}

	// The code is handed to the delivery provider, never to the
	// client.
	deliverChallenge(delivery)

	return &v1.IdentityChallengeReply{
		Destination: delivery.Destination,
	}, nil
}

// deliverChallenge hands a challenge code to the out of band delivery
// provider. Actual SMS/email transport is not wired up; the code is logged
// so that operators can complete the loop manually.
func deliverChallenge(d *identity.Delivery) {
	log.Infof("Challenge code for %v: %v", d.Destination, d.Code)
}

// handleIdentityChallenge handles the identity challenge command.
func (p *chunavwww) handleIdentityChallenge(w http.ResponseWriter, r *http.Request) {
	var ic v1.IdentityChallenge
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ic); err != nil {
		RespondWithError(w, r, 0, "handleIdentityChallenge: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleIdentityChallenge: sessionContext %v", err)
		return
	}

	reply, err := p.processIdentityChallenge(ac, ic)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleIdentityChallenge: processIdentityChallenge %v",
			err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleIdentityVerify handles the identity verify command.
func (p *chunavwww) handleIdentityVerify(w http.ResponseWriter, r *http.Request) {
	var iv v1.IdentityVerify
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&iv); err != nil {
		RespondWithError(w, r, 0, "handleIdentityVerify: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleIdentityVerify: sessionContext %v", err)
		return
	}

	token, err := ac.gate.VerifyChallenge(iv.Code)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleIdentityVerify: VerifyChallenge %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.IdentityVerifyReply{
		Token: token.Token,
	})
}

// processRegisterVoter redeems the registration authorization and submits
// the registration to the ledger.
func (p *chunavwww) processRegisterVoter(ctx context.Context, ac *actorContext, rv v1.RegisterVoter) (*v1.RegisterVoterReply, error) {
	entry, err := ac.gate.Redeem(rv.Token)
	if err != nil {
		return nil, err
	}

	err = ac.dispatcher.Register(ctx, entry, rv.ElectionID)
	if err != nil {
		return nil, err
	}

	return &v1.RegisterVoterReply{
		Voter: convertVoterToWWW(ac.session.Voter()),
	}, nil
}

// handleRegisterVoter handles the voter registration command.
func (p *chunavwww) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	var rv v1.RegisterVoter
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&rv); err != nil {
		RespondWithError(w, r, 0, "handleRegisterVoter: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleRegisterVoter: sessionContext %v", err)
		return
	}

	reply, err := p.processRegisterVoter(r.Context(), ac, rv)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleRegisterVoter: processRegisterVoter %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleCastVote handles the cast vote command.
func (p *chunavwww) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var cv v1.CastVote
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&cv); err != nil {
		RespondWithError(w, r, 0, "handleCastVote: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	candidate, ok := convertWWWAddress(cv.Candidate)
	if !ok {
		RespondWithError(w, r, 0, "handleCastVote: address",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidAddress,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleCastVote: sessionContext %v", err)
		return
	}

	err = ac.dispatcher.Vote(r.Context(), cv.ElectionID, candidate)
	if err != nil {
		RespondWithError(w, r, 0, "handleCastVote: Vote %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.CastVoteReply{
		Voter: convertVoterToWWW(ac.session.Voter()),
	})
}

// processSubmitNomination validates and submits a candidate nomination.
func (p *chunavwww) processSubmitNomination(ctx context.Context, ac *actorContext, sn v1.SubmitNomination) (*v1.SubmitNominationReply, error) {
	switch {
	case len(sn.Name) < v1.PolicyMinNameLength ||
		len(sn.Name) > v1.PolicyMaxNameLength:
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"invalid name length"},
		}
	case len(sn.Bio) > v1.PolicyMaxBioLength:
		return nil, v1.UserError{
			ErrorCode:    v1.ErrorStatusInvalidInput,
			ErrorContext: []string{"bio too long"},
		}
	}

	c, err := ac.dispatcher.Nominate(ctx, sn.ElectionID, sn.Name,
		sn.Party, sn.Symbol, sn.Bio)
	if err != nil {
		return nil, err
	}

	return &v1.SubmitNominationReply{
		Candidate: convertCandidateToWWW(*c),
	}, nil
}

// handleSubmitNomination handles the submit nomination command.
func (p *chunavwww) handleSubmitNomination(w http.ResponseWriter, r *http.Request) {
	var sn v1.SubmitNomination
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&sn); err != nil {
		RespondWithError(w, r, 0, "handleSubmitNomination: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleSubmitNomination: sessionContext %v", err)
		return
	}

	reply, err := p.processSubmitNomination(r.Context(), ac, sn)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleSubmitNomination: processSubmitNomination %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleWithdraw handles the withdraw nomination command.
func (p *chunavwww) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var wd v1.Withdraw
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&wd); err != nil {
		RespondWithError(w, r, 0, "handleWithdraw: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleWithdraw: sessionContext %v", err)
		return
	}

	c, err := ac.dispatcher.Withdraw(r.Context(), wd.ElectionID)
	if err != nil {
		RespondWithError(w, r, 0, "handleWithdraw: Withdraw %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.WithdrawReply{
		Candidate: convertCandidateToWWW(*c),
	})
}
