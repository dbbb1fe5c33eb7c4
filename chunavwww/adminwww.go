// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
	"github.com/chunav/chunav/util"
)

// processPendingVoters enumerates the registrations awaiting a decision.
// Enumeration is best effort with a fallback chain; when every source
// fails the client is told so explicitly instead of being shown an empty
// queue.
func (p *chunavwww) processPendingVoters(ctx context.Context, pv v1.PendingVoters) (*v1.PendingVotersReply, error) {
	voters, err := p.sync.PendingVoters(ctx, pv.ElectionID)
	if err != nil {
		log.Errorf("processPendingVoters: %v", err)
		return nil, v1.UserError{
			ErrorCode: v1.ErrorStatusEnumerationFailed,
		}
	}

	reply := v1.PendingVotersReply{
		Voters: make([]v1.Voter, 0, len(voters)),
	}
	for _, v := range voters {
		reply.Voters = append(reply.Voters, convertVoterToWWW(v))
	}
	return &reply, nil
}

// handlePendingVoters handles the pending voters command.
func (p *chunavwww) handlePendingVoters(w http.ResponseWriter, r *http.Request) {
	var pv v1.PendingVoters
	err := util.ParseGetParams(r, &pv)
	if err != nil {
		RespondWithError(w, r, 0, "handlePendingVoters: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	reply, err := p.processPendingVoters(r.Context(), pv)
	if err != nil {
		RespondWithError(w, r, 0,
			"handlePendingVoters: processPendingVoters %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleVerifyVoter handles the verify voter command.
func (p *chunavwww) handleVerifyVoter(w http.ResponseWriter, r *http.Request) {
	var vv v1.VerifyVoter
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&vv); err != nil {
		RespondWithError(w, r, 0, "handleVerifyVoter: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	addr, ok := convertWWWAddress(vv.Address)
	if !ok {
		RespondWithError(w, r, 0, "handleVerifyVoter: address",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidAddress,
			})
		return
	}
	status, ok := convertWWWDecisionStatus(vv.Status)
	if !ok {
		RespondWithError(w, r, 0, "handleVerifyVoter: status",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidStatus,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleVerifyVoter: sessionContext %v", err)
		return
	}

	voter, err := ac.dispatcher.DecideVoter(r.Context(), addr, status)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleVerifyVoter: DecideVoter %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.VerifyVoterReply{
		Voter: convertVoterToWWW(*voter),
	})
}

// handlePendingCandidates handles the pending candidates command.
func (p *chunavwww) handlePendingCandidates(w http.ResponseWriter, r *http.Request) {
	var pc v1.PendingCandidates
	err := util.ParseGetParams(r, &pc)
	if err != nil {
		RespondWithError(w, r, 0,
			"handlePendingCandidates: ParseGetParams",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}
	if pc.ElectionID == 0 {
		RespondWithError(w, r, 0, "handlePendingCandidates: id",
			v1.UserError{
				ErrorCode: v1.ErrorStatusElectionNotFound,
			})
		return
	}

	cs, err := p.sync.PendingCandidates(r.Context(), pc.ElectionID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handlePendingCandidates: PendingCandidates %v", err)
		return
	}

	reply := v1.PendingCandidatesReply{
		Candidates: make([]v1.Candidate, 0, len(cs)),
	}
	for _, c := range cs {
		reply.Candidates = append(reply.Candidates,
			convertCandidateToWWW(c))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleVerifyCandidate handles the verify candidate command.
func (p *chunavwww) handleVerifyCandidate(w http.ResponseWriter, r *http.Request) {
	var vc v1.VerifyCandidate
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&vc); err != nil {
		RespondWithError(w, r, 0, "handleVerifyCandidate: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	addr, ok := convertWWWAddress(vc.Address)
	if !ok {
		RespondWithError(w, r, 0, "handleVerifyCandidate: address",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidAddress,
			})
		return
	}
	status, ok := convertWWWDecisionStatus(vc.Status)
	if !ok {
		RespondWithError(w, r, 0, "handleVerifyCandidate: status",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidStatus,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleVerifyCandidate: sessionContext %v", err)
		return
	}

	candidate, err := ac.dispatcher.DecideCandidate(r.Context(),
		vc.ElectionID, addr, status)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleVerifyCandidate: DecideCandidate %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.VerifyCandidateReply{
		Candidate: convertCandidateToWWW(*candidate),
	})
}

// handleNewElection handles the new election command.
func (p *chunavwww) handleNewElection(w http.ResponseWriter, r *http.Request) {
	var ne v1.NewElection
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ne); err != nil {
		RespondWithError(w, r, 0, "handleNewElection: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewElection: sessionContext %v", err)
		return
	}

	elections, err := ac.dispatcher.CreateElection(r.Context(), ne.Name,
		ne.StartTime, ne.EndTime, ne.Constituency)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewElection: CreateElection %v", err)
		return
	}

	now := time.Now()
	reply := v1.NewElectionReply{
		Elections: make([]v1.Election, 0, len(elections)),
	}
	for _, e := range elections {
		reply.Elections = append(reply.Elections,
			convertElectionToWWW(e, now))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}

// handleEndElection handles the end election command.
func (p *chunavwww) handleEndElection(w http.ResponseWriter, r *http.Request) {
	var ee v1.EndElection
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&ee); err != nil {
		RespondWithError(w, r, 0, "handleEndElection: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleEndElection: sessionContext %v", err)
		return
	}

	election, err := ac.dispatcher.EndElection(r.Context(), ee.ElectionID)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleEndElection: EndElection %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.EndElectionReply{
		Election: convertElectionToWWW(*election, time.Now()),
	})
}

// handleNewAdmin handles the new admin command.
func (p *chunavwww) handleNewAdmin(w http.ResponseWriter, r *http.Request) {
	var na v1.NewAdmin
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&na); err != nil {
		RespondWithError(w, r, 0, "handleNewAdmin: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	addr, ok := convertWWWAddress(na.Address)
	if !ok {
		RespondWithError(w, r, 0, "handleNewAdmin: address",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidAddress,
			})
		return
	}
	role, ok := convertWWWRole(na.Role)
	if !ok {
		RespondWithError(w, r, 0, "handleNewAdmin: role",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidRole,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewAdmin: sessionContext %v", err)
		return
	}

	admin, err := ac.dispatcher.GrantRole(r.Context(), addr, role)
	if err != nil {
		RespondWithError(w, r, 0, "handleNewAdmin: GrantRole %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.NewAdminReply{
		Address:    addr.Hex(),
		Role:       admin.Role.String(),
		RoleActive: admin.Active,
	})
}

// handleNewParty handles the new party command.
func (p *chunavwww) handleNewParty(w http.ResponseWriter, r *http.Request) {
	var np v1.NewParty
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&np); err != nil {
		RespondWithError(w, r, 0, "handleNewParty: unmarshal",
			v1.UserError{
				ErrorCode: v1.ErrorStatusInvalidInput,
			})
		return
	}

	ac, err := p.sessionContext(w, r)
	if err != nil {
		RespondWithError(w, r, 0,
			"handleNewParty: sessionContext %v", err)
		return
	}

	parties, err := ac.dispatcher.AddParty(r.Context(), np.Name, np.Symbol)
	if err != nil {
		RespondWithError(w, r, 0, "handleNewParty: AddParty %v", err)
		return
	}

	reply := v1.NewPartyReply{
		Parties: make([]v1.Party, 0, len(parties)),
	}
	for _, party := range parties {
		reply.Parties = append(reply.Parties, convertPartyToWWW(party))
	}

	util.RespondWithJSON(w, http.StatusOK, reply)
}
