// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger"
	"github.com/chunav/chunav/ledger/ethledger"
	"github.com/chunav/chunav/ledger/testledger"
	"github.com/chunav/chunav/workflow"
)

var (
	testVoterAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testOfficerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")

	testEntry = identity.Entry{
		IdentityID: "123456789012",
		Name:       "Aasha Patel",
		Mobile:     "+911234567890",
		Email:      "aasha@example.com",
	}
)

// newTestChunavwww returns a server over an in memory ledger and identity
// table.
func newTestChunavwww(t *testing.T, tl *testledger.TestLedger) *chunavwww {
	t.Helper()

	log = slog.Disabled
	workflow.UseLogger(slog.Disabled)
	ethledger.UseLogger(slog.Disabled)
	identity.UseLogger(slog.Disabled)

	store, err := initSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("initSessionStore: %v", err)
	}

	lookup := identity.NewLookup([]identity.Entry{testEntry})
	return newChunavwww(&config{}, tl, lookup, store)
}

// newTestClient returns an HTTP client with its own cookie jar, i.e. its
// own browser session.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, server, route string, body, reply interface{}) (int, int64) {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal %v: %v", route, err)
	}
	r, err := c.Post(server+v1.ChunavWWWAPIRoute+route,
		"application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %v: %v", route, err)
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		var er v1.ErrorReply
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			t.Fatalf("decode error reply %v: %v", route, err)
		}
		return r.StatusCode, er.ErrorCode
	}

	if reply != nil {
		if err := json.NewDecoder(r.Body).Decode(reply); err != nil {
			t.Fatalf("decode reply %v: %v", route, err)
		}
	}
	return r.StatusCode, 0
}

func getJSON(t *testing.T, c *http.Client, server, route string, reply interface{}) (int, int64) {
	t.Helper()

	r, err := c.Get(server + v1.ChunavWWWAPIRoute + route)
	if err != nil {
		t.Fatalf("get %v: %v", route, err)
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		var er v1.ErrorReply
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			t.Fatalf("decode error reply %v: %v", route, err)
		}
		return r.StatusCode, er.ErrorCode
	}

	if reply != nil {
		if err := json.NewDecoder(r.Body).Decode(reply); err != nil {
			t.Fatalf("decode reply %v: %v", route, err)
		}
	}
	return r.StatusCode, 0
}

// actorContextOf digs out the single actor context a client has on the
// server. Needed to pull the challenge code, which is delivered out of
// band in production.
func actorContextOf(t *testing.T, p *chunavwww) *actorContext {
	t.Helper()
	p.RLock()
	defer p.RUnlock()
	if len(p.contexts) != 1 {
		t.Fatalf("got %v actor contexts, want 1", len(p.contexts))
	}
	for _, ac := range p.contexts {
		return ac
	}
	return nil
}

func TestRegistrationFlow(t *testing.T) {
	now := time.Now().Unix()
	tl := testledger.New()
	tl.AddElection(ledger.Election{
		ID:        1,
		Name:      "General Election 2026",
		StartTime: now - 100,
		EndTime:   now + 3600,
		Active:    true,
	})
	tl.SetAdmin(testOfficerAddr, ledger.RolePollingOfficer, true)

	p := newTestChunavwww(t, tl)
	srv := httptest.NewServer(p.router)
	defer srv.Close()

	voter := newTestClient(t)

	// Registration actions require a connected wallet.
	code, ec := postJSON(t, voter, srv.URL, v1.RouteIdentityPrecheck,
		v1.IdentityPrecheck{}, nil)
	if code != http.StatusUnauthorized ||
		ec != int64(v1.ErrorStatusNotConnected) {
		t.Fatalf("disconnected precheck: got %v/%v, want %v/%v",
			code, ec, http.StatusUnauthorized,
			v1.ErrorStatusNotConnected)
	}

	// Connect.
	var cr v1.ConnectReply
	code, ec = postJSON(t, voter, srv.URL, v1.RouteConnect,
		v1.Connect{Address: testVoterAddr.Hex()}, &cr)
	if code != http.StatusOK {
		t.Fatalf("connect: got %v/%v", code, ec)
	}
	if cr.Voter.Status != "none" {
		t.Fatalf("connect voter status: got %v, want none",
			cr.Voter.Status)
	}

	// Identity pre-check.
	var pr v1.IdentityPrecheckReply
	code, _ = postJSON(t, voter, srv.URL, v1.RouteIdentityPrecheck,
		v1.IdentityPrecheck{
			IdentityID: testEntry.IdentityID,
			Name:       testEntry.Name,
		}, &pr)
	if code != http.StatusOK || pr.Match != "matched" {
		t.Fatalf("precheck: got %v %q", code, pr.Match)
	}

	// A mismatched name is reported through the match result, not an
	// error.
	code, _ = postJSON(t, voter, srv.URL, v1.RouteIdentityPrecheck,
		v1.IdentityPrecheck{
			IdentityID: testEntry.IdentityID,
			Name:       "Someone Else",
		}, &pr)
	if code != http.StatusOK || pr.Match != "name mismatch" {
		t.Fatalf("precheck mismatch: got %v %q", code, pr.Match)
	}

	// Registering without a challenge token must fail.
	code, ec = postJSON(t, voter, srv.URL, v1.RouteRegisterVoter,
		v1.RegisterVoter{Token: "bogus", ElectionID: 1}, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusAuthTokenInvalid) {
		t.Fatalf("register without token: got %v/%v", code, ec)
	}

	// Request the challenge. The code travels out of band so it is
	// pulled straight from the gate here.
	var chr v1.IdentityChallengeReply
	code, ec = postJSON(t, voter, srv.URL, v1.RouteIdentityChallenge,
		v1.IdentityChallenge{
			IdentityID: testEntry.IdentityID,
			Name:       testEntry.Name,
			Channel:    "mobile",
		}, &chr)
	if code != http.StatusOK {
		t.Fatalf("challenge: got %v/%v", code, ec)
	}
	if chr.Destination == "" {
		t.Fatal("challenge: empty destination")
	}

	ac := actorContextOf(t, p)
	delivery, err := ac.gate.IssueChallenge(testEntry,
		identity.ChannelMobile)
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	// A wrong code is rejected and the challenge stays outstanding.
	code, ec = postJSON(t, voter, srv.URL, v1.RouteIdentityVerify,
		v1.IdentityVerify{Code: "000000"}, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusChallengeMismatch) {
		t.Fatalf("verify wrong code: got %v/%v", code, ec)
	}

	var vr v1.IdentityVerifyReply
	code, ec = postJSON(t, voter, srv.URL, v1.RouteIdentityVerify,
		v1.IdentityVerify{Code: delivery.Code}, &vr)
	if code != http.StatusOK {
		t.Fatalf("verify: got %v/%v", code, ec)
	}
	if vr.Token == "" {
		t.Fatal("verify: empty token")
	}

	// Register.
	var rr v1.RegisterVoterReply
	code, ec = postJSON(t, voter, srv.URL, v1.RouteRegisterVoter,
		v1.RegisterVoter{Token: vr.Token, ElectionID: 1}, &rr)
	if code != http.StatusOK {
		t.Fatalf("register: got %v/%v", code, ec)
	}
	if rr.Voter.Status != "pending" {
		t.Fatalf("register voter status: got %v, want pending",
			rr.Voter.Status)
	}

	// The token is one time use.
	code, ec = postJSON(t, voter, srv.URL, v1.RouteRegisterVoter,
		v1.RegisterVoter{Token: vr.Token, ElectionID: 1}, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusAuthTokenInvalid) {
		t.Fatalf("register token reuse: got %v/%v", code, ec)
	}

	// Voting while pending is refused.
	code, ec = postJSON(t, voter, srv.URL, v1.RouteCastVote,
		v1.CastVote{
			ElectionID: 1,
			Candidate:  testOfficerAddr.Hex(),
		}, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusInvalidInput) {
		t.Fatalf("vote while pending: got %v/%v", code, ec)
	}

	// The polling officer verifies the registration from its own
	// browser session.
	officer := newTestClient(t)
	code, ec = postJSON(t, officer, srv.URL, v1.RouteConnect,
		v1.Connect{Address: testOfficerAddr.Hex()}, nil)
	if code != http.StatusOK {
		t.Fatalf("officer connect: got %v/%v", code, ec)
	}

	var pvr v1.PendingVotersReply
	code, ec = getJSON(t, officer, srv.URL,
		v1.RoutePendingVoters+"?electionid=1", &pvr)
	if code != http.StatusOK {
		t.Fatalf("pending voters: got %v/%v", code, ec)
	}
	if len(pvr.Voters) != 1 || pvr.Voters[0].Address != testVoterAddr.Hex() {
		t.Fatalf("pending voters: got %+v", pvr.Voters)
	}

	var vvr v1.VerifyVoterReply
	code, ec = postJSON(t, officer, srv.URL, v1.RouteVerifyVoter,
		v1.VerifyVoter{
			Address: testVoterAddr.Hex(),
			Status:  "verified",
		}, &vvr)
	if code != http.StatusOK {
		t.Fatalf("verify voter: got %v/%v", code, ec)
	}
	if vvr.Voter.Status != "verified" {
		t.Fatalf("verify voter status: got %v", vvr.Voter.Status)
	}

	// The voter sees the new status on the next explicit re-sync.
	var mr v1.MeReply
	code, ec = getJSON(t, voter, srv.URL, v1.RouteMe+"?electionid=1", &mr)
	if code != http.StatusOK {
		t.Fatalf("me: got %v/%v", code, ec)
	}
	if mr.Voter.Status != "verified" {
		t.Fatalf("me voter status: got %v, want verified",
			mr.Voter.Status)
	}
}

func TestConnectValidation(t *testing.T) {
	tl := testledger.New()
	p := newTestChunavwww(t, tl)
	srv := httptest.NewServer(p.router)
	defer srv.Close()

	c := newTestClient(t)
	code, ec := postJSON(t, c, srv.URL, v1.RouteConnect,
		v1.Connect{Address: "not an address"}, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusInvalidAddress) {
		t.Fatalf("bad address: got %v/%v", code, ec)
	}
}

func TestVoteFlow(t *testing.T) {
	now := time.Now().Unix()
	tl := testledger.New()
	tl.AddElection(ledger.Election{
		ID:        1,
		Name:      "General Election 2026",
		StartTime: now - 100,
		EndTime:   now + 3600,
		Active:    true,
	})
	candidateAddr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	tl.SetCandidate(ledger.Candidate{
		Address:    candidateAddr,
		ElectionID: 1,
		Name:       "Nila Devi",
		Party:      "Unity",
		Status:     ledger.StatusVerified,
	})
	tl.SetVoter(ledger.Voter{
		Address:    testVoterAddr,
		Name:       testEntry.Name,
		ElectionID: 1,
		Status:     ledger.StatusVerified,
	})

	p := newTestChunavwww(t, tl)
	srv := httptest.NewServer(p.router)
	defer srv.Close()

	c := newTestClient(t)
	var cr v1.ConnectReply
	code, ec := postJSON(t, c, srv.URL, v1.RouteConnect,
		v1.Connect{Address: testVoterAddr.Hex()}, &cr)
	if code != http.StatusOK {
		t.Fatalf("connect: got %v/%v", code, ec)
	}

	var cvr v1.CastVoteReply
	code, ec = postJSON(t, c, srv.URL, v1.RouteCastVote,
		v1.CastVote{
			ElectionID: 1,
			Candidate:  candidateAddr.Hex(),
		}, &cvr)
	if code != http.StatusOK {
		t.Fatalf("vote: got %v/%v", code, ec)
	}
	if !cvr.Voter.HasVoted {
		t.Fatal("vote: voter not marked as having voted")
	}

	// Double voting is refused before it reaches the ledger.
	code, ec = postJSON(t, c, srv.URL, v1.RouteCastVote,
		v1.CastVote{
			ElectionID: 1,
			Candidate:  candidateAddr.Hex(),
		}, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusInvalidInput) {
		t.Fatalf("double vote: got %v/%v", code, ec)
	}

	// The tally shows up on the public results route.
	var rr v1.ElectionResultsReply
	code, ec = getJSON(t, c, srv.URL, "/election/1/results", &rr)
	if code != http.StatusOK {
		t.Fatalf("results: got %v/%v", code, ec)
	}
	want := []v1.Candidate{
		{
			Address:    candidateAddr.Hex(),
			ElectionID: 1,
			Name:       "Nila Devi",
			Party:      "Unity",
			Votes:      1,
			Status:     "verified",
		},
	}
	if diff := cmp.Diff(want, rr.Candidates); diff != "" {
		t.Fatalf("results (-want +got):\n%v", diff)
	}
}

func TestPendingVotersEnumerationFailure(t *testing.T) {
	tl := testledger.New()
	tl.FailPendingVoters = errors.New("node down")
	tl.ScanUnsupported = true
	tl.SetAdmin(testOfficerAddr, ledger.RolePollingOfficer, true)

	p := newTestChunavwww(t, tl)
	srv := httptest.NewServer(p.router)
	defer srv.Close()

	c := newTestClient(t)
	code, ec := postJSON(t, c, srv.URL, v1.RouteConnect,
		v1.Connect{Address: testOfficerAddr.Hex()}, nil)
	if code != http.StatusOK {
		t.Fatalf("connect: got %v/%v", code, ec)
	}

	// Every enumeration source is down. The client must be told rather
	// than shown an empty queue.
	code, ec = getJSON(t, c, srv.URL, v1.RoutePendingVoters, nil)
	if code != http.StatusBadRequest ||
		ec != int64(v1.ErrorStatusEnumerationFailed) {
		t.Fatalf("pending voters: got %v/%v", code, ec)
	}
}
