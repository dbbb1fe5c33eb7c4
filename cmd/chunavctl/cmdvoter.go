// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
)

// cmdVersion gets the server version.
type cmdVersion struct{}

func (c *cmdVersion) Execute(args []string) error {
	var vr v1.VersionReply
	return client.sendCommand(http.MethodGet, v1.RouteVersion, nil, &vr)
}

// cmdPolicy gets the server policy.
type cmdPolicy struct{}

func (c *cmdPolicy) Execute(args []string) error {
	var pr v1.PolicyReply
	return client.sendCommand(http.MethodGet, v1.RoutePolicy, nil, &pr)
}

// cmdConnect binds the session to a wallet address.
type cmdConnect struct {
	Args struct {
		Address string `positional-arg-name:"address" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdConnect) Execute(args []string) error {
	var cr v1.ConnectReply
	err := client.sendCommand(http.MethodPost, v1.RouteConnect,
		v1.Connect{
			Address: c.Args.Address,
		}, &cr)
	if err != nil {
		return err
	}
	return client.saveSession()
}

// cmdDisconnect clears the session.
type cmdDisconnect struct{}

func (c *cmdDisconnect) Execute(args []string) error {
	err := client.sendCommand(http.MethodPost, v1.RouteDisconnect,
		v1.Disconnect{}, &v1.DisconnectReply{})
	if err != nil {
		return err
	}
	return client.saveSession()
}

// cmdMe re-syncs and prints the connected actor's state.
type cmdMe struct {
	ElectionID uint64 `long:"electionid" optional:"true"`
}

func (c *cmdMe) Execute(args []string) error {
	var mr v1.MeReply
	return client.sendCommand(http.MethodGet, v1.RouteMe,
		&v1.Me{
			ElectionID: c.ElectionID,
		}, &mr)
}

// cmdElections lists all elections.
type cmdElections struct{}

func (c *cmdElections) Execute(args []string) error {
	var er v1.ElectionsReply
	return client.sendCommand(http.MethodGet, v1.RouteElections, nil, &er)
}

// cmdElectionDetails gets a single election.
type cmdElectionDetails struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdElectionDetails) Execute(args []string) error {
	var er v1.ElectionDetailsReply
	route := fmt.Sprintf("/election/%v", c.Args.ElectionID)
	return client.sendCommand(http.MethodGet, route, nil, &er)
}

// cmdElectionResults gets the tally for an election.
type cmdElectionResults struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdElectionResults) Execute(args []string) error {
	var er v1.ElectionResultsReply
	route := fmt.Sprintf("/election/%v/results", c.Args.ElectionID)
	return client.sendCommand(http.MethodGet, route, nil, &er)
}

// cmdCandidates lists the candidate nominations for an election.
type cmdCandidates struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdCandidates) Execute(args []string) error {
	var cr v1.CandidatesReply
	route := fmt.Sprintf("/election/%v/candidates", c.Args.ElectionID)
	return client.sendCommand(http.MethodGet, route, nil, &cr)
}

// cmdBallot lists the verified candidates for an election.
type cmdBallot struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdBallot) Execute(args []string) error {
	var br v1.BallotReply
	route := fmt.Sprintf("/election/%v/ballot", c.Args.ElectionID)
	return client.sendCommand(http.MethodGet, route, nil, &br)
}

// cmdParties lists the political party registry.
type cmdParties struct{}

func (c *cmdParties) Execute(args []string) error {
	var pr v1.PartiesReply
	return client.sendCommand(http.MethodGet, v1.RouteParties, nil, &pr)
}

// cmdIdentityPrecheck checks an identity ID and name against the identity
// registry.
type cmdIdentityPrecheck struct {
	Args struct {
		IdentityID string `positional-arg-name:"identityid" required:"true"`
		Name       string `positional-arg-name:"name" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdIdentityPrecheck) Execute(args []string) error {
	var pr v1.IdentityPrecheckReply
	return client.sendCommand(http.MethodPost, v1.RouteIdentityPrecheck,
		v1.IdentityPrecheck{
			IdentityID: c.Args.IdentityID,
			Name:       c.Args.Name,
		}, &pr)
}

// cmdIdentityChallenge requests a challenge code delivery.
type cmdIdentityChallenge struct {
	Args struct {
		IdentityID string `positional-arg-name:"identityid" required:"true"`
		Name       string `positional-arg-name:"name" required:"true"`
	} `positional-args:"true"`
	Channel string `long:"channel" default:"mobile" description:"Delivery channel (mobile or email)"`
}

func (c *cmdIdentityChallenge) Execute(args []string) error {
	var cr v1.IdentityChallengeReply
	return client.sendCommand(http.MethodPost, v1.RouteIdentityChallenge,
		v1.IdentityChallenge{
			IdentityID: c.Args.IdentityID,
			Name:       c.Args.Name,
			Channel:    c.Channel,
		}, &cr)
}

// cmdIdentityVerify redeems a delivered challenge code for a registration
// token.
type cmdIdentityVerify struct {
	Args struct {
		Code string `positional-arg-name:"code" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdIdentityVerify) Execute(args []string) error {
	var vr v1.IdentityVerifyReply
	return client.sendCommand(http.MethodPost, v1.RouteIdentityVerify,
		v1.IdentityVerify{
			Code: c.Args.Code,
		}, &vr)
}

// cmdRegisterVoter submits a voter registration.
type cmdRegisterVoter struct {
	Args struct {
		Token      string `positional-arg-name:"token" required:"true"`
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdRegisterVoter) Execute(args []string) error {
	var rr v1.RegisterVoterReply
	return client.sendCommand(http.MethodPost, v1.RouteRegisterVoter,
		v1.RegisterVoter{
			Token:      c.Args.Token,
			ElectionID: c.Args.ElectionID,
		}, &rr)
}

// cmdCastVote casts a vote for a candidate.
type cmdCastVote struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
		Candidate  string `positional-arg-name:"candidate" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdCastVote) Execute(args []string) error {
	var vr v1.CastVoteReply
	return client.sendCommand(http.MethodPost, v1.RouteCastVote,
		v1.CastVote{
			ElectionID: c.Args.ElectionID,
			Candidate:  c.Args.Candidate,
		}, &vr)
}

// cmdSubmitNomination submits a candidate nomination.
type cmdSubmitNomination struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
		Name       string `positional-arg-name:"name" required:"true"`
		Party      string `positional-arg-name:"party" required:"true"`
	} `positional-args:"true"`
	Symbol string `long:"symbol" optional:"true"`
	Bio    string `long:"bio" optional:"true"`
}

func (c *cmdSubmitNomination) Execute(args []string) error {
	var nr v1.SubmitNominationReply
	return client.sendCommand(http.MethodPost, v1.RouteSubmitNomination,
		v1.SubmitNomination{
			ElectionID: c.Args.ElectionID,
			Name:       c.Args.Name,
			Party:      c.Args.Party,
			Symbol:     c.Symbol,
			Bio:        c.Bio,
		}, &nr)
}

// cmdWithdraw withdraws the connected actor's nomination.
type cmdWithdraw struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdWithdraw) Execute(args []string) error {
	var wr v1.WithdrawReply
	return client.sendCommand(http.MethodPost, v1.RouteWithdraw,
		v1.Withdraw{
			ElectionID: c.Args.ElectionID,
		}, &wr)
}
