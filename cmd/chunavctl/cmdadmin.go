// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"net/http"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
)

// cmdPendingVoters lists the voter registrations awaiting a decision.
type cmdPendingVoters struct {
	ElectionID uint64 `long:"electionid" optional:"true" description:"Scope the enumeration to one election (0 means all)"`
}

func (c *cmdPendingVoters) Execute(args []string) error {
	var pr v1.PendingVotersReply
	return client.sendCommand(http.MethodGet, v1.RoutePendingVoters,
		&v1.PendingVoters{
			ElectionID: c.ElectionID,
		}, &pr)
}

// cmdVerifyVoter decides a pending voter registration.
type cmdVerifyVoter struct {
	Args struct {
		Address string `positional-arg-name:"address" required:"true"`
		Status  string `positional-arg-name:"status" required:"true" description:"verified or rejected"`
	} `positional-args:"true"`
}

func (c *cmdVerifyVoter) Execute(args []string) error {
	var vr v1.VerifyVoterReply
	return client.sendCommand(http.MethodPost, v1.RouteVerifyVoter,
		v1.VerifyVoter{
			Address: c.Args.Address,
			Status:  c.Args.Status,
		}, &vr)
}

// cmdPendingCandidates lists the candidate nominations awaiting a decision.
type cmdPendingCandidates struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdPendingCandidates) Execute(args []string) error {
	var pr v1.PendingCandidatesReply
	return client.sendCommand(http.MethodGet, v1.RoutePendingCandidates,
		&v1.PendingCandidates{
			ElectionID: c.Args.ElectionID,
		}, &pr)
}

// cmdVerifyCandidate decides a pending candidate nomination.
type cmdVerifyCandidate struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
		Address    string `positional-arg-name:"address" required:"true"`
		Status     string `positional-arg-name:"status" required:"true" description:"verified or rejected"`
	} `positional-args:"true"`
}

func (c *cmdVerifyCandidate) Execute(args []string) error {
	var vr v1.VerifyCandidateReply
	return client.sendCommand(http.MethodPost, v1.RouteVerifyCandidate,
		v1.VerifyCandidate{
			ElectionID: c.Args.ElectionID,
			Address:    c.Args.Address,
			Status:     c.Args.Status,
		}, &vr)
}

// cmdNewElection creates a new election.
type cmdNewElection struct {
	Args struct {
		Name      string `positional-arg-name:"name" required:"true"`
		StartTime int64  `positional-arg-name:"starttime" required:"true" description:"Unix timestamp"`
		EndTime   int64  `positional-arg-name:"endtime" required:"true" description:"Unix timestamp"`
	} `positional-args:"true"`
	Constituency string `long:"constituency" optional:"true"`
}

func (c *cmdNewElection) Execute(args []string) error {
	var nr v1.NewElectionReply
	return client.sendCommand(http.MethodPost, v1.RouteNewElection,
		v1.NewElection{
			Name:         c.Args.Name,
			StartTime:    c.Args.StartTime,
			EndTime:      c.Args.EndTime,
			Constituency: c.Constituency,
		}, &nr)
}

// cmdEndElection administratively ends an election.
type cmdEndElection struct {
	Args struct {
		ElectionID uint64 `positional-arg-name:"electionid" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdEndElection) Execute(args []string) error {
	var er v1.EndElectionReply
	return client.sendCommand(http.MethodPost, v1.RouteEndElection,
		v1.EndElection{
			ElectionID: c.Args.ElectionID,
		}, &er)
}

// cmdNewAdmin grants an admin role to an address.
type cmdNewAdmin struct {
	Args struct {
		Address string `positional-arg-name:"address" required:"true"`
		Role    string `positional-arg-name:"role" required:"true" description:"Admin role, e.g. 'polling officer'"`
	} `positional-args:"true"`
}

func (c *cmdNewAdmin) Execute(args []string) error {
	var nr v1.NewAdminReply
	return client.sendCommand(http.MethodPost, v1.RouteNewAdmin,
		v1.NewAdmin{
			Address: c.Args.Address,
			Role:    c.Args.Role,
		}, &nr)
}

// cmdNewParty appends a party to the registry.
type cmdNewParty struct {
	Args struct {
		Name   string `positional-arg-name:"name" required:"true"`
		Symbol string `positional-arg-name:"symbol" required:"true"`
	} `positional-args:"true"`
}

func (c *cmdNewParty) Execute(args []string) error {
	var nr v1.NewPartyReply
	return client.sendCommand(http.MethodPost, v1.RouteNewParty,
		v1.NewParty{
			Name:   c.Args.Name,
			Symbol: c.Args.Symbol,
		}, &nr)
}
