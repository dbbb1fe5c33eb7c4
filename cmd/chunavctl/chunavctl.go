// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
)

var (
	// Global variables for chunavctl commands
	cfg    *config
	client *wwwClient
)

type chunavctl struct {
	// This is here to prevent parsing errors caused by config flags.
	Config config

	// Basic commands
	Version cmdVersion `command:"version"`
	Policy  cmdPolicy  `command:"policy"`

	// Session commands
	Connect    cmdConnect    `command:"connect"`
	Disconnect cmdDisconnect `command:"disconnect"`
	Me         cmdMe         `command:"me"`

	// Election commands
	Elections       cmdElections       `command:"elections"`
	ElectionDetails cmdElectionDetails `command:"electiondetails"`
	ElectionResults cmdElectionResults `command:"electionresults"`
	Candidates      cmdCandidates      `command:"candidates"`
	Ballot          cmdBallot          `command:"ballot"`
	Parties         cmdParties         `command:"parties"`

	// Voter commands
	IdentityPrecheck  cmdIdentityPrecheck  `command:"identityprecheck"`
	IdentityChallenge cmdIdentityChallenge `command:"identitychallenge"`
	IdentityVerify    cmdIdentityVerify    `command:"identityverify"`
	RegisterVoter     cmdRegisterVoter     `command:"registervoter"`
	CastVote          cmdCastVote          `command:"castvote"`

	// Candidate commands
	SubmitNomination cmdSubmitNomination `command:"submitnomination"`
	Withdraw         cmdWithdraw         `command:"withdraw"`

	// Admin commands
	PendingVoters     cmdPendingVoters     `command:"pendingvoters"`
	VerifyVoter       cmdVerifyVoter       `command:"verifyvoter"`
	PendingCandidates cmdPendingCandidates `command:"pendingcandidates"`
	VerifyCandidate   cmdVerifyCandidate   `command:"verifycandidate"`
	NewElection       cmdNewElection       `command:"newelection"`
	EndElection       cmdEndElection       `command:"endelection"`
	NewAdmin          cmdNewAdmin          `command:"newadmin"`
	NewParty          cmdNewParty          `command:"newparty"`
}

const helpMsg = `Application Options:
      --appdata=    Path to application home directory
      --host=       chunavwww host
  -j, --json        Print raw JSON output
  -v, --verbose     Print verbose output

Basic commands
  version                 (public)  Get chunavwww server version
  policy                  (public)  Get chunavwww server policy

Session commands
  connect                 (public)  Bind the session to a wallet address
  disconnect              (session) Clear the session
  me                      (session) Re-sync and print the actor's state

Election commands
  elections               (public)  List all elections
  electiondetails         (public)  Get a single election
  electionresults         (public)  Get the tally for an election
  candidates              (public)  List nominations for an election
  ballot                  (public)  List verified candidates
  parties                 (public)  List the party registry

Voter commands
  identityprecheck        (session) Check an identity ID and name
  identitychallenge       (session) Request a challenge code delivery
  identityverify          (session) Redeem a challenge code for a token
  registervoter           (session) Submit a voter registration
  castvote                (session) Cast a vote for a candidate

Candidate commands
  submitnomination        (session) Submit a candidate nomination
  withdraw                (session) Withdraw a nomination

Admin commands
  pendingvoters           (officer) List pending voter registrations
  verifyvoter             (officer) Decide a pending registration
  pendingcandidates       (officer) List pending nominations
  verifycandidate         (officer) Decide a pending nomination
  newelection             (admin)   Create an election
  endelection             (admin)   End an election
  newadmin                (admin)   Grant an admin role
  newparty                (admin)   Add a party to the registry
`

func _main() error {
	// Load config. The config variable is a global variable.
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %v", err)
	}

	// Load client. The client variable is a global variable.
	client, err = newClient(cfg)
	if err != nil {
		return fmt.Errorf("load client: %v", err)
	}

	// Check for a help flag. This is done separately so that we can
	// print our own custom help message.
	var opts flags.Options = flags.HelpFlag | flags.IgnoreUnknown |
		flags.PassDoubleDash
	parser := flags.NewParser(&struct{}{}, opts)
	_, err = parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Printf("%v\n", helpMsg)
			os.Exit(0)
		}
		return fmt.Errorf("parse help flag: %v", err)
	}

	// Parse CLI args and execute command
	parser = flags.NewParser(&chunavctl{Config: *cfg}, flags.Default)
	_, err = parser.Parse()
	if err != nil {
		// An error has occurred during command execution. go-flags
		// will have already printed the error to os.Stdout. Exit with
		// an error code.
		os.Exit(1)
	}

	return nil
}

func main() {
	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
