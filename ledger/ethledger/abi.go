// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ethledger

// contractABI describes the election contract surface that this client
// uses. Names and shapes must match the deployed contract exactly.
const contractABI = `[
  {
    "type": "function",
    "name": "electionCount",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "getElectionDetails",
    "stateMutability": "view",
    "inputs": [{"name": "_electionId", "type": "uint256"}],
    "outputs": [
      {
        "name": "",
        "type": "tuple",
        "components": [
          {"name": "name", "type": "string"},
          {"name": "startTime", "type": "uint256"},
          {"name": "endTime", "type": "uint256"},
          {"name": "constituency", "type": "string"},
          {"name": "totalVotes", "type": "uint256"},
          {"name": "active", "type": "bool"}
        ]
      }
    ]
  },
  {
    "type": "function",
    "name": "getElectionStats",
    "stateMutability": "view",
    "inputs": [{"name": "_electionId", "type": "uint256"}],
    "outputs": [
      {"name": "totalVotes", "type": "uint256"},
      {"name": "candidateCount", "type": "uint256"}
    ]
  },
  {
    "type": "function",
    "name": "getElectionCandidates",
    "stateMutability": "view",
    "inputs": [{"name": "_electionId", "type": "uint256"}],
    "outputs": [
      {"name": "candidates", "type": "address[]"},
      {
        "name": "details",
        "type": "tuple[]",
        "components": [
          {"name": "name", "type": "string"},
          {"name": "party", "type": "string"},
          {"name": "votes", "type": "uint256"},
          {"name": "status", "type": "uint8"},
          {"name": "bio", "type": "string"}
        ]
      }
    ]
  },
  {
    "type": "function",
    "name": "getVoterStatus",
    "stateMutability": "view",
    "inputs": [{"name": "_voter", "type": "address"}],
    "outputs": [
      {
        "name": "",
        "type": "tuple",
        "components": [
          {"name": "name", "type": "string"},
          {"name": "identityRef", "type": "string"},
          {"name": "hasVoted", "type": "bool"},
          {"name": "electionId", "type": "uint256"},
          {"name": "status", "type": "uint8"}
        ]
      }
    ]
  },
  {
    "type": "function",
    "name": "getCandidateProfile",
    "stateMutability": "view",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_candidate", "type": "address"}
    ],
    "outputs": [
      {
        "name": "",
        "type": "tuple",
        "components": [
          {"name": "name", "type": "string"},
          {"name": "party", "type": "string"},
          {"name": "votes", "type": "uint256"},
          {"name": "status", "type": "uint8"},
          {"name": "bio", "type": "string"}
        ]
      }
    ]
  },
  {
    "type": "function",
    "name": "admins",
    "stateMutability": "view",
    "inputs": [{"name": "", "type": "address"}],
    "outputs": [
      {"name": "role", "type": "uint8"},
      {"name": "active", "type": "bool"}
    ]
  },
  {
    "type": "function",
    "name": "getParties",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [
      {"name": "names", "type": "string[]"},
      {"name": "symbols", "type": "string[]"}
    ]
  },
  {
    "type": "function",
    "name": "getPendingVoters",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [
      {"name": "addr", "type": "address[]"},
      {"name": "names", "type": "string[]"},
      {"name": "identityRefs", "type": "string[]"},
      {"name": "eids", "type": "uint256[]"}
    ]
  },
  {
    "type": "function",
    "name": "registerVoter",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_name", "type": "string"},
      {"name": "_identityRef", "type": "string"},
      {"name": "_electionId", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "castVote",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_candidate", "type": "address"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "submitNomination",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_name", "type": "string"},
      {"name": "_partyName", "type": "string"},
      {"name": "_partySymbol", "type": "string"},
      {"name": "_bio", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "withdrawNomination",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "_electionId", "type": "uint256"}],
    "outputs": []
  },
  {
    "type": "function",
    "name": "createElection",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_name", "type": "string"},
      {"name": "_startTime", "type": "uint256"},
      {"name": "_endTime", "type": "uint256"},
      {"name": "_constituency", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "endElection",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "_electionId", "type": "uint256"}],
    "outputs": []
  },
  {
    "type": "function",
    "name": "addAdmin",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_admin", "type": "address"},
      {"name": "_role", "type": "uint8"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "verifyVoter",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_voter", "type": "address"},
      {"name": "_status", "type": "uint8"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "verifyCandidate",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_electionId", "type": "uint256"},
      {"name": "_candidate", "type": "address"},
      {"name": "_status", "type": "uint8"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "addParty",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_name", "type": "string"},
      {"name": "_symbol", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "event",
    "name": "VoterRegistered",
    "anonymous": false,
    "inputs": [
      {"name": "voter", "type": "address", "indexed": true},
      {"name": "name", "type": "string", "indexed": false},
      {"name": "electionId", "type": "uint256", "indexed": false}
    ]
  }
]`
