// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ethledger implements the ledger.Ledger interface against an
// election contract deployed on an EVM chain. Reads are eth_call round
// trips; writes are signed transactions that are submitted and then awaited
// until mined. A reverted call or transaction is surfaced as a
// ledger.GuardError carrying the contract's revert reason, every other
// failure as a ledger.TransportError.
package ethledger

import (
	"context"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/chunav/chunav/ledger"
)

// rawElection mirrors the contract's election details tuple.
type rawElection struct {
	Name         string
	StartTime    *big.Int
	EndTime      *big.Int
	Constituency string
	TotalVotes   *big.Int
	Active       bool
}

// rawCandidate mirrors the contract's candidate details tuple.
type rawCandidate struct {
	Name   string
	Party  string
	Votes  *big.Int
	Status uint8
	Bio    string
}

// rawVoter mirrors the contract's voter record tuple.
type rawVoter struct {
	Name        string
	IdentityRef string
	HasVoted    bool
	ElectionId  *big.Int
	Status      uint8
}

// EthLedger is a ledger.Ledger backed by an election contract on an EVM
// chain.
type EthLedger struct {
	client     *ethclient.Client
	contract   *bind.BoundContract
	abi        abi.ABI
	address    common.Address
	chainID    *big.Int
	keystore   *keystore.KeyStore
	passphrase string
	fromBlock  uint64
}

// Opts configures an EthLedger.
type Opts struct {
	// RPCHost is the JSON-RPC endpoint of the chain node.
	RPCHost string

	// ContractAddress is the deployed election contract.
	ContractAddress common.Address

	// ChainID is the chain the contract lives on.
	ChainID int64

	// KeystoreDir holds the encrypted actor keys used to sign
	// transactions. It may be empty for a read only client; writes will
	// fail.
	KeystoreDir string

	// Passphrase decrypts the keystore keys.
	Passphrase string

	// DeployBlock is the block the contract was deployed in. Event
	// scans start here.
	DeployBlock uint64
}

// New dials the chain node and returns an EthLedger.
func New(ctx context.Context, opts Opts) (*EthLedger, error) {
	client, err := ethclient.DialContext(ctx, opts.RPCHost)
	if err != nil {
		return nil, errors.WithMessagef(err, "dial %v", opts.RPCHost)
	}

	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, errors.WithMessage(err, "parse contract abi")
	}

	var ks *keystore.KeyStore
	if opts.KeystoreDir != "" {
		ks = keystore.NewKeyStore(opts.KeystoreDir,
			keystore.StandardScryptN, keystore.StandardScryptP)
		log.Infof("Keystore %v: %v accounts", opts.KeystoreDir,
			len(ks.Accounts()))
	}

	log.Infof("Election contract %v on chain %v via %v",
		opts.ContractAddress.Hex(), opts.ChainID, opts.RPCHost)

	return &EthLedger{
		client: client,
		contract: bind.NewBoundContract(opts.ContractAddress, parsed,
			client, client, client),
		abi:        parsed,
		address:    opts.ContractAddress,
		chainID:    big.NewInt(opts.ChainID),
		keystore:   ks,
		passphrase: opts.Passphrase,
		fromBlock:  opts.DeployBlock,
	}, nil
}

// Close shuts down the chain node connection.
func (e *EthLedger) Close() {
	e.client.Close()
}

// revertReason extracts the contract revert reason from an RPC error, if
// one is carried.
func revertReason(err error) (string, bool) {
	type dataError interface {
		ErrorData() interface{}
	}
	var de dataError
	if errors.As(err, &de) {
		if hexData, ok := de.ErrorData().(string); ok {
			data := common.FromHex(hexData)
			if reason, uerr := abi.UnpackRevert(data); uerr == nil {
				return reason, true
			}
		}
	}

	// Some nodes inline the reason into the error string.
	const prefix = "execution reverted"
	s := err.Error()
	if i := strings.Index(s, prefix); i != -1 {
		reason := strings.TrimPrefix(s[i+len(prefix):], ": ")
		return strings.TrimSpace(reason), true
	}
	return "", false
}

// call performs an eth_call against the contract.
func (e *EthLedger) call(ctx context.Context, op string, out *[]interface{}, args ...interface{}) error {
	err := e.contract.Call(&bind.CallOpts{Context: ctx}, out, op, args...)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return ledger.GuardError{Op: op, Reason: reason}
		}
		return ledger.TransportError{Op: op, Err: err}
	}
	return nil
}

// transactor builds signing options for the actor. The actor's key must be
// present in the keystore.
func (e *EthLedger) transactor(ctx context.Context, actor common.Address) (*bind.TransactOpts, error) {
	if e.keystore == nil {
		return nil, errors.New("no keystore configured")
	}
	account, err := e.keystore.Find(accounts.Account{Address: actor})
	if err != nil {
		return nil, errors.WithMessagef(err, "no key for %v",
			actor.Hex())
	}
	return &bind.TransactOpts{
		From:    actor,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != actor {
				return nil, bind.ErrNotAuthorized
			}
			return e.keystore.SignTxWithPassphrase(account,
				e.passphrase, tx, e.chainID)
		},
	}, nil
}

// write submits a signed transaction and waits for it to be mined. The
// returned error classifies the failure: a revert, whether caught during
// gas estimation or after mining, is a GuardError; everything else is a
// TransportError whose Submitted flag reports whether the transaction made
// it onto the network.
func (e *EthLedger) write(ctx context.Context, actor common.Address, op string, args ...interface{}) error {
	opts, err := e.transactor(ctx, actor)
	if err != nil {
		return ledger.TransportError{Op: op, Err: err}
	}

	tx, err := e.contract.Transact(opts, op, args...)
	if err != nil {
		// Guards fire during gas estimation, before anything is
		// broadcast.
		if reason, ok := revertReason(err); ok {
			return ledger.GuardError{Op: op, Reason: reason}
		}
		return ledger.TransportError{Op: op, Err: err}
	}

	log.Debugf("%v: submitted tx %v", op, tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, e.client, tx)
	if err != nil {
		// The transaction was broadcast but its outcome is unknown.
		// The caller must not resubmit blindly.
		return ledger.TransportError{Op: op, Submitted: true, Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := e.minedRevertReason(ctx, actor, tx, receipt)
		return ledger.GuardError{Op: op, Reason: reason}
	}

	log.Debugf("%v: tx %v mined in block %v", op, tx.Hash().Hex(),
		receipt.BlockNumber)

	return nil
}

// minedRevertReason replays a reverted transaction as a call at its mined
// block to recover the revert reason. Best effort; an empty string is
// returned when the reason cannot be recovered.
func (e *EthLedger) minedRevertReason(ctx context.Context, actor common.Address, tx *types.Transaction, receipt *types.Receipt) string {
	msg := ethereum.CallMsg{
		From:  actor,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := e.client.CallContract(ctx, msg, receipt.BlockNumber)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return reason
		}
	}
	return ""
}

// ElectionCount satisfies the ledger.Ledger interface.
func (e *EthLedger) ElectionCount(ctx context.Context) (uint64, error) {
	var out []interface{}
	err := e.call(ctx, "electionCount", &out)
	if err != nil {
		return 0, err
	}
	count := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return count.Uint64(), nil
}

// ElectionDetails satisfies the ledger.Ledger interface.
func (e *EthLedger) ElectionDetails(ctx context.Context, electionID uint64) (*ledger.Election, error) {
	var out []interface{}
	err := e.call(ctx, "getElectionDetails", &out,
		new(big.Int).SetUint64(electionID))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new(rawElection)).(*rawElection)

	var stats []interface{}
	err = e.call(ctx, "getElectionStats", &stats,
		new(big.Int).SetUint64(electionID))
	if err != nil {
		return nil, err
	}
	candidateCount := *abi.ConvertType(stats[1], new(*big.Int)).(**big.Int)

	return &ledger.Election{
		ID:             electionID,
		Name:           raw.Name,
		Constituency:   raw.Constituency,
		StartTime:      raw.StartTime.Int64(),
		EndTime:        raw.EndTime.Int64(),
		TotalVotes:     raw.TotalVotes.Uint64(),
		CandidateCount: candidateCount.Uint64(),
		Active:         raw.Active,
	}, nil
}

// ElectionCandidates satisfies the ledger.Ledger interface. The contract
// does not echo party symbols per candidate; those live in the party
// registry.
func (e *EthLedger) ElectionCandidates(ctx context.Context, electionID uint64) ([]ledger.Candidate, error) {
	var out []interface{}
	err := e.call(ctx, "getElectionCandidates", &out,
		new(big.Int).SetUint64(electionID))
	if err != nil {
		return nil, err
	}
	addrs := *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address)
	details := *abi.ConvertType(out[1], new([]rawCandidate)).(*[]rawCandidate)
	if len(addrs) != len(details) {
		return nil, ledger.TransportError{
			Op:  "getElectionCandidates",
			Err: errors.New("mismatched candidate arrays"),
		}
	}

	cs := make([]ledger.Candidate, 0, len(addrs))
	for i, addr := range addrs {
		d := details[i]
		cs = append(cs, ledger.Candidate{
			Address:    addr,
			ElectionID: electionID,
			Name:       d.Name,
			Party:      d.Party,
			Bio:        d.Bio,
			Votes:      d.Votes.Uint64(),
			Status:     ledger.StatusT(d.Status),
		})
	}
	return cs, nil
}

// CandidateProfile satisfies the ledger.Ledger interface.
func (e *EthLedger) CandidateProfile(ctx context.Context, electionID uint64, candidate common.Address) (*ledger.Candidate, error) {
	var out []interface{}
	err := e.call(ctx, "getCandidateProfile", &out,
		new(big.Int).SetUint64(electionID), candidate)
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new(rawCandidate)).(*rawCandidate)
	return &ledger.Candidate{
		Address:    candidate,
		ElectionID: electionID,
		Name:       raw.Name,
		Party:      raw.Party,
		Bio:        raw.Bio,
		Votes:      raw.Votes.Uint64(),
		Status:     ledger.StatusT(raw.Status),
	}, nil
}

// VoterStatus satisfies the ledger.Ledger interface.
func (e *EthLedger) VoterStatus(ctx context.Context, voter common.Address) (*ledger.Voter, error) {
	var out []interface{}
	err := e.call(ctx, "getVoterStatus", &out, voter)
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new(rawVoter)).(*rawVoter)
	return &ledger.Voter{
		Address:     voter,
		Name:        raw.Name,
		IdentityRef: raw.IdentityRef,
		ElectionID:  raw.ElectionId.Uint64(),
		HasVoted:    raw.HasVoted,
		Status:      ledger.StatusT(raw.Status),
	}, nil
}

// AdminRole satisfies the ledger.Ledger interface.
func (e *EthLedger) AdminRole(ctx context.Context, admin common.Address) (*ledger.Admin, error) {
	var out []interface{}
	err := e.call(ctx, "admins", &out, admin)
	if err != nil {
		return nil, err
	}
	role := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	active := *abi.ConvertType(out[1], new(bool)).(*bool)
	return &ledger.Admin{
		Role:   ledger.RoleT(role),
		Active: active,
	}, nil
}

// PendingVoters satisfies the ledger.Ledger interface.
func (e *EthLedger) PendingVoters(ctx context.Context) ([]ledger.Voter, error) {
	var out []interface{}
	err := e.call(ctx, "getPendingVoters", &out)
	if err != nil {
		return nil, err
	}
	addrs := *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address)
	names := *abi.ConvertType(out[1], new([]string)).(*[]string)
	refs := *abi.ConvertType(out[2], new([]string)).(*[]string)
	eids := *abi.ConvertType(out[3], new([]*big.Int)).(*[]*big.Int)
	if len(names) != len(addrs) || len(refs) != len(addrs) ||
		len(eids) != len(addrs) {
		return nil, ledger.TransportError{
			Op:  "getPendingVoters",
			Err: errors.New("mismatched pending voter arrays"),
		}
	}

	vs := make([]ledger.Voter, 0, len(addrs))
	for i, addr := range addrs {
		vs = append(vs, ledger.Voter{
			Address:     addr,
			Name:        names[i],
			IdentityRef: refs[i],
			ElectionID:  eids[i].Uint64(),
			Status:      ledger.StatusPending,
		})
	}
	return vs, nil
}

// Registrations satisfies the ledger.Ledger interface. It scans the chain
// for historical VoterRegistered events from the contract's deploy block
// onward, in emission order.
func (e *EthLedger) Registrations(ctx context.Context) ([]ledger.Registration, error) {
	event, ok := e.abi.Events["VoterRegistered"]
	if !ok {
		return nil, ledger.ErrScanUnsupported
	}

	logs, err := e.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(e.fromBlock),
		Addresses: []common.Address{e.address},
		Topics:    [][]common.Hash{{event.ID}},
	})
	if err != nil {
		return nil, ledger.TransportError{
			Op:  "filterLogs",
			Err: err,
		}
	}

	log.Debugf("Registration scan: %v logs from block %v", len(logs),
		e.fromBlock)

	regs := make([]ledger.Registration, 0, len(logs))
	for _, l := range logs {
		if len(l.Topics) < 2 {
			continue
		}
		data, err := e.abi.Unpack("VoterRegistered", l.Data)
		if err != nil {
			log.Warnf("Skipping malformed VoterRegistered log in "+
				"tx %v: %v", l.TxHash.Hex(), err)
			continue
		}
		name := *abi.ConvertType(data[0], new(string)).(*string)
		eid := *abi.ConvertType(data[1], new(*big.Int)).(**big.Int)
		regs = append(regs, ledger.Registration{
			Voter:      common.BytesToAddress(l.Topics[1].Bytes()),
			Name:       name,
			ElectionID: eid.Uint64(),
		})
	}
	return regs, nil
}

// Parties satisfies the ledger.Ledger interface.
func (e *EthLedger) Parties(ctx context.Context) ([]ledger.Party, error) {
	var out []interface{}
	err := e.call(ctx, "getParties", &out)
	if err != nil {
		return nil, err
	}
	names := *abi.ConvertType(out[0], new([]string)).(*[]string)
	symbols := *abi.ConvertType(out[1], new([]string)).(*[]string)
	if len(symbols) != len(names) {
		return nil, ledger.TransportError{
			Op:  "getParties",
			Err: errors.New("mismatched party arrays"),
		}
	}

	ps := make([]ledger.Party, 0, len(names))
	for i, name := range names {
		ps = append(ps, ledger.Party{
			Name:   name,
			Symbol: symbols[i],
		})
	}
	return ps, nil
}

// RegisterVoter satisfies the ledger.Ledger interface.
func (e *EthLedger) RegisterVoter(ctx context.Context, actor common.Address, name, identityRef string, electionID uint64) error {
	return e.write(ctx, actor, "registerVoter", name, identityRef,
		new(big.Int).SetUint64(electionID))
}

// SubmitNomination satisfies the ledger.Ledger interface.
func (e *EthLedger) SubmitNomination(ctx context.Context, actor common.Address, electionID uint64, name, party, symbol, bio string) error {
	return e.write(ctx, actor, "submitNomination",
		new(big.Int).SetUint64(electionID), name, party, symbol, bio)
}

// WithdrawNomination satisfies the ledger.Ledger interface.
func (e *EthLedger) WithdrawNomination(ctx context.Context, actor common.Address, electionID uint64) error {
	return e.write(ctx, actor, "withdrawNomination",
		new(big.Int).SetUint64(electionID))
}

// CastVote satisfies the ledger.Ledger interface.
func (e *EthLedger) CastVote(ctx context.Context, actor common.Address, electionID uint64, candidate common.Address) error {
	return e.write(ctx, actor, "castVote",
		new(big.Int).SetUint64(electionID), candidate)
}

// VerifyVoter satisfies the ledger.Ledger interface.
func (e *EthLedger) VerifyVoter(ctx context.Context, actor, voter common.Address, status ledger.StatusT) error {
	return e.write(ctx, actor, "verifyVoter", voter, uint8(status))
}

// VerifyCandidate satisfies the ledger.Ledger interface.
func (e *EthLedger) VerifyCandidate(ctx context.Context, actor common.Address, electionID uint64, candidate common.Address, status ledger.StatusT) error {
	return e.write(ctx, actor, "verifyCandidate",
		new(big.Int).SetUint64(electionID), candidate, uint8(status))
}

// CreateElection satisfies the ledger.Ledger interface.
func (e *EthLedger) CreateElection(ctx context.Context, actor common.Address, name string, startTime, endTime int64, constituency string) error {
	return e.write(ctx, actor, "createElection", name,
		big.NewInt(startTime), big.NewInt(endTime), constituency)
}

// EndElection satisfies the ledger.Ledger interface.
func (e *EthLedger) EndElection(ctx context.Context, actor common.Address, electionID uint64) error {
	return e.write(ctx, actor, "endElection",
		new(big.Int).SetUint64(electionID))
}

// AddAdmin satisfies the ledger.Ledger interface.
func (e *EthLedger) AddAdmin(ctx context.Context, actor, admin common.Address, role ledger.RoleT) error {
	return e.write(ctx, actor, "addAdmin", admin, uint8(role))
}

// AddParty satisfies the ledger.Ledger interface.
func (e *EthLedger) AddParty(ctx context.Context, actor common.Address, name, symbol string) error {
	return e.write(ctx, actor, "addParty", name, symbol)
}
