// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger"
	"github.com/chunav/chunav/util"
	"github.com/chunav/chunav/workflow"
)

type permission uint

const (
	permissionPublic permission = iota
	permissionConnected
)

// chunavwww represents the chunavwww server.
type chunavwww struct {
	sync.RWMutex
	cfg    *config
	router *mux.Router
	store  *sessions.CookieStore
	ledger ledger.Ledger
	sync   *workflow.Sync
	lookup *identity.Lookup

	// contexts holds the per browser session actor contexts, keyed by
	// the context ID stored in the session cookie.
	contexts map[string]*actorContext
}

// RespondWithError returns an HTTP error status to the client. If it's a
// user error, it returns a 4xx HTTP status and the specific user error
// code. If it's an internal server error, it returns 500 and an error code
// which is also outputted to the logs so that it can be correlated later
// if the user files a complaint.
func RespondWithError(w http.ResponseWriter, r *http.Request, userHttpCode int, format string, args ...interface{}) {
	// Translate workflow and ledger errors into the user error
	// taxonomy before inspecting.
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			args[0] = convertErrorToWWW(err)
		}
	}

	if userErr, ok := args[0].(v1.UserError); ok {
		if userHttpCode == 0 {
			userHttpCode = http.StatusBadRequest
		}

		if len(userErr.ErrorContext) == 0 {
			log.Errorf("RespondWithError: %v %v %v",
				remoteAddr(r),
				int64(userErr.ErrorCode),
				v1.ErrorStatus[userErr.ErrorCode])
		} else {
			log.Errorf("RespondWithError: %v %v %v: %v",
				remoteAddr(r),
				int64(userErr.ErrorCode),
				v1.ErrorStatus[userErr.ErrorCode],
				strings.Join(userErr.ErrorContext, ", "))
		}

		util.RespondWithJSON(w, userHttpCode,
			v1.ErrorReply{
				ErrorCode:    int64(userErr.ErrorCode),
				ErrorContext: userErr.ErrorContext,
			})
		return
	}

	errorCode := time.Now().Unix()
	ec := fmt.Sprintf("%v %v %v %v Internal error %v: ", remoteAddr(r),
		r.Method, r.URL, r.Proto, errorCode)
	log.Errorf(ec+format, args...)
	log.Errorf("Stacktrace (NOT A REAL CRASH): %s", debug.Stack())

	util.RespondWithJSON(w, http.StatusInternalServerError,
		v1.ErrorReply{
			ErrorCode: errorCode,
		})
}

// handleVersion is an HTTP GET to determine the version and API route this
// backend is using.
func (p *chunavwww) handleVersion(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleVersion")

	var active bool
	ctx, err := p.sessionContext(w, r)
	if err == nil {
		active = ctx.session.Connected()
	}

	util.RespondWithJSON(w, http.StatusOK, v1.VersionReply{
		Version:       v1.ChunavWWWAPIVersion,
		Route:         v1.ChunavWWWAPIRoute,
		ActiveSession: active,
	})
}

// handlePolicy returns the client side policy restrictions.
func (p *chunavwww) handlePolicy(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handlePolicy")

	roles := make(map[string]string, len(ledger.Roles))
	for role, str := range ledger.Roles {
		roles[fmt.Sprintf("%d", role)] = str
	}
	statuses := make(map[string]string, len(ledger.Statuses))
	for status, str := range ledger.Statuses {
		statuses[fmt.Sprintf("%d", status)] = str
	}

	util.RespondWithJSON(w, http.StatusOK, v1.PolicyReply{
		IdentityIDLength:    v1.PolicyIdentityIDLength,
		ChallengeCodeDigits: v1.PolicyChallengeCodeDigits,
		MaxNameLength:       v1.PolicyMaxNameLength,
		MinNameLength:       v1.PolicyMinNameLength,
		MaxBioLength:        v1.PolicyMaxBioLength,
		Roles:               roles,
		Statuses:            statuses,
	})
}

// handleNotFound is a generic handler for an invalid route.
func (p *chunavwww) handleNotFound(w http.ResponseWriter, r *http.Request) {
	// Log incoming connection
	log.Debugf("Invalid route: %v %v %v %v", remoteAddr(r), r.Method,
		r.URL, r.Proto)

	// Trace incoming request
	log.Tracef("%v", newLogClosure(func() string {
		trace, err := httputil.DumpRequest(r, true)
		if err != nil {
			trace = []byte(fmt.Sprintf("logging: "+
				"DumpRequest %v", err))
		}
		return string(trace)
	}))

	util.RespondWithJSON(w, http.StatusNotFound, v1.ErrorReply{})
}

// addRoute sets up a handler for a specific method+route.
func (p *chunavwww) addRoute(method string, route string, handler http.HandlerFunc, perm permission) {
	fullRoute := v1.ChunavWWWAPIRoute + route

	switch perm {
	case permissionConnected:
		handler = logging(p.isConnected(handler))
	default:
		handler = logging(handler)
	}

	// All handlers need to close the body
	handler = closeBody(handler)

	p.router.StrictSlash(true).HandleFunc(fullRoute, handler).Methods(method)
}

// setRoutes sets up all of the API routes.
func (p *chunavwww) setRoutes() {
	// Public routes
	p.addRoute(http.MethodGet, v1.RouteVersion,
		p.handleVersion, permissionPublic)
	p.addRoute(http.MethodGet, v1.RoutePolicy,
		p.handlePolicy, permissionPublic)
	p.addRoute(http.MethodPost, v1.RouteConnect,
		p.handleConnect, permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteElections,
		p.handleElections, permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteElectionDetails,
		p.handleElectionDetails, permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteElectionResults,
		p.handleElectionResults, permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteCandidates,
		p.handleCandidates, permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteBallot,
		p.handleBallot, permissionPublic)
	p.addRoute(http.MethodGet, v1.RouteParties,
		p.handleParties, permissionPublic)

	// Routes that require a connected wallet
	p.addRoute(http.MethodPost, v1.RouteDisconnect,
		p.handleDisconnect, permissionConnected)
	p.addRoute(http.MethodGet, v1.RouteMe,
		p.handleMe, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteIdentityPrecheck,
		p.handleIdentityPrecheck, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteIdentityChallenge,
		p.handleIdentityChallenge, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteIdentityVerify,
		p.handleIdentityVerify, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteRegisterVoter,
		p.handleRegisterVoter, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteCastVote,
		p.handleCastVote, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteSubmitNomination,
		p.handleSubmitNomination, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteWithdraw,
		p.handleWithdraw, permissionConnected)

	// Role gated routes. The role checks are enforced by the
	// dispatcher against the ledger mirrored role; the route level only
	// requires a connected wallet.
	p.addRoute(http.MethodGet, v1.RoutePendingVoters,
		p.handlePendingVoters, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteVerifyVoter,
		p.handleVerifyVoter, permissionConnected)
	p.addRoute(http.MethodGet, v1.RoutePendingCandidates,
		p.handlePendingCandidates, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteVerifyCandidate,
		p.handleVerifyCandidate, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteNewElection,
		p.handleNewElection, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteEndElection,
		p.handleEndElection, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteNewAdmin,
		p.handleNewAdmin, permissionConnected)
	p.addRoute(http.MethodPost, v1.RouteNewParty,
		p.handleNewParty, permissionConnected)

	// Setup 404 handler
	p.router.NotFoundHandler = http.HandlerFunc(p.handleNotFound)
}

// newChunavwww returns a chunavwww server with its routes configured.
func newChunavwww(cfg *config, l ledger.Ledger, lookup *identity.Lookup, store *sessions.CookieStore) *chunavwww {
	p := &chunavwww{
		cfg:      cfg,
		router:   mux.NewRouter(),
		store:    store,
		ledger:   l,
		sync:     workflow.NewSync(l),
		lookup:   lookup,
		contexts: make(map[string]*actorContext),
	}
	p.router.Use(recoverMiddleware)
	p.setRoutes()
	return p
}
