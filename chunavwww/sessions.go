// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/util"
	"github.com/chunav/chunav/workflow"
)

const (
	// sessionMaxAge is the session validity period in seconds.
	sessionMaxAge = 86400 // One day

	// sessionValueID is the session value that holds the actor context
	// ID.
	sessionValueID = "id"

	cookieKeyLength = 32
)

// actorContext is the per browser session state: the mirrored ledger
// context of the connected wallet, the dispatcher that acts for it, and
// the identity gate holding its challenge state.
type actorContext struct {
	session    *workflow.Session
	dispatcher *workflow.Dispatcher
	gate       *identity.Gate
}

// initSessionStore loads the session cookie key, generating and persisting
// one on first run, and returns the cookie store.
func initSessionStore(dataDir string) (*sessions.CookieStore, error) {
	cookieKeyFile := filepath.Join(dataDir, "cookie.key")
	cookieKey, err := os.ReadFile(cookieKeyFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}

		log.Infof("Cookie key not found, generating one...")
		cookieKey, err = util.Random(cookieKeyLength)
		if err != nil {
			return nil, err
		}
		err = os.WriteFile(cookieKeyFile, cookieKey, 0400)
		if err != nil {
			return nil, err
		}
		log.Infof("Cookie key generated")
	}

	store := sessions.NewCookieStore(cookieKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return store, nil
}

// newActorContext returns a disconnected actor context.
func (p *chunavwww) newActorContext() *actorContext {
	return &actorContext{
		session:    workflow.NewSession(p.ledger),
		gate:       identity.NewGate(),
		dispatcher: nil, // Bound on connect
	}
}

// sessionContext returns the actor context for the request's session,
// creating a fresh disconnected one as needed. The session cookie is set
// on creation.
func (p *chunavwww) sessionContext(w http.ResponseWriter, r *http.Request) (*actorContext, error) {
	session, err := p.store.Get(r, v1.CookieSession)
	if err != nil {
		// An undecodable cookie gets replaced with a fresh session
		// rather than locking the client out.
		log.Debugf("sessionContext: bad session cookie: %v", err)
	}

	id, ok := session.Values[sessionValueID].(string)
	if ok {
		p.RLock()
		ctx, found := p.contexts[id]
		p.RUnlock()
		if found {
			return ctx, nil
		}
	}

	// New session or the context aged out of memory.
	id = uuid.New().String()
	ctx := p.newActorContext()
	ctx.dispatcher = workflow.NewDispatcher(p.ledger, p.sync, ctx.session)

	p.Lock()
	p.contexts[id] = ctx
	p.Unlock()

	session.Values[sessionValueID] = id
	err = session.Save(r, w)
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// removeSession drops the request's actor context and expires the session
// cookie.
func (p *chunavwww) removeSession(w http.ResponseWriter, r *http.Request) error {
	session, err := p.store.Get(r, v1.CookieSession)
	if err != nil {
		return err
	}

	if id, ok := session.Values[sessionValueID].(string); ok {
		p.Lock()
		delete(p.contexts, id)
		p.Unlock()
	}

	// Setting the max age to a negative number deletes the cookie.
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
