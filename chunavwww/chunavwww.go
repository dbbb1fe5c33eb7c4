// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/chunav/chunav/identity"
	"github.com/chunav/chunav/ledger/ethledger"
)

func _main() error {
	// Load configuration and parse command line. This function also
	// initializes logging and configures it accordingly.
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("could not load configuration file: %v", err)
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version : %v", version())
	log.Infof("Network : chain id %v", cfg.ChainID)
	log.Infof("Home dir: %v", cfg.HomeDir)

	// Create the data directory in case it does not exist.
	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return err
	}

	// Dial the ledger.
	ctx := context.Background()
	l, err := ethledger.New(ctx, ethledger.Opts{
		RPCHost:         cfg.RPCHost,
		ContractAddress: cfg.contract,
		ChainID:         cfg.ChainID,
		KeystoreDir:     cfg.KeystoreDir,
		Passphrase:      cfg.KeystorePass,
		DeployBlock:     cfg.DeployBlock,
	})
	if err != nil {
		return fmt.Errorf("new ledger: %v", err)
	}
	defer l.Close()

	// Load the identity registry used by the registration pre-check.
	lookup, err := identity.LoadLookup(cfg.IdentityFile)
	if err != nil {
		return fmt.Errorf("load identity registry %v: %v",
			cfg.IdentityFile, err)
	}

	// Setup the session cookie store.
	store, err := initSessionStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("init session store: %v", err)
	}

	p := newChunavwww(cfg, l, lookup, store)

	// Bind to a port and pass the router in. TLS termination is left to
	// a fronting proxy.
	listenC := make(chan error)
	for _, listener := range cfg.Listeners {
		listen := listener
		go func() {
			srv := &http.Server{
				Handler:      p.router,
				Addr:         listen,
				ReadTimeout:  20 * time.Second,
				WriteTimeout: 60 * time.Second,
			}
			log.Infof("Listen: %v", listen)
			listenC <- srv.ListenAndServe()
		}()
	}

	// Tell user we are ready to go.
	log.Infof("Start of day")

	// Setup OS signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case sig := <-sigs:
			log.Infof("Terminating with %v", sig)
			goto done
		case err := <-listenC:
			log.Errorf("%v", err)
			goto done
		}
	}
done:

	log.Infof("Exiting")

	return nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	err := _main()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
