// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultHost = "http://127.0.0.1:49374"

	// cookieFile is the file that holds the session cookies. Cookies are
	// segmented by host so that multiple backends can be used
	// simultaneously.
	cookieFile = "cookies.json"
)

var defaultHomeDir = appDataDir("chunavctl")

// appDataDir returns an operating system specific directory for application
// data.
func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, "."+appName)
}

// config holds the CLI configuration. The flags double as the go-flags
// application options of every command.
type config struct {
	AppData string `long:"appdata" description:"Path to application home directory"`
	Host    string `long:"host" description:"chunavwww host"`
	JSON    bool   `short:"j" long:"json" description:"Print raw JSON output"`
	Verbose bool   `short:"v" long:"verbose" description:"Print verbose output"`

	dataDir string
}

// loadConfig parses the application options off the command line, leaving
// the command and its arguments for the command parser.
func loadConfig() (*config, error) {
	cfg := config{
		AppData: defaultHomeDir,
		Host:    defaultHost,
	}

	// Pre-parse the command line looking only for the application
	// options. Unknown flags and the command itself are ignored here.
	parser := flags.NewParser(&cfg,
		flags.IgnoreUnknown|flags.PassDoubleDash)
	_, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse application options: %v", err)
	}

	cfg.dataDir = filepath.Join(cfg.AppData, "data")
	err = os.MkdirAll(cfg.dataDir, 0700)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %v", err)
	}

	return &cfg, nil
}

// hostFilePath returns the host specific path of the passed in file, i.e.
// the hostname is prepended to the filename.
func (cfg *config) hostFilePath(filename string) (string, error) {
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return "", fmt.Errorf("parse host: %v", err)
	}
	f := fmt.Sprintf("%v_%v", u.Hostname(), filename)
	return filepath.Join(cfg.dataDir, f), nil
}

func (cfg *config) loadCookies() ([]*http.Cookie, error) {
	f, err := cfg.hostFilePath(cookieFile)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(f)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to load
			return nil, nil
		}
		return nil, fmt.Errorf("read file %v: %v", f, err)
	}

	var c []*http.Cookie
	err = json.Unmarshal(b, &c)
	if err != nil {
		return nil, fmt.Errorf("unmarshal cookies: %v", err)
	}
	return c, nil
}

// saveCookies writes the passed in cookies to the host specific cookie
// file.
func (cfg *config) saveCookies(cookies []*http.Cookie) error {
	b, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("marshal cookies: %v", err)
	}

	f, err := cfg.hostFilePath(cookieFile)
	if err != nil {
		return err
	}

	err = os.WriteFile(f, b, 0600)
	if err != nil {
		return fmt.Errorf("write file %v: %v", f, err)
	}
	return nil
}
