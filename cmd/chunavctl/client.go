// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"golang.org/x/net/publicsuffix"

	v1 "github.com/chunav/chunav/chunavwww/api/www/v1"
)

// wwwClient is a chunavwww client.
type wwwClient struct {
	http *http.Client
	cfg  *config
}

// newClient returns a client with the persisted session cookies loaded into
// its cookie jar.
func newClient(cfg *config) (*wwwClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parse host: %v", err)
	}
	cookies, err := cfg.loadCookies()
	if err != nil {
		return nil, err
	}
	jar.SetCookies(u, cookies)

	return &wwwClient{
		http: &http.Client{Jar: jar},
		cfg:  cfg,
	}, nil
}

// saveSession persists the session cookies for the configured host.
func (c *wwwClient) saveSession() error {
	u, err := url.Parse(c.cfg.Host)
	if err != nil {
		return fmt.Errorf("parse host: %v", err)
	}
	return c.cfg.saveCookies(c.http.Jar.Cookies(u))
}

func prettyPrintJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("MarshalIndent: %v", err)
	}
	fmt.Fprintf(os.Stdout, "%s\n", b)
	return nil
}

// wwwError parses a www user error out of a non-200 response body.
func wwwError(body []byte, statusCode int) error {
	var er v1.ErrorReply
	err := json.Unmarshal(body, &er)
	if err != nil {
		return fmt.Errorf("%v: unmarshal error reply: %v",
			statusCode, err)
	}

	errMsg := v1.ErrorStatus[v1.ErrorStatusT(er.ErrorCode)]
	if errMsg == "" {
		return fmt.Errorf("%v, internal error %v", statusCode,
			er.ErrorCode)
	}
	if len(er.ErrorContext) == 0 {
		return fmt.Errorf("%v, %v", statusCode, errMsg)
	}
	return fmt.Errorf("%v, %v: %v", statusCode, errMsg,
		strings.Join(er.ErrorContext, ", "))
}

// makeRequest sends a request to the configured chunavwww host and returns
// the response body. A non-200 reply is returned as an error built from the
// www error reply.
func (c *wwwClient) makeRequest(method, route string, body interface{}) ([]byte, error) {
	// Setup request
	var requestBody []byte
	var queryParams string
	if body != nil {
		switch method {
		case http.MethodGet:
			// Use reflection in case the interface value is nil
			// but the interface type is not.
			if reflect.ValueOf(body).IsNil() {
				break
			}

			// GET requests don't have a request body; the body is
			// encoded into the query params instead.
			form := url.Values{}
			err := schema.NewEncoder().Encode(body, form)
			if err != nil {
				return nil, err
			}
			queryParams = "?" + form.Encode()

		case http.MethodPost:
			var err error
			requestBody, err = json.Marshal(body)
			if err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("unknown http method '%v'",
				method)
		}
	}

	fullRoute := c.cfg.Host + v1.ChunavWWWAPIRoute + route + queryParams

	// Print request details
	if c.cfg.Verbose {
		fmt.Printf("Request: %v %v\n", method, fullRoute)
		if method == http.MethodPost {
			err := prettyPrintJSON(body)
			if err != nil {
				return nil, err
			}
		}
	}

	req, err := http.NewRequest(method, fullRoute,
		bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}

	r, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	responseBody, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	if c.cfg.Verbose {
		fmt.Printf("Response: %v\n", r.StatusCode)
	}

	if r.StatusCode != http.StatusOK {
		return nil, wwwError(responseBody, r.StatusCode)
	}

	return responseBody, nil
}

// sendCommand sends a request and unmarshals the reply. The raw reply is
// printed when the json flag is set.
func (c *wwwClient) sendCommand(method, route string, body, reply interface{}) error {
	respBody, err := c.makeRequest(method, route, body)
	if err != nil {
		return err
	}

	if reply != nil {
		err = json.Unmarshal(respBody, reply)
		if err != nil {
			return fmt.Errorf("unmarshal reply: %v", err)
		}
	}

	if c.cfg.JSON {
		fmt.Printf("%s\n", respBody)
		return nil
	}
	if reply != nil {
		return prettyPrintJSON(reply)
	}
	return nil
}
