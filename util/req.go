// Copyright (c) 2025-2026 The chunav developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net/http"

	"github.com/gorilla/schema"
)

// ParseGetParams parses the query params from the GET request into the
// destination struct. The struct fields are matched using `schema` tags.
func ParseGetParams(r *http.Request, dst interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return err
	}

	return schema.NewDecoder().Decode(dst, r.Form)
}
