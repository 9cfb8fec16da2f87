/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
)

// CSRFHeader is the request header mutating API calls carry the token in.
const CSRFHeader = "X-CSRF-Token"

// CSRFToken returns the token clients echo back in CSRFHeader.
func CSRFToken(c flamego.Context, x csrf.CSRF) {
	writeJSON(c, http.StatusOK, map[string]string{"token": x.Token()})
}

// NoCacheHeaders disables caching for all API responses and blocks indexing.
func NoCacheHeaders() flamego.Handler {
	return func(c flamego.Context) {
		header := c.ResponseWriter().Header()
		header.Set("X-Robots-Tag", "noindex, nofollow, noarchive, nosnippet")

		if c.Request().Method == http.MethodGet || c.Request().Method == http.MethodHead {
			header.Set("Cache-Control", "no-store, max-age=0")
			header.Set("Pragma", "no-cache")
			header.Set("Expires", "0")
		}

		c.Next()
	}
}
