// Package security sets response headers for the JSON API.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// Content Security Policy
	CSP string

	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	CacheControl        string
}

// DefaultHeadersConfig returns defaults for an API that serves no documents.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'none'; frame-ancestors 'none'",

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		CrossOriginResource: "same-origin",
		CacheControl:        "no-store",
	}
}

// Headers returns middleware applying config to every response.
func Headers(config HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applyHeaders(config, w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func applyHeaders(config HeadersConfig, w http.ResponseWriter, r *http.Request) {
	headers := w.Header()

	setIf(headers, "X-Content-Type-Options", config.XContentTypeOptions)
	setIf(headers, "X-Frame-Options", config.XFrameOptions)
	setIf(headers, "Content-Security-Policy", config.CSP)
	setIf(headers, "Referrer-Policy", config.ReferrerPolicy)
	setIf(headers, "Cross-Origin-Resource-Policy", config.CrossOriginResource)
	setIf(headers, "Cache-Control", config.CacheControl)

	// HSTS header (only for HTTPS)
	if r.TLS != nil && config.HSTSMaxAge > 0 {
		hstsValue := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hstsValue += "; includeSubDomains"
		}
		headers.Set("Strict-Transport-Security", hstsValue)
	}
}

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
