package probe

import (
	"net/http"
)

// SecurityHeaders is the fixed set of response headers a hardened site is
// expected to send. Order matters only for stable report output.
var SecurityHeaders = []string{
	"X-Content-Type-Options",
	"X-Frame-Options",
	"X-XSS-Protection",
	"Strict-Transport-Security",
	"Content-Security-Policy",
	"Referrer-Policy",
	"Permissions-Policy",
}

// informationDisclosureHeaders lists headers that should be removed or
// obfuscated because they leak implementation details.
var informationDisclosureHeaders = []string{
	"Server",
	"X-Powered-By",
	"X-AspNet-Version",
}

var headerRecommendations = map[string]string{
	"X-Content-Type-Options":    "Add 'X-Content-Type-Options: nosniff'",
	"X-Frame-Options":           "Add 'X-Frame-Options: DENY' or 'SAMEORIGIN'",
	"X-XSS-Protection":          "Add 'X-XSS-Protection: 1; mode=block'",
	"Strict-Transport-Security": "Add HSTS to enforce HTTPS",
	"Content-Security-Policy":   "Implement a Content Security Policy (CSP)",
	"Referrer-Policy":           "Add 'Referrer-Policy: strict-origin-when-cross-origin'",
	"Permissions-Policy":        "Add 'Permissions-Policy' to control browser features",
}

// HeadersResult describes the presence of the expected security headers.
type HeadersResult struct {
	Status          string            `json:"status"`
	SecurityHeaders map[string]string `json:"security_headers"`
	MissingHeaders  []string          `json:"missing_headers"`
	Recommendations []string          `json:"recommendations,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// AnalyzeHeaders inspects a response header set for the expected security
// headers and for information-disclosure headers. It is pure: the network
// fetch happens in the scanner so a single response serves several probes.
func AnalyzeHeaders(headers http.Header) *HeadersResult {
	result := &HeadersResult{
		Status:          StatusOK,
		SecurityHeaders: make(map[string]string, len(SecurityHeaders)),
		MissingHeaders:  []string{},
	}

	for _, name := range SecurityHeaders {
		value := headers.Get(name)
		result.SecurityHeaders[name] = value
		if value == "" {
			result.MissingHeaders = append(result.MissingHeaders, name)
			if rec, ok := headerRecommendations[name]; ok {
				result.Recommendations = append(result.Recommendations, rec)
			}
		}
	}

	for _, name := range informationDisclosureHeaders {
		if value := headers.Get(name); value != "" {
			result.Recommendations = append(result.Recommendations,
				"Remove or obfuscate the '"+name+"' header to reduce exposure (currently '"+value+"')")
		}
	}

	return result
}

// MissingMonitorHeaders returns the subset of headers the monitor treats as
// change-classification signals when absent.
func MissingMonitorHeaders(headers http.Header) []string {
	watched := []string{
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Content-Security-Policy",
		"Strict-Transport-Security",
	}

	var missing []string
	for _, name := range watched {
		if headers.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
