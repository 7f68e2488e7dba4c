package probe

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var csrfNamePattern = regexp.MustCompile(`(?i)csrf|token`)

// FormDetail is the full-scan analysis of a single form.
type FormDetail struct {
	Action         string `json:"action"`
	Method         string `json:"method"`
	HasCSRFToken   bool   `json:"has_csrf_token"`
	PasswordFields int    `json:"password_fields"`
	SecurityScore  int    `json:"security_score"`
}

// FormsResult aggregates the detailed form probe (full scans only).
type FormsResult struct {
	Status     string       `json:"status"`
	FormsFound int          `json:"forms_found"`
	Forms      []FormDetail `json:"forms_details"`
	Error      string       `json:"error,omitempty"`
}

// AnalyzeForms performs the detailed form inspection: CSRF token presence,
// method, password fields, and a small per-form hardening score (+30 CSRF
// token, +20 POST, +30 HTTPS page).
func AnalyzeForms(target *TargetInfo, body []byte) *FormsResult {
	result := &FormsResult{Status: StatusOK, Forms: []FormDetail{}}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		result.Status = StatusError
		result.Error = "HTML parse failed: " + err.Error()
		return result
	}

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "form" {
			return
		}

		detail := FormDetail{
			Action: attr(n, "action"),
			Method: strings.ToUpper(attrDefault(n, "method", "GET")),
		}

		walk(n, func(input *html.Node) {
			if input.Type != html.ElementNode || input.Data != "input" {
				return
			}
			if csrfNamePattern.MatchString(attr(input, "name")) {
				detail.HasCSRFToken = true
			}
			if strings.EqualFold(attr(input, "type"), "password") {
				detail.PasswordFields++
			}
		})

		if detail.HasCSRFToken {
			detail.SecurityScore += 30
		}
		if detail.Method == "POST" {
			detail.SecurityScore += 20
		}
		if target.IsHTTPS() {
			detail.SecurityScore += 30
		}

		result.Forms = append(result.Forms, detail)
	})

	result.FormsFound = len(result.Forms)
	return result
}
