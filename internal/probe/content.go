package probe

import (
	"bytes"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/vigia-scan/vigia/internal/score"
	"github.com/vigia-scan/vigia/internal/shared/constants"
)

// sensitivePatterns maps a finding category to the regex that detects it.
// CPF and CNPJ are Brazilian taxpayer identifiers; leaking them on a public
// page is a data-exposure issue in its own right.
var sensitivePatterns = map[string]*regexp.Regexp{
	"Email":   regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	"CPF":     regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`),
	"CNPJ":    regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`),
	"Phone":   regexp.MustCompile(`\(?\+?\d[\d\s().-]{8,}\d\b`),
	"API Key": regexp.MustCompile(`(?i)api[-_\s]*key[-_\s]*[:=]\s*['"]?[\w-]{16,}['"]?`),
	"Token":   regexp.MustCompile(`(?i)token[-_\s]*[:=]\s*['"]?[\w-]{16,}['"]?`),
}

// sensitiveCategoryOrder fixes report ordering; map iteration is random.
var sensitiveCategoryOrder = []string{"Email", "CPF", "CNPJ", "Phone", "API Key", "Token"}

// techHeaders maps revealing response headers to a technology type label.
var techHeaders = map[string]string{
	"Server":           "Web Server",
	"X-Powered-By":     "Framework",
	"X-AspNet-Version": "ASP.NET",
	"X-Generator":      "CMS",
}

// Technology is a technology fingerprint derived from headers or markup.
type Technology struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// ContentFinding is one category of sensitive data found in the page body.
type ContentFinding struct {
	Kind    string   `json:"type"`
	Count   int      `json:"count"`
	Samples []string `json:"samples,omitempty"`
}

// ExternalResource is a script or stylesheet loaded from another origin.
type ExternalResource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	Risk string `json:"risk"`
}

// PageForm summarizes one HTML form on the scanned page.
type PageForm struct {
	Action         string   `json:"action"`
	Method         string   `json:"method"`
	Inputs         int      `json:"inputs"`
	SecurityIssues []string `json:"security_issues,omitempty"`
}

// ContentResult aggregates the content-analysis probe.
type ContentResult struct {
	Status            string             `json:"status"`
	Technologies      []Technology       `json:"technologies,omitempty"`
	SensitiveInfo     []ContentFinding   `json:"sensitive_info,omitempty"`
	ExternalResources []ExternalResource `json:"external_resources,omitempty"`
	Forms             []PageForm         `json:"forms,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// AnalyzeContent inspects a fetched page for exposed sensitive data,
// third-party resources, technology fingerprints and forms. It never issues
// network calls; the scanner hands it the already-fetched response.
func AnalyzeContent(target *TargetInfo, headers http.Header, body []byte) *ContentResult {
	result := &ContentResult{Status: StatusOK}

	result.SensitiveInfo = FindSensitiveInfo(string(body))

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		// Regex findings above still stand; only markup-derived data is lost.
		result.Status = StatusError
		result.Error = "HTML parse failed: " + err.Error()
		result.Technologies = detectHeaderTechnologies(headers)
		return result
	}

	result.Technologies = append(detectHeaderTechnologies(headers), detectMetaTechnologies(doc)...)
	result.ExternalResources = findExternalResources(doc, target)
	result.Forms = analyzePageForms(doc, target)

	return result
}

// FindSensitiveInfo runs the sensitive-data patterns over raw page text and
// reports per-category occurrence counts with up to three example matches.
func FindSensitiveInfo(content string) []ContentFinding {
	var findings []ContentFinding
	for _, kind := range sensitiveCategoryOrder {
		matches := sensitivePatterns[kind].FindAllString(content, -1)
		if len(matches) == 0 {
			continue
		}
		samples := matches
		if len(samples) > constants.MaxSensitiveSamples {
			samples = samples[:constants.MaxSensitiveSamples]
		}
		findings = append(findings, ContentFinding{Kind: kind, Count: len(matches), Samples: samples})
	}
	return findings
}

func detectHeaderTechnologies(headers http.Header) []Technology {
	var techs []Technology
	for _, name := range []string{"Server", "X-Powered-By", "X-AspNet-Version", "X-Generator"} {
		if value := headers.Get(name); value != "" {
			techs = append(techs, Technology{
				Type:   techHeaders[name],
				Name:   value,
				Source: "Header: " + name,
			})
		}
	}
	return techs
}

func detectMetaTechnologies(doc *html.Node) []Technology {
	var techs []Technology
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return
		}
		if strings.EqualFold(attr(n, "name"), "generator") {
			if content := attr(n, "content"); content != "" {
				techs = append(techs, Technology{Type: "CMS/Framework", Name: content, Source: "Meta tag"})
			}
		}
	})
	return techs
}

func findExternalResources(doc *html.Node, target *TargetInfo) []ExternalResource {
	var resources []ExternalResource
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "script":
			if src := attr(n, "src"); isExternalRef(src, target.Host) {
				resources = append(resources, ExternalResource{Type: "script", URL: src, Risk: score.RiskMedium})
			}
		case "link":
			if strings.Contains(strings.ToLower(attr(n, "rel")), "stylesheet") {
				if href := attr(n, "href"); isExternalRef(href, target.Host) {
					resources = append(resources, ExternalResource{Type: "stylesheet", URL: href, Risk: score.RiskLow})
				}
			}
		}
	})
	return resources
}

func analyzePageForms(doc *html.Node, target *TargetInfo) []PageForm {
	var forms []PageForm
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "form" {
			return
		}

		form := PageForm{
			Action: attr(n, "action"),
			Method: strings.ToUpper(attrDefault(n, "method", "GET")),
		}
		secure := formActionSecure(form.Action, target)

		walk(n, func(input *html.Node) {
			if input.Type != html.ElementNode {
				return
			}
			switch input.Data {
			case "input", "textarea", "select":
				form.Inputs++
				inputType := strings.ToLower(attrDefault(input, "type", "text"))
				if (inputType == "password" || inputType == "email") && !secure {
					form.SecurityIssues = append(form.SecurityIssues, inputType+" field submitted over plain HTTP")
				}
			}
		})

		forms = append(forms, form)
	})
	return forms
}

// formActionSecure reports whether a form submits over TLS. An absolute
// action decides by its own scheme; a relative action inherits the page's.
func formActionSecure(action string, target *TargetInfo) bool {
	parsed, err := url.Parse(strings.TrimSpace(action))
	if err != nil || parsed.Scheme == "" {
		return target.IsHTTPS()
	}
	return strings.EqualFold(parsed.Scheme, "https")
}

// isExternalRef reports whether a resource reference points at another
// origin. Relative and same-host references are in scope, everything else is
// third party.
func isExternalRef(ref, host string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return false
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Host == "" {
		return false
	}
	return !strings.EqualFold(parsed.Hostname(), host)
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func attrDefault(n *html.Node, name, fallback string) string {
	if v := attr(n, name); v != "" {
		return v
	}
	return fallback
}
