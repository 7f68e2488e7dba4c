// Package probe implements the network and HTML probes of a scan: TLS
// inspection, security-header checks, content analysis, sensitive-path
// probing, and the informational DNS/whois lookups. The Scanner runs the
// probes selected by the scan plan and hands their findings to the score
// engine; failures in one probe category never abort the others.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vigia-scan/vigia/internal/score"
	"github.com/vigia-scan/vigia/internal/shared/constants"
	sharederrors "github.com/vigia-scan/vigia/internal/shared/errors"
)

// Probe status values shared by all sub-analyses.
const (
	StatusOK      = "OK"
	StatusError   = "ERROR"
	StatusSkipped = "SKIPPED"
	StatusUnknown = "UNKNOWN"
)

// ScanType selects which probes run.
type ScanType string

const (
	ScanQuick ScanType = "quick"
	ScanBasic ScanType = "basic"
	ScanFull  ScanType = "full"
)

// Plan is the explicit probe set for one scan type.
type Plan struct {
	TLS     bool
	Headers bool
	Content bool
	Paths   bool
	Forms   bool
	DNS     bool
	Whois   bool
}

// ScanPlans is the single source of truth for which probes each scan type
// runs. Content analysis runs for basic and full but not quick.
var ScanPlans = map[ScanType]Plan{
	ScanQuick: {TLS: true, Headers: true},
	ScanBasic: {TLS: true, Headers: true, Content: true},
	ScanFull:  {TLS: true, Headers: true, Content: true, Paths: true, Forms: true, DNS: true, Whois: true},
}

// ParseScanType validates a user-supplied scan type string.
func ParseScanType(s string) (ScanType, error) {
	st := ScanType(s)
	if _, ok := ScanPlans[st]; !ok {
		return "", fmt.Errorf("%w: %q", sharederrors.ErrUnknownScanType, s)
	}
	return st, nil
}

// Vulnerability is a single reportable issue derived from probe findings.
type Vulnerability struct {
	Severity    string `json:"severity"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ScanResult aggregates every sub-analysis for one target.
type ScanResult struct {
	URL             string          `json:"url"`
	Timestamp       time.Time       `json:"timestamp"`
	ScanType        ScanType        `json:"scan_type"`
	TLS             *TLSResult      `json:"ssl_analysis,omitempty"`
	Headers         *HeadersResult  `json:"headers_analysis,omitempty"`
	Content         *ContentResult  `json:"content_analysis,omitempty"`
	Paths           *PathsResult    `json:"directory_analysis,omitempty"`
	Forms           *FormsResult    `json:"form_analysis,omitempty"`
	DNS             *DNSResult      `json:"dns_analysis,omitempty"`
	Whois           *WhoisResult    `json:"whois_analysis,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Score           int             `json:"score"`
}

// Bundle reduces the scan result to the plain findings the score engine
// consumes. Probes that did not run or errored arrive as degraded fields.
func (r *ScanResult) Bundle() score.Bundle {
	b := score.Bundle{TLSStatus: score.TLSUnknown}

	if r.TLS != nil {
		b.TLSStatus = r.TLS.Status
	}
	if r.Headers != nil {
		b.MissingSecurityHeaders = r.Headers.MissingHeaders
	}
	if r.Content != nil {
		for _, f := range r.Content.SensitiveInfo {
			b.SensitiveFindings = append(b.SensitiveFindings, score.SensitiveFinding{Kind: f.Kind, Count: f.Count})
		}
	}
	if r.Paths != nil {
		for _, p := range r.Paths.Exposed {
			b.ExposedPaths = append(b.ExposedPaths, score.ExposedPath{Path: p.Path, Risk: p.Risk})
		}
	}

	return b
}

// Scanner runs the probes of a scan plan sequentially against one target.
type Scanner struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.SugaredLogger

	client *http.Client
}

// NewScanner builds a scanner with the given per-request timeout. The timeout
// also bounds DNS resolution inside the HTTP client.
func NewScanner(timeout time.Duration, logger *zap.SugaredLogger) *Scanner {
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scanner{
		Timeout:   timeout,
		UserAgent: constants.UserAgent,
		Logger:    logger,
		client:    &http.Client{Timeout: timeout},
	}
}

// Scan executes the probe plan for scanType against target. Probe failures
// are isolated: each sub-analysis reports either data or an ERROR status and
// scoring proceeds on whatever information is available. Only an invalid
// target or scan type fails the call itself.
func (s *Scanner) Scan(ctx context.Context, target string, scanType ScanType) (*ScanResult, error) {
	info, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	plan, ok := ScanPlans[scanType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sharederrors.ErrUnknownScanType, scanType)
	}

	s.Logger.Infow("scan started", "target", info.FullURL, "type", scanType)

	result := &ScanResult{
		URL:             info.FullURL,
		Timestamp:       time.Now().UTC(),
		ScanType:        scanType,
		Vulnerabilities: []Vulnerability{},
	}

	if plan.TLS {
		result.TLS = CheckTLS(ctx, info, s.Timeout)
	}

	// One GET serves the header, content and form probes.
	var pageHeaders http.Header
	var pageBody []byte
	var fetchErr error
	if plan.Headers || plan.Content || plan.Forms {
		pageHeaders, pageBody, fetchErr = s.fetchPage(ctx, info.FullURL)
	}

	if plan.Headers {
		if fetchErr != nil {
			result.Headers = &HeadersResult{Status: StatusError, Error: fetchErr.Error()}
		} else {
			result.Headers = AnalyzeHeaders(pageHeaders)
		}
	}

	if plan.Content {
		if fetchErr != nil {
			result.Content = &ContentResult{Status: StatusError, Error: fetchErr.Error()}
		} else {
			result.Content = AnalyzeContent(info, pageHeaders, pageBody)
		}
	}

	if plan.Forms {
		if fetchErr != nil {
			result.Forms = &FormsResult{Status: StatusError, Error: fetchErr.Error()}
		} else {
			result.Forms = AnalyzeForms(info, pageBody)
		}
	}

	if plan.Paths {
		result.Paths = CheckPaths(ctx, info, s.UserAgent, constants.PathProbeTimeout)
	}

	if plan.DNS {
		result.DNS = CheckDNS(ctx, info, s.Timeout)
	}

	if plan.Whois {
		result.Whois = CheckWhois(info)
	}

	result.Score = score.Score(result.Bundle())
	result.Vulnerabilities = deriveVulnerabilities(result)

	s.Logger.Infow("scan finished", "target", info.FullURL, "score", result.Score)

	return result, nil
}

func (s *Scanner) fetchPage(ctx context.Context, url string) (http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", sharederrors.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", sharederrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyBytes))
	if err != nil {
		// A partial body is still usable for analysis.
		s.Logger.Warnw("partial body read", "url", url, "error", err)
	}

	return resp.Header, body, nil
}

// deriveVulnerabilities flattens the probe findings into the report's
// vulnerability list.
func deriveVulnerabilities(r *ScanResult) []Vulnerability {
	vulns := []Vulnerability{}

	if r.TLS != nil {
		switch r.TLS.Status {
		case score.TLSNone:
			vulns = append(vulns, Vulnerability{
				Severity:    "HIGH",
				Type:        "Missing TLS",
				Description: "Target does not use HTTPS; traffic is transmitted unencrypted",
			})
		case score.TLSError, score.TLSUnknown:
			vulns = append(vulns, Vulnerability{
				Severity:    "MEDIUM",
				Type:        "TLS Misconfiguration",
				Description: "TLS is present but could not be verified",
			})
		}
		if r.TLS.SelfSigned {
			vulns = append(vulns, Vulnerability{
				Severity:    "HIGH",
				Type:        "Self-Signed Certificate",
				Description: "Certificate issuer indicates a self-signed certificate",
			})
		}
	}

	if r.Headers != nil && len(r.Headers.MissingHeaders) > 0 {
		vulns = append(vulns, Vulnerability{
			Severity:    "MEDIUM",
			Type:        "Missing Security Headers",
			Description: fmt.Sprintf("%d recommended security header(s) absent", len(r.Headers.MissingHeaders)),
		})
	}

	if r.Content != nil {
		for _, f := range r.Content.SensitiveInfo {
			vulns = append(vulns, Vulnerability{
				Severity:    "MEDIUM",
				Type:        "Sensitive Data Exposure",
				Description: fmt.Sprintf("%s: %d occurrence(s) found in page content", f.Kind, f.Count),
			})
		}
	}

	if r.Paths != nil {
		for _, p := range r.Paths.Exposed {
			severity := "MEDIUM"
			if p.Risk == score.RiskHigh {
				severity = "HIGH"
			}
			vulns = append(vulns, Vulnerability{
				Severity:    severity,
				Type:        "Exposed Path",
				Description: fmt.Sprintf("/%s answered HTTP %d", p.Path, p.StatusCode),
			})
		}
	}

	return vulns
}
