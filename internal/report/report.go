// Package report persists scan results as paired markdown and JSON files
// under a reports directory and renders stored reports to PDF on demand.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vigia-scan/vigia/internal/probe"
	"github.com/vigia-scan/vigia/internal/score"
	"github.com/vigia-scan/vigia/internal/shared/constants"
	sharederrors "github.com/vigia-scan/vigia/internal/shared/errors"
)

const idPrefix = "vigia_report_"

// Metadata is the fixed trailer block of every JSON report.
type Metadata struct {
	Generator string         `json:"generator"`
	Version   string         `json:"version"`
	ScanType  probe.ScanType `json:"scan_type"`
}

// Document is the JSON report envelope.
type Document struct {
	ReportID    string            `json:"report_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Version     string            `json:"version"`
	TargetURL   string            `json:"target_url"`
	Results     *probe.ScanResult `json:"results"`
	Metadata    Metadata          `json:"metadata"`
}

// Saved names the files produced for one scan.
type Saved struct {
	ID           string
	MarkdownPath string
	JSONPath     string
}

// Entry is one row of the report listing.
type Entry struct {
	ID          string
	Target      string
	Score       int
	GeneratedAt time.Time
	ModTime     time.Time
}

// Writer owns the reports directory.
type Writer struct {
	Dir     string
	Version string

	now func() time.Time
}

// NewWriter builds a writer rooted at dir. The directory is created on the
// first save, not here.
func NewWriter(dir, version string) *Writer {
	return &Writer{Dir: dir, Version: version, now: time.Now}
}

// Save writes the markdown and JSON reports for one scan result and returns
// their paths. Report IDs are derived from the generation timestamp.
func (w *Writer) Save(result *probe.ScanResult) (*Saved, error) {
	if err := os.MkdirAll(w.Dir, constants.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	generatedAt := w.now().UTC()
	id := idPrefix + generatedAt.Format("20060102_150405")

	doc := &Document{
		ReportID:    id,
		GeneratedAt: generatedAt,
		Version:     w.Version,
		TargetURL:   result.URL,
		Results:     result,
		Metadata: Metadata{
			Generator: "vigia",
			Version:   w.Version,
			ScanType:  result.ScanType,
		},
	}

	jsonPath := filepath.Join(w.Dir, id+".json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, constants.DefaultFilePerm); err != nil {
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(w.Dir, id+".md")
	if err := os.WriteFile(mdPath, []byte(renderMarkdown(doc)), constants.DefaultFilePerm); err != nil {
		return nil, fmt.Errorf("write %s: %w", mdPath, err)
	}

	return &Saved{ID: id, MarkdownPath: mdPath, JSONPath: jsonPath}, nil
}

// List returns the stored reports, newest first by file modification time.
func (w *Writer) List() ([]Entry, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, idPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		id := strings.TrimSuffix(name, ".json")
		doc, err := w.Load(id)
		if err != nil {
			// A corrupt file must not hide the rest of the listing.
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		score := 0
		if doc.Results != nil {
			score = doc.Results.Score
		}
		out = append(out, Entry{
			ID:          id,
			Target:      doc.TargetURL,
			Score:       score,
			GeneratedAt: doc.GeneratedAt,
			ModTime:     info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// Load reads a stored JSON report by ID.
func (w *Writer) Load(id string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(w.Dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", sharederrors.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", id, err)
	}
	return &doc, nil
}

// View returns the stored markdown report by ID.
func (w *Writer) View(id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(w.Dir, id+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", sharederrors.ErrReportNotFound, id)
		}
		return "", fmt.Errorf("read report %s: %w", id, err)
	}
	return string(data), nil
}

func renderMarkdown(doc *Document) string {
	var b strings.Builder
	r := doc.Results

	fmt.Fprintf(&b, "# Security Scan Report\n\n")
	fmt.Fprintf(&b, "## General Information\n\n")
	fmt.Fprintf(&b, "- **Target:** %s\n", doc.TargetURL)
	fmt.Fprintf(&b, "- **Scan type:** %s\n", r.ScanType)
	fmt.Fprintf(&b, "- **Date:** %s\n", doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Score:** %d/100\n\n", r.Score)

	if tls := r.TLS; tls != nil {
		fmt.Fprintf(&b, "## TLS/SSL\n\n")
		fmt.Fprintf(&b, "- **Status:** %s\n", tls.Status)
		if tls.ProtocolVersion != "" {
			fmt.Fprintf(&b, "- **Protocol:** %s\n", tls.ProtocolVersion)
		}
		if tls.CipherSuite != "" {
			fmt.Fprintf(&b, "- **Cipher suite:** %s\n", tls.CipherSuite)
		}
		if tls.Issuer != "" {
			fmt.Fprintf(&b, "- **Issuer:** %s\n", tls.Issuer)
		}
		if tls.ExpiryDate != "" {
			fmt.Fprintf(&b, "- **Expires:** %s (%d days)\n", tls.ExpiryDate, tls.DaysToExpiry)
		}
		for _, issue := range tls.Issues {
			fmt.Fprintf(&b, "- Issue: %s\n", issue)
		}
		b.WriteString("\n")
	}

	if h := r.Headers; h != nil {
		fmt.Fprintf(&b, "## Security Headers\n\n")
		if h.Status != probe.StatusOK {
			fmt.Fprintf(&b, "Analysis failed: %s\n\n", h.Error)
		} else if len(h.MissingHeaders) == 0 {
			b.WriteString("All checked security headers are present.\n\n")
		} else {
			fmt.Fprintf(&b, "Missing headers (%d):\n\n", len(h.MissingHeaders))
			for _, name := range h.MissingHeaders {
				fmt.Fprintf(&b, "- %s\n", name)
			}
			b.WriteString("\n")
		}
	}

	if c := r.Content; c != nil {
		fmt.Fprintf(&b, "## Content Analysis\n\n")
		if len(c.Technologies) > 0 {
			b.WriteString("Detected technologies:\n\n")
			for _, t := range c.Technologies {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", t.Type, t.Name, t.Source)
			}
			b.WriteString("\n")
		}
		if len(c.SensitiveInfo) > 0 {
			b.WriteString("Sensitive information found:\n\n")
			for _, f := range c.SensitiveInfo {
				fmt.Fprintf(&b, "- %s: %d occurrence(s)\n", f.Kind, f.Count)
			}
			b.WriteString("\n")
		}
		if len(c.ExternalResources) > 0 {
			fmt.Fprintf(&b, "External resources: %d\n\n", len(c.ExternalResources))
		}
		if len(c.Technologies) == 0 && len(c.SensitiveInfo) == 0 && len(c.ExternalResources) == 0 {
			b.WriteString("Nothing notable found in page content.\n\n")
		}
	}

	if p := r.Paths; p != nil && len(p.Exposed) > 0 {
		fmt.Fprintf(&b, "## Exposed Paths\n\n")
		for _, ep := range p.Exposed {
			fmt.Fprintf(&b, "- /%s (HTTP %d, risk %s)\n", ep.Path, ep.StatusCode, ep.Risk)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Vulnerabilities\n\n")
	if len(r.Vulnerabilities) == 0 {
		b.WriteString("No vulnerabilities identified.\n\n")
	} else {
		b.WriteString("| Severity | Type | Description |\n")
		b.WriteString("|----------|------|-------------|\n")
		for _, v := range r.Vulnerabilities {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", v.Severity, v.Type, v.Description)
		}
		b.WriteString("\n")
	}

	if recs := collectRecommendations(r); len(recs) > 0 {
		fmt.Fprintf(&b, "## Recommendations\n\n")
		for i, rec := range recs {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nGenerated by vigia %s\n", doc.Version)
	return b.String()
}

// collectRecommendations turns probe findings into the numbered action list
// at the end of the markdown report.
func collectRecommendations(r *probe.ScanResult) []string {
	var recs []string

	if r.TLS != nil {
		switch {
		case r.TLS.Status == score.TLSNone:
			recs = append(recs, "Serve the site over HTTPS with a valid certificate")
		case r.TLS.SelfSigned:
			recs = append(recs, "Replace the self-signed certificate with one from a trusted CA")
		case r.TLS.DaysToExpiry > 0 && time.Duration(r.TLS.DaysToExpiry)*24*time.Hour < constants.CertExpiryWarningWindow:
			recs = append(recs, fmt.Sprintf("Renew the TLS certificate (expires in %d days)", r.TLS.DaysToExpiry))
		}
	}

	if r.Headers != nil {
		recs = append(recs, r.Headers.Recommendations...)
	}

	if r.Content != nil && len(r.Content.SensitiveInfo) > 0 {
		recs = append(recs, "Remove sensitive data (emails, documents, tokens) from public pages")
	}

	if r.Paths != nil && len(r.Paths.Exposed) > 0 {
		recs = append(recs, "Restrict access to administrative and configuration paths")
	}

	return recs
}
