package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vigia-scan/vigia/internal/probe"
	"github.com/vigia-scan/vigia/internal/score"
	sharederrors "github.com/vigia-scan/vigia/internal/shared/errors"
)

func sampleResult() *probe.ScanResult {
	return &probe.ScanResult{
		URL:       "https://example.com",
		Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		ScanType:  probe.ScanBasic,
		TLS: &probe.TLSResult{
			Status:           score.TLSOk,
			CertificateValid: true,
			ProtocolVersion:  "TLS 1.3",
			Issuer:           "CN=Example CA",
			ExpiryDate:       "2026-01-01",
			DaysToExpiry:     300,
		},
		Headers: &probe.HeadersResult{
			Status:          probe.StatusOK,
			MissingHeaders:  []string{"Content-Security-Policy"},
			Recommendations: []string{"Add Content-Security-Policy to control resource loading"},
		},
		Content: &probe.ContentResult{
			Status: probe.StatusOK,
			SensitiveInfo: []probe.ContentFinding{
				{Kind: "Email", Count: 2, Samples: []string{"a@example.com"}},
			},
		},
		Vulnerabilities: []probe.Vulnerability{
			{Severity: "MEDIUM", Type: "Missing Security Headers", Description: "1 recommended security header(s) absent"},
		},
		Score: 85,
	}
}

func testWriter(t *testing.T) *Writer {
	t.Helper()
	w := NewWriter(t.TempDir(), "1.0.0")
	return w
}

func TestSave_WritesMarkdownAndJSON(t *testing.T) {
	w := testWriter(t)
	w.now = func() time.Time { return time.Date(2025, 3, 10, 14, 30, 5, 0, time.UTC) }

	saved, err := w.Save(sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if saved.ID != "vigia_report_20250310_143005" {
		t.Errorf("unexpected report id: %s", saved.ID)
	}

	for _, path := range []string{saved.MarkdownPath, saved.JSONPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file %s: %v", path, err)
		}
	}

	doc, err := w.Load(saved.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.TargetURL != "https://example.com" {
		t.Errorf("unexpected target: %s", doc.TargetURL)
	}
	if doc.Metadata.Generator != "vigia" || doc.Metadata.Version != "1.0.0" {
		t.Errorf("unexpected metadata: %+v", doc.Metadata)
	}
	if doc.Results == nil || doc.Results.Score != 85 {
		t.Error("results block missing or wrong score")
	}
}

func TestSave_MarkdownSections(t *testing.T) {
	w := testWriter(t)

	saved, err := w.Save(sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	md, err := w.View(saved.ID)
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	for _, want := range []string{
		"# Security Scan Report",
		"## General Information",
		"**Score:** 85/100",
		"## TLS/SSL",
		"## Security Headers",
		"Content-Security-Policy",
		"## Content Analysis",
		"Email: 2 occurrence(s)",
		"## Vulnerabilities",
		"## Recommendations",
		"1. Add Content-Security-Policy",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestList_SortedByModTimeDesc(t *testing.T) {
	w := testWriter(t)

	times := []time.Time{
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	var ids []string
	for _, ts := range times {
		w.now = func() time.Time { return ts }
		saved, err := w.Save(sampleResult())
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, saved.ID)
		// Drive mtime explicitly so ordering does not depend on write speed.
		if err := os.Chtimes(saved.JSONPath, ts, ts); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	entries, err := w.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != ids[2] || entries[2].ID != ids[0] {
		t.Errorf("expected newest first, got %s %s %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}
	if entries[0].Score != 85 {
		t.Errorf("expected score 85, got %d", entries[0].Score)
	}
}

func TestList_EmptyDirIsNotAnError(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing"), "1.0.0")
	entries, err := w.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	w := testWriter(t)

	if _, err := w.Save(sampleResult()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	corrupt := filepath.Join(w.Dir, "vigia_report_20990101_000000.json")
	if err := os.WriteFile(corrupt, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	entries, err := w.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("corrupt file must be skipped, got %d entries", len(entries))
	}
}

func TestLoad_UnknownReport(t *testing.T) {
	w := testWriter(t)
	if _, err := w.Load("vigia_report_19700101_000000"); !errors.Is(err, sharederrors.ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
	if _, err := w.View("vigia_report_19700101_000000"); !errors.Is(err, sharederrors.ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestWritePDF_ProducesFile(t *testing.T) {
	w := testWriter(t)

	saved, err := w.Save(sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := w.WritePDF(saved.ID)
	if err != nil {
		t.Fatalf("WritePDF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestCollectRecommendations(t *testing.T) {
	r := sampleResult()
	r.TLS.Status = score.TLSNone
	r.Paths = &probe.PathsResult{
		Status:  probe.StatusOK,
		Exposed: []probe.ExposedPathDetail{{Path: "admin", StatusCode: 200, Risk: score.RiskHigh}},
	}

	recs := collectRecommendations(r)
	joined := strings.Join(recs, "\n")
	for _, want := range []string{"HTTPS", "Content-Security-Policy", "sensitive data", "administrative"} {
		if !strings.Contains(joined, want) {
			t.Errorf("recommendations missing %q in %v", want, recs)
		}
	}
}
