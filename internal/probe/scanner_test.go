package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vigia-scan/vigia/internal/score"
)

func testScanner(t *testing.T) *Scanner {
	t.Helper()
	return NewScanner(5*time.Second, zaptest.NewLogger(t).Sugar())
}

func TestScanPlans_ProbeSetPerType(t *testing.T) {
	cases := []struct {
		scanType ScanType
		want     Plan
	}{
		{ScanQuick, Plan{TLS: true, Headers: true}},
		{ScanBasic, Plan{TLS: true, Headers: true, Content: true}},
		{ScanFull, Plan{TLS: true, Headers: true, Content: true, Paths: true, Forms: true, DNS: true, Whois: true}},
	}

	for _, tc := range cases {
		if got := ScanPlans[tc.scanType]; got != tc.want {
			t.Errorf("%s: expected plan %+v, got %+v", tc.scanType, tc.want, got)
		}
	}
}

func TestParseScanType(t *testing.T) {
	for _, valid := range []string{"quick", "basic", "full"} {
		if _, err := ParseScanType(valid); err != nil {
			t.Errorf("ParseScanType(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseScanType("deep"); err == nil {
		t.Error("expected error for unknown scan type")
	}
}

func TestScan_BasicAgainstTestServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>Fale conosco: contato@example.com</p></body></html>"))
	}))
	defer srv.Close()

	result, err := testScanner(t).Scan(context.Background(), srv.URL, ScanBasic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TLS == nil || result.TLS.Status != score.TLSNone {
		t.Errorf("plain-http test server should report NO_TLS, got %+v", result.TLS)
	}
	if result.Headers == nil || len(result.Headers.MissingHeaders) != 5 {
		t.Errorf("expected 5 missing headers, got %+v", result.Headers)
	}
	if result.Content == nil || len(result.Content.SensitiveInfo) != 1 {
		t.Errorf("expected one sensitive category (email), got %+v", result.Content)
	}

	// 100 - 30 (no TLS) - 25 (5 headers x5) - 10 (1 sensitive category) = 35
	if result.Score != 35 {
		t.Errorf("expected score 35, got %d", result.Score)
	}
	if result.Paths != nil || result.Forms != nil || result.DNS != nil || result.Whois != nil {
		t.Error("basic scan must not run full-scan probes")
	}
}

func TestScan_QuickSkipsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("email-in-body@example.com"))
	}))
	defer srv.Close()

	result, err := testScanner(t).Scan(context.Background(), srv.URL, ScanQuick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != nil {
		t.Error("quick scan must not run the content probe")
	}
}

func TestScan_UnreachableTargetDegradesGracefully(t *testing.T) {
	// Reserved TEST-NET-1 address; connection should fail fast with the
	// scanner timeout rather than abort the scan.
	s := NewScanner(1*time.Second, zaptest.NewLogger(t).Sugar())

	result, err := s.Scan(context.Background(), "http://192.0.2.1:9", ScanBasic)
	if err != nil {
		t.Fatalf("probe failure must not fail the scan: %v", err)
	}

	if result.Headers == nil || result.Headers.Status != StatusError {
		t.Errorf("expected ERROR header analysis, got %+v", result.Headers)
	}
	if result.Content == nil || result.Content.Status != StatusError {
		t.Errorf("expected ERROR content analysis, got %+v", result.Content)
	}

	// Scoring proceeds on partial information: only the NO_TLS penalty applies.
	if result.Score != 70 {
		t.Errorf("expected score 70 on partial data, got %d", result.Score)
	}
}

func TestScan_InvalidInputs(t *testing.T) {
	s := testScanner(t)

	if _, err := s.Scan(context.Background(), "", ScanBasic); err == nil {
		t.Error("expected error for empty target")
	}
	if _, err := s.Scan(context.Background(), "example.com", ScanType("bogus")); err == nil {
		t.Error("expected error for unknown scan type")
	}
}

func TestCheckPaths_FlagsExposedDirectories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			w.WriteHeader(http.StatusOK)
		case "/.git":
			w.WriteHeader(http.StatusMovedPermanently)
		case "/backup":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	target := mustTarget(t, srv.URL)
	result := CheckPaths(context.Background(), target, "test-agent", 2*time.Second)

	if result.Status != StatusOK {
		t.Fatalf("expected OK, got %s (%s)", result.Status, result.Error)
	}
	if len(result.Exposed) != 3 {
		t.Fatalf("expected 3 exposed paths, got %d: %+v", len(result.Exposed), result.Exposed)
	}

	risks := map[string]string{}
	for _, p := range result.Exposed {
		risks[p.Path] = p.Risk
	}
	if risks["admin"] != score.RiskHigh || risks[".git"] != score.RiskHigh {
		t.Errorf("admin and .git should be HIGH risk: %v", risks)
	}
	if risks["backup"] != score.RiskMedium {
		t.Errorf("backup should be MEDIUM risk: %v", risks)
	}
}

func TestCheckPaths_RedirectCountsAsExposed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			// A login redirect still reveals that the path exists.
			http.Redirect(w, r, "/gone", http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	target := mustTarget(t, srv.URL)
	result := CheckPaths(context.Background(), target, "test-agent", 2*time.Second)

	if len(result.Exposed) != 1 {
		t.Fatalf("expected admin exposed via redirect, got %+v", result.Exposed)
	}
	if result.Exposed[0].Path != "admin" || result.Exposed[0].StatusCode != http.StatusFound {
		t.Errorf("expected admin with status 302, got %+v", result.Exposed[0])
	}
	if result.Exposed[0].Risk != score.RiskHigh {
		t.Errorf("admin should be HIGH risk, got %s", result.Exposed[0].Risk)
	}
}

func TestBundle_DegradedProbesProduceDegradedFields(t *testing.T) {
	r := &ScanResult{}
	b := r.Bundle()

	if b.TLSStatus != score.TLSUnknown {
		t.Errorf("missing TLS analysis should map to UNKNOWN, got %s", b.TLSStatus)
	}
	if len(b.MissingSecurityHeaders) != 0 || len(b.SensitiveFindings) != 0 || len(b.ExposedPaths) != 0 {
		t.Error("empty result should produce an empty bundle")
	}
}
