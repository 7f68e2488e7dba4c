package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/vigia-scan/vigia/internal/shared/constants"
)

// WritePDF renders a stored report to <id>.pdf in the reports directory and
// returns the written path.
func (w *Writer) WritePDF(id string) (string, error) {
	doc, err := w.Load(id)
	if err != nil {
		return "", err
	}

	data, err := renderPDF(doc)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, id+".pdf")
	if err := os.WriteFile(path, data, constants.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func renderPDF(doc *Document) ([]byte, error) {
	r := doc.Results

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Security Scan Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Report ID: %s", doc.ReportID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Target: %s", doc.TargetURL), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scan type: %s", r.ScanType), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC")), "", 1, "", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Score: %d/100", r.Score), "", 1, "", false, 0, "")
	pdf.Ln(3)

	if tls := r.TLS; tls != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "TLS/SSL", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s", tls.Status), "", 1, "", false, 0, "")
		if tls.ProtocolVersion != "" {
			pdf.CellFormat(0, 5, fmt.Sprintf("Protocol: %s | Cipher: %s", tls.ProtocolVersion, tls.CipherSuite), "", 1, "", false, 0, "")
		}
		if tls.Issuer != "" {
			pdf.MultiCell(0, 5, fmt.Sprintf("Issuer: %s", tls.Issuer), "", "", false)
		}
		if tls.ExpiryDate != "" {
			pdf.CellFormat(0, 5, fmt.Sprintf("Expires: %s (%d days)", tls.ExpiryDate, tls.DaysToExpiry), "", 1, "", false, 0, "")
		}
		pdf.Ln(3)
	}

	if h := r.Headers; h != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Security Headers", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		if len(h.MissingHeaders) == 0 {
			pdf.CellFormat(0, 5, "All checked security headers are present.", "", 1, "", false, 0, "")
		} else {
			pdf.MultiCell(0, 5, fmt.Sprintf("Missing: %s", strings.Join(h.MissingHeaders, ", ")), "", "", false)
		}
		pdf.Ln(3)
	}

	if c := r.Content; c != nil && (len(c.Technologies) > 0 || len(c.SensitiveInfo) > 0) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Content Analysis", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, t := range c.Technologies {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %s (%s)", t.Type, t.Name, t.Source), "", 1, "", false, 0, "")
		}
		for _, f := range c.SensitiveInfo {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %d occurrence(s)", f.Kind, f.Count), "", 1, "", false, 0, "")
		}
		pdf.Ln(3)
	}

	if p := r.Paths; p != nil && len(p.Exposed) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Exposed Paths", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, ep := range p.Exposed {
			pdf.CellFormat(0, 5, fmt.Sprintf("/%s (HTTP %d, risk %s)", ep.Path, ep.StatusCode, ep.Risk), "", 1, "", false, 0, "")
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Vulnerabilities", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if len(r.Vulnerabilities) == 0 {
		pdf.CellFormat(0, 5, "No vulnerabilities identified.", "", 1, "", false, 0, "")
	}
	for _, v := range r.Vulnerabilities {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s: %s", v.Severity, v.Type, v.Description), "", "", false)
	}
	pdf.Ln(3)

	if recs := collectRecommendations(r); len(recs) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Recommendations", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for i, rec := range recs {
			if pdf.GetY() > 270 {
				pdf.AddPage()
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, rec), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
