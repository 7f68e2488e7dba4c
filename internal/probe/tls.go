package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/vigia-scan/vigia/internal/score"
)

// TLSResult captures the outcome of the TLS handshake probe.
type TLSResult struct {
	Status           score.TLSStatus `json:"status"`
	CertificateValid bool            `json:"certificate_valid"`
	ProtocolVersion  string          `json:"protocol_version,omitempty"`
	CipherSuite      string          `json:"cipher_suite,omitempty"`
	Issuer           string          `json:"issuer,omitempty"`
	ExpiryDate       string          `json:"expiry_date,omitempty"`
	DaysToExpiry     int             `json:"days_to_expiry,omitempty"`
	SelfSigned       bool            `json:"self_signed,omitempty"`
	Issues           []string        `json:"issues,omitempty"`
}

// CheckTLS inspects the target's TLS configuration. Non-HTTPS targets report
// NO_TLS without any network traffic. Handshake or certificate problems
// degrade the status instead of failing the scan.
func CheckTLS(ctx context.Context, target *TargetInfo, timeout time.Duration) *TLSResult {
	result := &TLSResult{Status: score.TLSUnknown}

	if !target.IsHTTPS() {
		result.Status = score.TLSNone
		result.Issues = append(result.Issues, "site does not use HTTPS")
		return result
	}

	port := target.Port
	if port == "" {
		port = "443"
	}
	addr := net.JoinHostPort(target.Host, port)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    &tls.Config{ServerName: target.Host},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		var certErr *tls.CertificateVerificationError
		var recordErr tls.RecordHeaderError
		switch {
		case errors.As(err, &certErr), errors.As(err, &recordErr):
			result.Status = score.TLSError
			result.Issues = append(result.Issues, fmt.Sprintf("TLS error: %v", err))
		default:
			result.Issues = append(result.Issues, fmt.Sprintf("connection error: %v", err))
		}
		return result
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	result.Status = score.TLSOk
	result.CertificateValid = true
	result.ProtocolVersion = tls.VersionName(state.Version)
	result.CipherSuite = tls.CipherSuiteName(state.CipherSuite)

	if len(state.PeerCertificates) > 0 {
		fillCertDetails(result, state.PeerCertificates[0])
	}

	return result
}

func fillCertDetails(result *TLSResult, cert *x509.Certificate) {
	result.Issuer = cert.Issuer.String()
	result.ExpiryDate = cert.NotAfter.UTC().Format(time.RFC3339)
	result.DaysToExpiry = int(time.Until(cert.NotAfter).Hours() / 24)
	result.SelfSigned = IsSelfSigned(cert)

	if result.DaysToExpiry < 0 {
		result.Issues = append(result.Issues, "certificate has expired")
	} else if result.DaysToExpiry < 30 {
		result.Issues = append(result.Issues, fmt.Sprintf("certificate expires in %d days", result.DaysToExpiry))
	}
	if result.SelfSigned {
		result.Issues = append(result.Issues, "self-signed certificate detected")
	}
}

// IsSelfSigned reports whether a certificate looks self-signed: the issuer
// matches the subject, or the issuer string carries an explicit marker.
func IsSelfSigned(cert *x509.Certificate) bool {
	if cert.Issuer.String() == cert.Subject.String() {
		return true
	}
	return strings.Contains(strings.ToLower(cert.Issuer.String()), "self-signed")
}
