package probe

import (
	"net/url"
	"strings"

	sharederrors "github.com/vigia-scan/vigia/internal/shared/errors"
)

// TargetInfo contains parsed target information.
type TargetInfo struct {
	Original string // Original target string
	Scheme   string // http, https, or empty
	Host     string // Hostname (without protocol, path, port)
	Port     string // Port if specified
	Path     string // Path if specified
	FullURL  string // Full normalized URL (for HTTP requests)
}

// IsHTTPS reports whether the target uses TLS.
func (t *TargetInfo) IsHTTPS() bool {
	return t != nil && t.Scheme == "https"
}

// ParseTarget parses a target string into structured components.
// This handles various input formats:
//   - example.com
//   - http://example.com
//   - https://example.com:443/path
//   - example.com:8080
func ParseTarget(target string) (*TargetInfo, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, sharederrors.ErrEmptyTarget
	}

	info := &TargetInfo{Original: target}

	parsed, err := url.Parse(target)

	// If parsing fails, the scheme is empty, or the "scheme" is really a bare
	// hostname (contains dots), prepend http:// and parse again.
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		parsed, _ = url.Parse("http://" + target)
	}

	if parsed != nil {
		info.Scheme = parsed.Scheme
		info.Host = parsed.Hostname()
		info.Port = parsed.Port()
		info.Path = parsed.Path
		info.FullURL = parsed.String()
	}

	// Fallback: extract the host manually if URL parsing got nowhere.
	if info.Host == "" {
		host := target
		host = strings.TrimPrefix(host, "http://")
		host = strings.TrimPrefix(host, "https://")
		host = strings.Split(host, "/")[0]
		parts := strings.Split(host, ":")
		info.Host = parts[0]
		if len(parts) > 1 {
			info.Port = parts[1]
		}
		if info.Scheme == "" {
			info.Scheme = "http"
		}
		info.FullURL = info.Scheme + "://" + host
	}

	if info.Host == "" {
		return nil, sharederrors.ErrInvalidTarget
	}

	return info, nil
}
