package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultHTTPTimeout bounds every outbound request, including DNS resolution.
	DefaultHTTPTimeout = 10 * time.Second
	// PathProbeTimeout is the shorter limit used for sensitive-path HEAD probes.
	PathProbeTimeout = 5 * time.Second
	// DefaultMonitorInterval is the pause between monitoring sweeps.
	DefaultMonitorInterval = 300 * time.Second
	// CertExpiryWarningWindow flags certificates that expire inside this window.
	CertExpiryWarningWindow = 30 * 24 * time.Hour
)

const (
	// MaxBodyBytes caps how much of a response body is read for analysis.
	MaxBodyBytes = 2 * 1024 * 1024
	// MaxSensitiveSamples caps how many example matches are kept per finding.
	MaxSensitiveSamples = 3
)

const (
	// UserAgent identifies scan traffic to target operators.
	UserAgent = "vigia/1.0 (security scanner; +https://github.com/vigia-scan/vigia)"
	// MonitorUserAgent identifies monitoring traffic.
	MonitorUserAgent = "vigia-monitor/1.0"
)
