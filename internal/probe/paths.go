package probe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vigia-scan/vigia/internal/score"
)

// commonPaths is the static list of sensitive locations probed during full
// scans. One best-effort HEAD per path, no retries.
var commonPaths = []string{
	"admin", "administrator", "wp-admin", "phpmyadmin",
	"backup", "backups", "test", "tests", "dev",
	".git", ".svn", "config", "database",
}

// highRiskPaths mark the locations whose exposure is scored without a cap.
var highRiskPaths = map[string]struct{}{
	"admin":  {},
	".git":   {},
	"config": {},
}

// ExposedPathDetail records one probed path that answered something other
// than 404 or 403.
type ExposedPathDetail struct {
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	Risk       string `json:"risk"`
}

// PathsResult aggregates the sensitive-path probe.
type PathsResult struct {
	Status  string              `json:"status"`
	Exposed []ExposedPathDetail `json:"accessible_paths"`
	Error   string              `json:"error,omitempty"`
}

// CheckPaths issues a HEAD request for each common sensitive path. A reply
// outside {403, 404} counts as exposed. Redirects are not followed: a path
// that answers 3xx is exposed no matter where it points. Per-path failures
// are skipped; a single unreachable path must not hide the others.
func CheckPaths(ctx context.Context, target *TargetInfo, userAgent string, timeout time.Duration) *PathsResult {
	result := &PathsResult{Status: StatusOK, Exposed: []ExposedPathDetail{}}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	base := strings.TrimRight(target.FullURL, "/")

	for _, path := range commonPaths {
		if err := ctx.Err(); err != nil {
			result.Status = StatusError
			result.Error = err.Error()
			return result
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, base+"/"+path, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			continue
		}

		risk := score.RiskMedium
		if _, ok := highRiskPaths[path]; ok {
			risk = score.RiskHigh
		}
		result.Exposed = append(result.Exposed, ExposedPathDetail{
			Path:       path,
			StatusCode: resp.StatusCode,
			Risk:       risk,
		})
	}

	return result
}
