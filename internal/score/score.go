// Package score turns a bundle of independent probe findings into a single
// bounded security score. Scoring is a pure function: the same bundle always
// produces the same score, and probes that failed upstream simply arrive as
// degraded bundle fields (e.g. TLS status Unknown) rather than aborting the
// calculation.
package score

// TLSStatus summarizes the outcome of the TLS probe.
type TLSStatus string

const (
	TLSOk      TLSStatus = "OK"
	TLSNone    TLSStatus = "NO_TLS"
	TLSError   TLSStatus = "TLS_ERROR"
	TLSUnknown TLSStatus = "UNKNOWN"
)

// Risk levels attached to exposed paths and external resources.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

// SensitiveFinding is one category of sensitive data found in page content.
type SensitiveFinding struct {
	Kind  string `json:"type"`
	Count int    `json:"count"`
}

// ExposedPath is a common sensitive path that answered something other than
// 404/403.
type ExposedPath struct {
	Path string `json:"path"`
	Risk string `json:"risk"`
}

// Bundle aggregates the probe findings for one target at one point in time.
// Field order is irrelevant to scoring; the caller owns the bundle and it is
// never mutated here.
type Bundle struct {
	TLSStatus              TLSStatus
	MissingSecurityHeaders []string
	SensitiveFindings      []SensitiveFinding
	ExposedPaths           []ExposedPath
}

// Penalty weights. Header and sensitive-info penalties are capped because
// those findings are common and must not dominate the score nonlinearly;
// exposed high-risk paths are severe enough to be individually additive
// without limit.
const (
	penaltyNoTLS        = 30
	penaltyTLSDegraded  = 20
	penaltyPerHeader    = 5
	headerPenaltyCap    = 25
	penaltyPerSensitive = 10
	sensitivePenaltyCap = 20
	penaltyPerHighPath  = 15
)

// Score maps a probe bundle to an integer in [0,100]. It starts at 100 and
// applies fixed additive penalties, clamping at zero only at the end.
func Score(b Bundle) int {
	penalty := 0

	switch b.TLSStatus {
	case TLSOk:
		// no penalty
	case TLSNone:
		penalty += penaltyNoTLS
	default:
		// TLS was attempted but errored or could not be verified.
		penalty += penaltyTLSDegraded
	}

	penalty += capped(len(b.MissingSecurityHeaders)*penaltyPerHeader, headerPenaltyCap)

	categories := 0
	for _, f := range b.SensitiveFindings {
		if f.Count > 0 {
			categories++
		}
	}
	penalty += capped(categories*penaltyPerSensitive, sensitivePenaltyCap)

	for _, p := range b.ExposedPaths {
		if p.Risk == RiskHigh {
			penalty += penaltyPerHighPath
		}
	}

	s := 100 - penalty
	if s < 0 {
		s = 0
	}
	return s
}

func capped(value, cap int) int {
	if value > cap {
		return cap
	}
	return value
}
