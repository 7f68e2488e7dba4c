package monitor

import (
	"fmt"
	"strings"
)

// Severity ranks change events. Merging never downgrades: combining two
// severities keeps the highest.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "INFO"
	}
}

// MarshalJSON renders the severity as its label.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Merge returns the maximum of the two severities.
func (s Severity) Merge(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// ChangeType labels what kind of drift was detected between two polls.
type ChangeType string

const (
	ChangeContentModified ChangeType = "CONTENT_MODIFIED"
	ChangeStatusChanged   ChangeType = "STATUS_CHANGED"
)

// CertSignals carries the certificate facts used as secondary change
// signals. A nil CertSignals means the certificate could not be inspected;
// the check contributes nothing in that case.
type CertSignals struct {
	DaysToExpiry int
	SelfSigned   bool
}

// Observation is one poll's view of a target: its fingerprint plus the
// secondary signals the classifier consults when the fingerprint moved.
type Observation struct {
	Signature      string
	StatusCode     int
	MissingHeaders []string
	Cert           *CertSignals
}

// ChangeEvent describes one detected change. It is handed to the poll
// callback immediately and not retained.
type ChangeEvent struct {
	Target            string     `json:"target"`
	PreviousSignature string     `json:"previous_signature"`
	NewSignature      string     `json:"new_signature"`
	Type              ChangeType `json:"change_type"`
	Severity          Severity   `json:"severity"`
	Details           []string   `json:"details,omitempty"`
}

// certExpiryThresholdDays triggers the certificate warning signal.
const certExpiryThresholdDays = 30

// Classify compares two signatures. Equal signatures mean no change and a nil
// event. On difference, the event type and severity derive from the secondary
// signals in priority order; details accumulate from every matching check and
// the merged severity never downgrades.
func Classify(target, previous, current string, obs Observation) *ChangeEvent {
	if previous == current {
		return nil
	}

	ev := &ChangeEvent{
		Target:            target,
		PreviousSignature: previous,
		NewSignature:      current,
		Type:              ChangeContentModified,
		Severity:          SeverityInfo,
	}

	if obs.StatusCode != 200 {
		ev.Type = ChangeStatusChanged
		ev.Severity = ev.Severity.Merge(SeverityHigh)
		ev.Details = append(ev.Details, fmt.Sprintf("status code: %d", obs.StatusCode))
	}

	if len(obs.MissingHeaders) > 0 {
		ev.Severity = ev.Severity.Merge(SeverityMedium)
		ev.Details = append(ev.Details, "missing security headers: "+strings.Join(obs.MissingHeaders, ", "))
	}

	if obs.Cert != nil {
		if obs.Cert.DaysToExpiry < certExpiryThresholdDays {
			ev.Severity = ev.Severity.Merge(SeverityHigh)
			ev.Details = append(ev.Details, fmt.Sprintf("certificate expires in %d days", obs.Cert.DaysToExpiry))
		}
		if obs.Cert.SelfSigned {
			ev.Severity = ev.Severity.Merge(SeverityHigh)
			ev.Details = append(ev.Details, "self-signed certificate detected")
		}
	}

	return ev
}
