package probe

import (
	"net"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// WhoisResult carries registration facts for the target domain. Informational
// only; it never influences the security score.
type WhoisResult struct {
	Status         string   `json:"status"`
	Registrar      string   `json:"registrar,omitempty"`
	CreatedDate    string   `json:"created_date,omitempty"`
	ExpirationDate string   `json:"expiration_date,omitempty"`
	NameServers    []string `json:"name_servers,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// CheckWhois looks up and parses registration data for the target domain.
// IP-literal targets are skipped: the registration record of an address block
// says nothing useful about a single web endpoint.
func CheckWhois(target *TargetInfo) *WhoisResult {
	result := &WhoisResult{Status: StatusOK}

	if net.ParseIP(target.Host) != nil {
		result.Status = StatusSkipped
		return result
	}

	raw, err := whois.Whois(target.Host)
	if err != nil {
		result.Status = StatusError
		result.Error = "whois lookup failed: " + err.Error()
		return result
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		result.Status = StatusError
		result.Error = "whois parse failed: " + err.Error()
		return result
	}

	if parsed.Registrar != nil {
		result.Registrar = parsed.Registrar.Name
	}
	if parsed.Domain != nil {
		result.CreatedDate = parsed.Domain.CreatedDate
		result.ExpirationDate = parsed.Domain.ExpirationDate
		result.NameServers = parsed.Domain.NameServers
	}

	return result
}
