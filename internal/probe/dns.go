package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	mdns "github.com/miekg/dns"
)

// DNSResult holds informational record lookups for the target host. DNS data
// never influences the security score; it enriches full-scan reports only.
type DNSResult struct {
	Status  string              `json:"status"`
	Records map[string][]string `json:"records"`
	Error   string              `json:"error,omitempty"`
}

// CheckDNS resolves the common record types for the target host. Individual
// lookup failures are collected but do not fail the probe as long as at least
// one record type resolves.
func CheckDNS(ctx context.Context, target *TargetInfo, timeout time.Duration) *DNSResult {
	result := &DNSResult{Status: StatusOK, Records: make(map[string][]string)}

	resolver := &net.Resolver{PreferGo: true}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []string
	host := target.Host

	if addrs, err := resolver.LookupHost(lookupCtx, host); err != nil {
		errs = append(errs, fmt.Sprintf("A/AAAA lookup failed: %v", err))
	} else {
		var v4, v6 []string
		for _, a := range addrs {
			ip := net.ParseIP(a)
			if ip == nil {
				continue
			}
			if ip.To4() != nil {
				v4 = append(v4, a)
			} else {
				v6 = append(v6, a)
			}
		}
		if len(v4) > 0 {
			result.Records["A"] = v4
		}
		if len(v6) > 0 {
			result.Records["AAAA"] = v6
		}
	}

	if mxs, err := resolver.LookupMX(lookupCtx, host); err == nil {
		var out []string
		for _, mx := range mxs {
			out = append(out, fmt.Sprintf("%s (priority %d)", mx.Host, mx.Pref))
		}
		if len(out) > 0 {
			result.Records["MX"] = out
		}
	}

	if nss, err := resolver.LookupNS(lookupCtx, host); err == nil {
		var out []string
		for _, ns := range nss {
			out = append(out, ns.Host)
		}
		if len(out) > 0 {
			result.Records["NS"] = out
			// SOA needs a direct query; ask the first authoritative server.
			if soa := lookupSOA(host, nss[0].Host, timeout); soa != "" {
				result.Records["SOA"] = []string{soa}
			}
		}
	}

	if txts, err := resolver.LookupTXT(lookupCtx, host); err == nil && len(txts) > 0 {
		result.Records["TXT"] = txts
	}

	if len(result.Records) == 0 {
		result.Status = StatusError
		if len(errs) > 0 {
			result.Error = errs[0]
		} else {
			result.Error = "no records resolved"
		}
	}

	return result
}

func lookupSOA(domain, nameserver string, timeout time.Duration) string {
	c := new(mdns.Client)
	c.Timeout = timeout

	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(domain), mdns.TypeSOA)

	r, _, err := c.Exchange(msg, net.JoinHostPort(nameserver, "53"))
	if err != nil {
		return ""
	}
	for _, ans := range r.Answer {
		if soa, ok := ans.(*mdns.SOA); ok {
			return fmt.Sprintf("mname=%s rname=%s serial=%d", soa.Ns, soa.Mbox, soa.Serial)
		}
	}
	return ""
}
