// Package score ranks email candidates against the business's own domain and
// role-account heuristics.
package score

import "strings"

var roleAccounts = map[string]bool{
	"info": true, "contact": true, "hello": true, "office": true,
	"support": true, "sales": true, "bookings": true, "admin": true,
	"team": true, "service": true, "hi": true,
}

var freeMailDomains = map[string]bool{
	"gmail.com": true, "yahoo.com": true, "hotmail.com": true,
	"outlook.com": true, "aol.com": true,
}

const lengthPenaltyStart = 24

// Best returns the highest-scoring candidate for the given site host, or
// false for an empty set. Ties resolve to the earliest candidate.
func Best(candidates []string, siteHost string) (string, bool) {
	siteHost = normalizeHost(siteHost)
	best := ""
	bestScore := 0.0
	found := false
	for _, candidate := range candidates {
		s := scoreOne(strings.ToLower(candidate), siteHost)
		if !found || s > bestScore {
			best = strings.ToLower(candidate)
			bestScore = s
			found = true
		}
	}
	return best, found
}

func scoreOne(email, siteHost string) float64 {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return -1000
	}
	local, domain := email[:at], email[at+1:]
	domain = normalizeHost(domain)

	score := 0.0
	switch {
	case siteHost != "" && domain == siteHost:
		score += 50
	case siteHost != "" && strings.HasSuffix(domain, "."+siteHost):
		score += 40
	}
	if roleAccounts[local] {
		score += 8
	}
	if freeMailDomains[domain] {
		score -= 20
	}
	if extra := len(email) - lengthPenaltyStart; extra > 0 {
		score -= 0.1 * float64(extra)
	}
	return score
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
