// Package service holds domain logic that spans entities: host matching
// against the public suffix list and the legacy host-to-origin expansion.
package service

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the eTLD+1 of host.
// IP literals and hosts without a registrable domain (localhost, bare public
// suffixes) return the host itself with ok=false.
func RegistrableDomain(host string) (domain string, ok bool) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || net.ParseIP(host) != nil {
		return host, false
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, false
	}
	return etld1, true
}

// AncestorHosts returns the parent hosts of host, nearest first, ending with
// its registrable domain. It never climbs past the registrable domain, so the
// result is empty for registrable domains themselves and for IP literals.
func AncestorHosts(host string) []string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	etld1, ok := RegistrableDomain(host)
	if !ok || host == etld1 || !strings.HasSuffix(host, "."+etld1) {
		return nil
	}

	var ancestors []string
	for h := host; h != etld1; {
		_, parent, _ := strings.Cut(h, ".")
		ancestors = append(ancestors, parent)
		h = parent
	}
	return ancestors
}
