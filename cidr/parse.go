package cidr

import (
	"net/netip"
	"strings"
)

const rangeSep = "..="

// Parse reads one network description:
//
//	10.0.0.0/8            CIDR block
//	10.0.0.1..=10.0.0.9   inclusive range, both ends of one family
//	10.0.0.1, ::1         single host
//
// Errors are *ParseError values wrapping ErrInvalidNetwork or
// ErrSupernetSearchExhausted.
func Parse(text string) (Spec, error) {
	s := strings.TrimSpace(text)

	switch {
	case strings.Contains(s, "/"):
		p, err := netip.ParsePrefix(s)
		if err != nil || p.Addr().Zone() != "" {
			return Spec{}, &ParseError{Text: text, Err: ErrInvalidNetwork}
		}
		return Exact(p), nil

	case strings.Contains(s, rangeSep):
		first, last, _ := strings.Cut(s, rangeSep)
		lower, err := parseAddr(first)
		if err != nil {
			return Spec{}, &ParseError{Text: text, Err: err}
		}
		upper, err := parseAddr(last)
		if err != nil {
			return Spec{}, &ParseError{Text: text, Err: err}
		}
		spec, err := Range(lower, upper)
		if err != nil {
			return Spec{}, &ParseError{Text: text, Err: err}
		}
		return spec, nil

	case strings.Contains(s, ":"), strings.Contains(s, "."):
		addr, err := parseAddr(s)
		if err != nil {
			return Spec{}, &ParseError{Text: text, Err: err}
		}
		return Host(addr), nil
	}

	return Spec{}, &ParseError{Text: text, Err: ErrInvalidNetwork}
}

// parseAddr accepts a bare address whose family matches its notation:
// anything with a colon must be IPv6, a dotted quad must be IPv4.
func parseAddr(text string) (netip.Addr, error) {
	s := strings.TrimSpace(text)
	addr, err := netip.ParseAddr(s)
	if err != nil || addr.Zone() != "" {
		return netip.Addr{}, ErrInvalidNetwork
	}
	if strings.Contains(s, ":") != addr.Is6() {
		return netip.Addr{}, ErrInvalidNetwork
	}
	return addr, nil
}

// ParseAddr parses a query address. A zone suffix is dropped, so
// fe80::1%eth0 is looked up as fe80::1.
func ParseAddr(text string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(text))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.WithZone(""), true
}
