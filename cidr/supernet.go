package cidr

import (
	"fmt"
	"net/netip"
)

// CoveringPrefix returns the tightest CIDR block containing both lower
// and upper. It starts from the host block of lower and widens it one bit
// at a time, so at most BitLen+1 blocks are examined.
func CoveringPrefix(lower, upper netip.Addr) (netip.Prefix, error) {
	if !lower.IsValid() || !upper.IsValid() || lower.BitLen() != upper.BitLen() {
		return netip.Prefix{}, fmt.Errorf("covering %s..=%s: %w", lower, upper, ErrSupernetSearchExhausted)
	}
	lower = lower.WithZone("")
	upper = upper.WithZone("")

	for bits := lower.BitLen(); bits >= 0; bits-- {
		candidate, err := lower.Prefix(bits)
		if err != nil {
			break
		}
		if candidate.Contains(upper) {
			return candidate, nil
		}
	}
	return netip.Prefix{}, fmt.Errorf("covering %s..=%s: %w", lower, upper, ErrSupernetSearchExhausted)
}
