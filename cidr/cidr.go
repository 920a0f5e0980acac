// Fichier: cidr/cidr.go

package cidr

import (
	"net/netip"

	"go4.org/netipx"
)

// Spec is one canonical network description: either an exact CIDR block
// or an inclusive address range together with its covering block.
// The zero value is not a valid Spec; build one with Parse, Exact or Range.
type Spec struct {
	// network is the exact block, or the tightest block covering rng.
	network netip.Prefix
	// rng is only valid for range specs.
	rng netipx.IPRange
}

// SpecSlice is a slice of Spec that implements sort.Interface
// ordering by starting address (IPv4 before IPv6).
type SpecSlice []Spec

// Exact returns the spec for a CIDR block. Host bits are cleared.
func Exact(p netip.Prefix) Spec {
	return Spec{network: p.Masked()}
}

// Host returns the host-exact spec (/32 or /128) for addr.
func Host(addr netip.Addr) Spec {
	return Spec{network: netip.PrefixFrom(addr, addr.BitLen())}
}

// Range returns the spec for the inclusive interval [lower, upper].
func Range(lower, upper netip.Addr) (Spec, error) {
	rng := netipx.IPRangeFrom(lower, upper)
	if !rng.IsValid() {
		return Spec{}, ErrInvalidNetwork
	}
	covering, err := CoveringPrefix(lower, upper)
	if err != nil {
		return Spec{}, err
	}
	return Spec{network: covering, rng: rng}, nil
}

// IsRange reports whether s was built from an address range.
func (s Spec) IsRange() bool {
	return s.rng.IsValid()
}

// Network returns the exact block, or the covering block of a range.
func (s Spec) Network() netip.Prefix {
	return s.network
}

// PrefixLen returns the prefix length of Network.
func (s Spec) PrefixLen() int {
	return s.network.Bits()
}

// Netmask returns the network mask of Network as an address of the
// same family.
func (s Spec) Netmask() netip.Addr {
	return Mask(s.network.Bits(), s.network.Addr().Is4())
}

// Start returns the first address matched by s.
func (s Spec) Start() netip.Addr {
	if s.IsRange() {
		return s.rng.From()
	}
	return s.network.Addr()
}

// End returns the last address matched by s.
func (s Spec) End() netip.Addr {
	if s.IsRange() {
		return s.rng.To()
	}
	return netipx.PrefixLastIP(s.network)
}

// Is4 reports whether s is an IPv4 spec.
func (s Spec) Is4() bool {
	return s.network.Addr().Is4()
}

// Contains reports whether addr belongs to s. Range specs are decided by
// their exact bounds, never by the covering block.
func (s Spec) Contains(addr netip.Addr) bool {
	if s.IsRange() {
		return s.rng.Contains(addr)
	}
	return s.network.Contains(addr)
}

func (s Spec) String() string {
	if s.IsRange() {
		return s.rng.From().String() + rangeSep + s.rng.To().String()
	}
	return s.network.String()
}

// Mask returns the netmask with the given number of leading one bits,
// as a 4-byte address when is4 is set and a 16-byte one otherwise.
func Mask(bits int, is4 bool) netip.Addr {
	var b [16]byte
	for i := 0; i < bits && i < 128; i++ {
		b[i/8] |= 0x80 >> (i % 8)
	}
	if is4 {
		return netip.AddrFrom4([4]byte{b[0], b[1], b[2], b[3]})
	}
	return netip.AddrFrom16(b)
}

// And returns addr AND mask. The boolean is false when the two are of
// different address families, in which case no result exists.
func And(addr, mask netip.Addr) (netip.Addr, bool) {
	switch {
	case addr.Is4() && mask.Is4():
		a, m := addr.As4(), mask.As4()
		for i := range a {
			a[i] &= m[i]
		}
		return netip.AddrFrom4(a), true
	case addr.Is6() && mask.Is6():
		a, m := addr.As16(), mask.As16()
		for i := range a {
			a[i] &= m[i]
		}
		return netip.AddrFrom16(a), true
	default:
		return netip.Addr{}, false
	}
}
