// Package index answers "does this address belong to any configured
// network?" for a fixed list of hosts, CIDR blocks and address ranges.
//
// Every spec is bucketed under its network address masked by one global
// netmask, the mask of the least specific spec. A query masks the address
// the same way and scans a single bucket in insertion order. There is no
// longest-prefix match: the first spec that holds the address wins.
//
// An Index is immutable once built and may be shared by any number of
// goroutines. To change the networks, build a new Index and swap it in
// through a Holder.
package index

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"

	"project/host-services/cidr"
)

// ErrNoUsableNetworks is returned by Build when no pattern parsed.
var ErrNoUsableNetworks = errors.New("no usable networks")

// Index is a read-only membership index.
type Index struct {
	netmask  netip.Addr
	bits     int
	buckets  map[netip.Addr]cidr.SpecSlice
	entries  int
	dropped  int
	rejected []error
}

// Bucket is one bucket of an Index, for diagnostics.
type Bucket struct {
	Key   netip.Addr
	Specs cidr.SpecSlice
}

// Stats summarizes the shape of an Index.
type Stats struct {
	Netmask       netip.Addr
	Bits          int
	Buckets       int
	Entries       int
	LargestBucket int
	Dropped       int
	Rejected      int
}

// Build parses patterns and returns the index over every line that parsed.
// Blank lines are ignored; malformed lines are logged and skipped. When
// nothing parses the error wraps ErrNoUsableNetworks together with the
// per-line errors.
func Build(patterns []string) (*Index, error) {
	var (
		specs    cidr.SpecSlice
		rejected error
	)
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		spec, err := cidr.Parse(line)
		if err != nil {
			log.Warn("Skipping invalid network", "pattern", line, "error", err)
			rejected = multierr.Append(rejected, err)
			continue
		}
		specs = append(specs, spec)
	}

	if len(specs) == 0 {
		if rejected != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoUsableNetworks, rejected)
		}
		return nil, ErrNoUsableNetworks
	}

	coarsest := cidr.ByPrefixLen(specs)[0]
	idx := &Index{
		netmask:  coarsest.Netmask(),
		bits:     coarsest.PrefixLen(),
		buckets:  make(map[netip.Addr]cidr.SpecSlice),
		rejected: multierr.Errors(rejected),
	}

	for _, spec := range specs {
		key, ok := cidr.And(spec.Network().Addr(), idx.netmask)
		if !ok {
			log.Warn("Dropping network of a different address family than the index netmask",
				"network", spec, "netmask", idx.netmask)
			idx.dropped++
			continue
		}
		idx.buckets[key] = append(idx.buckets[key], spec)
		idx.entries++
	}

	log.Debug("Network index built",
		"netmask", idx.netmask,
		"buckets", len(idx.buckets),
		"entries", idx.entries,
		"dropped", idx.dropped,
		"rejected", len(idx.rejected))
	return idx, nil
}

// Contains reports whether address belongs to any network of the index.
// Unparsable input is simply not contained. A nil Index contains nothing.
func (idx *Index) Contains(address string) bool {
	addr, ok := cidr.ParseAddr(address)
	if !ok {
		return false
	}
	return idx.ContainsAddr(addr)
}

// ContainsAddr is Contains for an already parsed address.
func (idx *Index) ContainsAddr(addr netip.Addr) bool {
	_, found := idx.Lookup(addr)
	return found
}

// Lookup returns the first spec, in insertion order, of the bucket of addr
// that holds addr.
func (idx *Index) Lookup(addr netip.Addr) (cidr.Spec, bool) {
	if idx == nil {
		return cidr.Spec{}, false
	}
	key, ok := cidr.And(addr.WithZone(""), idx.netmask)
	if !ok {
		return cidr.Spec{}, false
	}
	for _, spec := range idx.buckets[key] {
		if spec.Contains(addr) {
			return spec, true
		}
	}
	return cidr.Spec{}, false
}

// Netmask returns the global netmask of the index.
func (idx *Index) Netmask() netip.Addr {
	if idx == nil {
		return netip.Addr{}
	}
	return idx.netmask
}

// Len returns the number of indexed specs.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.entries
}

// Rejected returns the errors of the lines that did not parse.
func (idx *Index) Rejected() []error {
	if idx == nil {
		return nil
	}
	return append([]error(nil), idx.rejected...)
}

// Buckets returns the buckets ordered by key. Specs keep insertion order.
func (idx *Index) Buckets() []Bucket {
	if idx == nil {
		return nil
	}
	out := make([]Bucket, 0, len(idx.buckets))
	for key, specs := range idx.buckets {
		out = append(out, Bucket{Key: key, Specs: append(cidr.SpecSlice(nil), specs...)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Less(out[j].Key)
	})
	return out
}

// Stats returns a summary of the index.
func (idx *Index) Stats() Stats {
	if idx == nil {
		return Stats{}
	}
	st := Stats{
		Netmask:  idx.netmask,
		Bits:     idx.bits,
		Buckets:  len(idx.buckets),
		Entries:  idx.entries,
		Dropped:  idx.dropped,
		Rejected: len(idx.rejected),
	}
	for _, specs := range idx.buckets {
		if len(specs) > st.LargestBucket {
			st.LargestBucket = len(specs)
		}
	}
	return st
}
