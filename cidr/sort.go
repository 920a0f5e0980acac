// Fichier: cidr/sort.go

package cidr

import (
	"sort"
)

// Compare orders specs by starting address (IPv4 before IPv6), then by
// prefix length (wider first), then by last address.
func Compare(a, b Spec) int {
	if c := a.Start().Compare(b.Start()); c != 0 {
		return c
	}
	if a.PrefixLen() != b.PrefixLen() {
		if a.PrefixLen() < b.PrefixLen() {
			return -1
		}
		return 1
	}
	return a.End().Compare(b.End())
}

func (s SpecSlice) Len() int           { return len(s) }
func (s SpecSlice) Less(i, j int) bool { return Compare(s[i], s[j]) < 0 }
func (s SpecSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// DeduplicateAndSort removes duplicates and returns the specs in
// address order. The input is left untouched.
func DeduplicateAndSort(specs SpecSlice) SpecSlice {
	// 1. Déduplication
	seen := make(map[string]struct{}, len(specs))
	result := make(SpecSlice, 0, len(specs))
	for _, spec := range specs {
		key := spec.String()
		if _, found := seen[key]; found {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, spec)
	}

	// 2. Tri
	sort.Sort(result)
	return result
}

// ByPrefixLen returns a copy of specs ranked from the least specific
// (shortest prefix) to the most specific. Ties keep address order.
func ByPrefixLen(specs SpecSlice) SpecSlice {
	ranked := append(SpecSlice(nil), specs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PrefixLen() != ranked[j].PrefixLen() {
			return ranked[i].PrefixLen() < ranked[j].PrefixLen()
		}
		return Compare(ranked[i], ranked[j]) < 0
	})
	return ranked
}

// CanonicalPatterns rewrites patterns in canonical form, without duplicates
// and in address order. Lines that do not parse are kept, after the others,
// so that whoever builds from them still reports them.
func CanonicalPatterns(patterns []string) []string {
	var (
		specs   SpecSlice
		invalid []string
	)
	for _, pattern := range patterns {
		spec, err := Parse(pattern)
		if err != nil {
			invalid = append(invalid, pattern)
			continue
		}
		specs = append(specs, spec)
	}

	out := make([]string, 0, len(specs)+len(invalid))
	for _, spec := range DeduplicateAndSort(specs) {
		out = append(out, spec.String())
	}
	return append(out, invalid...)
}
