package cidr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseAll(t *testing.T, texts ...string) SpecSlice {
	t.Helper()
	specs := make(SpecSlice, 0, len(texts))
	for _, text := range texts {
		spec, err := Parse(text)
		require.NoError(t, err, text)
		specs = append(specs, spec)
	}
	return specs
}

func specStrings(specs SpecSlice) []string {
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		out = append(out, spec.String())
	}
	return out
}

func TestDeduplicateAndSort(t *testing.T) {
	specs := mustParseAll(t,
		"2001:db8::/32",
		"192.168.0.0/16",
		"10.0.0.5",
		"10.0.0.0/8",
		"10.0.0.7/8",
		"10.0.0.1..=10.0.0.3",
		"10.0.0.0..=10.0.0.3",
	)

	got := DeduplicateAndSort(specs)
	assert.Equal(t, []string{
		"10.0.0.0/8",
		"10.0.0.0..=10.0.0.3",
		"10.0.0.1..=10.0.0.3",
		"10.0.0.5/32",
		"192.168.0.0/16",
		"2001:db8::/32",
	}, specStrings(got))
	assert.Len(t, specs, 7)
}

func TestByPrefixLen(t *testing.T) {
	specs := mustParseAll(t,
		"10.0.0.1",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"10.0.0.0/12",
		"::/8",
	)

	got := ByPrefixLen(specs)
	assert.Equal(t, []string{
		"::/8",
		"10.0.0.0/12",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"10.0.0.1/32",
	}, specStrings(got))
	assert.Equal(t, "10.0.0.1/32", specs[0].String())
}

func TestCanonicalPatterns(t *testing.T) {
	got := CanonicalPatterns([]string{
		"198.51.100.7",
		"192.0.2.77/24",
		"bogus",
		"198.51.100.7",
		"2001:DB8::1",
		"192.0.2.0/24",
	})
	assert.Equal(t, []string{"192.0.2.0/24", "198.51.100.7/32", "2001:db8::1/128", "bogus"}, got)
}
