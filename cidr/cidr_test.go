package cidr

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		text    string
		want    string
		isRange bool
		bits    int
	}{
		{"10.0.0.0/8", "10.0.0.0/8", false, 8},
		{"  192.168.1.7/24 ", "192.168.1.0/24", false, 24},
		{"127.0.0.1", "127.0.0.1/32", false, 32},
		{"::1", "::1/128", false, 128},
		{"2001:db8::/32", "2001:db8::/32", false, 32},
		{"::ffff:10.0.0.1", "::ffff:10.0.0.1/128", false, 128},
		{"11.10.1.100..=11.10.1.109", "11.10.1.100..=11.10.1.109", true, 28},
		{"10.0.0.1 ..= 10.0.0.1", "10.0.0.1..=10.0.0.1", true, 32},
		{"2001:db8::1..=2001:db8::ff", "2001:db8::1..=2001:db8::ff", true, 120},
	}

	for _, tc := range cases {
		spec, err := Parse(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, spec.String(), tc.text)
		assert.Equal(t, tc.isRange, spec.IsRange(), tc.text)
		assert.Equal(t, tc.bits, spec.PrefixLen(), tc.text)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"localhost",
		"10.0.0.0/33",
		"10.0.0",
		"10.0.0.1..=::1",
		"10.0.0.9..=10.0.0.1",
		"10.0.0.1..=",
		"fe80::1%eth0",
		"fe80::/10%eth0",
		"1.2.3.4.5",
	}

	for _, text := range cases {
		_, err := Parse(text)
		require.Error(t, err, text)
		assert.ErrorIs(t, err, ErrInvalidNetwork, text)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), text)
		assert.Equal(t, text, perr.Text)
	}
}

func TestSpecContains(t *testing.T) {
	exact, err := Parse("192.168.0.0/16")
	require.NoError(t, err)
	assert.True(t, exact.Contains(netip.MustParseAddr("192.168.255.1")))
	assert.False(t, exact.Contains(netip.MustParseAddr("192.169.0.1")))
	assert.False(t, exact.Contains(netip.MustParseAddr("::ffff:192.168.0.1")))

	rng, err := Parse("11.10.1.100..=11.10.1.109")
	require.NoError(t, err)
	assert.Equal(t, "11.10.1.96/28", rng.Network().String())
	assert.True(t, rng.Contains(netip.MustParseAddr("11.10.1.100")))
	assert.True(t, rng.Contains(netip.MustParseAddr("11.10.1.109")))
	// inside the covering block, outside the bounds
	assert.False(t, rng.Contains(netip.MustParseAddr("11.10.1.99")))
	assert.False(t, rng.Contains(netip.MustParseAddr("11.10.1.110")))
	assert.False(t, rng.Contains(netip.MustParseAddr("::1")))
}

func TestSpecBounds(t *testing.T) {
	spec, err := Parse("10.1.2.3/30")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.0", spec.Start().String())
	assert.Equal(t, "10.1.2.3", spec.End().String())
	assert.Equal(t, "255.255.255.252", spec.Netmask().String())
	assert.True(t, spec.Is4())

	spec, err = Parse("2001:db8::10..=2001:db8::20")
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::10", spec.Start().String())
	assert.Equal(t, "2001:db8::20", spec.End().String())
	assert.False(t, spec.Is4())
}

func TestMaskAndAnd(t *testing.T) {
	assert.Equal(t, "0.0.0.0", Mask(0, true).String())
	assert.Equal(t, "255.240.0.0", Mask(12, true).String())
	assert.Equal(t, "255.255.255.255", Mask(32, true).String())
	assert.Equal(t, "ffff:ffff:ffff:ff00::", Mask(56, false).String())

	got, ok := And(netip.MustParseAddr("172.31.200.7"), Mask(12, true))
	require.True(t, ok)
	assert.Equal(t, "172.16.0.0", got.String())

	_, ok = And(netip.MustParseAddr("::1"), Mask(12, true))
	assert.False(t, ok)
	_, ok = And(netip.MustParseAddr("10.0.0.1"), Mask(12, false))
	assert.False(t, ok)
}

func TestParseAddr(t *testing.T) {
	addr, ok := ParseAddr(" fe80::1%eth0 ")
	require.True(t, ok)
	assert.Equal(t, "fe80::1", addr.String())

	_, ok = ParseAddr("not-an-ip")
	assert.False(t, ok)
}
