package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project/host-services/flow"
	"project/host-services/index"
)

func TestFormatReport(t *testing.T) {
	hosts := flow.NewHosts()
	hosts.Insert("10.0.0.5", 0, flow.ProtoUDP)
	for i := 0; i < 4; i++ {
		hosts.Insert("10.0.0.7", 443, flow.ProtoTCP)
		hosts.Insert("10.0.0.7", 8443, flow.ProtoTCP)
	}
	services := flow.Services{"443/tcp": "HTTPS"}

	assert.Equal(t, []string{
		"hosts 2 entries",
		"10.0.0.5",
		"10.0.0.7",
		"",
		"servers 2 entries",
		"10.0.0.7\t443\ttcp\tHTTPS",
		"10.0.0.7\t8443\ttcp\t8443/tcp",
	}, FormatReport(hosts, 3, services))
}

func TestFormatReportEmpty(t *testing.T) {
	assert.Equal(t, []string{"hosts 0 entries", "", "servers 0 entries"},
		FormatReport(flow.NewHosts(), 3, nil))
}

func TestFormatIndex(t *testing.T) {
	idx, err := index.Build([]string{"10.0.0.0/16", "192.168.1.10..=192.168.1.20", "10.0.3.3", "::1", "nope"})
	require.NoError(t, err)

	got := strings.Join(FormatIndex(idx), "\n")
	assert.Equal(t, strings.Join([]string{
		"netmask 255.255.0.0 (/16)",
		"3 entries in 2 buckets, largest bucket 2, 1 dropped, 1 rejected",
		"10.0.0.0\t2",
		"\t10.0.0.0/16",
		"\t10.0.3.3/32",
		"192.168.0.0\t1",
		"\t192.168.1.10..=192.168.1.20 (covering 192.168.1.0/27)",
		`rejected` + "\t" + `invalid network "nope"`,
	}, "\n"), got)
}

func TestFormatIndexEmpty(t *testing.T) {
	assert.Equal(t, []string{"index empty: every address is treated as non-local"}, FormatIndex(nil))
}
