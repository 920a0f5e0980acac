// Fichier: formatter/output.go

package formatter

import (
	"fmt"

	"project/host-services/cidr"
	"project/host-services/flow"
	"project/host-services/index"
)

// FormatReport renders the local hosts and the servers found among them.
// Service names come from services; unknown ones print as port/proto.
func FormatReport(hosts *flow.Hosts, threshold uint32, services flow.Services) []string {
	list := hosts.Hosts()
	servers := hosts.Servers(threshold)

	lines := make([]string, 0, len(list)+len(servers)+3)
	lines = append(lines, fmt.Sprintf("hosts %d entries", len(list)))
	lines = append(lines, list...)

	lines = append(lines, "", fmt.Sprintf("servers %d entries", len(servers)))
	for _, s := range servers {
		lines = append(lines, fmt.Sprintf("%s\t%d\t%s\t%s", s.Host, s.Port, s.Proto, services.Name(s.Port, s.Proto)))
	}
	return lines
}

// FormatIndex renders the buckets of idx, one bucket header per key
// followed by its networks in lookup order, then the rejected lines.
func FormatIndex(idx *index.Index) []string {
	st := idx.Stats()
	if st.Entries == 0 {
		return []string{"index empty: every address is treated as non-local"}
	}

	lines := []string{
		fmt.Sprintf("netmask %s (/%d)", st.Netmask, st.Bits),
		fmt.Sprintf("%d entries in %d buckets, largest bucket %d, %d dropped, %d rejected",
			st.Entries, st.Buckets, st.LargestBucket, st.Dropped, st.Rejected),
	}
	for _, b := range idx.Buckets() {
		lines = append(lines, fmt.Sprintf("%s\t%d", b.Key, len(b.Specs)))
		for _, spec := range b.Specs {
			lines = append(lines, "\t"+describe(spec))
		}
	}
	for _, err := range idx.Rejected() {
		lines = append(lines, "rejected\t"+err.Error())
	}
	return lines
}

func describe(spec cidr.Spec) string {
	if spec.IsRange() {
		return fmt.Sprintf("%s (covering %s)", spec, spec.Network())
	}
	return spec.String()
}
