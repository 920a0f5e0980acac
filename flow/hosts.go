package flow

import (
	"sort"
)

// Endpoint is a local host seen on a port. Port 0 marks the host as the
// source side of a flow.
type Endpoint struct {
	Host  string
	Port  uint16
	Proto string
}

// Hosts counts flows per local endpoint.
type Hosts struct {
	counts map[Endpoint]uint32
}

// NewHosts returns an empty counter.
func NewHosts() *Hosts {
	return &Hosts{counts: make(map[Endpoint]uint32)}
}

// Insert counts one flow for host on port/proto.
func (h *Hosts) Insert(host string, port uint16, proto string) {
	h.counts[Endpoint{Host: host, Port: port, Proto: proto}]++
}

// Count returns the number of flows seen for the endpoint.
func (h *Hosts) Count(host string, port uint16, proto string) uint32 {
	return h.counts[Endpoint{Host: host, Port: port, Proto: proto}]
}

// Hosts returns every local host seen, sorted and without duplicates.
func (h *Hosts) Hosts() []string {
	seen := make(map[string]struct{}, len(h.counts))
	for ep := range h.counts {
		seen[ep.Host] = struct{}{}
	}
	hosts := make([]string, 0, len(seen))
	for host := range seen {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// Servers returns the endpoints reached on a destination port more than
// threshold times, sorted by host, port and protocol.
func (h *Hosts) Servers(threshold uint32) []Endpoint {
	var servers []Endpoint
	for ep, n := range h.counts {
		if ep.Port != 0 && n > threshold {
			servers = append(servers, ep)
		}
	}
	sort.Slice(servers, func(i, j int) bool {
		a, b := servers[i], servers[j]
		if a.Host != b.Host {
			return a.Host < b.Host
		}
		if a.Port != b.Port {
			return a.Port < b.Port
		}
		return a.Proto < b.Proto
	})
	return servers
}
