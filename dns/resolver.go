// Fichier: dns/resolver.go

package dns

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/miekg/dns"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultMaxLookups = 10 // Standard SPF lookup limit
const dnsTimeout = 5 * time.Second

// ErrLookupLimit is returned when a domain needs more TXT lookups than allowed.
var ErrLookupLimit = errors.New("SPF lookup limit reached")

// Resolver turns SPF records into network patterns.
type Resolver struct {
	client     *dns.Client
	server     string
	maxLookups int
	limit      int
}

// NewResolver creates a Resolver querying server (host:port). At most
// concurrencyLimit domains are resolved at the same time and each domain
// may use up to maxLookups TXT lookups, includes included.
func NewResolver(server string, concurrencyLimit, maxLookups int) *Resolver {
	if concurrencyLimit <= 0 {
		concurrencyLimit = 1
	}
	if maxLookups <= 0 {
		maxLookups = defaultMaxLookups
	}
	return &Resolver{
		client:     &dns.Client{Timeout: dnsTimeout},
		server:     server,
		maxLookups: maxLookups,
		limit:      concurrencyLimit,
	}
}

// lookupTracker records the domains whose TXT record was fetched during one
// flattening, to count lookups and break include cycles.
type lookupTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
	max  int
}

// visit registers domain. It reports false when domain was seen already.
func (t *lookupTracker) visit(domain string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := strings.ToLower(dns.Fqdn(domain))
	if _, ok := t.seen[key]; ok {
		return false, nil
	}
	if len(t.seen) >= t.max {
		return false, fmt.Errorf("%w (%d) at %s", ErrLookupLimit, t.max, domain)
	}
	t.seen[key] = struct{}{}
	return true, nil
}

// ResolveAll flattens the SPF records of every domain concurrently and
// returns the patterns of the domains that resolved. Failing domains are
// logged and reported through the combined error.
func (r *Resolver) ResolveAll(ctx context.Context, domains []string) ([]string, error) {
	results := make([][]string, len(domains))
	errs := make([]error, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, domain := range domains {
		i, domain := i, domain
		g.Go(func() error {
			patterns, err := r.Patterns(gctx, domain)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				log.Warn("SPF resolution failed", "domain", domain, "error", err)
				errs[i] = err
				return nil
			}
			results[i] = patterns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, patterns := range results {
		all = append(all, patterns...)
	}
	return all, multierr.Combine(errs...)
}

// Patterns flattens the SPF record of domain into network patterns:
// ip4/ip6 mechanisms as written, a and mx mechanisms as the host addresses
// they resolve to, include mechanisms recursively.
func (r *Resolver) Patterns(ctx context.Context, domain string) ([]string, error) {
	tracker := &lookupTracker{seen: make(map[string]struct{}), max: r.maxLookups}
	patterns, err := r.flatten(ctx, tracker, domain)
	if err != nil {
		return nil, err
	}
	log.Debug("SPF record flattened", "domain", domain, "patterns", len(patterns), "lookups", len(tracker.seen))
	return patterns, nil
}

// resolveDNS performs the actual DNS query and fails on anything but NOERROR.
func (r *Resolver) resolveDNS(ctx context.Context, domain string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), qtype)
	m.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, fmt.Errorf("DNS query error for %s (%s): %w", domain, dns.TypeToString[qtype], err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("DNS response failed for %s (%s). Rcode: %s", domain, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
	}
	return resp, nil
}

// flatten recursively resolves the SPF record of domain.
func (r *Resolver) flatten(ctx context.Context, tracker *lookupTracker, domain string) ([]string, error) {
	first, err := tracker.visit(domain)
	if err != nil {
		return nil, err
	}
	if !first {
		log.Warn("Detected SPF include cycle, skipping", "domain", domain)
		return nil, nil
	}

	resp, err := r.resolveDNS(ctx, domain, dns.TypeTXT)
	if err != nil {
		return nil, err
	}

	// Find SPF record
	spfRecord := ""
	for _, ans := range resp.Answer {
		if t, ok := ans.(*dns.TXT); ok && len(t.Txt) > 0 && strings.HasPrefix(strings.ToLower(t.Txt[0]), "v=spf1") {
			spfRecord = strings.Join(t.Txt, "")
			break
		}
	}
	if spfRecord == "" {
		log.Warn("No SPF record found, skipping", "domain", domain)
		return nil, nil
	}

	var patterns []string
	for _, mechanism := range strings.Fields(spfRecord)[1:] {
		nets, err := r.resolveMechanism(ctx, tracker, domain, mechanism)
		if err != nil {
			return nil, fmt.Errorf("error resolving mechanism %s in %s: %w", mechanism, domain, err)
		}
		patterns = append(patterns, nets...)
	}
	return patterns, nil
}

// resolveMechanism handles the logic for the different SPF mechanisms.
// Mechanisms that cannot contribute networks (all, exists, redirect,
// exp, ptr) and negated qualifiers yield nothing.
func (r *Resolver) resolveMechanism(ctx context.Context, tracker *lookupTracker, baseDomain, mechanism string) ([]string, error) {
	switch mechanism[0] {
	case '-', '~', '?':
		return nil, nil
	case '+':
		mechanism = mechanism[1:]
	}
	name, arg, _ := strings.Cut(strings.ToLower(mechanism), ":")
	name, _, _ = strings.Cut(name, "/")

	// ip4/ip6: direct inclusion (no DNS lookup)
	if name == "ip4" || name == "ip6" {
		_, value, _ := strings.Cut(mechanism, ":")
		pattern, err := ipMechanismPattern(name, value)
		if err != nil {
			return nil, err
		}
		return []string{pattern}, nil
	}

	// a, mx, include carry an optional domain and dual CIDR length
	target, _, _ := strings.Cut(arg, "/")
	if target == "" {
		target = baseDomain
	}

	switch name {
	case "include":
		if arg == "" {
			return nil, fmt.Errorf("include without domain")
		}
		return r.flatten(ctx, tracker, target)
	case "a":
		return r.resolveHosts(ctx, target)
	case "mx":
		return r.resolveMX(ctx, target)
	default:
		return nil, nil
	}
}

// ipMechanismPattern validates an ip4:/ip6: value and returns it as a
// pattern, a bare address or a CIDR block of the announced family.
func ipMechanismPattern(name, value string) (string, error) {
	if strings.Contains(value, "/") {
		p, err := netip.ParsePrefix(value)
		if err != nil || p.Addr().Is4() != (name == "ip4") {
			return "", fmt.Errorf("invalid CIDR syntax in SPF record: %s:%s", name, value)
		}
		return p.Masked().String(), nil
	}
	addr, err := netip.ParseAddr(value)
	if err != nil || addr.Is4() != (name == "ip4") {
		return "", fmt.Errorf("expected %s address in SPF record: %s:%s", name, name, value)
	}
	return addr.String(), nil
}

// resolveHosts returns the A and AAAA addresses of domain. A failing
// record type is logged and skipped.
func (r *Resolver) resolveHosts(ctx context.Context, domain string) ([]string, error) {
	var results []string

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, err := r.resolveDNS(ctx, domain, qtype)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("Failed to resolve host records", "domain", domain, "type", dns.TypeToString[qtype], "error", err)
			continue
		}
		for _, ans := range resp.Answer {
			switch t := ans.(type) {
			case *dns.A:
				if addr, ok := netip.AddrFromSlice(t.A.To4()); ok {
					results = append(results, addr.String())
				}
			case *dns.AAAA:
				if addr, ok := netip.AddrFromSlice(t.AAAA.To16()); ok {
					results = append(results, addr.String())
				}
			}
		}
	}
	return results, nil
}

// resolveMX resolves the MX hosts of domain, then the addresses of each.
func (r *Resolver) resolveMX(ctx context.Context, domain string) ([]string, error) {
	resp, err := r.resolveDNS(ctx, domain, dns.TypeMX)
	if err != nil {
		return nil, err
	}

	var results []string
	for _, ans := range resp.Answer {
		if mx, ok := ans.(*dns.MX); ok {
			hosts, err := r.resolveHosts(ctx, mx.Mx)
			if err != nil {
				return nil, err
			}
			results = append(results, hosts...)
		}
	}
	return results, nil
}
