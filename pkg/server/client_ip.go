package server

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// trustedProxies matches the addresses allowed to report a client address
// in Forwarded or X-Forwarded-For. In the two-process topology the RSC
// server trusts the SSR server, which sets X-Forwarded-For when proxying.
type trustedProxies struct {
	addrs    map[netip.Addr]struct{}
	prefixes []netip.Prefix
}

// newTrustedProxies parses IPs and CIDRs. Invalid entries are logged and
// skipped; nil is returned when nothing valid remains.
func newTrustedProxies(entries []string, logger *slog.Logger) *trustedProxies {
	t := &trustedProxies{addrs: make(map[netip.Addr]struct{})}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				logger.Warn("invalid trusted proxy CIDR", "entry", entry, "error", err)
				continue
			}
			t.prefixes = append(t.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.Warn("invalid trusted proxy IP", "entry", entry)
			continue
		}
		t.addrs[addr.Unmap()] = struct{}{}
	}
	if len(t.addrs) == 0 && len(t.prefixes) == 0 {
		return nil
	}
	return t
}

func (t *trustedProxies) contains(addr netip.Addr) bool {
	if t == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	if _, ok := t.addrs[addr]; ok {
		return true
	}
	for _, p := range t.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr returns the address of the client that made r. Forwarding
// headers are only honoured when the peer is trusted; the chain is then
// walked from the right and the first untrusted hop wins.
func clientAddr(r *http.Request, trusted *trustedProxies) netip.Addr {
	peer := parseHost(r.RemoteAddr)
	if !trusted.contains(peer) {
		return peer
	}

	chain := forwardedFor(r.Header.Get("Forwarded"))
	if len(chain) == 0 {
		chain = xForwardedFor(r.Header.Get("X-Forwarded-For"))
	}
	if len(chain) == 0 {
		return peer
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if !trusted.contains(chain[i]) {
			return chain[i]
		}
	}
	return chain[0]
}

// realIP rewrites r.RemoteAddr to the forwarded client address for requests
// arriving through a trusted proxy, so request logs show the browser.
func realIP(trusted *trustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if addr := clientAddr(r, trusted); addr.IsValid() && addr != parseHost(r.RemoteAddr) {
				r.RemoteAddr = net.JoinHostPort(addr.String(), "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedFor extracts the for= parameters of an RFC 7239 header.
func forwardedFor(header string) []netip.Addr {
	var out []netip.Addr
	for _, element := range splitList(header) {
		for _, pair := range strings.Split(element, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "for") {
				continue
			}
			if addr := parseHost(value); addr.IsValid() {
				out = append(out, addr)
			}
		}
	}
	return out
}

func xForwardedFor(header string) []netip.Addr {
	var out []netip.Addr
	for _, hop := range splitList(header) {
		if addr := parseHost(hop); addr.IsValid() {
			out = append(out, addr)
		}
	}
	return out
}

func splitList(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseHost parses an address that may be quoted, bracketed, carry a port
// or a zone. Obfuscated identifiers such as "unknown" give the zero Addr.
func parseHost(value string) netip.Addr {
	host := strings.Trim(strings.TrimSpace(value), `"`)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if zone := strings.IndexByte(host, '%'); zone != -1 {
		host = host[:zone]
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
