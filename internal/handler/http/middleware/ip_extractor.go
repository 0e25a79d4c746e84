package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor returns the client IP address of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address. It cannot be spoofed by the
// client and is the default when the gateway is not behind a proxy.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
//
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1"
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are
// believed.
type TrustedProxyConfig struct {
	Enabled      bool
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr belongs to a trusted proxy.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies builds a TrustedProxyConfig from IPs or CIDR ranges.
// Single IPs become /32 or /128 prefixes. An enabled config without any
// proxy is rejected so a typo cannot silently trust nobody.
func ParseTrustedProxies(enabled bool, entries []string) (TrustedProxyConfig, error) {
	cfg := TrustedProxyConfig{Enabled: enabled}
	if !enabled {
		return cfg, nil
	}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			ip, ipErr := netip.ParseAddr(entry)
			if ipErr != nil {
				return TrustedProxyConfig{}, fmt.Errorf("invalid IP or CIDR %q", entry)
			}
			prefix = netip.PrefixFrom(ip, ip.BitLen())
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, prefix)
	}

	if len(cfg.AllowedCIDRs) == 0 {
		return TrustedProxyConfig{}, fmt.Errorf("proxy trust is enabled but no trusted proxies are configured")
	}
	return cfg, nil
}

// TrustedProxyExtractor reads X-Forwarded-For, then X-Real-IP, when the peer
// is a trusted proxy, and falls back to RemoteAddr otherwise.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a new TrustedProxyExtractor.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// NewIPExtractor returns a TrustedProxyExtractor when proxy trust is enabled
// and a RemoteAddrExtractor otherwise.
func NewIPExtractor(config TrustedProxyConfig) IPExtractor {
	if !config.Enabled {
		return &RemoteAddrExtractor{}
	}
	return NewTrustedProxyExtractor(config)
}

// ExtractIP implements IPExtractor. Forwarding headers sent by an untrusted
// peer are logged and ignored, so clients cannot rotate their apparent IP.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return extractIPFromAddr(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		xff, xri := r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP")
		if xff != "" || xri != "" {
			slog.Warn("untrusted peer sent forwarding headers",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff),
				slog.String("x_real_ip", xri))
		}
		return extractIPFromAddr(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip, nil
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String(), nil
		}
	}
	return extractIPFromAddr(r.RemoteAddr)
}

// ClientIP returns the client IP of r, or the raw RemoteAddr when it cannot
// be parsed.
func ClientIP(r *http.Request, extractor IPExtractor) string {
	if extractor == nil {
		extractor = &RemoteAddrExtractor{}
	}
	ip, err := extractor.ExtractIP(r)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the client entry of an X-Forwarded-For list
// ("client, proxy1, proxy2"), or "" when it is not an IP.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
