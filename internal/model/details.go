package model

import (
	"encoding/json"
	"net"
	"net/url"
	"strings"
)

// Details is the typed payload of an evidence record.
// Exactly one implementation exists per EvidenceKind.
type Details interface {
	// Kind returns the evidence kind the details belong to.
	Kind() EvidenceKind
}

// TrackerDetails describes a request to a known tracking domain.
type TrackerDetails struct {
	Domain         string
	URL            string
	Category       string
	Fingerprinting bool
}

// ThirdPartyDetails describes a request to a domain other than the scanned site.
type ThirdPartyDetails struct {
	Domain string
	URL    string
}

// CookieDetails describes a cookie with missing or weak flags.
type CookieDetails struct {
	Name   string
	Domain string
	// Flags lists the problems found, e.g. "secure", "httponly", "samesite".
	Flags []string
}

// HeaderDetails names a missing security header.
type HeaderDetails struct {
	Name string
}

// ResourceDetails describes a resource loaded over plain HTTP.
// It is shared by the insecure and mixed-content kinds.
type ResourceDetails struct {
	ResourceKind EvidenceKind
	URL          string
}

// PolicyDetails records that a privacy policy was found.
type PolicyDetails struct {
	URL string
}

// TLSDetails records the TLS grade of the site.
type TLSDetails struct {
	Grade string
}

// FingerprintDetails records one browser fingerprinting signal, such as
// canvas or WebGL access.
type FingerprintDetails struct {
	Signal string
}

// UnknownDetails is returned for kinds the engine does not understand.
type UnknownDetails struct {
	RawKind EvidenceKind
}

// Kind implements Details.
func (TrackerDetails) Kind() EvidenceKind { return KindTracker }

// Kind implements Details.
func (ThirdPartyDetails) Kind() EvidenceKind { return KindThirdParty }

// Kind implements Details.
func (CookieDetails) Kind() EvidenceKind { return KindCookie }

// Kind implements Details.
func (HeaderDetails) Kind() EvidenceKind { return KindHeader }

// Kind implements Details.
func (d ResourceDetails) Kind() EvidenceKind {
	if d.ResourceKind == KindMixedContent {
		return KindMixedContent
	}
	return KindInsecure
}

// Kind implements Details.
func (PolicyDetails) Kind() EvidenceKind { return KindPolicy }

// Kind implements Details.
func (TLSDetails) Kind() EvidenceKind { return KindTLS }

// Kind implements Details.
func (FingerprintDetails) Kind() EvidenceKind { return KindFingerprint }

// Kind implements Details.
func (d UnknownDetails) Kind() EvidenceKind { return d.RawKind }

// DecodeDetails coerces a raw payload into the details type for kind.
// A payload that is not a JSON object is treated as empty.
func DecodeDetails(kind EvidenceKind, raw json.RawMessage) Details {
	f := parseFields(raw)

	switch kind {
	case KindTracker:
		return coerceTracker(f)
	case KindThirdParty:
		return coerceThirdParty(f)
	case KindCookie:
		return coerceCookie(f)
	case KindHeader:
		return HeaderDetails{Name: CanonicalHeaderName(f.str("name", "header"))}
	case KindInsecure, KindMixedContent:
		return ResourceDetails{ResourceKind: kind, URL: strings.TrimSpace(f.str("url", "resource", "src"))}
	case KindPolicy:
		return PolicyDetails{URL: strings.TrimSpace(f.str("url", "href"))}
	case KindTLS:
		return TLSDetails{Grade: strings.ToUpper(strings.TrimSpace(f.str("grade")))}
	case KindFingerprint:
		return FingerprintDetails{Signal: strings.ToLower(strings.TrimSpace(f.str("signal", "api", "type")))}
	default:
		return UnknownDetails{RawKind: kind}
	}
}

func coerceTracker(f fields) TrackerDetails {
	u := strings.TrimSpace(f.str("url"))
	domain := CanonicalDomain(f.str("domain", "host"))
	if domain == "" {
		domain = hostOf(u)
	}
	return TrackerDetails{
		Domain:         domain,
		URL:            u,
		Category:       strings.TrimSpace(f.str("category")),
		Fingerprinting: f.boolean("fingerprinting"),
	}
}

func coerceThirdParty(f fields) ThirdPartyDetails {
	u := strings.TrimSpace(f.str("url"))
	domain := CanonicalDomain(f.str("domain", "host"))
	if domain == "" {
		domain = hostOf(u)
	}
	return ThirdPartyDetails{Domain: domain, URL: u}
}

func coerceCookie(f fields) CookieDetails {
	flags := f.list("flags", "issues")
	for i, flag := range flags {
		flags[i] = strings.ToLower(strings.TrimSpace(flag))
	}
	return CookieDetails{
		Name:   strings.TrimSpace(f.str("name")),
		Domain: CanonicalDomain(f.str("domain")),
		Flags:  flags,
	}
}

// CanonicalDomain lowercases a host name and strips surrounding spaces,
// a trailing dot, a port and a leading "*.". URLs are reduced to their host.
func CanonicalDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		return hostOf(s)
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimPrefix(s, "*.")
	return strings.TrimSuffix(s, ".")
}

// CanonicalHeaderName lowercases and trims an HTTP header name.
func CanonicalHeaderName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// hostOf returns the canonical host of rawURL, or "" when it has none.
func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// fields is a loosely typed view of a details payload.
type fields map[string]any

// parseFields decodes raw into a map; anything but a JSON object yields nil.
func parseFields(raw json.RawMessage) fields {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// str returns the first string value found under keys.
func (f fields) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := f[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// boolean reads a flag that may have been encoded as a bool, a number or a string.
func (f fields) boolean(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

// list returns the string elements of a list value. A single string is
// treated as a one-element list; other element types are skipped.
func (f fields) list(keys ...string) []string {
	for _, k := range keys {
		switch v := f[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		case string:
			if v != "" {
				return []string{v}
			}
		}
	}
	return nil
}
