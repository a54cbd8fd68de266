package domain

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// Classifier decides whether observed domains belong to one scanned site.
// The zero value classifies everything as third-party.
type Classifier struct {
	// root is the registrable root domain in ASCII form; empty when the
	// root could not be parsed.
	root string

	// ip is set when the site was scanned by IP address.
	ip bool
}

// NewClassifier creates a Classifier for rootDomain. The root is reduced to
// its registrable domain first, so "www.github.com" behaves like "github.com".
// An unparseable root yields a Classifier that treats every domain as
// third-party.
func NewClassifier(rootDomain string) *Classifier {
	root, err := registrable(rootDomain)
	if err != nil {
		return &Classifier{}
	}
	return &Classifier{
		root: root,
		ip:   net.ParseIP(root) != nil,
	}
}

// Root returns the registrable root domain, or "" if it could not be parsed.
func (c *Classifier) Root() string {
	return c.root
}

// IsFirstParty reports whether observed is the root domain or one of its
// subdomains, such as a CDN or asset host operated by the site itself.
func (c *Classifier) IsFirstParty(observed string) bool {
	if c == nil || c.root == "" {
		return false
	}

	host := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(observed)), ".")
	if host == "" {
		return false
	}
	if c.ip {
		return host == c.root
	}

	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return host == c.root || strings.HasSuffix(host, "."+c.root)
}

// IsFirstParty reports whether observedDomain belongs to the site whose
// registrable domain is rootDomain. See Classifier.IsFirstParty.
func IsFirstParty(observedDomain, rootDomain string) bool {
	return NewClassifier(rootDomain).IsFirstParty(observedDomain)
}
