package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// NormalizeURL turns user input such as "Example.com/path" into an absolute
// URL with a lowercase host ("https://example.com/path"). Inputs without a
// scheme are assumed to be https.
func NormalizeURL(input string) (string, error) {
	u, err := parseInput(input)
	if err != nil {
		return "", err
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// RootDomain returns the registrable domain of a URL or bare host.
// IP addresses are returned unchanged because they have no public suffix.
//
//	RootDomain("https://www.github.com/x") == "github.com"
//	RootDomain("shop.example.co.uk")       == "example.co.uk"
func RootDomain(input string) (string, error) {
	u, err := parseInput(input)
	if err != nil {
		return "", err
	}
	return registrable(u.Hostname())
}

// registrable returns the eTLD+1 of host in ASCII form.
func registrable(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return "", ErrNoHost
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}

	root, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRegistrable, host)
	}
	return root, nil
}

// parseInput parses input as a URL, adding an https scheme when missing.
func parseInput(input string) (*url.URL, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", input, err)
	}
	if u.Hostname() == "" {
		return nil, ErrNoHost
	}
	return u, nil
}
