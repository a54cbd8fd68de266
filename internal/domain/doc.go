// Package domain derives registrable root domains and classifies observed
// domains as first-party or third-party relative to a scanned site.
//
// Root domains are computed against the public suffix list
// (golang.org/x/net/publicsuffix), so www.github.com and api.github.com both
// resolve to github.com while example.co.uk keeps its two-label suffix.
//
// Classification fails closed: when the root domain cannot be parsed,
// every observed domain is third-party, so a parse failure can only make a
// score stricter, never more lenient.
package domain
