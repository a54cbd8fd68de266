package domain

import "errors"

var (
	// ErrEmptyInput is returned when the URL or host to parse is empty.
	ErrEmptyInput = errors.New("empty url or host")

	// ErrNoHost is returned when a URL has no host component.
	ErrNoHost = errors.New("url has no host")

	// ErrNotRegistrable is returned when a host has no registrable domain,
	// for example "localhost" or a bare public suffix such as "co.uk".
	ErrNotRegistrable = errors.New("host has no registrable domain")
)
