// Package main provides the entry point for the privacyscan CLI.
//
// privacyscan turns the evidence a crawler collected about a website into a
// privacy score, a label and a prioritized list of issues, and keeps the
// history of every scoring run.
//
// Usage:
//
//	privacyscan import evidence.json --url https://www.example.com/
//	privacyscan score <scan-id>
//	privacyscan compare https://www.example.com/
//
// See --help for all available options.
package main

func main() {
	Execute()
}
