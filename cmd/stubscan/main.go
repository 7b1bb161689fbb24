// Package main provides the entry point for the stubscan CLI.
//
// stubscan finds shader effects in an effects library that are still stubs:
// register(...) calls whose code block is very short or carries a marker
// word such as TODO or Placeholder.
//
// Usage:
//
//	stubscan
//	stubscan scan src/js/effects.js
//	stubscan scan --dir src/js
//
// See --help for all available options.
package main

func main() {
	Execute()
}
