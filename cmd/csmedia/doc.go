// Package main hosts the csmedia CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and the vendor install once,
// then hands off to the internal packages: updater for rebuilding caches,
// mediadb for browsing them, and install for diagnosing the layout. Every
// listing renders as a table, or as JSON with --json.
package main
