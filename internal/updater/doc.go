// Package updater refreshes stale media caches in parallel.
//
// Each cache is rebuilt on its own goroutine while holding an advisory file
// lock next to the database, so concurrent csmedia processes never rebuild
// the same cache at once. Failures are collected per kind and reported
// together after every worker has finished.
package updater
