// Package mediadb projects vendor defs files into per-kind SQLite caches and
// serves typed queries over them.
//
// Every cache file holds the manufacturer and series tables plus one media
// table (gel, gobo, effect or disc). Opening a cache walks a small recovery
// state machine: a failed open is retried after a read-only reopen, and a
// second failure deletes the file and its sidecars so a fresh cache can be
// built. Caches are stamped with an application id and with the packed defs
// version they were built from; UpToDate compares that stamp with the defs
// header and Update rebuilds the cache from scratch.
//
// A store handle is owned by one goroutine. Run one Update per kind in
// parallel against separate files, never two against the same file.
package mediadb
