// Package install finds the vendor editor's data files and opens the media
// caches built from them.
//
// An install root is valid when all six files (the image data and index plus
// the disc, effect, gel and gobo defs) resolve under one of the known
// relative locations. Caches live outside the install, one SQLite file per
// kind in the configured cache directory.
package install
