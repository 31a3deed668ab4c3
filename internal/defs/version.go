package defs

import "fmt"

// Version is the data version carried by a defs file header.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// Compare orders versions by major, then minor, then patch. It returns -1,
// 0, or 1.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpUint(v.Minor, other.Minor)
	default:
		return cmpUint(v.Patch, other.Patch)
	}
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Pack folds the version into the three-byte integer stored as the SQLite
// user_version. Components above 255 do not survive the round trip.
func (v Version) Pack() uint32 {
	return (v.Major&0xFF)<<16 | (v.Minor&0xFF)<<8 | v.Patch&0xFF
}

// Matches reports whether packed (as produced by Pack) describes v. Every
// component is compared in full, so a component above 255 never matches.
func (v Version) Matches(packed uint32) bool {
	return v.Major == (packed>>16)&0xFF &&
		v.Minor == (packed>>8)&0xFF &&
		v.Patch == packed&0xFF
}

// UnpackVersion reverses Pack.
func UnpackVersion(packed uint32) Version {
	return Version{
		Major: (packed >> 16) & 0xFF,
		Minor: (packed >> 8) & 0xFF,
		Patch: packed & 0xFF,
	}
}

func cmpUint(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
