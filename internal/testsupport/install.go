package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// InstallFixture describes the contents of a fake vendor install. Empty
// fields fall back to DefaultInstall's values.
type InstallFixture struct {
	// Dir is the directory below the root holding the files.
	Dir     string
	Version string
	Gels    []Record
	Gobos   []Record
	Effects []Record
	Discs   []Record
	Chunks  []Chunk
	// Omit skips writing the named files.
	Omit []string
}

// DefaultInstall returns a small install with one series per kind.
func DefaultInstall() InstallFixture {
	return InstallFixture{
		Dir:     "bin/config",
		Version: "3.1.0",
		Gels: []Record{
			GelRecord("gel-1", "Lee,Standard", "106,Primary Red,255,0,0"),
			GelRecord("gel-2", "Lee,Standard", "119,Dark Blue,0,0,255"),
			GelRecord("gel-3", "Rosco,Supergel", "26,Light Red,255,0,0"),
		},
		Gobos: []Record{
			ImageRecord("GOBO", "gobo-1", "Rosco,Stock", "7001,Breakup"),
			ImageRecord("GOBO", "gobo-2", "Rosco,Stock", "7002,Leaves"),
		},
		Effects: []Record{
			ImageRecord("FXGLASS", "fx-1", "Apollo,Glass", "E1,Ripple"),
		},
		Discs: []Record{
			ImageRecord("FXDISC", "disc-1", "GAM,Film FX", "D1,Flame"),
		},
		Chunks: []Chunk{
			{DCID: "gobo-1", Type: "gobo", Payload: []byte("gobo one")},
			{DCID: "gobo-2", Type: "gobo", Payload: []byte("gobo two")},
			{DCID: "fx-1", Type: "effect", Payload: []byte("ripple")},
			{DCID: "disc-1", Type: "animation", Payload: []byte("flame")},
		},
	}
}

// WriteInstall writes the fixture below root.
func WriteInstall(t testing.TB, root string, fixture InstallFixture) {
	t.Helper()

	defaults := DefaultInstall()
	if fixture.Dir == "" {
		fixture.Dir = defaults.Dir
	}
	if fixture.Version == "" {
		fixture.Version = defaults.Version
	}
	dir := filepath.Join(root, filepath.FromSlash(fixture.Dir))
	EnsureDir(t, dir)

	WriteDefs(t, dir, "GELS.def", BuildDefs(fixture.Version, fixture.Gels...))
	WriteDefs(t, dir, "GOBOS.def", BuildDefs(fixture.Version, fixture.Gobos...))
	WriteDefs(t, dir, "EFFECTS.def", BuildDefs(fixture.Version, fixture.Effects...))
	WriteDefs(t, dir, "DISCS.def", BuildDefs(fixture.Version, fixture.Discs...))
	WriteImageData(t, dir, fixture.Chunks...)

	for _, name := range fixture.Omit {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			t.Fatalf("omit %s: %v", name, err)
		}
	}
}
