package defs_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"csmedia/internal/defs"
	"csmedia/internal/testsupport"
)

func TestPropertyVersionOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	component := gen.UInt32Range(0, 300)

	properties.Property("compare agrees with major, minor, patch ordering", prop.ForAll(
		func(a1, a2, a3, b1, b2, b3 uint32) bool {
			a := defs.Version{Major: a1, Minor: a2, Patch: a3}
			b := defs.Version{Major: b1, Minor: b2, Patch: b3}
			want := 0
			for _, pair := range [][2]uint32{{a1, b1}, {a2, b2}, {a3, b3}} {
				if pair[0] != pair[1] {
					if pair[0] < pair[1] {
						want = -1
					} else {
						want = 1
					}
					break
				}
			}
			return a.Compare(b) == want && b.Compare(a) == -want && a.Less(b) == (want < 0)
		},
		component, component, component, component, component, component,
	))

	byteComponent := gen.UInt32Range(0, 255)
	properties.Property("pack round trips byte-sized components", prop.ForAll(
		func(major, minor, patch uint32) bool {
			v := defs.Version{Major: major, Minor: minor, Patch: patch}
			return defs.UnpackVersion(v.Pack()) == v && v.Matches(v.Pack())
		},
		byteComponent, byteComponent, byteComponent,
	))

	properties.Property("components above a byte never match", prop.ForAll(
		func(major uint32) bool {
			v := defs.Version{Major: major}
			return !v.Matches(v.Pack())
		},
		gen.UInt32Range(256, 1<<20),
	))

	properties.TestingRun(t)
}

func TestPropertyIndexSizeDerivation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("each payload spans to the next offset minus the header", prop.ForAll(
		func(sizes []int) bool {
			if len(sizes) == 0 {
				return true
			}
			chunks := make([]testsupport.Chunk, len(sizes))
			for i, size := range sizes {
				chunks[i] = testsupport.Chunk{
					DCID:    fmt.Sprintf("dcid-%d", i),
					Type:    "gobo",
					Payload: bytes.Repeat([]byte{byte(i)}, size),
				}
			}
			dir := t.TempDir()
			defsPath := testsupport.WriteDefs(t, dir, "GOBOS.def", testsupport.BuildDefs("1.0.0"))
			indexPath, dataPath, _ := testsupport.WriteImageData(t, dir, chunks...)
			file, err := defs.OpenImage(defsPath, indexPath, dataPath)
			if err != nil {
				return false
			}
			defer file.Close()
			for _, chunk := range chunks {
				data, ok, err := file.DataForDCID("gobo", chunk.DCID)
				if err != nil || !ok || !bytes.Equal(data, chunk.Payload) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 512)),
	))

	properties.TestingRun(t)
}
