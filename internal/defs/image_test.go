package defs_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"csmedia/internal/defs"
	"csmedia/internal/testsupport"
)

func openImageFixture(t *testing.T, chunks ...testsupport.Chunk) (*defs.ImageFile, []int64, string) {
	t.Helper()
	dir := t.TempDir()
	defsPath := testsupport.WriteDefs(t, dir, "GOBOS.def", testsupport.BuildDefs("1.0.0"))
	indexPath, dataPath, offsets := testsupport.WriteImageData(t, dir, chunks...)
	file, err := defs.OpenImage(defsPath, indexPath, dataPath)
	if err != nil {
		t.Fatalf("OpenImage failed: %v", err)
	}
	t.Cleanup(func() { _ = file.Close() })
	return file, offsets, dataPath
}

func TestDataForDCIDDerivesSizesFromNextOffset(t *testing.T) {
	chunks := []testsupport.Chunk{
		{DCID: "g1", Type: "gobo", Payload: []byte("first-gobo")},
		{DCID: "e1", Type: "effect", Payload: []byte("an effect payload")},
		{DCID: "g2", Type: "gobo", Payload: []byte("second")},
		{DCID: "a1", Type: "animation", Payload: bytes.Repeat([]byte{1, 2, 3}, 50)},
	}
	file, offsets, dataPath := openImageFixture(t, chunks...)

	for i, chunk := range chunks[:len(chunks)-1] {
		data, ok, err := file.DataForDCID(chunk.Type, chunk.DCID)
		if err != nil || !ok {
			t.Fatalf("%s: expected data, got ok=%v err=%v", chunk.DCID, ok, err)
		}
		wantLen := offsets[i+1] - offsets[i] - defs.ChunkHeaderSize
		if int64(len(data)) != wantLen {
			t.Fatalf("%s: expected %d bytes, got %d", chunk.DCID, wantLen, len(data))
		}
		if !bytes.Equal(data, chunk.Payload) {
			t.Fatalf("%s: unexpected payload %q", chunk.DCID, data)
		}
	}

	info, err := os.Stat(dataPath)
	if err != nil {
		t.Fatalf("stat data: %v", err)
	}
	last := chunks[len(chunks)-1]
	data, ok, err := file.DataForDCID(last.Type, last.DCID)
	if err != nil || !ok {
		t.Fatalf("last chunk: expected data, got ok=%v err=%v", ok, err)
	}
	wantLen := info.Size() - offsets[len(offsets)-1] - defs.ChunkHeaderSize
	if int64(len(data)) != wantLen || !bytes.Equal(data, last.Payload) {
		t.Fatalf("last chunk: expected %d bytes, got %d", wantLen, len(data))
	}
}

func TestDataForDCIDUnknownEntries(t *testing.T) {
	file, _, _ := openImageFixture(t,
		testsupport.Chunk{DCID: "g1", Type: "gobo", Payload: []byte("x")},
	)
	if _, ok, err := file.DataForDCID("gobo", "missing"); ok || err != nil {
		t.Fatalf("expected missing dcid, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := file.DataForDCID("effect", "g1"); ok || err != nil {
		t.Fatalf("expected dcid scoped to type, got ok=%v err=%v", ok, err)
	}
	// Cached lookups keep answering the same way.
	if data, ok, err := file.DataForDCID("gobo", "g1"); !ok || err != nil || string(data) != "x" {
		t.Fatalf("unexpected cached lookup: %q ok=%v err=%v", data, ok, err)
	}
}

func TestDataIndexMalformedLine(t *testing.T) {
	dir := t.TempDir()
	defsPath := testsupport.WriteDefs(t, dir, "GOBOS.def", testsupport.BuildDefs("1.0.0"))
	indexPath := filepath.Join(dir, "bad.idx")
	dataPath := filepath.Join(dir, "bad.dat")
	if err := os.WriteFile(indexPath, []byte("g1,0,gobo,0\ng2,100,gobo\n"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(dataPath, make([]byte, 200), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	file, err := defs.OpenImage(defsPath, indexPath, dataPath)
	if err != nil {
		t.Fatalf("OpenImage failed: %v", err)
	}
	defer file.Close()
	if _, _, err := file.DataForDCID("gobo", "g1"); !errors.Is(err, defs.ErrDefs) {
		t.Fatalf("expected ErrDefs, got %v", err)
	}
}

func TestOpenImageMissingSidecars(t *testing.T) {
	dir := t.TempDir()
	defsPath := testsupport.WriteDefs(t, dir, "GOBOS.def", testsupport.BuildDefs("1.0.0"))
	indexPath, dataPath, _ := testsupport.WriteImageData(t, dir, testsupport.Chunk{DCID: "g", Type: "gobo"})

	if _, err := defs.OpenImage(defsPath, filepath.Join(dir, "none.idx"), dataPath); !errors.Is(err, defs.ErrDefs) {
		t.Fatalf("expected ErrDefs for missing index, got %v", err)
	}
	if _, err := defs.OpenImage(defsPath, indexPath, filepath.Join(dir, "none.dat")); !errors.Is(err, defs.ErrDefs) {
		t.Fatalf("expected ErrDefs for missing data, got %v", err)
	}
}
