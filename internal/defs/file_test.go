package defs_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"csmedia/internal/defs"
	"csmedia/internal/testsupport"
)

func TestOpenReadsVersionAndRecords(t *testing.T) {
	path := testsupport.WriteDefs(t, t.TempDir(), "GELS.def", testsupport.GelDefs)

	file, err := defs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	want := defs.Version{Major: 12, Minor: 1, Patch: 0}
	if file.Version() != want {
		t.Fatalf("unexpected version: got %s want %s", file.Version(), want)
	}

	var records []defs.Def
	for {
		record, ok, err := file.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		records = append(records, record)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	cases := []struct {
		dcid string
		info string
	}{
		{"6356B5B5-0127-2D47-AC1C-5AD540D7D7D9", "1050,Soft Diffusion,254,255,251"},
		{"4F5EC26C-D332-C146-8988-AEBA12B52916", "1100,Hard Diffusion,254,255,244"},
	}
	for i, tc := range cases {
		record := records[i]
		if record.RecordName != "GEL" {
			t.Fatalf("record %d: unexpected name %q", i, record.RecordName)
		}
		if len(record.Contents) != 3 {
			t.Fatalf("record %d: expected 3 fields, got %v", i, record.Contents)
		}
		if record.Contents["DCID"] != tc.dcid {
			t.Fatalf("record %d: unexpected DCID %q", i, record.Contents["DCID"])
		}
		if record.Contents["GELMANUFACTURER"] != "Apollo,Gel" {
			t.Fatalf("record %d: unexpected GELMANUFACTURER %q", i, record.Contents["GELMANUFACTURER"])
		}
		if record.Contents["GELINFO"] != tc.info {
			t.Fatalf("record %d: unexpected GELINFO %q", i, record.Contents["GELINFO"])
		}
	}

	for i := 0; i < 3; i++ {
		if _, ok, err := file.Next(); ok || err != nil {
			t.Fatalf("expected exhausted file, got ok=%v err=%v", ok, err)
		}
	}
	if file.Position() != file.Size() {
		t.Fatalf("expected position %d to equal size %d at EOF", file.Position(), file.Size())
	}
}

func TestOpenRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name     string
		contents string
	}{
		{"missing ident", "MANUFACTURER AVAB\n$CARALLONVERSION 1.2.3\n$GEL\n$$DCID x\n"},
		{"wrong ident", "IDENT 2:0\n$CARALLONVERSION 1.2.3\n"},
		{"malformed version", "IDENT 3:0\n$CARALLONVERSION 1.2\n"},
		{"version overflow", "IDENT 3:0\n$CARALLONVERSION 99999999999.0.0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := testsupport.WriteDefs(t, dir, strings.ReplaceAll(tc.name, " ", "_")+".def", tc.contents)
			if _, err := defs.Open(path); !errors.Is(err, defs.ErrDefs) {
				t.Fatalf("expected ErrDefs, got %v", err)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := defs.Open(filepath.Join(t.TempDir(), "missing.def"))
	if !errors.Is(err, defs.ErrDefs) {
		t.Fatalf("expected ErrDefs, got %v", err)
	}
}

func TestOpenWithoutVersionLine(t *testing.T) {
	path := testsupport.WriteDefs(t, t.TempDir(), "noversion.def", "IDENT 3:0\n$GOBO\n$$IMAGE abc\n")
	file, err := defs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()
	if file.Version() != (defs.Version{}) {
		t.Fatalf("expected zero version, got %s", file.Version())
	}
	record, ok, err := file.Next()
	if err != nil || !ok {
		t.Fatalf("expected a record, got ok=%v err=%v", ok, err)
	}
	if record.RecordName != "GOBO" || record.Contents["IMAGE"] != "abc" {
		t.Fatalf("unexpected record %#v", record)
	}
}

func TestNextHandlesCRLFAndDuplicateKeys(t *testing.T) {
	contents := strings.Join([]string{
		"IDENT 3:0",
		"$CARALLONVERSION 3.2.1",
		"$GOBO",
		"$$GOBOINFO first",
		"$$GOBOINFO 42,Breakup, Large",
		"$$NOTE trailing space ",
		"not a field line",
		"$FXGLASS",
		"$$IMAGE dcid-2",
		"",
	}, "\r\n")
	path := testsupport.WriteDefs(t, t.TempDir(), "crlf.def", contents)
	file, err := defs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()
	if file.Version() != (defs.Version{Major: 3, Minor: 2, Patch: 1}) {
		t.Fatalf("unexpected version %s", file.Version())
	}

	first, ok, err := file.Next()
	if err != nil || !ok {
		t.Fatalf("expected first record, got ok=%v err=%v", ok, err)
	}
	if first.RecordName != "GOBO" {
		t.Fatalf("unexpected first record name %q", first.RecordName)
	}
	if got := first.Contents["GOBOINFO"]; got != "42,Breakup, Large" {
		t.Fatalf("expected later duplicate to win, got %q", got)
	}
	if got := first.Contents["NOTE"]; got != "trailing space " {
		t.Fatalf("unexpected NOTE value %q", got)
	}

	second, ok, err := file.Next()
	if err != nil || !ok {
		t.Fatalf("expected second record, got ok=%v err=%v", ok, err)
	}
	if second.RecordName != "FXGLASS" || second.Contents["IMAGE"] != "dcid-2" {
		t.Fatalf("unexpected second record %#v", second)
	}
	if _, ok, _ := file.Next(); ok {
		t.Fatal("expected no more records")
	}
}

func TestPositionIsMonotonic(t *testing.T) {
	records := make([]testsupport.Record, 0, 20)
	for i := 0; i < 20; i++ {
		records = append(records, testsupport.GelRecord("dcid", "Rosco,E-Colour", "101,Yellow,255,255,0"))
	}
	path := testsupport.WriteDefs(t, t.TempDir(), "many.def", testsupport.BuildDefs("1.0.0", records...))
	file, err := defs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	var last int64
	count := 0
	for {
		_, ok, err := file.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		count++
		pos := file.Position()
		if pos <= last {
			t.Fatalf("position did not advance: %d after %d", pos, last)
		}
		if pos > file.Size() {
			t.Fatalf("position %d beyond size %d", pos, file.Size())
		}
		last = pos
	}
	if count != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), count)
	}
}

func TestReadVersion(t *testing.T) {
	path := testsupport.WriteDefs(t, t.TempDir(), "v.def", testsupport.BuildDefs("7.8.9"))
	version, err := defs.ReadVersion(path)
	if err != nil {
		t.Fatalf("ReadVersion failed: %v", err)
	}
	if version != (defs.Version{Major: 7, Minor: 8, Patch: 9}) {
		t.Fatalf("unexpected version %s", version)
	}
}
