package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csmedia/internal/defs"
)

// GelDefs is a two-record gels file in the vendor layout.
const GelDefs = `
IDENT 3:0
MANUFACTURER AVAB
CONSOLE PRONTO

$SOFTWAREVERSION V5.0 R0
! Gels File

CLEAR $GEL
$CARALLONVERSION 12.1.0
! 2016-05-17T16:19:28Z


!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!
! Gel Definitions
! $GEL Gel record start
! $$DCID Gel DCID
! $$GELMANUFACTURER Manufacturer,Range
! $$GELINFO IDNumber,Name,Red,Green,Blue

! Manufacturer Apollo
! Range apollo
! Range Gel

$GEL
$$DCID 6356B5B5-0127-2D47-AC1C-5AD540D7D7D9
$$GELMANUFACTURER Apollo,Gel
$$GELINFO 1050,Soft Diffusion,254,255,251

$GEL
$$DCID 4F5EC26C-D332-C146-8988-AEBA12B52916
$$GELMANUFACTURER Apollo,Gel
$$GELINFO 1100,Hard Diffusion,254,255,244

ENDDATA
  `

// Record is one defs record used to assemble fixture files.
type Record struct {
	Name   string
	Fields [][2]string
}

// Field returns the first value recorded for key.
func (r Record) Field(key string) (string, bool) {
	for _, field := range r.Fields {
		if field[0] == key {
			return field[1], true
		}
	}
	return "", false
}

// BuildDefs renders a defs file with the given version and records.
func BuildDefs(version string, records ...Record) string {
	var b strings.Builder
	b.WriteString("IDENT 3:0\nMANUFACTURER AVAB\nCONSOLE PRONTO\n\n")
	if version != "" {
		fmt.Fprintf(&b, "$CARALLONVERSION %s\n", version)
	}
	b.WriteString("! generated fixture\n\n")
	for _, record := range records {
		fmt.Fprintf(&b, "$%s\n", record.Name)
		for _, field := range record.Fields {
			fmt.Fprintf(&b, "$$%s %s\n", field[0], field[1])
		}
		b.WriteString("\n")
	}
	b.WriteString("ENDDATA\n")
	return b.String()
}

// GelRecord builds a GEL record.
func GelRecord(dcid, manufacturer, info string) Record {
	return Record{Name: "GEL", Fields: [][2]string{
		{"DCID", dcid},
		{"GELMANUFACTURER", manufacturer},
		{"GELINFO", info},
	}}
}

// ImageRecord builds an image-backed record such as GOBO, FXGLASS, or FXDISC.
// The field prefix matches the record name. An empty image omits the IMAGE
// field.
func ImageRecord(name, image, manufacturer, info string) Record {
	fields := make([][2]string, 0, 3)
	if image != "" {
		fields = append(fields, [2]string{"IMAGE", image})
	}
	fields = append(fields,
		[2]string{name + "MANUFACTURER", manufacturer},
		[2]string{name + "INFO", info},
	)
	return Record{Name: name, Fields: fields}
}

// EnsureDir creates dir and its parents.
func EnsureDir(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// WriteDefs writes contents to dir/name and returns the path.
func WriteDefs(t testing.TB, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Chunk is one payload in a fixture data file.
type Chunk struct {
	DCID    string
	Type    string
	Payload []byte
}

// WriteImageData writes an index and data file pair holding chunks in order.
// Each chunk is preceded by a header of defs.ChunkHeaderSize filler bytes.
// It returns the index path, the data path, and each chunk's offset.
func WriteImageData(t testing.TB, dir string, chunks ...Chunk) (string, string, []int64) {
	t.Helper()

	var (
		data    []byte
		index   strings.Builder
		offsets = make([]int64, 0, len(chunks))
	)
	header := make([]byte, defs.ChunkHeaderSize)
	for i := range header {
		header[i] = 0xEE
	}
	for _, chunk := range chunks {
		offset := int64(len(data))
		offsets = append(offsets, offset)
		fmt.Fprintf(&index, "%s,%d,%s,0\r\n", chunk.DCID, offset, chunk.Type)
		data = append(data, header...)
		data = append(data, chunk.Payload...)
	}

	indexPath := filepath.Join(dir, "CSEDIT_IMAGES.idx")
	dataPath := filepath.Join(dir, "CSEDIT_IMAGES.dat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(indexPath, []byte(index.String()), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(dataPath, data, 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return indexPath, dataPath, offsets
}
