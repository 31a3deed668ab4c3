package defs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	identPrefix   = "IDENT "
	identToken    = "3:0"
	versionPrefix = "$CARALLONVERSION "
)

var (
	versionRe       = regexp.MustCompile(`^\$CARALLONVERSION (\d+)\.(\d+)\.(\d+)\s?$`)
	recordNameRe    = regexp.MustCompile(`^\$(\w+)\s?$`)
	recordContentRe = regexp.MustCompile(`^\$\$(\w+) ([^\r]+)\s?$`)
)

// Def is one raw record: the name from its `$NAME` line and the unparsed
// values of its `$$KEY value` lines.
type Def struct {
	RecordName string
	Contents   map[string]string
}

// Field returns the raw value for key and whether it was present.
func (d Def) Field(key string) (string, bool) {
	value, ok := d.Contents[key]
	return value, ok
}

// File walks the records of a defs file. It is forward-only and not safe for
// concurrent use.
type File struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	pos     int64
	eof     bool
	size    int64
	version Version
}

// Open opens path, checks the IDENT marker, and reads the data version.
func Open(path string) (*File, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, wrap("could not open file", err)
	}
	f := &File{
		path:   path,
		file:   handle,
		reader: bufio.NewReader(handle),
		size:   -1,
	}
	if err := f.readHeader(); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return f, nil
}

// ReadVersion returns the data version of the defs file at path without
// walking its records.
func ReadVersion(path string) (Version, error) {
	f, err := Open(path)
	if err != nil {
		return Version{}, err
	}
	defer f.Close()
	return f.Version(), nil
}

// Close releases the underlying file.
func (f *File) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Path returns the path the file was opened from.
func (f *File) Path() string {
	return f.path
}

// Version returns the parsed `$CARALLONVERSION`, or the zero Version when the
// file has none.
func (f *File) Version() Version {
	return f.version
}

// Next returns the next record. ok is false once the end of the file has been
// reached without finding another record header, and stays false.
func (f *File) Next() (def Def, ok bool, err error) {
	found := false
	for {
		line, more, err := f.readLine()
		if err != nil {
			return Def{}, false, err
		}
		if !more {
			break
		}
		if match := recordNameRe.FindStringSubmatch(line); match != nil {
			def = Def{RecordName: match[1], Contents: make(map[string]string)}
			found = true
			break
		}
	}
	if !found {
		return Def{}, false, nil
	}

	for {
		lineStart := f.pos
		line, more, err := f.readLine()
		if err != nil {
			return Def{}, false, err
		}
		if !more {
			break
		}
		if match := recordContentRe.FindStringSubmatch(line); match != nil {
			def.Contents[match[1]] = match[2]
			continue
		}
		if recordNameRe.MatchString(line) {
			// Leave the next header for the following call.
			if err := f.seek(lineStart); err != nil {
				return Def{}, false, err
			}
			break
		}
	}
	return def, true, nil
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	if f.size < 0 && f.file != nil {
		if info, err := f.file.Stat(); err == nil {
			f.size = info.Size()
		}
	}
	if f.size < 0 {
		return 0
	}
	return f.size
}

// Position returns the offset of the next unread byte. Once the end of the
// file has been reached it reports Size.
func (f *File) Position() int64 {
	if f.eof {
		return f.Size()
	}
	return f.pos
}

func (f *File) readHeader() error {
	identified := false
	for {
		line, more, err := f.readLine()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if !strings.HasPrefix(line, identPrefix) {
			continue
		}
		identified = strings.HasPrefix(line[len(identPrefix):], identToken)
		break
	}
	if !identified {
		return wrap("file is not valid", nil)
	}

	if err := f.seek(0); err != nil {
		return err
	}
	for {
		line, more, err := f.readLine()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if !strings.HasPrefix(line, versionPrefix) {
			continue
		}
		version, err := parseVersionLine(line)
		if err != nil {
			return err
		}
		f.version = version
		break
	}
	return f.seek(0)
}

func parseVersionLine(line string) (Version, error) {
	match := versionRe.FindStringSubmatch(line)
	if match == nil {
		return Version{}, wrap("version is malformed", nil)
	}
	var parts [3]uint32
	for i := range parts {
		value, err := strconv.ParseUint(match[i+1], 10, 32)
		if err != nil {
			return Version{}, wrap("version is malformed", err)
		}
		parts[i] = uint32(value)
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// readLine returns the next line without its trailing newline. Carriage
// returns are kept; the record patterns tolerate them.
func (f *File) readLine() (string, bool, error) {
	if f.eof {
		return "", false, nil
	}
	line, err := f.reader.ReadString('\n')
	f.pos += int64(len(line))
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, wrap("read "+f.path, err)
		}
		f.eof = true
		if line == "" {
			return "", false, nil
		}
	}
	return strings.TrimSuffix(line, "\n"), true, nil
}

func (f *File) seek(offset int64) error {
	if _, err := f.file.Seek(offset, io.SeekStart); err != nil {
		return wrap("seek "+f.path, err)
	}
	f.reader.Reset(f.file)
	f.pos = offset
	f.eof = false
	return nil
}
