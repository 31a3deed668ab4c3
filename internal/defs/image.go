package defs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

const (
	// ChunkHeaderSize is the opaque header in front of every data chunk.
	ChunkHeaderSize = 80

	untilEOF = -1
)

type dataPosition struct {
	offset int64
	// size is untilEOF for the last chunk in the index.
	size int64
}

// ImageFile is a defs file paired with the index and data files holding its
// swatch images.
type ImageFile struct {
	*File

	index *os.File
	data  *os.File
	// media type -> dcid -> chunk position
	offsets map[string]map[string]dataPosition
}

// OpenImage opens the defs file along with its index and data sidecars.
func OpenImage(defsPath, indexPath, dataPath string) (*ImageFile, error) {
	file, err := Open(defsPath)
	if err != nil {
		return nil, err
	}
	index, err := os.Open(indexPath)
	if err != nil {
		_ = file.Close()
		return nil, wrap("could not open data index", err)
	}
	data, err := os.Open(dataPath)
	if err != nil {
		_ = file.Close()
		_ = index.Close()
		return nil, wrap("could not open data file", err)
	}
	return &ImageFile{
		File:    file,
		index:   index,
		data:    data,
		offsets: make(map[string]map[string]dataPosition),
	}, nil
}

// Close releases the defs, index, and data files.
func (f *ImageFile) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	errs = append(errs, f.File.Close())
	if f.index != nil {
		errs = append(errs, f.index.Close())
		f.index = nil
	}
	if f.data != nil {
		errs = append(errs, f.data.Close())
		f.data = nil
	}
	return errors.Join(errs...)
}

// DataForDCID returns the payload stored for dcid under mediaType. ok is false
// when the index has no such entry.
func (f *ImageFile) DataForDCID(mediaType, dcid string) (data []byte, ok bool, err error) {
	offsets, loaded := f.offsets[mediaType]
	if !loaded {
		offsets, err = f.loadOffsets(mediaType)
		if err != nil {
			return nil, false, err
		}
		f.offsets[mediaType] = offsets
	}
	position, found := offsets[dcid]
	if !found {
		return nil, false, nil
	}
	data, err = f.readChunk(dcid, position)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// loadOffsets scans the whole index for mediaType. The index has no sizes, so
// each entry is emitted only once the following line supplies its end.
func (f *ImageFile) loadOffsets(mediaType string) (map[string]dataPosition, error) {
	if _, err := f.index.Seek(0, io.SeekStart); err != nil {
		return nil, wrap("seek data index", err)
	}
	offsets := make(map[string]dataPosition)
	add := func(dcid string, position dataPosition) {
		if _, exists := offsets[dcid]; !exists {
			offsets[dcid] = position
		}
	}

	var (
		started    bool
		prevDCID   string
		prevType   string
		prevOffset int64
		lineNumber int
	)
	scanner := bufio.NewScanner(f.index)
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 4 {
			return nil, Errorf("", "data index is malformed at line %d", lineNumber)
		}
		offset, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil || offset < 0 {
			return nil, Errorf("", "data index has a bad offset at line %d: %q", lineNumber, parts[1])
		}
		if started && prevType == mediaType {
			add(prevDCID, dataPosition{offset: prevOffset, size: offset - prevOffset})
		}
		prevDCID, prevOffset, prevType = parts[0], offset, parts[2]
		started = true
	}
	if err := scanner.Err(); err != nil {
		return nil, wrap("read data index", err)
	}
	if started && prevType == mediaType {
		add(prevDCID, dataPosition{offset: prevOffset, size: untilEOF})
	}
	return offsets, nil
}

func (f *ImageFile) readChunk(dcid string, position dataPosition) ([]byte, error) {
	start := position.offset + ChunkHeaderSize
	size := position.size - ChunkHeaderSize
	if position.size == untilEOF {
		end, err := f.data.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, wrap("seek data file", err)
		}
		size = max(end-start, 0)
	} else if size < 0 {
		return nil, Errorf(dcid, "data chunk is smaller than its %d-byte header", ChunkHeaderSize)
	}

	buf := make([]byte, size)
	n, err := f.data.ReadAt(buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, wrap("read data file", err)
	}
	return buf[:n], nil
}
