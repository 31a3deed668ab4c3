package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"csmedia/internal/mediadb"
)

// ErrNotFound reports that no candidate root holds a complete install.
var ErrNotFound = errors.New("vendor install not found")

// File identifies one of the install's data files.
type File string

const (
	FileImagesData  File = "CSEDIT_IMAGES.dat"
	FileImagesIndex File = "CSEDIT_IMAGES.idx"
	FileDiscs       File = "DISCS.def"
	FileEffects     File = "EFFECTS.def"
	FileGels        File = "GELS.def"
	FileGobos       File = "GOBOS.def"
)

// Files lists every file a complete install provides.
var Files = []File{FileImagesData, FileImagesIndex, FileDiscs, FileEffects, FileGels, FileGobos}

// searchDirs are tried in order below the root; the first hit wins.
var searchDirs = []string{"bin/config", "config"}

var defsFiles = map[mediadb.Kind]File{
	mediadb.KindDisc:   FileDiscs,
	mediadb.KindEffect: FileEffects,
	mediadb.KindGel:    FileGels,
	mediadb.KindGobo:   FileGobos,
}

// Layout maps each install file to its resolved absolute path. Files that
// could not be found are absent from Paths.
type Layout struct {
	Root  string
	Paths map[File]string
}

// Locate resolves the install files below root. A root without some files
// still yields a Layout; call Validate to require all of them.
func Locate(root string) (Layout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return Layout{}, errors.New("install root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve install root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Layout{}, fmt.Errorf("stat install root: %w", err)
	}
	if !info.IsDir() {
		return Layout{}, fmt.Errorf("install root %q is not a directory", abs)
	}

	layout := Layout{Root: abs, Paths: make(map[File]string, len(Files))}
	for _, file := range Files {
		if path, ok := firstExisting(abs, file); ok {
			layout.Paths[file] = path
		}
	}
	return layout, nil
}

func firstExisting(root string, file File) (string, bool) {
	for _, dir := range searchDirs {
		candidate := filepath.Join(root, filepath.FromSlash(dir), string(file))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Missing returns the files Locate could not resolve, in Files order.
func (l Layout) Missing() []File {
	var missing []File
	for _, file := range Files {
		if _, ok := l.Paths[file]; !ok {
			missing = append(missing, file)
		}
	}
	return missing
}

// Validate reports an error naming every missing file.
func (l Layout) Validate() error {
	missing := l.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, file := range missing {
		names[i] = string(file)
	}
	return fmt.Errorf("install %q is missing %s", l.Root, strings.Join(names, ", "))
}

// DefsPath returns the defs file backing kind.
func (l Layout) DefsPath(kind mediadb.Kind) (string, bool) {
	file, ok := defsFiles[kind]
	if !ok {
		return "", false
	}
	path, ok := l.Paths[file]
	return path, ok
}

// Detect returns the layout of the first candidate root that validates.
func Detect(candidates []string) (Layout, error) {
	var tried []string
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		tried = append(tried, candidate)
		layout, err := Locate(candidate)
		if err != nil {
			continue
		}
		if layout.Validate() == nil {
			return layout, nil
		}
	}
	if len(tried) == 0 {
		return Layout{}, fmt.Errorf("%w: no install_dir or search_roots configured", ErrNotFound)
	}
	return Layout{}, fmt.Errorf("%w in %s", ErrNotFound, strings.Join(tried, ", "))
}
