package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves byte offsets
// to line/column positions for diagnostics.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and
// returns a new FileID. A repeated path gets a fresh ID; the index always
// points at the latest version.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalized := filepath.ToSlash(path)

	next, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(next)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, strips a BOM, normalizes CRLF, and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	flags := FileFlags(0)
	if rest, ok := bytes.CutPrefix(content, []byte{0xEF, 0xBB, 0xBF}); ok {
		content = rest
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (stdin, test, or generated).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil for an unknown ID.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// ByPath returns the most recent file registered under path.
func (fs *FileSet) ByPath(path string) (*File, bool) {
	id, ok := fs.index[filepath.ToSlash(path)]
	if !ok {
		return nil, false
	}
	return fs.Get(id), true
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Position resolves a byte offset in a file to a 1-based line/column pair.
func (fs *FileSet) Position(file FileID, offset uint32) LineCol {
	f := fs.Get(file)
	if f == nil {
		return LineCol{Line: 1, Col: 1}
	}
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	})
	if line == 0 {
		return LineCol{Line: 1, Col: offset + 1}
	}
	return LineCol{
		Line: uint32(line) + 1,
		Col:  offset - f.LineIdx[line-1] + 1,
	}
}

// Line returns the raw bytes of a 1-based line, without the trailing newline.
func (fs *FileSet) Line(file FileID, line uint32) []byte {
	f := fs.Get(file)
	if f == nil || line == 0 {
		return nil
	}
	starts := append([]uint32{0}, f.LineIdx...)
	idx := int(line) - 1
	if idx >= len(starts) {
		return nil
	}
	start := starts[idx]
	end := uint32(len(f.Content))
	if idx+1 < len(starts) {
		end = starts[idx+1] - 1
	}
	if start > end {
		return nil
	}
	return f.Content[start:end]
}

// buildLineIndex records the byte offset just past each newline, so entry i
// is the start offset of line i+2.
func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				panic(fmt.Errorf("file offset overflow: %w", err))
			}
			idx = append(idx, off)
		}
	}
	return idx
}
