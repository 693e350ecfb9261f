package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPositionResolvesLinesAndColumns(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.tml", []byte("one\ntwo\nthree\n"))

	cases := []struct {
		offset    uint32
		line, col uint32
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{8, 3, 1},
		{12, 3, 5},
	}
	for _, tc := range cases {
		got := fs.Position(id, tc.offset)
		if got.Line != tc.line || got.Col != tc.col {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tc.offset, got.Line, got.Col, tc.line, tc.col)
		}
	}
}

func TestPositionUnknownFileDegrades(t *testing.T) {
	fs := NewFileSet()
	got := fs.Position(FileID(99), 40)
	if got.Line != 1 || got.Col != 1 {
		t.Fatalf("unknown file should resolve to 1:1, got %d:%d", got.Line, got.Col)
	}
	if fs.Line(FileID(99), 1) != nil {
		t.Error("Line on an unknown file must return nil")
	}
}

func TestLineReturnsRawBytes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.tml", []byte("first\nsecond\nlast"))

	if got := fs.Line(id, 2); string(got) != "second" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := fs.Line(id, 3); string(got) != "last" {
		t.Errorf("Line(3) = %q, trailing line without newline must work", got)
	}
	if got := fs.Line(id, 4); got != nil {
		t.Errorf("Line past the end = %q, want nil", got)
	}
	if got := fs.Line(id, 0); got != nil {
		t.Error("Line(0) must return nil, lines are 1-based")
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.tml")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if !bytes.Equal(f.Content, []byte("a\nb\n")) {
		t.Errorf("content = %q after normalization", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits set", f.Flags)
	}
}

func TestRepeatedPathGetsFreshID(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("m.tml", []byte("v1"))
	second := fs.AddVirtual("m.tml", []byte("v2"))
	if first == second {
		t.Fatal("re-adding a path must mint a new ID")
	}
	f, ok := fs.ByPath("m.tml")
	if !ok || string(f.Content) != "v2" {
		t.Errorf("ByPath should return the latest version, got %q ok=%v", f.Content, ok)
	}
	if fs.Len() != 2 {
		t.Errorf("Len = %d, want 2", fs.Len())
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 12}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Errorf("Cover = %+v, want [5,20)", got)
	}
}
