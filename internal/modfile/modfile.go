// Package modfile reads and writes serialized compilation units. The
// external parser emits syntax trees as msgpack files; the semantic core
// loads them, normalizes identifiers, and hashes the raw bytes for the
// lowering cache.
package modfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"tml/internal/ast"
	"tml/internal/project"
)

// SchemaVersion is written into every module file; bump it when the
// syntax tree layout changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch indicates a module file written by an incompatible
// producer.
var ErrSchemaMismatch = errors.New("module file schema mismatch")

// File is the on-disk envelope around a serialized module.
type File struct {
	Schema uint16
	Module *ast.Module
}

// Load reads a module file, verifies the schema, and NFC-normalizes all
// identifiers. The returned digest hashes the raw file bytes.
func Load(path string) (*ast.Module, project.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, project.Digest{}, err
	}
	mod, err := Decode(data)
	if err != nil {
		return nil, project.Digest{}, fmt.Errorf("%s: %w", path, err)
	}
	return mod, project.HashBytes(data), nil
}

// Decode unmarshals a serialized module and normalizes its identifiers.
func Decode(data []byte) (*ast.Module, error) {
	var f File
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode module file: %w", err)
	}
	if f.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, f.Schema, SchemaVersion)
	}
	if f.Module == nil {
		return nil, errors.New("module file carries no module")
	}
	NormalizeModule(f.Module)
	return f.Module, nil
}

// Encode marshals a module into the file envelope.
func Encode(mod *ast.Module) ([]byte, error) {
	return msgpack.Marshal(&File{Schema: SchemaVersion, Module: mod})
}

// Store writes a module file atomically: encode to a temp file in the
// target directory, then rename over the destination.
func Store(path string, mod *ast.Module) error {
	data, err := Encode(mod)
	if err != nil {
		return fmt.Errorf("failed to encode module %s: %w", mod.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
