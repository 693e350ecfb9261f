package modfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"tml/internal/mir"
)

// MIRSchemaVersion versions the serialized MIR layout independently of
// the syntax-tree schema.
const MIRSchemaVersion uint16 = 1

// MIRFile is the on-disk envelope around a serialized MIR module.
type MIRFile struct {
	Schema uint16
	Module *mir.Module
}

// LoadMIR reads a serialized MIR module.
func LoadMIR(path string) (*mir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mod, err := DecodeMIR(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// DecodeMIR unmarshals a serialized MIR module.
func DecodeMIR(data []byte) (*mir.Module, error) {
	var f MIRFile
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode MIR file: %w", err)
	}
	if f.Schema != MIRSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, f.Schema, MIRSchemaVersion)
	}
	if f.Module == nil {
		return nil, errors.New("MIR file carries no module")
	}
	return f.Module, nil
}

// StoreMIR writes a MIR module file atomically.
func StoreMIR(path string, mod *mir.Module) error {
	data, err := msgpack.Marshal(&MIRFile{Schema: MIRSchemaVersion, Module: mod})
	if err != nil {
		return fmt.Errorf("failed to encode MIR module %s: %w", mod.Name, err)
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
