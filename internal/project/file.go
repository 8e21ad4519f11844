package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads a project document. JSON and YAML are both accepted; JSON
// is a subset of YAML, so one decoder serves both.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		if err == io.EOF {
			return Snapshot{}, fmt.Errorf("decode project: empty document")
		}
		return Snapshot{}, fmt.Errorf("decode project: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

// Encode writes snap as YAML.
func Encode(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return enc.Close()
}

// EncodeJSON writes snap as indented JSON, the format of render settings
// files.
func EncodeJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// LoadFile reads a project file from disk.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// SaveFile writes snap to path atomically. A ".json" extension selects
// JSON, anything else YAML.
func SaveFile(path string, snap Snapshot) error {
	var buf bytes.Buffer
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = EncodeJSON(&buf, snap)
	} else {
		err = Encode(&buf, snap)
	}
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".project-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
