// Package snapshot loads, validates and stores the documents that stand in for
// the host: grids, their occupied cells, their terminal devices and the
// optional weapon mod catalog.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/gridthreat/schema"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a snapshot document.
type Format string

// All document formats supported.
const (
	YAMLFormat Format = "yaml"
	JSONFormat Format = "json"
)

// zstdExt marks a zstd-compressed document, e.g. "base.yaml.zst".
const zstdExt = ".zst"

// ErrUnknownFormat is returned for paths whose extension names no supported format.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// DetectFormat returns the document format of a path and whether it is compressed.
func DetectFormat(path string) (Format, bool, error) {
	lower := strings.ToLower(path)
	compressed := strings.HasSuffix(lower, zstdExt)
	lower = strings.TrimSuffix(lower, zstdExt)

	switch filepath.Ext(lower) {
	case ".yaml", ".yml":
		return YAMLFormat, compressed, nil
	case ".json":
		return JSONFormat, compressed, nil
	default:
		return "", false, fmt.Errorf("%w: %s (expected .yaml, .yml or .json, optionally with .zst)", ErrUnknownFormat, path)
	}
}

// NameFromPath derives a store name from a document path, e.g. "bases/outpost.yaml.zst" gives "outpost".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(base), zstdExt) {
		base = base[:len(base)-len(zstdExt)]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadFile reads, validates and decodes a snapshot document from disk.
func ReadFile(path string) (schema.Snapshot, error) {
	format, compressed, err := DetectFormat(path)
	if err != nil {
		return schema.Snapshot{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return schema.Snapshot{}, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return schema.Snapshot{}, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	snap, err := Decode(r, format)
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Decode reads one document, checks it against the snapshot schema and
// decodes it. YAML documents are converted to JSON first so both formats
// go through the same validation.
func Decode(r io.Reader, format Format) (schema.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return schema.Snapshot{}, err
	}

	doc := raw
	if format == YAMLFormat {
		if doc, err = yamlToJSON(raw); err != nil {
			return schema.Snapshot{}, err
		}
	}

	if err := ValidateDocument(doc); err != nil {
		return schema.Snapshot{}, err
	}

	var snap schema.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return schema.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := Check(snap); err != nil {
		return schema.Snapshot{}, err
	}
	return snap, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if v == nil {
		return nil, errors.New("empty snapshot document")
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return doc, nil
}

// Encode writes a snapshot in the given format.
func Encode(w io.Writer, snap schema.Snapshot, format Format) error {
	switch format {
	case YAMLFormat:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case JSONFormat:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteFile encodes a snapshot to disk, picking the format from the path.
func WriteFile(path string, snap schema.Snapshot) error {
	format, compressed, err := DetectFormat(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, snap, format); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if !compressed {
		_, err = f.Write(buf.Bytes())
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf.Bytes()); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
