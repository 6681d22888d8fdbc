package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// Snapshot file extensions understood by Load and Save
const (
	ExtJSON        = ".json"
	ExtJSONL       = ".jsonl"
	ExtJSONLSnappy = ".jsonl.sz"
)

// Load reads a record file, choosing the codec from its extension: a JSON
// array for .json, one object per line for .jsonl, snappy-framed lines for .jsonl.sz.
func Load[T any](path string) ([]T, error) {
	switch {
	case strings.HasSuffix(path, ExtJSONLSnappy):
		return loadJSONL[T](path, true)
	case strings.HasSuffix(path, ExtJSONL):
		return loadJSONL[T](path, false)
	default:
		return LoadJSON[T](path)
	}
}

// Save writes records with the codec matching path's extension.
func Save[T any](path string, records []T) error {
	switch {
	case strings.HasSuffix(path, ExtJSONLSnappy):
		return writeFile(path, func(w io.Writer) error {
			sw := snappy.NewBufferedWriter(w)
			if err := WriteJSONL(sw, records); err != nil {
				return err
			}
			return sw.Close()
		})
	case strings.HasSuffix(path, ExtJSONL):
		return writeFile(path, func(w io.Writer) error { return WriteJSONL(w, records) })
	default:
		return SaveJSON(path, records, false)
	}
}

// LoadJSON reads a JSON array of records through a read-only memory map.
// An empty file yields no records.
func LoadJSON[T any](path string) ([]T, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	if reader.Len() == 0 {
		return nil, nil
	}

	data := make([]byte, reader.Len())
	if _, err := reader.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// SaveJSON writes records as a single JSON array, replacing path atomically.
func SaveJSON[T any](path string, records []T, indent bool) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if indent {
			enc.SetIndent("", "  ")
		}
		if records == nil {
			records = []T{}
		}
		return enc.Encode(records)
	})
}

// WriteJSONL encodes one record per line
func WriteJSONL[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}

// ReadJSONL decodes one record per line, skipping blank lines.
func ReadJSONL[T any](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func loadJSONL[T any](path string, compressed bool) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		r = snappy.NewReader(f)
	}
	out, err := ReadJSONL[T](r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// writeFile writes through a temp file in the target directory and renames it into place
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
