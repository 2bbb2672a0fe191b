package treasury

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Files of a treasury data folder.
const (
	PricesDir     = "prices"
	TranchesFile  = "tranches.jsonl"
	CompanyFile   = "company.jsonl"
	PositionsFile = "positions.jsonl"
	SnapshotsFile = "snapshots.jsonl"
)

// decodeJSONL decodes every non-empty line of r as a T.
// filename is for error message only.
func decodeJSONL[T any](filename string, r io.Reader) ([]T, error) {
	lines, err := scanLines(filename, r)
	if err != nil {
		return nil, err
	}
	var list []T
	for _, l := range lines {
		if strings.TrimSpace(l.txt) == "" {
			continue
		}
		var v T
		dec := json.NewDecoder(strings.NewReader(l.txt))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("parse error %s:%v: %w", l.filename, l.i, err)
		}
		list = append(list, v)
	}
	return list, nil
}

// decodeJSONLFile is decodeJSONL on a file, a missing file being empty.
func decodeJSONLFile[T any](filename string) ([]T, error) {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	defer f.Close()
	return decodeJSONL[T](filename, f)
}

// encodeJSONL writes one line per item.
func encodeJSONL[T any](w io.Writer, items []T) error {
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONLFile replaces filename with items.
func writeJSONLFile[T any](filename string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("persist error: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("persist error: cannot create file %q: %w", filename, err)
	}
	if err := encodeJSONL(f, items); err != nil {
		f.Close()
		return fmt.Errorf("persist error: write error on file %q: %w", filename, err)
	}
	return f.Close()
}

// appendJSONLFile appends one item to filename, creating it if needed.
func appendJSONLFile[T any](filename string, item T) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("persist error: %w", err)
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("persist error: cannot open %q: %w", filename, err)
	}
	if err := encodeJSONL(f, []T{item}); err != nil {
		f.Close()
		return fmt.Errorf("persist error: write error on file %q: %w", filename, err)
	}
	return f.Close()
}
