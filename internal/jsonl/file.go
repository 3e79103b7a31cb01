package jsonl

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// record is one line of a scope file. Value holds the raw stored string,
// which is normally JSON text but is not required to be.
type record struct {
	Key   *string `json:"key"`
	Value string  `json:"value"`
	// Enc is encBase64 when Key and Value are base64 of strings that are
	// not valid UTF-8, which JSON strings cannot carry.
	Enc string `json:"enc,omitempty"`
}

const encBase64 = "base64"

func newRecord(key, value string) record {
	if utf8.ValidString(key) && utf8.ValidString(value) {
		return record{Key: &key, Value: value}
	}
	k := base64.StdEncoding.EncodeToString([]byte(key))
	return record{Key: &k, Value: base64.StdEncoding.EncodeToString([]byte(value)), Enc: encBase64}
}

// entry returns the key and value a record stores. ok is false for records
// without a key or with an unknown or broken encoding.
func (r record) entry() (key, value string, ok bool) {
	if r.Key == nil {
		return "", "", false
	}
	switch r.Enc {
	case "":
		return *r.Key, r.Value, true
	case encBase64:
		k, err := base64.StdEncoding.DecodeString(*r.Key)
		if err != nil {
			return "", "", false
		}
		v, err := base64.StdEncoding.DecodeString(r.Value)
		if err != nil {
			return "", "", false
		}
		return string(k), string(v), true
	default:
		return "", "", false
	}
}

// readEntries reads a scope file into a map. Blank lines, malformed lines
// and lines without a key are skipped; a later line wins over an earlier
// one with the same key. Lines have no length limit.
func readEntries(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries := make(map[string]string)
	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var rec record
			if jsonErr := json.Unmarshal(line, &rec); jsonErr == nil {
				if k, v, ok := rec.entry(); ok {
					entries[k] = v
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return entries, nil
}

// writeEntries atomically writes the entries in keys order using the
// temp-file, fsync, rename pattern.
func writeEntries(path string, keys []string, entries map[string]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, k := range keys {
		// Encode appends the newline.
		if err := enc.Encode(newRecord(k, entries[k])); err != nil {
			return fail("writing record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ensureFile creates an empty scope file if none exists.
func ensureFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	return f.Close()
}
