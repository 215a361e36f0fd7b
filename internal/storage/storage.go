package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoDataDir is returned by New when the data directory is missing.
var ErrNoDataDir = errors.New("data directory does not exist")

// Storage reads and writes files inside a single data directory.
type Storage struct {
	dataDir string
}

// New returns a Storage rooted at dataDir. A leading "~/" is taken relative to
// the user's home directory. The directory must already exist.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDataDir, dataDir)
		}
		return nil, fmt.Errorf("checking data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dataDir)
	}

	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// Path returns the location of name inside the data directory.
func (s *Storage) Path(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("file name %q escapes the data directory", name)
	}
	return filepath.Join(s.dataDir, name), nil
}

// MarshalJSON renders v with 4-space indentation and non-ASCII text left
// unescaped. The output has no trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators writes U+2028 and U+2029 back as raw UTF-8. The encoder
// escapes them even with HTML escaping off. Escaped backslashes are skipped so a
// literal `\\u2028` in a string is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// WriteJSON writes v to name in the data directory, replacing any existing file.
func (s *Storage) WriteJSON(name string, v any) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}

// ReadJSON decodes name from the data directory into v.
func (s *Storage) ReadJSON(name string, v any) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	return nil
}

// SaveDownload streams r into name in the data directory, overwriting any
// previous download, and returns the written path.
func (s *Storage) SaveDownload(name string, r io.Reader) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}

	return path, nil
}
