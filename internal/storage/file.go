package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores one file per key under Dir. Writes go through a temporary
// file and a rename so a crash never leaves a half-written snapshot.
type FileKV struct {
	Dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage: file directory is required")
	}
	cleanDir := filepath.Clean(strings.TrimSpace(dir))
	if err := os.MkdirAll(cleanDir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{Dir: cleanDir}, nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.Dir, ".kv-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileKV) pathFor(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	return filepath.Join(f.Dir, fileNameForKey(key)+".json"), nil
}

// fileNameForKey maps any key onto a flat, path-safe file name. Letters,
// digits and '-' are kept; every other byte, '_' included, becomes "_xx" in
// hex, so distinct keys never share a file.
func fileNameForKey(key string) string {
	const hexDigits = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}
