// Package railstore reads and writes baked rail files.
//
// Rails are addressed by a slash-separated path relative to a root directory.
// The file extension selects the compression applied on disk:
//
//	*.zst  zstd
//	*.lz4  LZ4 frame
//	other  stored as-is
package railstore

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the on-disk encoding of a rail file.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// CompressionFor returns the compression implied by name's extension.
func CompressionFor(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// DirLoader loads rail files from a file system.
type DirLoader struct {
	fsys fs.FS
}

// NewDirLoader returns a loader rooted at dir on the local disk.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{fsys: os.DirFS(dir)}
}

// NewFSLoader returns a loader over an arbitrary file system.
func NewFSLoader(fsys fs.FS) *DirLoader {
	return &DirLoader{fsys: fsys}
}

// Load reads and decompresses the rail file named id.
// A missing file returns an error wrapping fs.ErrNotExist.
func (l *DirLoader) Load(id string) ([]byte, error) {
	name := path.Clean(id)
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("rail %q: %w", id, fs.ErrInvalid)
	}
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	data, err := Decompress(raw, CompressionFor(name))
	if err != nil {
		return nil, fmt.Errorf("rail %q: %w", id, err)
	}
	return data, nil
}

// List returns the ids of all files under the root, sorted.
func (l *DirLoader) List() ([]string, error) {
	var ids []string
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			ids = append(ids, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

// MapLoader serves rails from memory.
type MapLoader map[string][]byte

// Load returns a copy of the bytes stored for id.
func (m MapLoader) Load(id string) ([]byte, error) {
	data, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("rail %q: %w", id, fs.ErrNotExist)
	}
	return bytes.Clone(data), nil
}

// Write stores data as the rail file id under dir, compressing by extension
// and creating parent directories as needed.
func Write(dir, id string, data []byte) error {
	out, err := Compress(data, CompressionFor(id))
	if err != nil {
		return fmt.Errorf("rail %q: %w", id, err)
	}
	dest := filepath.Join(dir, filepath.FromSlash(id))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, out, 0o644)
}

// Compress encodes data with c.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// Decompress decodes data written with c.
func Decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}
