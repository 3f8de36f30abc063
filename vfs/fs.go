package vfs

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FS exposes bundle directory to libraries that resolve sibling resources
// through io/fs (gltf external buffers). Files are read whole on open.
func FS(d Directory) fs.FS {
	return dirFS{d: d}
}

type dirFS struct {
	d Directory
}

func (dfs dirFS) Open(name string) (fs.File, error) {
	data, err := dfs.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &memFile{
		Reader: bytes.NewReader(data),
		info:   memFileInfo{name: path.Base(name), size: int64(len(data))},
	}, nil
}

func (dfs dirFS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	d := dfs.d
	parts := strings.Split(name, "/")
	for _, part := range parts[:len(parts)-1] {
		e, err := d.GetElement(part)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot resolve '%s'", name)
		}
		sub, ok := e.(Directory)
		if !ok {
			return nil, errors.Wrapf(os.ErrNotExist, "'%s' is not a directory", part)
		}
		d = sub
	}
	return ReadFile(d, parts[len(parts)-1])
}

type memFile struct {
	*bytes.Reader
	info memFileInfo
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error               { return nil }

type memFileInfo struct {
	name string
	size int64
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return 0444 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() interface{}   { return nil }
