package vfs

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mogaika/udf"
	"github.com/pkg/errors"
)

// IsoDriver exposes root directory of udf disk image as resource bundle
type IsoDriver struct {
	f     File
	image *udf.Udf
}

func NewIsoDriver(f File) (*IsoDriver, error) {
	iso := &IsoDriver{f: f}
	return iso, iso.OpenStreams()
}

// OpenIso opens image file from disk and mounts it
func OpenIso(path string) (*IsoDriver, error) {
	f := NewDirectoryDriverFile(path)
	if err := f.Open(); err != nil {
		return nil, err
	}
	iso, err := NewIsoDriver(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return iso, nil
}

func (iso *IsoDriver) Name() string      { return iso.f.Name() }
func (iso *IsoDriver) IsDirectory() bool { return true }
func (iso *IsoDriver) Close() error      { return iso.f.Close() }

func (iso *IsoDriver) OpenStreams() (err error) {
	// udf panics on broken descriptors
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("[vfs] [iso] Cannot mount '%s': %v", iso.f.Name(), r)
		}
	}()
	iso.image = udf.NewUdfFromReader(iso.f)
	log.Printf("[vfs] [iso] Mounted '%s' with %d root entries", iso.f.Name(), len(iso.image.ReadDir(nil)))
	return nil
}

func (iso *IsoDriver) List() (result []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("[vfs] [iso] Cannot list '%s': %v", iso.f.Name(), r)
		}
	}()
	files := iso.image.ReadDir(nil)
	result = make([]string, 0, len(files))
	for i := range files {
		result = append(result, files[i].Name())
	}
	return result, nil
}

func (iso *IsoDriver) GetElement(name string) (Element, error) {
	dir := iso.image.ReadDir(nil)
	for i := range dir {
		if strings.EqualFold(dir[i].Name(), name) {
			return &IsoDriverFile{f: dir[i]}, nil
		}
	}
	return nil, errors.Wrapf(os.ErrNotExist, "[vfs] [iso] '%s' not found in '%s'", name, iso.f.Name())
}

type IsoDriverFile struct {
	f udf.File
	r *io.SectionReader
}

func (f *IsoDriverFile) Name() string      { return f.f.Name() }
func (f *IsoDriverFile) IsDirectory() bool { return f.f.IsDir() }
func (f *IsoDriverFile) Size() int64       { return f.f.Size() }

func (f *IsoDriverFile) Open() error {
	f.r = f.f.NewReader()
	return nil
}

func (f *IsoDriverFile) Close() error {
	f.r = nil
	return nil
}

func (f *IsoDriverFile) Reader() (*io.SectionReader, error) {
	if f.r == nil {
		return nil, errors.Errorf("First you need to open file")
	}
	return f.r, nil
}

func (f *IsoDriverFile) ReadAt(b []byte, off int64) (n int, err error) {
	if f.r == nil {
		return 0, errors.Errorf("First you need to open file")
	}
	return f.r.ReadAt(b, off)
}
