package vfs

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Resource bundle abstraction. Elements carry only metadata until opened.
type Element interface {
	Name() string
	IsDirectory() bool
}

type File interface {
	Element
	Size() int64
	Open() error
	Close() error
	Reader() (*io.SectionReader, error)
	ReadAt(b []byte, off int64) (n int, err error)
}

type Directory interface {
	Element
	List() ([]string, error)
	GetElement(name string) (Element, error)
}

func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
