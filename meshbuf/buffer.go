package meshbuf

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Buffer is raw vertex memory. Multi-byte values are little endian.
type Buffer struct {
	data []byte
}

func (b *Buffer) Length() int      { return len(b.data) }
func (b *Buffer) Contents() []byte { return b.data }

func (b *Buffer) check(off, size int) error {
	if off < 0 || size < 0 || off+size > len(b.data) {
		return errors.Errorf("Read of %d bytes at %d is out of buffer bounds (%d)", size, off, len(b.data))
	}
	return nil
}

func (b *Buffer) Float32At(off int) (float32, error) {
	if err := b.check(off, 4); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b.data[off:])), nil
}

func (b *Buffer) HalfAt(off int) (float32, error) {
	if err := b.check(off, 2); err != nil {
		return 0, err
	}
	return float16.Frombits(binary.LittleEndian.Uint16(b.data[off:])).Float32(), nil
}

// Float32s reinterprets first n*4 bytes of buffer as packed floats,
// regardless of attribute layout
func (b *Buffer) Float32s(n int) ([]float32, error) {
	if n < 0 {
		return nil, errors.Errorf("Invalid float count %d", n)
	}
	if err := b.check(0, n*4); err != nil {
		return nil, err
	}
	result := make([]float32, n)
	for i := range result {
		result[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.data[i*4:]))
	}
	return result, nil
}

func (b *Buffer) putFloat32(off int, v float32) {
	binary.LittleEndian.PutUint32(b.data[off:], math.Float32bits(v))
}

func (b *Buffer) putHalf(off int, v float32) {
	binary.LittleEndian.PutUint16(b.data[off:], float16.Fromfloat32(v).Bits())
}

func (b *Buffer) putUint32(off int, v uint32) {
	binary.LittleEndian.PutUint32(b.data[off:], v)
}

func (b *Buffer) Uint32At(off int) (uint32, error) {
	if err := b.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.data[off:]), nil
}

type Allocator interface {
	NewBuffer(length int) (*Buffer, error)
	// Release returns buffer memory; buffer must not be used afterwards
	Release(b *Buffer)
}

// HeapAllocator hands out zeroed buffers from go heap.
// Limit bounds bytes held by unreleased buffers, zero means unlimited.
type HeapAllocator struct {
	Limit int

	lock      sync.Mutex
	allocated int
}

func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{}
}

func (a *HeapAllocator) NewBuffer(length int) (*Buffer, error) {
	if length <= 0 {
		return nil, errors.Errorf("Invalid buffer length %d", length)
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.Limit != 0 && a.allocated+length > a.Limit {
		return nil, errors.Errorf("Buffer of %d bytes exceeds allocator limit (%d of %d used)", length, a.allocated, a.Limit)
	}
	a.allocated += length
	return &Buffer{data: make([]byte, length)}, nil
}

func (a *HeapAllocator) Release(b *Buffer) {
	if b == nil || b.data == nil {
		return
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	a.allocated -= len(b.data)
	b.data = nil
}

// Allocated returns bytes held by unreleased buffers
func (a *HeapAllocator) Allocated() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.allocated
}
