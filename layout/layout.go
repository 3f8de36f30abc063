package layout

import (
	"sort"

	"github.com/pkg/errors"
)

type Format int

const (
	FormatInvalid Format = iota
	Float
	Float2
	Float3
	Float4
	Half2
	Half4
)

func (f Format) Components() int {
	switch f {
	case Float:
		return 1
	case Float2, Half2:
		return 2
	case Float3:
		return 3
	case Float4, Half4:
		return 4
	default:
		return 0
	}
}

func (f Format) ComponentSize() int {
	switch f {
	case Float, Float2, Float3, Float4:
		return 4
	case Half2, Half4:
		return 2
	default:
		return 0
	}
}

func (f Format) IsHalf() bool {
	return f == Half2 || f == Half4
}

// Size in bytes of one packed attribute value
func (f Format) Size() int {
	return f.Components() * f.ComponentSize()
}

func (f Format) String() string {
	switch f {
	case Float:
		return "float"
	case Float2:
		return "float2"
	case Float3:
		return "float3"
	case Float4:
		return "float4"
	case Half2:
		return "half2"
	case Half4:
		return "half4"
	default:
		return "invalid"
	}
}

const (
	AttributePosition          = "position"
	AttributeNormal            = "normal"
	AttributeColor             = "color"
	AttributeTextureCoordinate = "textureCoordinate"
)

type StepFunction int

const (
	StepPerVertex StepFunction = iota
	StepConstant
)

type Attribute struct {
	Name        string
	Format      Format
	Offset      int
	BufferIndex int
}

type BufferLayout struct {
	Stride       int
	StepFunction StepFunction
}

// Descriptor describes how vertex attributes are packed into one or more
// interleaved buffers. Attributes refer to Layouts by BufferIndex.
type Descriptor struct {
	Attributes []Attribute
	Layouts    []BufferLayout
}

// Default returns the 44 byte interleaved layout:
// position float3, normal float3, color float4, texture coordinate half2.
func Default() *Descriptor {
	return &Descriptor{
		Attributes: []Attribute{
			{Name: AttributePosition, Format: Float3, Offset: 0, BufferIndex: 0},
			{Name: AttributeNormal, Format: Float3, Offset: 12, BufferIndex: 0},
			{Name: AttributeColor, Format: Float4, Offset: 24, BufferIndex: 0},
			{Name: AttributeTextureCoordinate, Format: Half2, Offset: 40, BufferIndex: 0},
		},
		Layouts: []BufferLayout{
			{Stride: 44, StepFunction: StepPerVertex},
		},
	}
}

func (d *Descriptor) Attribute(name string) (Attribute, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// BufferAttributes returns attributes of buffer sorted by offset
func (d *Descriptor) BufferAttributes(buffer int) []Attribute {
	attrs := make([]Attribute, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		if a.BufferIndex == buffer {
			attrs = append(attrs, a)
		}
	}
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Offset < attrs[j].Offset })
	return attrs
}

func (d *Descriptor) Stride(buffer int) int {
	if buffer < 0 || buffer >= len(d.Layouts) {
		return 0
	}
	return d.Layouts[buffer].Stride
}

// Validate checks that attributes of every buffer do not overlap, their
// offsets increase in declaration order and the last attribute ends
// exactly at the declared stride. Padding between attributes is allowed.
func (d *Descriptor) Validate() error {
	if len(d.Attributes) == 0 {
		return errors.Errorf("Descriptor has no attributes")
	}
	if len(d.Layouts) == 0 {
		return errors.Errorf("Descriptor has no buffer layouts")
	}

	names := make(map[string]struct{}, len(d.Attributes))
	lastEnd := make([]int, len(d.Layouts))
	lastOffset := make([]int, len(d.Layouts))
	for i := range lastOffset {
		lastOffset[i] = -1
	}

	for i, a := range d.Attributes {
		if a.Format.Size() == 0 {
			return errors.Errorf("Attribute %d (%q) has invalid format", i, a.Name)
		}
		if a.BufferIndex < 0 || a.BufferIndex >= len(d.Layouts) {
			return errors.Errorf("Attribute %d (%q) refers to missing buffer %d", i, a.Name, a.BufferIndex)
		}
		if _, dup := names[a.Name]; dup {
			return errors.Errorf("Attribute %q declared twice", a.Name)
		}
		names[a.Name] = struct{}{}

		b := a.BufferIndex
		if a.Offset <= lastOffset[b] {
			return errors.Errorf("Attribute %q offset %d is not after previous offset %d", a.Name, a.Offset, lastOffset[b])
		}
		if a.Offset < lastEnd[b] {
			return errors.Errorf("Attribute %q at offset %d overlaps previous attribute ending at %d", a.Name, a.Offset, lastEnd[b])
		}
		lastOffset[b] = a.Offset
		lastEnd[b] = a.Offset + a.Format.Size()
	}

	for b, l := range d.Layouts {
		if lastOffset[b] < 0 {
			continue
		}
		if lastEnd[b] != l.Stride {
			return errors.Errorf("Buffer %d stride %d does not match packed attribute size %d", b, l.Stride, lastEnd[b])
		}
	}
	return nil
}
