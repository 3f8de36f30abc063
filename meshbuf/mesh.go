package meshbuf

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/importer"
	"github.com/mogaika/meshprobe/layout"
)

type Mesh struct {
	Name          string
	Descriptor    *layout.Descriptor
	VertexCount   int
	VertexBuffers []*Buffer // one per descriptor layout
	IndexBuffer   *Buffer   // uint32 triangle list
	IndexCount    int
}

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
	TexCoord mgl32.Vec2
}

// NewMeshes packs every mesh of asset with descriptor layout
func NewMeshes(asset *importer.Asset, d *layout.Descriptor, a Allocator) ([]*Mesh, error) {
	if err := d.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Invalid vertex descriptor")
	}
	if asset == nil || len(asset.Meshes) == 0 {
		return nil, errors.Errorf("Asset contains no meshes")
	}

	meshes := make([]*Mesh, 0, len(asset.Meshes))
	for _, sm := range asset.Meshes {
		m, err := NewMesh(sm, d, a)
		if err != nil {
			for _, built := range meshes {
				built.Release(a)
			}
			return nil, errors.Wrapf(err, "Failed to build mesh %q", sm.Name)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// source values of attribute for corner, nil if mesh has none
func cornerValues(sm *importer.SourceMesh, name string, i int) []float32 {
	switch name {
	case layout.AttributePosition:
		return sm.Positions[i][:]
	case layout.AttributeNormal:
		return sm.Normals[i][:]
	case layout.AttributeColor:
		if sm.Colors != nil {
			return sm.Colors[i][:]
		}
	case layout.AttributeTextureCoordinate:
		if sm.UVs != nil {
			return sm.UVs[i][:]
		}
	}
	return nil
}

// missing components are zero, except fourth one which is one
func component(values []float32, i int) float32 {
	if i < len(values) {
		return values[i]
	}
	if i == 3 {
		return 1
	}
	return 0
}

type vertexKey struct {
	position, normal mgl32.Vec3
	color            mgl32.Vec4
	uv               mgl32.Vec2
}

func cornerKey(sm *importer.SourceMesh, i int) vertexKey {
	k := vertexKey{position: sm.Positions[i], normal: sm.Normals[i]}
	if sm.Colors != nil {
		k.color = sm.Colors[i]
	}
	if sm.UVs != nil {
		k.uv = sm.UVs[i]
	}
	return k
}

// NewMesh interleaves source corners into vertex buffers. Identical corners
// share one vertex; vertices keep order of first appearance.
func NewMesh(sm *importer.SourceMesh, d *layout.Descriptor, a Allocator) (*Mesh, error) {
	if err := sm.Validate(); err != nil {
		return nil, err
	}

	unique := make(map[vertexKey]uint32, len(sm.Positions))
	firstCorner := make([]int, 0, len(sm.Positions))
	indices := make([]uint32, len(sm.Positions))
	for i := range sm.Positions {
		k := cornerKey(sm, i)
		index, found := unique[k]
		if !found {
			index = uint32(len(firstCorner))
			unique[k] = index
			firstCorner = append(firstCorner, i)
		}
		indices[i] = index
	}

	m := &Mesh{
		Name:          sm.Name,
		Descriptor:    d,
		VertexCount:   len(firstCorner),
		VertexBuffers: make([]*Buffer, len(d.Layouts)),
		IndexCount:    len(indices),
	}

	for iBuffer, l := range d.Layouts {
		buf, err := a.NewBuffer(l.Stride * m.VertexCount)
		if err != nil {
			m.Release(a)
			return nil, errors.Wrapf(err, "Failed to allocate vertex buffer %d", iBuffer)
		}
		m.VertexBuffers[iBuffer] = buf
	}

	for iBuffer, buf := range m.VertexBuffers {
		stride := d.Layouts[iBuffer].Stride
		attrs := d.BufferAttributes(iBuffer)
		for iVertex, iCorner := range firstCorner {
			for _, attr := range attrs {
				base := iVertex*stride + attr.Offset
				values := cornerValues(sm, attr.Name, iCorner)
				for c := 0; c < attr.Format.Components(); c++ {
					v := component(values, c)
					if attr.Format.IsHalf() {
						buf.putHalf(base+c*2, v)
					} else {
						buf.putFloat32(base+c*4, v)
					}
				}
			}
		}
	}

	ib, err := a.NewBuffer(len(indices) * 4)
	if err != nil {
		m.Release(a)
		return nil, errors.Wrapf(err, "Failed to allocate index buffer")
	}
	for i, index := range indices {
		ib.putUint32(i*4, index)
	}
	m.IndexBuffer = ib

	return m, nil
}

// Release hands buffers of mesh back to allocator
func (m *Mesh) Release(a Allocator) {
	for i, buf := range m.VertexBuffers {
		if buf != nil {
			a.Release(buf)
			m.VertexBuffers[i] = nil
		}
	}
	if m.IndexBuffer != nil {
		a.Release(m.IndexBuffer)
		m.IndexBuffer = nil
	}
}

// ReadAttribute returns components of named attribute for vertex i
func (m *Mesh) ReadAttribute(name string, i int) ([]float32, error) {
	attr, ok := m.Descriptor.Attribute(name)
	if !ok {
		return nil, errors.Errorf("Layout has no %q attribute", name)
	}
	if i < 0 || i >= m.VertexCount {
		return nil, errors.Errorf("Vertex %d out of range (%d vertices)", i, m.VertexCount)
	}
	buf := m.VertexBuffers[attr.BufferIndex]
	base := i*m.Descriptor.Layouts[attr.BufferIndex].Stride + attr.Offset

	values := make([]float32, attr.Format.Components())
	for c := range values {
		var err error
		if attr.Format.IsHalf() {
			values[c], err = buf.HalfAt(base + c*2)
		} else {
			values[c], err = buf.Float32At(base + c*4)
		}
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

// DecodeVertex reads vertex i back from interleaved buffers. Attributes
// missing from layout stay zero.
func (m *Mesh) DecodeVertex(i int) (Vertex, error) {
	var v Vertex
	targets := []struct {
		name string
		dst  []float32
	}{
		{layout.AttributePosition, v.Position[:]},
		{layout.AttributeNormal, v.Normal[:]},
		{layout.AttributeColor, v.Color[:]},
		{layout.AttributeTextureCoordinate, v.TexCoord[:]},
	}
	for _, t := range targets {
		if _, ok := m.Descriptor.Attribute(t.name); !ok {
			continue
		}
		values, err := m.ReadAttribute(t.name, i)
		if err != nil {
			return v, err
		}
		copy(t.dst, values)
	}
	return v, nil
}

func (m *Mesh) Indices() ([]uint32, error) {
	result := make([]uint32, m.IndexCount)
	for i := range result {
		index, err := m.IndexBuffer.Uint32At(i * 4)
		if err != nil {
			return nil, err
		}
		result[i] = index
	}
	return result, nil
}
