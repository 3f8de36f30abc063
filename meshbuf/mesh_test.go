package meshbuf

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/meshprobe/importer"
	"github.com/mogaika/meshprobe/layout"
)

func quadMesh(withUV bool) *importer.SourceMesh {
	m := &importer.SourceMesh{Name: "quad"}
	n := importer.Normal{0, 1, 0}
	m.AddTriangle([3]importer.Position{{-1, 0, 1}, {1, 0, 1}, {1, 0, -1}}, [3]importer.Normal{n, n, n})
	m.AddTriangle([3]importer.Position{{-1, 0, 1}, {1, 0, -1}, {-1, 0, -1}}, [3]importer.Normal{n, n, n})
	if withUV {
		m.UVs = []importer.UV{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}
	}
	return m
}

func TestNewMeshPacking(t *testing.T) {
	a := NewHeapAllocator()
	m, err := NewMesh(quadMesh(true), layout.Default(), a)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount != 4 {
		t.Errorf("VertexCount=%d; expected 4 (shared corners)", m.VertexCount)
	}
	if m.VertexBuffers[0].Length() != 4*44 {
		t.Errorf("Vertex buffer length %d", m.VertexBuffers[0].Length())
	}
	if a.Allocated() != 4*44+6*4 {
		t.Errorf("Allocated()=%d", a.Allocated())
	}

	indices, err := m.Indices()
	if err != nil {
		t.Fatal(err)
	}
	expected := []uint32{0, 1, 2, 0, 2, 3}
	for i := range expected {
		if indices[i] != expected[i] {
			t.Errorf("Indices=%v; expected %v", indices, expected)
			break
		}
	}

	floats, err := m.VertexBuffers[0].Float32s(10)
	if err != nil {
		t.Fatal(err)
	}
	expectedFloats := []float32{-1, 0, 1, 0, 1, 0, 0, 0, 0, 1}
	for i := range expectedFloats {
		if floats[i] != expectedFloats[i] {
			t.Errorf("data[%d]=%v; expected %v", i, floats[i], expectedFloats[i])
		}
	}

	v, err := m.DecodeVertex(2)
	if err != nil {
		t.Fatal(err)
	}
	if v.Position != (mgl32.Vec3{1, 0, -1}) || v.TexCoord != (mgl32.Vec2{1, 1}) || v.Color != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("DecodeVertex(2)=%+v", v)
	}
}

func TestTexCoordReinterpretation(t *testing.T) {
	m, err := NewMesh(quadMesh(true), layout.Default(), NewHeapAllocator())
	if err != nil {
		t.Fatal(err)
	}
	// vertex 2 has uv (1,1): two halves 0x3c00 packed at offset 40
	f, err := m.VertexBuffers[0].Float32At(2*44 + 40)
	if err != nil {
		t.Fatal(err)
	}
	if f != math.Float32frombits(0x3c003c00) {
		t.Errorf("Float32At()=%v", f)
	}
	raw := m.VertexBuffers[0].Contents()[2*44+40 : 2*44+44]
	if raw[0] != 0x00 || raw[1] != 0x3c || raw[2] != 0x00 || raw[3] != 0x3c {
		t.Errorf("Half2 bytes % x", raw)
	}
}

func TestMissingAttributesDefaults(t *testing.T) {
	m, err := NewMesh(quadMesh(false), layout.Default(), NewHeapAllocator())
	if err != nil {
		t.Fatal(err)
	}
	v, err := m.DecodeVertex(0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Color != (mgl32.Vec4{0, 0, 0, 1}) || v.TexCoord != (mgl32.Vec2{}) {
		t.Errorf("Defaults: %+v", v)
	}
}

func TestCustomLayout(t *testing.T) {
	d := &layout.Descriptor{
		Attributes: []layout.Attribute{
			{Name: layout.AttributePosition, Format: layout.Float4, Offset: 0, BufferIndex: 0},
			{Name: layout.AttributeNormal, Format: layout.Float3, Offset: 0, BufferIndex: 1},
			{Name: "tangent", Format: layout.Half4, Offset: 12, BufferIndex: 1},
		},
		Layouts: []layout.BufferLayout{{Stride: 16}, {Stride: 20}},
	}
	m, err := NewMesh(quadMesh(false), d, NewHeapAllocator())
	if err != nil {
		t.Fatal(err)
	}
	if len(m.VertexBuffers) != 2 || m.VertexBuffers[1].Length() != 80 {
		t.Fatalf("Unexpected buffers")
	}
	pos, err := m.ReadAttribute(layout.AttributePosition, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pos[0] != 1 || pos[2] != 1 || pos[3] != 1 {
		t.Errorf("Position float4=%v", pos)
	}
	tangent, err := m.ReadAttribute("tangent", 0)
	if err != nil {
		t.Fatal(err)
	}
	if tangent[0] != 0 || tangent[3] != 1 {
		t.Errorf("Unknown attribute defaults=%v", tangent)
	}
	if v, err := m.DecodeVertex(0); err != nil || v.Normal != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("DecodeVertex(0)=%+v,%v", v, err)
	}
}

func TestNewMeshesErrors(t *testing.T) {
	bad := layout.Default()
	bad.Layouts[0].Stride = 40
	asset := &importer.Asset{Meshes: []*importer.SourceMesh{quadMesh(false)}}
	if _, err := NewMeshes(asset, bad, NewHeapAllocator()); err == nil {
		t.Errorf("NewMeshes() accepted inconsistent layout")
	}
	if _, err := NewMeshes(&importer.Asset{}, layout.Default(), NewHeapAllocator()); err == nil {
		t.Errorf("NewMeshes() accepted empty asset")
	}
	limited := &HeapAllocator{Limit: 100}
	if _, err := NewMeshes(asset, layout.Default(), limited); err == nil {
		t.Errorf("NewMeshes() ignored allocator limit")
	}
	if limited.Allocated() != 0 {
		t.Errorf("Failed NewMeshes() kept %d bytes", limited.Allocated())
	}
}

func TestAllocatorRelease(t *testing.T) {
	// room for exactly one quad mesh
	a := &HeapAllocator{Limit: 4*44 + 6*4}
	for i := 0; i < 3; i++ {
		m, err := NewMesh(quadMesh(false), layout.Default(), a)
		if err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
		m.Release(a)
		if a.Allocated() != 0 {
			t.Fatalf("Load %d: Allocated()=%d after release", i, a.Allocated())
		}
		if m.VertexBuffers[0] != nil || m.IndexBuffer != nil {
			t.Errorf("Release() kept buffer references")
		}
	}

	// index buffer does not fit after vertex buffer
	tight := &HeapAllocator{Limit: 4 * 44}
	if _, err := NewMesh(quadMesh(false), layout.Default(), tight); err == nil {
		t.Errorf("NewMesh() ignored allocator limit")
	}
	if tight.Allocated() != 0 {
		t.Errorf("Failed NewMesh() kept %d bytes", tight.Allocated())
	}
}

func TestBufferBounds(t *testing.T) {
	b, err := NewHeapAllocator().NewBuffer(8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Float32s(3); err == nil {
		t.Errorf("Float32s(3) on 8 bytes returned nil error")
	}
	if _, err := b.Float32At(6); err == nil {
		t.Errorf("Float32At(6) returned nil error")
	}
	if _, err := b.HalfAt(-1); err == nil {
		t.Errorf("HalfAt(-1) returned nil error")
	}
	if _, err := b.Float32s(-1); err == nil {
		t.Errorf("Float32s(-1) returned nil error")
	}
	if err := b.check(4, -4); err == nil {
		t.Errorf("check(4, -4) returned nil error")
	}
	if _, err := NewHeapAllocator().NewBuffer(0); err == nil {
		t.Errorf("NewBuffer(0) returned nil error")
	}
}
