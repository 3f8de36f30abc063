package obj

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quad = `# exported quad
mtllib quad.mtl
o Plane.001
v -1.0 0.0 1.0
v 1.0 0.0 1.0
v 1.0 0.0 -1.0
v -1.0 0.0 -1.0 # trailing comment
vt 0.0 0.0
vt 1.0 0.0
vt 1.0 1.0
vt 0.0 1.0
vn 0.0 1.0 0.0
usemtl None
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseQuad(t *testing.T) {
	meshes, err := Parse([]byte(quad))
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 {
		t.Fatalf("Got %d meshes", len(meshes))
	}
	m := meshes[0]
	if m.Name != "Plane.001" {
		t.Errorf("Name=%q", m.Name)
	}
	if m.TrianglesCount() != 2 {
		t.Fatalf("TrianglesCount()=%d", m.TrianglesCount())
	}
	// fan triangulation: (1,2,3) (1,3,4)
	expectedPos := []mgl32.Vec3{{-1, 0, 1}, {1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1}}
	for i, p := range expectedPos {
		if m.Positions[i] != p {
			t.Errorf("Positions[%d]=%v; expected %v", i, m.Positions[i], p)
		}
		if m.Normals[i] != (mgl32.Vec3{0, 1, 0}) {
			t.Errorf("Normals[%d]=%v", i, m.Normals[i])
		}
	}
	if len(m.UVs) != 6 || m.UVs[2] != (mgl32.Vec2{1, 1}) || m.UVs[5] != (mgl32.Vec2{0, 1}) {
		t.Errorf("UVs=%v", m.UVs)
	}
	if m.Colors != nil {
		t.Errorf("Colors must be nil without vertex colors, got %v", m.Colors)
	}
}

func TestParseIndexForms(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1 0.5 0.25 1.0
vn 0 0 1
vt 0.5 0.5
f 1 2 3
f 1//1 2//1 3//1
f 1/1 2/1 3/1
f -4/-1/-1 -3/-1/-1 -1/-1/-1
`
	meshes, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	m := meshes[0]
	if m.TrianglesCount() != 4 {
		t.Fatalf("TrianglesCount()=%d", m.TrianglesCount())
	}
	// computed face normal for "f 1 2 3"
	if !m.Normals[0].ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Computed normal %v", m.Normals[0])
	}
	// uvs appear at third face, earlier corners are backfilled with zeros
	if len(m.UVs) != 12 || m.UVs[0] != (mgl32.Vec2{}) || m.UVs[6] != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("UVs=%v", m.UVs)
	}
	if m.Positions[11] != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Negative index resolved to %v", m.Positions[11])
	}
	if m.Colors == nil || m.Colors[11] != (mgl32.Vec4{0.5, 0.25, 1, 1}) || m.Colors[0] != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("Colors=%v", m.Colors)
	}
}

func TestParseObjects(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
o first
f 1 2 3
g second part
f 3 2 1
o empty
`
	meshes, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 2 || meshes[0].Name != "first" || meshes[1].Name != "second part" {
		for _, m := range meshes {
			t.Logf("mesh %q", m.Name)
		}
		t.Fatalf("Unexpected meshes")
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []string{
		"v 1 2\n",
		"v 1 2 x\n",
		"v 0 0 0\nf 1 2\n",
		"v 0 0 0\nf 1 2 5\n",
		"v 0 0 0\nv 0 0 0\nv 0 0 0\nf 1/2 2/2 3/2\n",
		"v 0 0 0\nv 0 0 0\nv 0 0 0\nf 1//0 2//0 3//0\n",
		"1 2 3\n",
		"vn 0 1\n",
	}
	for _, test := range tests {
		if _, err := Parse([]byte(test)); err == nil {
			t.Errorf("Parse(%q) returned nil error", test)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	meshes, err := Parse([]byte("# nothing here\nmtllib a.mtl\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 0 {
		t.Errorf("Got %d meshes", len(meshes))
	}
}
