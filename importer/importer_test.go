package importer_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/mogaika/meshprobe/importer"
	_ "github.com/mogaika/meshprobe/importer/gltf"
	_ "github.com/mogaika/meshprobe/importer/obj"
	_ "github.com/mogaika/meshprobe/importer/stl"
)

func section(s string) *io.SectionReader {
	return io.NewSectionReader(bytes.NewReader([]byte(s)), 0, int64(len(s)))
}

func TestExtensions(t *testing.T) {
	exts := strings.Join(importer.Extensions(), ",")
	if exts != ".GLB,.GLTF,.OBJ,.STL" {
		t.Errorf("Extensions()=%q", exts)
	}
	if !importer.Supported("wavePlane.obj") || !importer.Supported("A.STL") || importer.Supported("b.fbx") {
		t.Errorf("Supported() mismatch")
	}
}

func TestImportDispatch(t *testing.T) {
	asset, err := importer.Import("tri.OBJ", section("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if asset.Name != "tri.OBJ" || len(asset.Meshes) != 1 {
		t.Fatalf("Unexpected asset %+v", asset)
	}
	// unnamed meshes get generated names
	if asset.Meshes[0].Name == "" {
		t.Errorf("Mesh has no name")
	}
}

func TestImportFailures(t *testing.T) {
	var tests = []struct {
		name string
		data string
	}{
		{"model.fbx", "Kaydara FBX Binary"},
		{"empty.obj", "# no geometry\n"},
		{"broken.obj", "v 1 2\n"},
		{"broken.stl", "garbage"},
	}
	for _, test := range tests {
		if _, err := importer.Import(test.name, section(test.data), nil); err == nil {
			t.Errorf("Import(%q) returned nil error", test.name)
		}
	}
}

func TestFaceNormal(t *testing.T) {
	n := importer.FaceNormal(importer.Position{0, 0, 0}, importer.Position{0, 2, 0}, importer.Position{0, 0, 2})
	if !n.ApproxEqual(importer.Normal{1, 0, 0}) {
		t.Errorf("FaceNormal()=%v", n)
	}
	if d := importer.FaceNormal(importer.Position{}, importer.Position{}, importer.Position{}); d.Len() != 0 {
		t.Errorf("Degenerate FaceNormal()=%v", d)
	}
}

func TestValidate(t *testing.T) {
	m := &importer.SourceMesh{Name: "x"}
	m.AddTriangle([3]importer.Position{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, [3]importer.Normal{})
	if err := m.Validate(); err != nil {
		t.Errorf("Validate()=%v", err)
	}
	m.UVs = make([]importer.UV, 2)
	if err := m.Validate(); err == nil {
		t.Errorf("Validate() accepted uv count mismatch")
	}
}
