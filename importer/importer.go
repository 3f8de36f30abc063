package importer

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/utils"
)

type Position = mgl32.Vec3
type Normal = mgl32.Vec3
type Color = mgl32.Vec4
type UV = mgl32.Vec2

// SourceMesh is a triangle list. Every slice is indexed by triangle corner,
// so corner i of triangle t is at index t*3+i. Normals are always present,
// Colors and UVs are nil when the source file has none.
type SourceMesh struct {
	Name      string
	Positions []Position
	Normals   []Normal
	Colors    []Color
	UVs       []UV
}

func (m *SourceMesh) TrianglesCount() int {
	return len(m.Positions) / 3
}

func (m *SourceMesh) Validate() error {
	if len(m.Positions) == 0 {
		return errors.Errorf("Mesh %q has no triangles", m.Name)
	}
	if len(m.Positions)%3 != 0 {
		return errors.Errorf("Mesh %q has %d corners, not a triangle list", m.Name, len(m.Positions))
	}
	if len(m.Normals) != len(m.Positions) {
		return errors.Errorf("Mesh %q has %d normals for %d corners", m.Name, len(m.Normals), len(m.Positions))
	}
	if m.Colors != nil && len(m.Colors) != len(m.Positions) {
		return errors.Errorf("Mesh %q has %d colors for %d corners", m.Name, len(m.Colors), len(m.Positions))
	}
	if m.UVs != nil && len(m.UVs) != len(m.Positions) {
		return errors.Errorf("Mesh %q has %d uvs for %d corners", m.Name, len(m.UVs), len(m.Positions))
	}
	return nil
}

// AddTriangle appends one triangle. Zero normals are replaced by the face
// normal computed from counter-clockwise winding.
func (m *SourceMesh) AddTriangle(p [3]Position, n [3]Normal) {
	var face Normal
	for i := range n {
		if n[i].Len() == 0 {
			if face.Len() == 0 {
				face = FaceNormal(p[0], p[1], p[2])
			}
			n[i] = face
		}
	}
	m.Positions = append(m.Positions, p[0], p[1], p[2])
	m.Normals = append(m.Normals, n[0], n[1], n[2])
}

func FaceNormal(a, b, c Position) Normal {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

type Asset struct {
	Name   string
	Meshes []*SourceMesh
}

// Importer parses model from r. fsys resolves resources referenced by
// model file relative to it and may be nil.
type Importer func(name string, r *io.SectionReader, fsys fs.FS) (*Asset, error)

var gHandlers map[string]Importer = make(map[string]Importer)

// SetHandler registers importer for file extension (".obj", "stl", ...)
func SetHandler(ext string, imp Importer) {
	gHandlers[normalizeExt(ext)] = imp
}

func normalizeExt(ext string) string {
	ext = strings.ToUpper(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func Extensions() []string {
	exts := make([]string, 0, len(gHandlers))
	for ext := range gHandlers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func Supported(name string) bool {
	_, found := gHandlers[normalizeExt(filepath.Ext(name))]
	return found
}

// Import parses model file. Result always has at least one valid mesh,
// and every mesh has name.
func Import(name string, r *io.SectionReader, fsys fs.FS) (*Asset, error) {
	ext := normalizeExt(filepath.Ext(name))
	h, found := gHandlers[ext]
	if !found {
		return nil, errors.Errorf("[importer] Cannot find handler for '%s' extension", ext)
	}

	asset, err := h(name, r, fsys)
	if err != nil {
		return nil, errors.Wrapf(err, "[importer] Failed to import '%s'", name)
	}
	if asset.Name == "" {
		asset.Name = name
	}

	meshes := asset.Meshes[:0]
	for _, m := range asset.Meshes {
		if len(m.Positions) == 0 {
			continue
		}
		if err := m.Validate(); err != nil {
			return nil, errors.Wrapf(err, "[importer] Invalid mesh in '%s'", name)
		}
		meshes = append(meshes, m)
	}
	asset.Meshes = meshes
	if len(asset.Meshes) == 0 {
		return nil, errors.Errorf("[importer] '%s' contains no meshes", name)
	}

	var rng utils.RandomNameGenerator
	for i, m := range asset.Meshes {
		if m.Name == "" {
			m.Name = fmt.Sprintf("%s_%d", rng.RandomName(), i)
		}
	}
	return asset, nil
}
