// Package export converts packed vertex buffers back into portable formats
package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/meshprobe/meshbuf"
)

// ExportGLTF decodes every vertex of mesh from its interleaved buffers and
// writes them as separate gltf accessors
func ExportGLTF(mesh *meshbuf.Mesh) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	positions := make([][3]float32, mesh.VertexCount)
	normals := make([][3]float32, mesh.VertexCount)
	uvs := make([][2]float32, mesh.VertexCount)
	colors := make([][4]uint8, mesh.VertexCount)
	for i := 0; i < mesh.VertexCount; i++ {
		v, err := mesh.DecodeVertex(i)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to decode vertex %d", i)
		}
		positions[i] = v.Position
		normals[i] = v.Normal
		uvs[i] = v.TexCoord
		for c := range colors[i] {
			colors[i][c] = colorByte(v.Color[c])
		}
	}

	indices, err := mesh.Indices()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read indices")
	}

	indicesAccessor := modeler.WriteIndices(doc, indices)
	attributes := map[string]uint32{
		"POSITION":   modeler.WritePosition(doc, positions),
		"NORMAL":     modeler.WriteNormal(doc, normals),
		"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
		"COLOR_0":    modeler.WriteColor(doc, colors),
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: mesh.Name,
		Primitives: []*gltf.Primitive{{
			Indices:    &indicesAccessor,
			Attributes: attributes,
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: mesh.Name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	return doc, nil
}

func colorByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
