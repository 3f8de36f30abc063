// Package gltf imports triangle primitives of gltf and glb files.
// Node transforms are not applied.
package gltf

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/meshprobe/importer"
)

func init() {
	importer.SetHandler(".gltf", Import)
	importer.SetHandler(".glb", Import)
}

// Import decodes gltf or glb. External buffers are read from fsys,
// data uris and glb binary chunk need no fsys.
func Import(name string, r *io.SectionReader, fsys fs.FS) (*importer.Asset, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(r, fsys).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode gltf")
	}
	for i, b := range doc.Buffers {
		if len(b.Data) < int(b.ByteLength) {
			return nil, errors.Errorf("Buffer %d '%s' is not available (%d of %d bytes)", i, b.URI, len(b.Data), b.ByteLength)
		}
	}
	meshes, err := Convert(doc)
	if err != nil {
		return nil, err
	}
	return &importer.Asset{Name: name, Meshes: meshes}, nil
}

// Convert produces one source mesh per gltf mesh, merging its triangle primitives
func Convert(doc *gltf.Document) ([]*importer.SourceMesh, error) {
	result := make([]*importer.SourceMesh, 0, len(doc.Meshes))
	for iMesh, mesh := range doc.Meshes {
		sm := &importer.SourceMesh{Name: mesh.Name}
		for iPrimitive, primitive := range mesh.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := addPrimitive(doc, sm, primitive); err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", iMesh, iPrimitive)
			}
		}
		result = append(result, sm)
	}
	return result, nil
}

func accessor(doc *gltf.Document, index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	return doc.Accessors[index], nil
}

func addPrimitive(doc *gltf.Document, sm *importer.SourceMesh, primitive *gltf.Primitive) error {
	posIdx, ok := primitive.Attributes["POSITION"]
	if !ok {
		return nil
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to read positions")
	}

	var normals [][3]float32
	if idx, ok := primitive.Attributes["NORMAL"]; ok {
		if acr, err := accessor(doc, idx); err != nil {
			return err
		} else if normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			return errors.Wrapf(err, "Failed to read normals")
		}
	}

	var uvs [][2]float32
	if idx, ok := primitive.Attributes["TEXCOORD_0"]; ok {
		if acr, err := accessor(doc, idx); err != nil {
			return err
		} else if uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			return errors.Wrapf(err, "Failed to read texture coordinates")
		}
	}

	var indices []uint32
	if primitive.Indices != nil {
		acr, err := accessor(doc, *primitive.Indices)
		if err != nil {
			return err
		}
		if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return errors.Wrapf(err, "Failed to read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return errors.Errorf("%d indices is not a triangle list", len(indices))
	}

	if uvs != nil && sm.UVs == nil {
		sm.UVs = make([]importer.UV, len(sm.Positions))
	}

	for i := 0; i < len(indices); i += 3 {
		var pos [3]importer.Position
		var nrm [3]importer.Normal
		for j, index := range indices[i : i+3] {
			if int(index) >= len(positions) {
				return errors.Errorf("Index %d out of range (%d vertices)", index, len(positions))
			}
			pos[j] = positions[index]
			if int(index) < len(normals) {
				nrm[j] = normals[index]
			}
			if sm.UVs != nil {
				var uv importer.UV
				if int(index) < len(uvs) {
					uv = uvs[index]
				}
				sm.UVs = append(sm.UVs, uv)
			}
		}
		sm.AddTriangle(pos, nrm)
	}
	return nil
}
