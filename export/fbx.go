package export

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/meshbuf"
)

const FBX_VERSION = 7400
const FBX_CREATOR = "meshprobe"
const FBX_CREATION_TIME = "1970-01-01 10:00:00:000"

var FBX_FILE_ID []byte = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

type fbxIds struct {
	last int64
}

func (ids *fbxIds) next() int64 {
	ids.last++
	return ids.last
}

// ExportFBX builds scene with single model. Its geometry holds every vertex
// decoded from interleaved buffers, mapped by vertex.
func ExportFBX(mesh *meshbuf.Mesh) (*fbx.FBX, error) {
	vertices := make([]float64, 0, mesh.VertexCount*3)
	normals := make([]float64, 0, mesh.VertexCount*3)
	colors := make([]float64, 0, mesh.VertexCount*4)
	uvs := make([]float64, 0, mesh.VertexCount*2)
	for i := 0; i < mesh.VertexCount; i++ {
		v, err := mesh.DecodeVertex(i)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to decode vertex %d", i)
		}
		for _, c := range v.Position {
			vertices = append(vertices, float64(c))
		}
		for _, c := range v.Normal {
			normals = append(normals, float64(c))
		}
		for _, c := range v.Color {
			colors = append(colors, float64(c))
		}
		// fbx texture space starts at bottom
		uvs = append(uvs, float64(v.TexCoord[0]), float64(1-v.TexCoord[1]))
	}

	indices, err := mesh.Indices()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read indices")
	}
	// last index of every polygon is stored as -(index+1)
	polygons := make([]int32, len(indices))
	for i, index := range indices {
		if i%3 == 2 {
			polygons[i] = -int32(index) - 1
		} else {
			polygons[i] = int32(index)
		}
	}

	ids := &fbxIds{last: 1000000}
	geometryId := ids.next()
	modelId := ids.next()

	layer := bfbx73.Layer(0).AddNodes(bfbx73.Version(100))
	geometry := bfbx73.Geometry(geometryId, mesh.Name+"\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(polygons),
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(normals),
		),
		bfbx73.LayerElementColor(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Colors(colors),
		),
		bfbx73.LayerElementUV(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.UV(uvs),
		),
		layer,
	)
	for _, element := range []string{"LayerElementNormal", "LayerElementColor", "LayerElementUV"} {
		layer.AddNode(bfbx73.LayerElement().AddNodes(
			bfbx73.Type(element),
			bfbx73.TypedIndex(0),
		))
	}

	model := bfbx73.Model(modelId, mesh.Name+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)

	f := fbx.NewFBX(FBX_VERSION)
	f.Root.AddNodes(
		bfbx73.FBXHeaderExtension().AddNodes(
			bfbx73.FBXHeaderVersion(1003),
			bfbx73.FBXVersion(FBX_VERSION),
			bfbx73.EncryptionType(0),
			bfbx73.Creator(FBX_CREATOR),
		),
		bfbx73.FileId(FBX_FILE_ID),
		bfbx73.CreationTime(FBX_CREATION_TIME),
		bfbx73.Creator(FBX_CREATOR),
		bfbx73.GlobalSettings().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("UpAxis", "int", "Integer", "", int32(1)),
				bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxis", "int", "Integer", "", int32(2)),
				bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("CoordAxis", "int", "Integer", "", int32(0)),
				bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
			),
		),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(ids.next(), "Scene", "Scene").AddNodes(
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		bfbx73.Definitions().AddNodes(
			bfbx73.Version(100),
			bfbx73.Count(3),
			bfbx73.ObjectType("GlobalSettings").AddNodes(bfbx73.Count(1)),
			bfbx73.ObjectType("Model").AddNodes(bfbx73.Count(1)),
			bfbx73.ObjectType("Geometry").AddNodes(bfbx73.Count(1)),
		),
		bfbx73.Objects().AddNodes(model, geometry),
		bfbx73.Connections().AddNodes(
			bfbx73.C("OO", modelId, 0),
			bfbx73.C("OO", geometryId, modelId),
		),
		bfbx73.Takes().AddNodes(
			bfbx73.Current(""),
		),
	)
	return f, nil
}

// WriteFBX encodes binary fbx. Encoder needs to seek back for node
// offsets, so output goes through temporary file.
func WriteFBX(w io.Writer, f *fbx.FBX) error {
	tempFile, err := ioutil.TempFile("", "meshprobe.*.fbx")
	if err != nil {
		return errors.Wrapf(err, "Unable to create temp file")
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if err := fbx.Write(tempFile, f); err != nil {
		return errors.Wrapf(err, "Unable to encode fbx")
	}
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "Unable to seek")
	}
	_, err = io.Copy(w, tempFile)
	return err
}
