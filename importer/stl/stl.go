// Package stl imports ascii and binary stereolithography files
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"io/fs"
	"io/ioutil"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/importer"
	"github.com/mogaika/meshprobe/utils"
)

const (
	HEADER_SIZE = 80
	FACET_SIZE  = 50
)

func init() {
	importer.SetHandler(".stl", Import)
}

func Import(name string, r *io.SectionReader, _ fs.FS) (*importer.Asset, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read")
	}

	var mesh *importer.SourceMesh
	if IsBinary(data) {
		mesh, err = ParseBinary(data)
	} else if isASCII(data) {
		mesh, err = ParseASCII(data)
	} else {
		return nil, errors.Errorf("Unknown stl format (%d bytes)", len(data))
	}
	if err != nil {
		return nil, err
	}
	return &importer.Asset{Name: name, Meshes: []*importer.SourceMesh{mesh}}, nil
}

// IsBinary reports whether data size matches facet count from binary header.
// Some exporters write "solid" into binary header, so prefix is not enough.
func IsBinary(data []byte) bool {
	if len(data) < HEADER_SIZE+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[HEADER_SIZE:])
	return int64(len(data)) == HEADER_SIZE+4+int64(count)*FACET_SIZE
}

func isASCII(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func readVec3(b []byte) importer.Position {
	return importer.Position{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func ParseBinary(data []byte) (*importer.SourceMesh, error) {
	if !IsBinary(data) {
		return nil, errors.Errorf("Binary stl size mismatch")
	}

	name, err := utils.BytesToString(data[:HEADER_SIZE])
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode header")
	}
	name = strings.TrimSpace(strings.TrimPrefix(name, "solid"))

	count := int(binary.LittleEndian.Uint32(data[HEADER_SIZE:]))
	mesh := &importer.SourceMesh{Name: name}
	for i := 0; i < count; i++ {
		facet := data[HEADER_SIZE+4+i*FACET_SIZE:]
		n := readVec3(facet[0:])
		mesh.AddTriangle(
			[3]importer.Position{readVec3(facet[12:]), readVec3(facet[24:]), readVec3(facet[36:])},
			[3]importer.Normal{n, n, n})
	}
	return mesh, nil
}

func parseVec3(fields []string, line int) (importer.Position, error) {
	var v importer.Position
	if len(fields) != 3 {
		return v, errors.Errorf("line %d: expected 3 numbers, got %d", line, len(fields))
	}
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return v, errors.Wrapf(err, "line %d", line)
		}
		v[i] = float32(val)
	}
	return v, nil
}

func ParseASCII(data []byte) (*importer.SourceMesh, error) {
	mesh := &importer.SourceMesh{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var normal importer.Normal
	var loop []importer.Position
	inFacet, solidEnded := false, false

	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			mesh.Name = strings.Join(fields[1:], " ")
		case "facet":
			if inFacet {
				return nil, errors.Errorf("line %d: nested facet", line)
			}
			if len(fields) < 2 || fields[1] != "normal" {
				return nil, errors.Errorf("line %d: expected 'facet normal'", line)
			}
			n, err := parseVec3(fields[2:], line)
			if err != nil {
				return nil, err
			}
			normal, loop, inFacet = n, loop[:0], true
		case "outer", "endloop":
		case "vertex":
			if !inFacet {
				return nil, errors.Errorf("line %d: vertex outside of facet", line)
			}
			v, err := parseVec3(fields[1:], line)
			if err != nil {
				return nil, err
			}
			loop = append(loop, v)
		case "endfacet":
			if !inFacet || len(loop) < 3 {
				return nil, errors.Errorf("line %d: facet with %d vertices", line, len(loop))
			}
			for i := 1; i < len(loop)-1; i++ {
				mesh.AddTriangle(
					[3]importer.Position{loop[0], loop[i], loop[i+1]},
					[3]importer.Normal{normal, normal, normal})
			}
			inFacet = false
		case "endsolid":
			solidEnded = true
		default:
			return nil, errors.Errorf("line %d: unknown keyword %q", line, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to scan")
	}
	if inFacet {
		return nil, errors.Errorf("Unterminated facet")
	}
	if !solidEnded {
		return nil, errors.Errorf("Missing endsolid")
	}
	return mesh, nil
}
