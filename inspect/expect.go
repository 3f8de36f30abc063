package inspect

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/meshbuf"
	"github.com/mogaika/meshprobe/utils"
)

// Expectation is the known first vertex of a bundled model
type Expectation struct {
	Name     string
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
	U        float32
}

var Expectations = []Expectation{
	{
		Name:     "uv-sphere.stl",
		Position: mgl32.Vec3{-0.892934, 0.145383, 1.18061},
		Normal:   mgl32.Vec3{-0.470888, 0.0463828, 0.880973},
		Color:    mgl32.Vec4{0, 0, 0, 1},
	},
	{
		Name:     "wavePlane.obj",
		Position: mgl32.Vec3{-1.7199, 0.085319, 2.25768},
		Normal:   mgl32.Vec3{-0.0048, 0.9858, -0.1676},
		Color:    mgl32.Vec4{0, 0, 0, 1},
	},
}

func FindExpectation(name string) (Expectation, bool) {
	for _, e := range Expectations {
		if e.Name == name {
			return e, true
		}
	}
	return Expectation{}, false
}

func formatFloats(fs ...float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = utils.FormatFloat(f)
	}
	return strings.Join(parts, ", ")
}

func (e Expectation) String() string {
	return fmt.Sprintf("'%s' should resolve to this vertex:\n{\n"+
		"   position: (%s),\n"+
		"   normal: (%s),\n"+
		"   color: (%s),\n"+
		"   textureCoordinate: (%s)\n}",
		e.Name,
		formatFloats(e.Position[:]...),
		formatFloats(e.Normal[:]...),
		formatFloats(e.Color[:]...),
		formatFloats(e.U))
}

// Preamble lists all expectations, it starts the report
func Preamble() string {
	var b strings.Builder
	for _, e := range Expectations {
		b.WriteString("\n\n")
		b.WriteString(e.String())
	}
	return b.String()
}

const Tolerance = 1e-4

// Check compares decoded vertex with expectation
func (e Expectation) Check(v meshbuf.Vertex) error {
	near := func(a, b []float32) bool {
		for i := range a {
			if !mgl32.FloatEqualThreshold(a[i], b[i], Tolerance) {
				return false
			}
		}
		return true
	}
	if !near(v.Position[:], e.Position[:]) {
		return errors.Errorf("'%s' position %v, expected %v", e.Name, v.Position, e.Position)
	}
	if !near(v.Normal[:], e.Normal[:]) {
		return errors.Errorf("'%s' normal %v, expected %v", e.Name, v.Normal, e.Normal)
	}
	if v.Color != e.Color {
		return errors.Errorf("'%s' color %v, expected %v", e.Name, v.Color, e.Color)
	}
	if !near(v.TexCoord[:1], []float32{e.U}) {
		return errors.Errorf("'%s' texture coordinate %v, expected (%v, ...)", e.Name, v.TexCoord, e.U)
	}
	return nil
}
