// Package inspect loads bundled models into interleaved vertex buffers and
// produces a text dump of the first packed floats of every model.
package inspect

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/config"
	"github.com/mogaika/meshprobe/importer"
	"github.com/mogaika/meshprobe/layout"
	"github.com/mogaika/meshprobe/meshbuf"
	"github.com/mogaika/meshprobe/status"
	"github.com/mogaika/meshprobe/utils"
	"github.com/mogaika/meshprobe/vfs"
)

type Inspector struct {
	Dir       vfs.Directory
	Allocator meshbuf.Allocator
	// Count of packed floats printed per model
	Count int
	// NewDescriptor builds layout for every load, layout.Default when nil
	NewDescriptor func() *layout.Descriptor
	// Dump logs descriptor and decoded vertex with spew
	Dump bool
}

func NewInspector(dir vfs.Directory) *Inspector {
	return &Inspector{
		Dir:       dir,
		Allocator: meshbuf.NewHeapAllocator(),
		Count:     config.DefaultDumpCount,
	}
}

type Result struct {
	Name   string
	Loaded bool
	Error  string          `json:",omitempty"`
	Floats []float32       `json:",omitempty"`
	Vertex *meshbuf.Vertex `json:",omitempty"`
	// Mismatch with known expectation, empty when vertex matches
	Mismatch string `json:",omitempty"`
}

type Report struct {
	Text    string
	Results []*Result
}

// ErrNotFound marks models absent from resource bundle
var ErrNotFound = errors.New("model not found in resources")

func (ins *Inspector) descriptor() *layout.Descriptor {
	if ins.NewDescriptor != nil {
		return ins.NewDescriptor()
	}
	return layout.Default()
}

// LoadMeshes resolves name in resources and builds its vertex buffers
func (ins *Inspector) LoadMeshes(name string) ([]*meshbuf.Mesh, error) {
	d := ins.descriptor()

	f, err := vfs.DirectoryGetFile(ins.Dir, name)
	if err != nil {
		if vfs.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "'%s'", name)
		}
		return nil, err
	}
	r, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	asset, err := importer.Import(name, r, vfs.FS(ins.Dir))
	if err != nil {
		return nil, err
	}
	meshes, err := meshbuf.NewMeshes(asset, d, ins.Allocator)
	if err != nil {
		return nil, err
	}
	if ins.Dump {
		utils.LogDump(fmt.Sprintf("[inspect] '%s' descriptor:", name), d)
	}
	return meshes, nil
}

// LoadMesh builds first mesh of model. Caller releases it with ins.Release
func (ins *Inspector) LoadMesh(name string) (*meshbuf.Mesh, error) {
	meshes, err := ins.LoadMeshes(name)
	if err != nil {
		return nil, err
	}
	for _, m := range meshes[1:] {
		ins.Release(m)
	}
	return meshes[0], nil
}

func (ins *Inspector) Release(m *meshbuf.Mesh) {
	m.Release(ins.Allocator)
}

// InspectModel appends dump of first mesh of model to text. Missing models
// and import failures append nothing; they are only logged.
func (ins *Inspector) InspectModel(name string, text *strings.Builder) *Result {
	res := &Result{Name: name}

	mesh, err := ins.LoadMesh(name)
	if err != nil {
		res.Error = err.Error()
		if errors.Is(err, ErrNotFound) {
			log.Printf("[inspect] skipping %v", err)
			status.Info(name, "not found in resources")
		} else {
			log.Printf("[inspect] failed to load mesh %v", err)
			status.Error(name, "failed to load mesh %v", err)
		}
		return res
	}
	defer ins.Release(mesh)

	floats, err := mesh.VertexBuffers[0].Float32s(ins.Count)
	if err != nil {
		res.Error = err.Error()
		log.Printf("[inspect] '%s' cannot dump %d floats: %v", name, ins.Count, err)
		status.Error(name, "cannot dump %d floats: %v", ins.Count, err)
		return res
	}
	res.Loaded = true
	res.Floats = floats

	fmt.Fprintf(text, "\n\nloading mesh with name: %s\n\n", name)
	for i, f := range floats {
		fmt.Fprintf(text, "data [%d] = %s\n", i, utils.FormatFloat(f))
	}
	text.WriteString("...")

	if v, err := mesh.DecodeVertex(0); err == nil {
		res.Vertex = &v
		if e, ok := FindExpectation(name); ok {
			if err := e.Check(v); err != nil {
				res.Mismatch = err.Error()
				log.Printf("[inspect] %v", err)
			}
		}
		if ins.Dump {
			utils.LogDump(fmt.Sprintf("[inspect] '%s' first vertex:", name), v)
		}
	}

	status.Info(name, "loaded %d vertices into %d byte buffer", mesh.VertexCount, mesh.VertexBuffers[0].Length())
	return res
}

// Run inspects models one after another in given order
func (ins *Inspector) Run(names []string) *Report {
	var text strings.Builder
	text.WriteString(Preamble())

	report := &Report{Results: make([]*Result, 0, len(names))}
	for _, name := range names {
		report.Results = append(report.Results, ins.InspectModel(name, &text))
	}
	report.Text = text.String()
	return report
}

// ReportHolder keeps last report for display surfaces
type ReportHolder struct {
	lock   sync.RWMutex
	report *Report
}

func (h *ReportHolder) Set(r *Report) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.report = r
}

func (h *ReportHolder) Get() *Report {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.report == nil {
		return &Report{}
	}
	return h.report
}
